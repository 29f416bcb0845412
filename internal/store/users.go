package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrDuplicateUser = errors.New("user already exists")

// User is an account record. The onboarding snapshot is written once
// at creation and never mutated; xp moves only through AddXP.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Provider     string // password, google or phone
	PasswordHash []byte
	XP           int64
	Onboarding   json.RawMessage
	CreatedAt    time.Time
}

func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	if strings.TrimSpace(u.Name) == "" {
		u.Name = "Usuário"
	}
	if u.Email == "" && u.Phone == "" {
		return User{}, errors.New("user needs an email or a phone")
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	if len(u.Onboarding) == 0 {
		u.Onboarding = json.RawMessage("null")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, provider, password_hash, xp, onboarding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, u.Provider, u.PasswordHash,
		string(u.Onboarding), formatTime(u.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, ErrDuplicateUser
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created",
		"id", u.ID, "provider", u.Provider, "has_email", u.Email != "", "has_phone", u.Phone != "")

	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	return s.getUserBy(ctx, "id", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	return s.getUserBy(ctx, "phone", phone)
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (User, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, name, email, phone, provider, password_hash, xp, onboarding, created_at
		FROM users WHERE %s = ?`, column), value)

	var (
		u          User
		onboarding string
		createdAt  string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Provider,
		&u.PasswordHash, &u.XP, &onboarding, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by %s: %w", column, err)
	}
	u.Onboarding = json.RawMessage(onboarding)
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// AddXP applies a gamification award as an atomic increment, the same
// discipline challenge contributions use.
func (s *Store) AddXP(ctx context.Context, userID string, delta int64) error {
	if delta == 0 {
		return nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET xp = xp + ? WHERE id = ?`, delta, userID)
	if err != nil {
		return fmt.Errorf("increment xp: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "XP awarded", "user_id", userID, "delta", delta)

	s.bus.Publish(Change{Collection: CollectionUsers, UserID: userID})
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "User deleted", "id", id)
	return nil
}
