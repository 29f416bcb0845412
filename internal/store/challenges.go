package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felipetaua/finan/internal/core"
)

// InsertChallenge stores a new savings challenge with a zero saved
// amount and active status.
func (s *Store) InsertChallenge(ctx context.Context, c core.Challenge) (string, error) {
	if c.Status == "" {
		c.Status = core.ChallengeActive
	}
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("validate challenge: %w", err)
	}
	if c.UserID == "" {
		return "", errors.New("missing user id")
	}

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_challenges
			(id, user_id, template_id, title, icon_name, icon_type, color,
			 goal_amount_cents, current_amount_cents, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.TemplateID, c.Title, c.IconName, c.IconType, c.Color,
		c.Goal.Cents, c.Current.Cents, string(c.Status), formatTime(c.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("insert challenge: %w", err)
	}

	slog.InfoContext(ctx, "Challenge started",
		"id", c.ID,
		"user_id", c.UserID,
		"template_id", c.TemplateID,
		"goal_cents", c.Goal.Cents)

	s.bus.Publish(Change{Collection: CollectionChallenges, UserID: c.UserID})
	return c.ID, nil
}

// AddToChallenge applies a signed contribution as a single atomic
// increment. The new value is never computed from a read: two racing
// contributions both land, in either order, without losing an update.
// The stored amount is deliberately unclamped; only the displayed
// percentage is.
func (s *Store) AddToChallenge(ctx context.Context, userID, id string, delta core.Money) error {
	if delta.Cents == 0 {
		return core.ErrZeroDelta
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_challenges
		SET current_amount_cents = current_amount_cents + ?
		WHERE id = ? AND user_id = ?`,
		delta.Cents, id, userID)
	if err != nil {
		return fmt.Errorf("increment challenge amount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Challenge contribution applied",
		"id", id, "user_id", userID, "delta_cents", delta.Cents)

	s.bus.Publish(Change{Collection: CollectionChallenges, UserID: userID})
	return nil
}

// ListActiveChallenges returns the user's active challenges; the app
// never queries the other statuses.
func (s *Store) ListActiveChallenges(ctx context.Context, userID string) ([]core.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, template_id, title, icon_name, icon_type, color,
		       goal_amount_cents, current_amount_cents, status, created_at
		FROM user_challenges
		WHERE user_id = ? AND status = ?`,
		userID, string(core.ChallengeActive))
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var list []core.Challenge
	for rows.Next() {
		var (
			c         core.Challenge
			status    string
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.TemplateID, &c.Title, &c.IconName,
			&c.IconType, &c.Color, &c.Goal.Cents, &c.Current.Cents, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		c.Status = core.ChallengeStatus(status)
		c.CreatedAt = parseTime(createdAt)
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate challenges: %w", err)
	}
	return list, nil
}

func (s *Store) GetChallenge(ctx context.Context, userID, id string) (core.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, template_id, title, icon_name, icon_type, color,
		       goal_amount_cents, current_amount_cents, status, created_at
		FROM user_challenges
		WHERE id = ? AND user_id = ?`, id, userID)

	var (
		c         core.Challenge
		status    string
		createdAt string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.TemplateID, &c.Title, &c.IconName,
		&c.IconType, &c.Color, &c.Goal.Cents, &c.Current.Cents, &status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Challenge{}, ErrNotFound
	}
	if err != nil {
		return core.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	c.Status = core.ChallengeStatus(status)
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

func (s *Store) DeleteChallenge(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_challenges WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Challenge deleted", "id", id, "user_id", userID)

	s.bus.Publish(Change{Collection: CollectionChallenges, UserID: userID})
	return nil
}
