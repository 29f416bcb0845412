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

var ErrNotFound = errors.New("record not found")

// InsertTransaction validates and stores a new transaction record.
// The id and creation timestamp are assigned here.
func (s *Store) InsertTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}
	if tx.UserID == "" {
		return "", errors.New("missing user id")
	}

	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, user_id, type, amount_cents, category, category_icon, category_color,
			 description, details, is_fixed, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Amount.Cents, tx.Category,
		tx.CategoryIcon, tx.CategoryColor, tx.Description, tx.Details,
		boolToInt(tx.IsFixed), formatTime(tx.Date), formatTime(tx.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	s.bus.Publish(Change{Collection: CollectionTransactions, UserID: tx.UserID})
	return tx.ID, nil
}

// ListTransactions returns every transaction owned by the user.
// Rows with unparseable timestamps come back with a zero date and are
// excluded from aggregation by the core's silent-skip policy.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount_cents, category, category_icon, category_color,
		       description, details, is_fixed, date, created_at
		FROM transactions
		WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []core.Transaction
	for rows.Next() {
		var (
			tx              core.Transaction
			typ             string
			isFixed         int64
			date, createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Category,
			&tx.CategoryIcon, &tx.CategoryColor, &tx.Description, &tx.Details,
			&isFixed, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		tx.IsFixed = isFixed != 0
		tx.Date = parseTime(date)
		tx.CreatedAt = parseTime(createdAt)
		list = append(list, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return list, nil
}

// UpdateTransactionAmount is the only permitted edit of a stored
// transaction: a wholesale overwrite of the amount.
func (s *Store) UpdateTransactionAmount(ctx context.Context, userID, id string, amount core.Money) error {
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET amount_cents = ? WHERE id = ? AND user_id = ?`,
		amount.Cents, id, userID)
	if err != nil {
		return fmt.Errorf("update transaction amount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction amount updated",
		"id", id, "user_id", userID, "amount_cents", amount.Cents)

	s.bus.Publish(Change{Collection: CollectionTransactions, UserID: userID})
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)

	s.bus.Publish(Change{Collection: CollectionTransactions, UserID: userID})
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, amount_cents, category, category_icon, category_color,
		       description, details, is_fixed, date, created_at
		FROM transactions
		WHERE id = ? AND user_id = ?`, id, userID)

	var (
		tx              core.Transaction
		typ             string
		isFixed         int64
		date, createdAt string
	)
	err := row.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Category,
		&tx.CategoryIcon, &tx.CategoryColor, &tx.Description, &tx.Details,
		&isFixed, &date, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	tx.Type = core.TransactionType(typ)
	tx.IsFixed = isFixed != 0
	tx.Date = parseTime(date)
	tx.CreatedAt = parseTime(createdAt)
	return tx, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
