package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeArchived  ChallengeStatus = "archived"
)

type (
	TransactionType string

	ChallengeStatus string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID            string
		UserID        string
		Type          TransactionType
		Amount        Money
		Category      string
		CategoryIcon  string // presentation metadata, not aggregated
		CategoryColor string // presentation metadata, not aggregated
		Description   string
		Details       string
		IsFixed       bool // recurring indicator, stored only
		Date          time.Time
		CreatedAt     time.Time
	}

	Challenge struct {
		ID         string
		UserID     string
		TemplateID string
		Title      string
		IconName   string
		IconType   string
		Color      string
		Goal       Money
		Current    Money
		Status     ChallengeStatus
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidStatus    = errors.New("invalid challenge status")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyTitle       = errors.New("empty title")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (s ChallengeStatus) Validate() error {
	switch s {
	case ChallengeActive, ChallengeCompleted, ChallengeArchived:
		return nil
	}
	return ErrInvalidStatus
}

// Signed returns the amount's contribution to the running balance.
// The sign derives from the type, never from the stored amount.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

// Valid reports whether a record is well-formed enough to aggregate.
// Malformed records are skipped during aggregation, not rejected.
func (t Transaction) Valid() bool {
	return !t.Date.IsZero() && t.Amount.Cents >= 0 && t.Type.Validate() == nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c Challenge) Validate() error {
	if len(strings.TrimSpace(c.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(c.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if c.Goal.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := c.Status.Validate(); err != nil {
		return err
	}
	return nil
}
