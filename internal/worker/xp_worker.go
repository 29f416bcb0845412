// Package worker applies asynchronous side effects of record writes.
// Today that is the XP award: adding a transaction earns the user
// experience points, applied off the request path so saving stays
// fast even when the award write is slow.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felipetaua/finan/internal/amqp"
	"github.com/felipetaua/finan/internal/core"
	applog "github.com/felipetaua/finan/internal/log"
	"github.com/felipetaua/finan/internal/store"
)

// XP awarded per recorded transaction. Income pays more to nudge
// users into logging earnings, not just spending.
const (
	XPIncome  = 10
	XPExpense = 2
)

// XPStore is the single store capability the worker needs.
type XPStore interface {
	AddXP(ctx context.Context, userID string, delta int64) error
}

type XPWorker struct {
	store XPStore
}

func NewXPWorker(store XPStore) *XPWorker {
	return &XPWorker{store: store}
}

// Award returns the XP value of one transaction type.
func Award(typ core.TransactionType) int64 {
	switch typ {
	case core.Income:
		return XPIncome
	case core.Expense:
		return XPExpense
	}
	return 0
}

// HandleTransactionCreated applies the XP award for one event. The
// increment is atomic at the store, so redelivered events are the
// only duplication risk and a requeue only happens on store failure.
func (w *XPWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	delta := Award(msg.Type)
	if delta == 0 {
		slog.WarnContext(ctx, "Skipping event with unknown transaction type",
			"id", msg.ID, "type", msg.Type)
		return nil
	}

	err := w.store.AddXP(ctx, msg.UserID, delta)
	if errors.Is(err, store.ErrNotFound) {
		// The account is gone; requeueing would loop forever.
		slog.WarnContext(ctx, "Dropping XP award for missing user",
			applog.FieldUserID, msg.UserID, "transaction_id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("award xp: %w", err)
	}

	slog.InfoContext(ctx, "XP award applied",
		applog.FieldUserID, msg.UserID, "transaction_id", msg.ID, "delta", delta)
	return nil
}
