// Package services orchestrates the ledger operations across the
// SQLite store, the AMQP event pipeline, and the summary cache.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felipetaua/finan/internal/amqp"
	"github.com/felipetaua/finan/internal/cache"
	"github.com/felipetaua/finan/internal/core"
	"github.com/felipetaua/finan/internal/store"
)

const (
	summaryCacheSize = 512
	summaryCacheTTL  = 30 * time.Second
	recentCount      = 5
)

// Publisher is the AMQP capability the service needs. *amqp.Client
// satisfies it; a nil Publisher disables events without disabling
// writes.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error
}

// Dashboard is the home-screen payload: current month summary,
// all-time balance and the latest movements.
type Dashboard struct {
	Summary core.Summary       `json:"summary"`
	Balance core.Money         `json:"balance"`
	Recent  []core.Transaction `json:"recent"`
}

// FinanceService saves transactions locally first and publishes the
// created event afterwards, so a broker outage never blocks a save.
type FinanceService struct {
	store     *store.Store
	publisher Publisher
	summaries *cache.LRUCache[core.Summary]
}

func NewFinanceService(st *store.Store, publisher Publisher) *FinanceService {
	return &FinanceService{
		store:     st,
		publisher: publisher,
		summaries: cache.NewLRUCache[core.Summary](summaryCacheSize, summaryCacheTTL),
	}
}

// RegisterCaches hands the service's caches to the manager for
// periodic expiry cleanup.
func (s *FinanceService) RegisterCaches(m *cache.Manager) {
	m.Register(s.summaries)
}

// AddTransaction saves the transaction and publishes the created
// event. Publish failures are logged, not returned: the record is
// already durable and the award can be replayed.
func (s *FinanceService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	id, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id
	s.invalidate(tx.UserID)

	if err := s.publishCreated(ctx, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction created event",
			"id", id, "error", err)
	}
	return tx, nil
}

func (s *FinanceService) publishCreated(ctx context.Context, tx core.Transaction) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping event", "id", tx.ID)
		return nil
	}
	return s.publisher.PublishTransactionCreated(ctx, amqp.NewTransactionCreatedMessage(tx.ID, tx.UserID, tx.Type))
}

func (s *FinanceService) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *FinanceService) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// EditTransactionAmount rewrites the stored amount wholesale. There
// is no increment path for transactions.
func (s *FinanceService) EditTransactionAmount(ctx context.Context, userID, id string, amount core.Money) error {
	if err := s.store.UpdateTransactionAmount(ctx, userID, id, amount); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// MonthlySummary aggregates the user's ledger over one calendar
// month. Results are cached briefly; every write through this service
// flushes the user's cached months.
func (s *FinanceService) MonthlySummary(ctx context.Context, userID string, year int, month time.Month) (core.Summary, error) {
	key := summaryKey(userID, year, month)
	if summary, ok := s.summaries.Get(key); ok {
		return summary, nil
	}

	transactions, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	summary := core.Aggregate(transactions, core.MonthWindow(year, month, time.UTC))
	s.summaries.Set(key, summary)
	return summary, nil
}

// Dashboard builds the home-screen snapshot for one month.
func (s *FinanceService) Dashboard(ctx context.Context, userID string, year int, month time.Month) (Dashboard, error) {
	transactions, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}

	return Dashboard{
		Summary: core.Aggregate(transactions, core.MonthWindow(year, month, time.UTC)),
		Balance: core.Balance(transactions),
		Recent:  core.Recent(transactions, recentCount),
	}, nil
}

func (s *FinanceService) invalidate(userID string) {
	s.summaries.DeletePrefix(userID + "/")
}

func summaryKey(userID string, year int, month time.Month) string {
	return fmt.Sprintf("%s/%04d-%02d", userID, year, int(month))
}
