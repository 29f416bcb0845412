package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felipetaua/finan/internal/amqp"
	"github.com/felipetaua/finan/internal/core"
	"github.com/felipetaua/finan/internal/store"
)

type fakePublisher struct {
	published []*amqp.TransactionCreatedMessage
	err       error
}

func (f *fakePublisher) PublishTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	f.published = append(f.published, msg)
	return f.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "finan.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *store.Store) store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), store.User{
		Name:     "Ana",
		Email:    "ana@example.com",
		Provider: "password",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func march(day int) time.Time {
	return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestAddTransactionPublishesEvent(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	pub := &fakePublisher{}
	svc := NewFinanceService(st, pub)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, core.Transaction{
		UserID:      u.ID,
		Type:        core.Income,
		Amount:      core.Money{Cents: 500_000},
		Category:    "Salário",
		Description: "salário de março",
		Date:        march(5),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("expected assigned id")
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.published))
	}
	if got := pub.published[0]; got.ID != tx.ID || got.UserID != u.ID || got.Type != core.Income {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestAddTransactionSurvivesPublishFailure(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	pub := &fakePublisher{err: context.DeadlineExceeded}
	svc := NewFinanceService(st, pub)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, core.Transaction{
		UserID:      u.ID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 4_200},
		Category:    "Transporte",
		Description: "ônibus",
		Date:        march(6),
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the save: %v", err)
	}

	if _, err := svc.GetTransaction(ctx, u.ID, tx.ID); err != nil {
		t.Fatalf("transaction must be durable despite broker failure: %v", err)
	}
}

func TestAddTransactionWithoutPublisher(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewFinanceService(st, nil)

	_, err := svc.AddTransaction(context.Background(), core.Transaction{
		UserID:      u.ID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1_000},
		Category:    "Lazer",
		Description: "café",
		Date:        march(7),
	})
	if err != nil {
		t.Fatalf("nil publisher must not block saving: %v", err)
	}
}

func TestMonthlySummaryCachesAndInvalidates(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewFinanceService(st, nil)
	ctx := context.Background()

	if _, err := svc.AddTransaction(ctx, core.Transaction{
		UserID: u.ID, Type: core.Income, Amount: core.Money{Cents: 100_000},
		Category: "Salário", Description: "salário", Date: march(1),
	}); err != nil {
		t.Fatalf("add income: %v", err)
	}

	summary, err := svc.MonthlySummary(ctx, u.ID, 2024, time.March)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalIncome.Cents != 100_000 {
		t.Fatalf("expected 100000 income, got %d", summary.TotalIncome.Cents)
	}

	// A write through the service must flush the cached month.
	if _, err := svc.AddTransaction(ctx, core.Transaction{
		UserID: u.ID, Type: core.Expense, Amount: core.Money{Cents: 25_000},
		Category: "Alimentação", Description: "mercado", Date: march(10),
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	summary, err = svc.MonthlySummary(ctx, u.ID, 2024, time.March)
	if err != nil {
		t.Fatalf("summary after write: %v", err)
	}
	if summary.TotalExpenses.Cents != 25_000 {
		t.Fatalf("stale summary after write: %+v", summary)
	}
	if summary.Savings.Cents != 75_000 {
		t.Fatalf("expected 75000 savings, got %d", summary.Savings.Cents)
	}
}

func TestEditAndDeleteRefreshSummary(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewFinanceService(st, nil)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, core.Transaction{
		UserID: u.ID, Type: core.Expense, Amount: core.Money{Cents: 10_000},
		Category: "Lazer", Description: "cinema", Date: march(8),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.MonthlySummary(ctx, u.ID, 2024, time.March); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if err := svc.EditTransactionAmount(ctx, u.ID, tx.ID, core.Money{Cents: 15_000}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	summary, err := svc.MonthlySummary(ctx, u.ID, 2024, time.March)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalExpenses.Cents != 15_000 {
		t.Fatalf("edit not reflected: %+v", summary)
	}

	if err := svc.DeleteTransaction(ctx, u.ID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	summary, err = svc.MonthlySummary(ctx, u.ID, 2024, time.March)
	if err != nil {
		t.Fatalf("summary after delete: %v", err)
	}
	if summary.TotalExpenses.Cents != 0 {
		t.Fatalf("delete not reflected: %+v", summary)
	}
}

func TestDashboard(t *testing.T) {
	st := newTestStore(t)
	u := newTestUser(t, st)
	svc := NewFinanceService(st, nil)
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: u.ID, Type: core.Income, Amount: core.Money{Cents: 300_000}, Category: "Salário", Description: "salário", Date: march(1)},
		{UserID: u.ID, Type: core.Expense, Amount: core.Money{Cents: 80_000}, Category: "Moradia", Description: "aluguel", Date: march(5)},
		// Outside March, still part of the balance.
		{UserID: u.ID, Type: core.Expense, Amount: core.Money{Cents: 20_000}, Category: "Lazer", Description: "show", Date: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, tx := range seed {
		if _, err := svc.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	d, err := svc.Dashboard(ctx, u.ID, 2024, time.March)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Summary.Savings.Cents != 220_000 {
		t.Fatalf("expected March savings 220000, got %d", d.Summary.Savings.Cents)
	}
	if d.Balance.Cents != 200_000 {
		t.Fatalf("expected all-time balance 200000, got %d", d.Balance.Cents)
	}
	if len(d.Recent) != 3 {
		t.Fatalf("expected 3 recent movements, got %d", len(d.Recent))
	}
	if d.Recent[0].Description != "aluguel" {
		t.Fatalf("expected newest first, got %q", d.Recent[0].Description)
	}
}
