package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:        Expense,
		Amount:      Money{Cents: 400},
		Category:    "Alimentação",
		Description: "almoço",
		Date:        time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: Expense, Amount: Money{Cents: 1}, Category: "c", Description: "a"},                                                   // zero date
		{Type: "transfer", Amount: Money{Cents: 1}, Category: "c", Description: "a", Date: good.Date},                               // unknown type
		{Type: Income, Amount: Money{Cents: -1}, Category: "c", Description: "a", Date: good.Date},                                  // negative amount
		{Type: Income, Amount: Money{Cents: 1}, Category: "c", Description: "", Date: good.Date},                                    // empty description
		{Type: Income, Amount: Money{Cents: 1}, Category: "", Description: "a", Date: good.Date},                                    // empty category
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	// A zero amount is a valid stored state; sign comes from the type.
	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}
}

func TestTransactionSigned(t *testing.T) {
	e := Transaction{Type: Expense, Amount: Money{Cents: 400}}
	if got := e.Signed(); got.Cents != -400 {
		t.Fatalf("expense should be negative, got %d", got.Cents)
	}
	i := Transaction{Type: Income, Amount: Money{Cents: 1000}}
	if got := i.Signed(); got.Cents != 1000 {
		t.Fatalf("income should be positive, got %d", got.Cents)
	}
}

func TestChallengeValidate(t *testing.T) {
	good := Challenge{Title: "Guardando Dinheiro", Goal: Money{Cents: 100000}, Status: ChallengeActive}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// The free-goal template starts with a zero goal.
	free := Challenge{Title: "Meta Livre", Goal: Money{}, Status: ChallengeActive}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero goal should be valid, got %v", err)
	}

	bads := []Challenge{
		{Title: "", Goal: Money{Cents: 1}, Status: ChallengeActive},
		{Title: "a", Goal: Money{Cents: -1}, Status: ChallengeActive},
		{Title: "a", Goal: Money{Cents: 1}, Status: "paused"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
