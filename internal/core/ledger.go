package core

import (
	"sort"
	"time"
)

// Window is an inclusive date range used to scope aggregation.
// Both boundaries belong to the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the calendar-month window for year/month in loc:
// day 1 at 00:00:00 through the last day at 23:59:59.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return Window{Start: start, End: end}
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// CategoryShare is one slice of the expense donut chart.
type CategoryShare struct {
	Category string
	Amount   Money
	Percent  float64 // share of total windowed expenses, 0 when there are none
}

// Summary holds the windowed ledger figures every screen derives from
// the same raw transaction list.
type Summary struct {
	TotalIncome   Money
	TotalExpenses Money
	Savings       Money // income minus expenses, may be negative
	PercentSpent  float64
	PercentLeft   float64
	ByCategory    []CategoryShare
}

// Aggregate reduces an unordered transaction list for one user into a
// Summary over the given window. It is a pure function: idempotent,
// order-independent, and it never fails. Records with a zero date, a
// negative amount or an unknown type are silently excluded from every
// sum; callers needing strictness validate records beforehand.
func Aggregate(transactions []Transaction, w Window) Summary {
	var income, expenses int64
	byCategory := make(map[string]int64)

	for _, tx := range transactions {
		if !tx.Valid() || !w.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case Income:
			income += tx.Amount.Cents
		case Expense:
			expenses += tx.Amount.Cents
			byCategory[tx.Category] += tx.Amount.Cents
		}
	}

	s := Summary{
		TotalIncome:   Money{Cents: income},
		TotalExpenses: Money{Cents: expenses},
		Savings:       Money{Cents: income - expenses},
		PercentLeft:   100,
		ByCategory:    []CategoryShare{},
	}
	if income > 0 {
		s.PercentSpent = float64(expenses) / float64(income) * 100
		s.PercentLeft = 100 - s.PercentSpent
	}

	for category, cents := range byCategory {
		share := CategoryShare{Category: category, Amount: Money{Cents: cents}}
		if expenses > 0 {
			share.Percent = float64(cents) / float64(expenses) * 100
		}
		s.ByCategory = append(s.ByCategory, share)
	}
	// Deterministic chart order: biggest slice first, ties by name.
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Amount.Cents != s.ByCategory[j].Amount.Cents {
			return s.ByCategory[i].Amount.Cents > s.ByCategory[j].Amount.Cents
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})

	return s
}

// Balance returns the unwindowed running balance over all of a user's
// transactions: income positive, expense negative. This is the
// "current balance", distinct from any monthly figure.
func Balance(transactions []Transaction) Money {
	var cents int64
	for _, tx := range transactions {
		if !tx.Valid() {
			continue
		}
		cents += tx.Signed().Cents
	}
	return Money{Cents: cents}
}

// Recent returns the n most recent transactions, most recent first.
// Ordering is by date descending, ties broken by creation time
// descending, then by id descending as a final deterministic
// tie-break. The input slice is not modified.
func Recent(transactions []Transaction, n int) []Transaction {
	list := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Valid() {
			list = append(list, tx)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	if n >= 0 && n < len(list) {
		list = list[:n]
	}
	return list
}
