package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"khata/internal/core"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.Ensure(ctx, "asha"); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendExpense(ctx, "asha", core.ExpenseEntry{Date: "2024-01-01", Category: "Other", Amount: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.Ensure(ctx, "asha"); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListExpenses(ctx, "asha", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("Ensure must not drop rows, got %d", len(got))
	}
}

func TestAppendAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for i := 1; i <= 3; i++ {
		e := core.ExpenseEntry{Date: "2024-01-0" + string(rune('0'+i)), Category: "Other", Amount: float64(i)}
		if err := s.AppendExpense(ctx, "asha", e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListExpenses(ctx, "asha", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Amount != 3 || got[2].Amount != 1 {
		t.Errorf("expected newest-first, got %+v", got)
	}

	limited, err := s.ListExpenses(ctx, "asha", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].Amount != 3 {
		t.Errorf("expected 2 most recent, got %+v", limited)
	}
}

func TestDebtsAndSavingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	d := core.DebtEntry{Date: "2024-02-01", Counterparty: "Bank", Type: "borrowed", Amount: 1000, Status: "pending", DueDate: "2024-06-01", Notes: "car"}
	if err := s.AppendDebt(ctx, "asha", d); err != nil {
		t.Fatal(err)
	}
	sv := core.SavingEntry{Date: "2024-02-02", Type: "FD", Description: "fixed deposit", Amount: 500, Goal: "emergency"}
	if err := s.AppendSaving(ctx, "asha", sv); err != nil {
		t.Fatal(err)
	}

	debts, err := s.ListDebts(ctx, "asha")
	if err != nil {
		t.Fatal(err)
	}
	if len(debts) != 1 || debts[0] != d {
		t.Errorf("debt round trip mismatch: %+v", debts)
	}
	savings, err := s.ListSavings(ctx, "asha")
	if err != nil {
		t.Fatal(err)
	}
	if len(savings) != 1 || savings[0] != sv {
		t.Errorf("saving round trip mismatch: %+v", savings)
	}
}

func TestSummaryMatchesCompute(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	expenses := []core.ExpenseEntry{
		{Date: "2024-01-01", Category: "Groceries", Amount: 45.50},
		{Date: "2024-01-02", Category: "Travel", Amount: 10},
		{Date: "2024-01-03", Category: "Groceries", Amount: 4.50},
	}
	for _, e := range expenses {
		if err := s.AppendExpense(ctx, "asha", e); err != nil {
			t.Fatal(err)
		}
	}
	debts := []core.DebtEntry{{Date: "2024-01-04", Counterparty: "Ravi", Amount: 25}}
	for _, d := range debts {
		if err := s.AppendDebt(ctx, "asha", d); err != nil {
			t.Fatal(err)
		}
	}
	savings := []core.SavingEntry{{Date: "2024-01-05", Type: "RD", Amount: 200}}
	for _, sv := range savings {
		if err := s.AppendSaving(ctx, "asha", sv); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Summary(ctx, "asha")
	if err != nil {
		t.Fatal(err)
	}
	want := core.ComputeSummary(expenses, debts, savings)

	if got.TotalExpenses != want.TotalExpenses || got.TotalDebts != want.TotalDebts ||
		got.TotalSavings != want.TotalSavings || got.NetBalance != want.NetBalance {
		t.Errorf("totals mismatch: got %+v, want %+v", got, want)
	}
	if got.CategoryExpenses["Groceries"] != want.CategoryExpenses["Groceries"] {
		t.Errorf("category mismatch: got %v, want %v", got.CategoryExpenses, want.CategoryExpenses)
	}
}

func TestPerUserIsolation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.AppendExpense(ctx, "asha", core.ExpenseEntry{Date: "2024-01-01", Amount: 10}); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListExpenses(ctx, "ravi", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("entries leaked across users: %+v", got)
	}
}
