package xlsx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"khata/internal/core"
	"khata/internal/ledger"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestEnsureCreatesWorkbook(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Ensure(ctx, "asha"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	path := filepath.Join(dir, "asha_ledger.xlsx")
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open created workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{core.TableSummary, core.TableExpenses, core.TableDebts, core.TableSavings, core.TableBudgets} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %s", sheet)
		}
	}

	rows, err := f.GetRows(core.TableExpenses)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d rows", len(rows))
	}
	for i, want := range core.ExpenseHeader {
		if rows[0][i] != want {
			t.Errorf("header col %d = %q, want %q", i, rows[0][i], want)
		}
	}
}

func TestEnsureIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.Ensure(ctx, "asha"); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendExpense(ctx, "asha", core.ExpenseEntry{Date: "2024-01-01", Category: "Other", Amount: 9.99}); err != nil {
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
		t.Fatalf("Ensure must not recreate an existing workbook, got %d entries", len(got))
	}
}

func TestAppendCreatesStoreLazily(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// No Ensure call: the first append creates the workbook implicitly.
	if err := s.AppendSaving(ctx, "ravi", core.SavingEntry{Date: "2024-02-01", Type: "FD", Amount: 250}); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListSavings(ctx, "ravi")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Amount != 250 {
		t.Fatalf("unexpected savings: %+v", got)
	}
}

func TestAppendAndListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	e := core.ExpenseEntry{
		Date:          "2024-01-15",
		Category:      "Groceries",
		Description:   "Weekly shop",
		Amount:        45.50,
		PaymentMethod: "Card",
	}
	if err := s.AppendExpense(ctx, "asha", e); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListExpenses(ctx, "asha", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0] != e {
		t.Errorf("round trip mismatch: got %+v, want %+v", got[0], e)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	for i, d := range dates {
		if err := s.AppendExpense(ctx, "asha", core.ExpenseEntry{Date: d, Category: "Other", Amount: float64(i + 1)}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListExpenses(ctx, "asha", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Date != "2024-01-03" || got[1].Date != "2024-01-02" {
		t.Errorf("expected newest-first truncation, got %+v", got)
	}
}

func TestSkipsRowsWithEmptyDate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.Ensure(ctx, "asha"); err != nil {
		t.Fatal(err)
	}

	// Plant a row with an empty first column directly in the workbook.
	path := filepath.Join(s.dir, "asha_ledger.xlsx")
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	row := []any{"", "Ghost", "should be invisible", 999.0, "Cash", ""}
	if err := f.SetSheetRow(core.TableExpenses, "A2", &row); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := s.AppendExpense(ctx, "asha", core.ExpenseEntry{Date: "2024-01-01", Category: "Other", Amount: 1}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListExpenses(ctx, "asha", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Category != "Other" {
		t.Fatalf("empty-date row must be skipped, got %+v", got)
	}

	stats, err := s.Summary(ctx, "asha")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalExpenses != 1 {
		t.Errorf("TotalExpenses = %v, want 1 (ghost row excluded)", stats.TotalExpenses)
	}
}

func TestSummaryScenarios(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.AppendExpense(ctx, "asha", core.ExpenseEntry{Date: "2024-03-01", Category: "Food & Dining", Amount: 20.0}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendExpense(ctx, "asha", core.ExpenseEntry{Date: "2024-03-02", Category: "Food & Dining", Amount: 30.0}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendSaving(ctx, "asha", core.SavingEntry{Date: "2024-03-03", Type: "RD", Amount: 100.0}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendDebt(ctx, "asha", core.DebtEntry{Date: "2024-03-04", Counterparty: "Ravi", Type: "borrowed", Amount: 10.0, Status: "pending"}); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Summary(ctx, "asha")
	if err != nil {
		t.Fatal(err)
	}
	if stats.CategoryExpenses["Food & Dining"] != 50.0 {
		t.Errorf("CategoryExpenses[Food & Dining] = %v, want 50.0", stats.CategoryExpenses["Food & Dining"])
	}
	if want := 100.0 - (50.0 + 10.0); stats.NetBalance != want {
		t.Errorf("NetBalance = %v, want %v", stats.NetBalance, want)
	}
}

func TestBadUserIdentifier(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.Ensure(ctx, "../escape")
	if !errors.Is(err, ledger.ErrStoreAccess) {
		t.Fatalf("expected ErrStoreAccess for path-traversing user, got %v", err)
	}
}

func TestCorruptWorkbookSurfacesStoreAccess(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "asha_ledger.xlsx"), []byte("not a zip"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err = s.ListExpenses(ctx, "asha", 0)
	if !errors.Is(err, ledger.ErrStoreAccess) {
		t.Fatalf("expected ErrStoreAccess for corrupt workbook, got %v", err)
	}
}
