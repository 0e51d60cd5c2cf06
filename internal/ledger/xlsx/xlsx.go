// Package xlsx persists one spreadsheet workbook per user. Each workbook
// carries the Summary sheet plus the four record tables, with a styled
// header row; data rows follow in append order.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"khata/internal/core"
	"khata/internal/ledger"
	applog "khata/internal/log"
)

// Store reads the whole workbook into memory, mutates it and writes it
// back in full on every operation. The replacement is atomic (temp file +
// rename); callers serialize writes per user.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ledger.AccessError("create data directory", err)
	}
	return &Store{dir: dir}, nil
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) path(user string) (string, error) {
	if user == "" || strings.ContainsAny(user, `/\`) {
		return "", ledger.AccessError("resolve workbook", fmt.Errorf("bad user identifier %q", user))
	}
	return filepath.Join(s.dir, user+"_ledger.xlsx"), nil
}

// Ensure creates the workbook with all five sheets if absent. Idempotent:
// an existing workbook is left untouched.
func (s *Store) Ensure(ctx context.Context, user string) error {
	path, err := s.path(user)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return ledger.AccessError("stat workbook", err)
	}

	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := saveAtomic(f, path); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Created ledger workbook",
		applog.FieldUsername, user,
		applog.FieldPath, path,
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpEnsure)
	return nil
}

// newWorkbook builds the five-sheet workbook with formatted headers.
func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()

	// The default sheet becomes Summary so it sits at index 0.
	if err := f.SetSheetName("Sheet1", core.TableSummary); err != nil {
		f.Close()
		return nil, ledger.AccessError("create summary sheet", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		f.Close()
		return nil, ledger.AccessError("create title style", err)
	}
	f.SetCellValue(core.TableSummary, "A1", "Expense Tracker Summary")
	f.SetCellStyle(core.TableSummary, "A1", "A1", titleStyle)
	f.SetCellValue(core.TableSummary, "A3", "Total Expenses:")
	f.SetCellValue(core.TableSummary, "A4", "Total Debts:")
	f.SetCellValue(core.TableSummary, "A5", "Total Savings:")
	f.SetCellValue(core.TableSummary, "A6", "Net Balance:")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, ledger.AccessError("create header style", err)
	}

	tables := []struct {
		name   string
		header []string
	}{
		{core.TableExpenses, core.ExpenseHeader},
		{core.TableDebts, core.DebtHeader},
		{core.TableSavings, core.SavingHeader},
		{core.TableBudgets, core.BudgetHeader},
	}
	for _, tbl := range tables {
		if _, err := f.NewSheet(tbl.name); err != nil {
			f.Close()
			return nil, ledger.AccessError("create sheet "+tbl.name, err)
		}
		row := make([]any, len(tbl.header))
		for i, h := range tbl.header {
			row[i] = h
		}
		if err := f.SetSheetRow(tbl.name, "A1", &row); err != nil {
			f.Close()
			return nil, ledger.AccessError("write header for "+tbl.name, err)
		}
		last, err := excelize.CoordinatesToCellName(len(tbl.header), 1)
		if err != nil {
			f.Close()
			return nil, ledger.AccessError("header range for "+tbl.name, err)
		}
		f.SetCellStyle(tbl.name, "A1", last, headerStyle)
	}

	return f, nil
}

// open loads the user's workbook, creating it first when absent.
func (s *Store) open(ctx context.Context, user string) (*excelize.File, string, error) {
	path, err := s.path(user)
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.Ensure(ctx, user); err != nil {
			return nil, "", err
		}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", ledger.AccessError("open workbook", err)
	}
	return f, path, nil
}

func saveAtomic(f *excelize.File, path string) error {
	tmp := path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return ledger.AccessError("save workbook", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ledger.AccessError("replace workbook", err)
	}
	return nil
}

// appendRow appends one row after the last occupied row of the table and
// persists the workbook.
func (s *Store) appendRow(ctx context.Context, user, table string, row []any) error {
	f, path, err := s.open(ctx, user)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(table)
	if err != nil {
		return ledger.AccessError("read table "+table, err)
	}
	next := len(rows) + 1
	if err := f.SetSheetRow(table, "A"+strconv.Itoa(next), &row); err != nil {
		return ledger.AccessError("append row to "+table, err)
	}
	if err := saveAtomic(f, path); err != nil {
		return err
	}

	slog.DebugContext(ctx, "Appended ledger row",
		applog.FieldUsername, user,
		applog.FieldTable, table,
		applog.FieldRowRef, next,
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpAppend)
	return nil
}

func (s *Store) AppendExpense(ctx context.Context, user string, e core.ExpenseEntry) error {
	return s.appendRow(ctx, user, core.TableExpenses,
		[]any{e.Date, e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes})
}

func (s *Store) AppendDebt(ctx context.Context, user string, d core.DebtEntry) error {
	return s.appendRow(ctx, user, core.TableDebts,
		[]any{d.Date, d.Counterparty, d.Type, d.Amount, d.Status, d.DueDate, d.Notes})
}

func (s *Store) AppendSaving(ctx context.Context, user string, sv core.SavingEntry) error {
	return s.appendRow(ctx, user, core.TableSavings,
		[]any{sv.Date, sv.Type, sv.Description, sv.Amount, sv.Goal, sv.Notes})
}

func (s *Store) AppendBudget(ctx context.Context, user string, b core.BudgetEntry) error {
	return s.appendRow(ctx, user, core.TableBudgets,
		[]any{b.Month, b.Category, b.BudgetAmount, b.SpentAmount, b.Remaining})
}

// cell returns column i of a row, tolerating the trailing-cell trimming
// excelize applies to short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseAmountCell(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// dataRows returns the table's rows minus the header. Rows with an empty
// first column are skipped; that is the sole presence marker.
func dataRows(f *excelize.File, table string) ([][]string, error) {
	rows, err := f.GetRows(table)
	if err != nil {
		return nil, ledger.AccessError("read table "+table, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if cell(row, 0) == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) readExpenses(ctx context.Context, f *excelize.File) ([]core.ExpenseEntry, error) {
	rows, err := dataRows(f, core.TableExpenses)
	if err != nil {
		return nil, err
	}
	entries := make([]core.ExpenseEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, core.ExpenseEntry{
			Date:          cell(row, 0),
			Category:      cell(row, 1),
			Description:   cell(row, 2),
			Amount:        parseAmountCell(cell(row, 3)),
			PaymentMethod: cell(row, 4),
			Notes:         cell(row, 5),
		})
	}
	return entries, nil
}

func (s *Store) readDebts(ctx context.Context, f *excelize.File) ([]core.DebtEntry, error) {
	rows, err := dataRows(f, core.TableDebts)
	if err != nil {
		return nil, err
	}
	entries := make([]core.DebtEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, core.DebtEntry{
			Date:         cell(row, 0),
			Counterparty: cell(row, 1),
			Type:         cell(row, 2),
			Amount:       parseAmountCell(cell(row, 3)),
			Status:       cell(row, 4),
			DueDate:      cell(row, 5),
			Notes:        cell(row, 6),
		})
	}
	return entries, nil
}

func (s *Store) readSavings(ctx context.Context, f *excelize.File) ([]core.SavingEntry, error) {
	rows, err := dataRows(f, core.TableSavings)
	if err != nil {
		return nil, err
	}
	entries := make([]core.SavingEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, core.SavingEntry{
			Date:        cell(row, 0),
			Type:        cell(row, 1),
			Description: cell(row, 2),
			Amount:      parseAmountCell(cell(row, 3)),
			Goal:        cell(row, 4),
			Notes:       cell(row, 5),
		})
	}
	return entries, nil
}

func (s *Store) ListExpenses(ctx context.Context, user string, limit int) ([]core.ExpenseEntry, error) {
	f, _, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := s.readExpenses(ctx, f)
	if err != nil {
		return nil, err
	}
	return core.ReverseExpenses(entries, limit), nil
}

func (s *Store) ListDebts(ctx context.Context, user string) ([]core.DebtEntry, error) {
	f, _, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := s.readDebts(ctx, f)
	if err != nil {
		return nil, err
	}
	return core.ReverseDebts(entries), nil
}

func (s *Store) ListSavings(ctx context.Context, user string) ([]core.SavingEntry, error) {
	f, _, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := s.readSavings(ctx, f)
	if err != nil {
		return nil, err
	}
	return core.ReverseSavings(entries), nil
}

func (s *Store) Summary(ctx context.Context, user string) (core.SummaryStats, error) {
	f, _, err := s.open(ctx, user)
	if err != nil {
		return core.SummaryStats{}, err
	}
	defer f.Close()

	expenses, err := s.readExpenses(ctx, f)
	if err != nil {
		return core.SummaryStats{}, err
	}
	debts, err := s.readDebts(ctx, f)
	if err != nil {
		return core.SummaryStats{}, err
	}
	savings, err := s.readSavings(ctx, f)
	if err != nil {
		return core.SummaryStats{}, err
	}
	return core.ComputeSummary(expenses, debts, savings), nil
}
