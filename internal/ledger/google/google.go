// Package google backs the ledger store with one Google spreadsheet per
// user, created on demand through the Sheets API. A local JSON registry
// keeps the username to spreadsheet ID mapping.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"khata/internal/core"
	"khata/internal/ledger"
)

type Store struct {
	svc *gsheet.Service
	reg *registry
}

var _ ledger.Store = (*Store)(nil)

// NewFromEnv creates a Sheets-backed store using service account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, registryPath string) (*Store, error) {
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Store{svc: svc, reg: newRegistry(registryPath)}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Ensure creates the user's spreadsheet if the registry has no entry yet.
func (s *Store) Ensure(ctx context.Context, user string) error {
	_, err := s.spreadsheetFor(ctx, user)
	return err
}

func (s *Store) spreadsheetFor(ctx context.Context, user string) (string, error) {
	id, err := s.reg.Lookup(user)
	if err != nil {
		return "", ledger.AccessError("lookup spreadsheet", err)
	}
	if id != "" {
		return id, nil
	}

	sheetNames := []string{
		core.TableSummary, core.TableExpenses, core.TableDebts,
		core.TableSavings, core.TableBudgets,
	}
	req := &gsheet.Spreadsheet{
		Properties: &gsheet.SpreadsheetProperties{
			Title: fmt.Sprintf("Expense Tracker - %s", user),
		},
	}
	for _, name := range sheetNames {
		req.Sheets = append(req.Sheets, &gsheet.Sheet{
			Properties: &gsheet.SheetProperties{Title: name},
		})
	}
	created, err := s.svc.Spreadsheets.Create(req).Context(ctx).Do()
	if err != nil {
		return "", ledger.AccessError("create spreadsheet", err)
	}
	id = created.SpreadsheetId

	if err := s.writeScaffold(ctx, id); err != nil {
		return "", err
	}

	recorded, err := s.reg.Record(user, id)
	if err != nil {
		return "", ledger.AccessError("record spreadsheet", err)
	}
	return recorded, nil
}

// writeScaffold fills the summary labels and the header row of each data
// sheet of a freshly created spreadsheet.
func (s *Store) writeScaffold(ctx context.Context, spreadsheetID string) error {
	summary := &gsheet.ValueRange{Values: [][]any{
		{"Expense Tracker Summary"},
		{},
		{"Total Expenses:"},
		{"Total Debts:"},
		{"Total Savings:"},
		{"Net Balance:"},
	}}
	rng := fmt.Sprintf("%s!A1:A6", core.TableSummary)
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, summary).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return ledger.AccessError("write summary labels", err)
	}

	headers := map[string][]string{
		core.TableExpenses: core.ExpenseHeader,
		core.TableDebts:    core.DebtHeader,
		core.TableSavings:  core.SavingHeader,
		core.TableBudgets:  core.BudgetHeader,
	}
	for sheet, header := range headers {
		row := make([]any, len(header))
		for i, h := range header {
			row[i] = h
		}
		vr := &gsheet.ValueRange{Values: [][]any{row}}
		rng := fmt.Sprintf("%s!A1", sheet)
		_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return ledger.AccessError("write header row", err)
		}
	}
	return nil
}

// appendRow places values on the first row after the current extent of the
// sheet. Values.Get on A:A gives the extent; Values.Update writes exactly
// where we want, unlike Values.Append which guesses the table range.
func (s *Store) appendRow(ctx context.Context, spreadsheetID, sheet string, values []any) error {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return ledger.AccessError("get sheet dimensions", err)
	}
	nextRow := len(resp.Values) + 1
	target := fmt.Sprintf("%s!A%d", sheet, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err = s.svc.Spreadsheets.Values.Update(spreadsheetID, target, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return ledger.AccessError("append row", err)
	}
	return nil
}

func (s *Store) AppendExpense(ctx context.Context, user string, e core.ExpenseEntry) error {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return err
	}
	return s.appendRow(ctx, id, core.TableExpenses,
		[]any{e.Date, e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes})
}

func (s *Store) AppendDebt(ctx context.Context, user string, d core.DebtEntry) error {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return err
	}
	return s.appendRow(ctx, id, core.TableDebts,
		[]any{d.Date, d.Counterparty, d.Type, d.Amount, d.Status, d.DueDate, d.Notes})
}

func (s *Store) AppendSaving(ctx context.Context, user string, sv core.SavingEntry) error {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return err
	}
	return s.appendRow(ctx, id, core.TableSavings,
		[]any{sv.Date, sv.Type, sv.Description, sv.Amount, sv.Goal, sv.Notes})
}

func (s *Store) AppendBudget(ctx context.Context, user string, b core.BudgetEntry) error {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return err
	}
	return s.appendRow(ctx, id, core.TableBudgets,
		[]any{b.Month, b.Category, b.BudgetAmount, b.SpentAmount, b.Remaining})
}

// readRows returns the data rows of a sheet in stored order, header
// excluded and rows with an empty first column skipped.
func (s *Store) readRows(ctx context.Context, spreadsheetID, sheet string) ([][]string, error) {
	rng := fmt.Sprintf("%s!A2:H", sheet)
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, ledger.AccessError("read sheet", err)
	}
	var out [][]string
	for _, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) == 0 || cols[0] == "" {
			continue
		}
		out = append(out, cols)
	}
	return out, nil
}

func (s *Store) readExpenses(ctx context.Context, spreadsheetID string) ([]core.ExpenseEntry, error) {
	rows, err := s.readRows(ctx, spreadsheetID, core.TableExpenses)
	if err != nil {
		return nil, err
	}
	out := make([]core.ExpenseEntry, 0, len(rows))
	for _, cols := range rows {
		out = append(out, core.ExpenseEntry{
			Date:          col(cols, 0),
			Category:      col(cols, 1),
			Description:   col(cols, 2),
			Amount:        parseAmount(col(cols, 3)),
			PaymentMethod: col(cols, 4),
			Notes:         col(cols, 5),
		})
	}
	return out, nil
}

func (s *Store) readDebts(ctx context.Context, spreadsheetID string) ([]core.DebtEntry, error) {
	rows, err := s.readRows(ctx, spreadsheetID, core.TableDebts)
	if err != nil {
		return nil, err
	}
	out := make([]core.DebtEntry, 0, len(rows))
	for _, cols := range rows {
		out = append(out, core.DebtEntry{
			Date:         col(cols, 0),
			Counterparty: col(cols, 1),
			Type:         col(cols, 2),
			Amount:       parseAmount(col(cols, 3)),
			Status:       col(cols, 4),
			DueDate:      col(cols, 5),
			Notes:        col(cols, 6),
		})
	}
	return out, nil
}

func (s *Store) readSavings(ctx context.Context, spreadsheetID string) ([]core.SavingEntry, error) {
	rows, err := s.readRows(ctx, spreadsheetID, core.TableSavings)
	if err != nil {
		return nil, err
	}
	out := make([]core.SavingEntry, 0, len(rows))
	for _, cols := range rows {
		out = append(out, core.SavingEntry{
			Date:        col(cols, 0),
			Type:        col(cols, 1),
			Description: col(cols, 2),
			Amount:      parseAmount(col(cols, 3)),
			Goal:        col(cols, 4),
			Notes:       col(cols, 5),
		})
	}
	return out, nil
}

func (s *Store) ListExpenses(ctx context.Context, user string, limit int) ([]core.ExpenseEntry, error) {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return nil, err
	}
	entries, err := s.readExpenses(ctx, id)
	if err != nil {
		return nil, err
	}
	return core.ReverseExpenses(entries, limit), nil
}

func (s *Store) ListDebts(ctx context.Context, user string) ([]core.DebtEntry, error) {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return nil, err
	}
	entries, err := s.readDebts(ctx, id)
	if err != nil {
		return nil, err
	}
	return core.ReverseDebts(entries), nil
}

func (s *Store) ListSavings(ctx context.Context, user string) ([]core.SavingEntry, error) {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return nil, err
	}
	entries, err := s.readSavings(ctx, id)
	if err != nil {
		return nil, err
	}
	return core.ReverseSavings(entries), nil
}

func (s *Store) Summary(ctx context.Context, user string) (core.SummaryStats, error) {
	id, err := s.spreadsheetFor(ctx, user)
	if err != nil {
		return core.SummaryStats{}, err
	}
	expenses, err := s.readExpenses(ctx, id)
	if err != nil {
		return core.SummaryStats{}, err
	}
	debts, err := s.readDebts(ctx, id)
	if err != nil {
		return core.SummaryStats{}, err
	}
	savings, err := s.readSavings(ctx, id)
	if err != nil {
		return core.SummaryStats{}, err
	}
	return core.ComputeSummary(expenses, debts, savings), nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func col(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}

// parseAmount tolerates decimal commas and anything Sheets hands back for
// a numeric cell. Unparseable values count as zero, same as the other
// read paths.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
