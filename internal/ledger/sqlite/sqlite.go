// Package sqlite stores every user's ledger in a single embedded database.
// Row identity is the autoincrement id, so append order is free and
// newest-first reads are a simple ORDER BY id DESC.
package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"khata/internal/core"
	"khata/internal/ledger"
	applog "khata/internal/log"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, ledger.AccessError("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ledger.AccessError("open sqlite database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ledger.AccessError("ping database", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, ledger.AccessError("run migrations", err)
	}

	return &Store{db: db}, nil
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure registers the user's ledger. The record tables are shared and
// already exist, so this is a single idempotent insert.
func (s *Store) Ensure(ctx context.Context, user string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledgers (username) VALUES (?) ON CONFLICT (username) DO NOTHING`, user)
	if err != nil {
		return ledger.AccessError("ensure ledger", err)
	}
	return nil
}

func (s *Store) AppendExpense(ctx context.Context, user string, e core.ExpenseEntry) error {
	if err := s.Ensure(ctx, user); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (username, date, category, description, amount, payment_method, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user, e.Date, e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes)
	if err != nil {
		return ledger.AccessError("append expense", err)
	}
	slog.DebugContext(ctx, "Expense saved",
		applog.FieldUsername, user,
		applog.FieldAmount, e.Amount,
		applog.FieldCategory, e.Category,
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpAppend)
	return nil
}

func (s *Store) AppendDebt(ctx context.Context, user string, d core.DebtEntry) error {
	if err := s.Ensure(ctx, user); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debts (username, date, counterparty, debt_type, amount, status, due_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user, d.Date, d.Counterparty, d.Type, d.Amount, d.Status, d.DueDate, d.Notes)
	if err != nil {
		return ledger.AccessError("append debt", err)
	}
	return nil
}

func (s *Store) AppendSaving(ctx context.Context, user string, sv core.SavingEntry) error {
	if err := s.Ensure(ctx, user); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO savings (username, date, saving_type, description, amount, goal, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user, sv.Date, sv.Type, sv.Description, sv.Amount, sv.Goal, sv.Notes)
	if err != nil {
		return ledger.AccessError("append saving", err)
	}
	return nil
}

func (s *Store) AppendBudget(ctx context.Context, user string, b core.BudgetEntry) error {
	if err := s.Ensure(ctx, user); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (username, month, category, budget_amount, spent_amount, remaining)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user, b.Month, b.Category, b.BudgetAmount, b.SpentAmount, b.Remaining)
	if err != nil {
		return ledger.AccessError("append budget", err)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, user string, limit int) ([]core.ExpenseEntry, error) {
	query := `SELECT date, category, description, amount, payment_method, notes
	          FROM expenses WHERE username = ? AND date <> '' ORDER BY id DESC`
	args := []any{user}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ledger.AccessError("list expenses", err)
	}
	defer rows.Close()

	var out []core.ExpenseEntry
	for rows.Next() {
		var e core.ExpenseEntry
		if err := rows.Scan(&e.Date, &e.Category, &e.Description, &e.Amount, &e.PaymentMethod, &e.Notes); err != nil {
			return nil, ledger.AccessError("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.AccessError("list expenses", err)
	}
	return out, nil
}

func (s *Store) ListDebts(ctx context.Context, user string) ([]core.DebtEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, counterparty, debt_type, amount, status, due_date, notes
		 FROM debts WHERE username = ? AND date <> '' ORDER BY id DESC`, user)
	if err != nil {
		return nil, ledger.AccessError("list debts", err)
	}
	defer rows.Close()

	var out []core.DebtEntry
	for rows.Next() {
		var d core.DebtEntry
		if err := rows.Scan(&d.Date, &d.Counterparty, &d.Type, &d.Amount, &d.Status, &d.DueDate, &d.Notes); err != nil {
			return nil, ledger.AccessError("scan debt", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.AccessError("list debts", err)
	}
	return out, nil
}

func (s *Store) ListSavings(ctx context.Context, user string) ([]core.SavingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, saving_type, description, amount, goal, notes
		 FROM savings WHERE username = ? AND date <> '' ORDER BY id DESC`, user)
	if err != nil {
		return nil, ledger.AccessError("list savings", err)
	}
	defer rows.Close()

	var out []core.SavingEntry
	for rows.Next() {
		var sv core.SavingEntry
		if err := rows.Scan(&sv.Date, &sv.Type, &sv.Description, &sv.Amount, &sv.Goal, &sv.Notes); err != nil {
			return nil, ledger.AccessError("scan saving", err)
		}
		out = append(out, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.AccessError("list savings", err)
	}
	return out, nil
}

// Summary aggregates in SQL rather than loading every row; the result is
// identical to core.ComputeSummary over the same data.
func (s *Store) Summary(ctx context.Context, user string) (core.SummaryStats, error) {
	stats := core.SummaryStats{CategoryExpenses: make(map[string]float64)}

	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE username = ? AND date <> ''`, user)
	if err := row.Scan(&stats.TotalExpenses); err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum expenses", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM debts WHERE username = ? AND date <> ''`, user)
	if err := row.Scan(&stats.TotalDebts); err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum debts", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM savings WHERE username = ? AND date <> ''`, user)
	if err := row.Scan(&stats.TotalSavings); err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum savings", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM expenses
		 WHERE username = ? AND date <> '' AND category <> ''
		 GROUP BY category`, user)
	if err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum categories", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return core.SummaryStats{}, ledger.AccessError("scan category sum", err)
		}
		stats.CategoryExpenses[category] = total
	}
	if err := rows.Err(); err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum categories", err)
	}

	stats.NetBalance = stats.TotalSavings - (stats.TotalExpenses + stats.TotalDebts)
	return stats, nil
}
