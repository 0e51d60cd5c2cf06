// Package postgres backs the ledger store with a shared Postgres database.
// Schema mirrors the sqlite backend; placeholders and DDL differ.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"khata/internal/core"
	"khata/internal/ledger"
)

type Store struct {
	db *sql.DB
}

// New connects and creates the schema if missing. The schema is small
// enough that idempotent DDL beats carrying a separate migration set.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, ledger.AccessError("open postgres database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ledger.AccessError("ping database", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ledgers (
			username   TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id             BIGSERIAL PRIMARY KEY,
			username       TEXT NOT NULL,
			date           TEXT NOT NULL,
			category       TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			amount         DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL DEFAULT '',
			notes          TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS debts (
			id           BIGSERIAL PRIMARY KEY,
			username     TEXT NOT NULL,
			date         TEXT NOT NULL,
			counterparty TEXT NOT NULL DEFAULT '',
			debt_type    TEXT NOT NULL DEFAULT '',
			amount       DOUBLE PRECISION NOT NULL DEFAULT 0,
			status       TEXT NOT NULL DEFAULT '',
			due_date     TEXT NOT NULL DEFAULT '',
			notes        TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS savings (
			id          BIGSERIAL PRIMARY KEY,
			username    TEXT NOT NULL,
			date        TEXT NOT NULL,
			saving_type TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			amount      DOUBLE PRECISION NOT NULL DEFAULT 0,
			goal        TEXT NOT NULL DEFAULT '',
			notes       TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL,
			month         TEXT NOT NULL,
			category      TEXT NOT NULL DEFAULT '',
			budget_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			spent_amount  DOUBLE PRECISION NOT NULL DEFAULT 0,
			remaining     DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_username ON expenses (username)`,
		`CREATE INDEX IF NOT EXISTS idx_debts_username ON debts (username)`,
		`CREATE INDEX IF NOT EXISTS idx_savings_username ON savings (username)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_username ON budgets (username)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return ledger.AccessError("create schema", err)
		}
	}
	return nil
}

func (s *Store) Ensure(ctx context.Context, user string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledgers (username) VALUES ($1) ON CONFLICT (username) DO NOTHING`, user)
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user, e.Date, e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes)
	if err != nil {
		return ledger.AccessError("append expense", err)
	}
	return nil
}

func (s *Store) AppendDebt(ctx context.Context, user string, d core.DebtEntry) error {
	if err := s.Ensure(ctx, user); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debts (username, date, counterparty, debt_type, amount, status, due_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
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
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user, b.Month, b.Category, b.BudgetAmount, b.SpentAmount, b.Remaining)
	if err != nil {
		return ledger.AccessError("append budget", err)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, user string, limit int) ([]core.ExpenseEntry, error) {
	query := `SELECT date, category, description, amount, payment_method, notes
	          FROM expenses WHERE username = $1 AND date <> '' ORDER BY id DESC`
	args := []any{user}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
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
		 FROM debts WHERE username = $1 AND date <> '' ORDER BY id DESC`, user)
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
		 FROM savings WHERE username = $1 AND date <> '' ORDER BY id DESC`, user)
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

func (s *Store) Summary(ctx context.Context, user string) (core.SummaryStats, error) {
	stats := core.SummaryStats{CategoryExpenses: make(map[string]float64)}

	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE username = $1 AND date <> ''`, user)
	if err := row.Scan(&stats.TotalExpenses); err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum expenses", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM debts WHERE username = $1 AND date <> ''`, user)
	if err := row.Scan(&stats.TotalDebts); err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum debts", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM savings WHERE username = $1 AND date <> ''`, user)
	if err := row.Scan(&stats.TotalSavings); err != nil {
		return core.SummaryStats{}, ledger.AccessError("sum savings", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM expenses
		 WHERE username = $1 AND date <> '' AND category <> ''
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
