// Package ledger defines the per-user ledger store contract. A store holds
// one workbook per user with four record tables (Expenses, Debts, Savings,
// Budgets) and a derived Summary view; backends decide how the workbook is
// persisted.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"khata/internal/core"
)

// ErrStoreAccess wraps any failure to read or write the underlying store.
var ErrStoreAccess = errors.New("store access error")

// AccessError tags err as a store-access failure while keeping the cause.
func AccessError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreAccess, op, err)
}

// Ports for ledger store backends.
type (
	// Ensurer creates a user's workbook if absent: all four record tables
	// with header rows plus the Summary placeholder. Idempotent; calling
	// it on an existing store changes nothing.
	Ensurer interface {
		Ensure(ctx context.Context, user string) error
	}

	// EntryAppender appends exactly one row to the named table, preserving
	// field order. The store is persisted atomically; a failed append
	// leaves no partial row behind. Input is stored as supplied.
	EntryAppender interface {
		AppendExpense(ctx context.Context, user string, e core.ExpenseEntry) error
		AppendDebt(ctx context.Context, user string, d core.DebtEntry) error
		AppendSaving(ctx context.Context, user string, s core.SavingEntry) error
		AppendBudget(ctx context.Context, user string, b core.BudgetEntry) error
	}

	// EntryLister returns entries newest-first. For expenses, limit
	// truncates to the most recent entries; limit <= 0 returns all.
	EntryLister interface {
		ListExpenses(ctx context.Context, user string, limit int) ([]core.ExpenseEntry, error)
		ListDebts(ctx context.Context, user string) ([]core.DebtEntry, error)
		ListSavings(ctx context.Context, user string) ([]core.SavingEntry, error)
	}

	// SummaryReader recomputes aggregate statistics from the current rows
	// on every call; there is no cached aggregate.
	SummaryReader interface {
		Summary(ctx context.Context, user string) (core.SummaryStats, error)
	}
)

// Store is the full ledger store contract.
type Store interface {
	Ensurer
	EntryAppender
	EntryLister
	SummaryReader
}
