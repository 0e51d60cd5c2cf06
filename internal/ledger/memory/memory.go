package memory

import (
	"context"
	"sync"

	"khata/internal/core"
	"khata/internal/ledger"
)

// Store keeps every user's workbook in memory, in append order. It backs
// tests and local development; semantics mirror the file-backed stores.
type Store struct {
	mu    sync.Mutex
	users map[string]*workbook
}

type workbook struct {
	expenses []core.ExpenseEntry
	debts    []core.DebtEntry
	savings  []core.SavingEntry
	budgets  []core.BudgetEntry
}

func New() *Store {
	return &Store{users: make(map[string]*workbook)}
}

var _ ledger.Store = (*Store)(nil)

// Ensure creates the workbook if absent. Idempotent.
func (s *Store) Ensure(_ context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked(user)
	return nil
}

func (s *Store) ensureLocked(user string) *workbook {
	wb, ok := s.users[user]
	if !ok {
		wb = &workbook{}
		s.users[user] = wb
	}
	return wb
}

func (s *Store) AppendExpense(_ context.Context, user string, e core.ExpenseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	wb.expenses = append(wb.expenses, e)
	return nil
}

func (s *Store) AppendDebt(_ context.Context, user string, d core.DebtEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	wb.debts = append(wb.debts, d)
	return nil
}

func (s *Store) AppendSaving(_ context.Context, user string, sv core.SavingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	wb.savings = append(wb.savings, sv)
	return nil
}

func (s *Store) AppendBudget(_ context.Context, user string, b core.BudgetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	wb.budgets = append(wb.budgets, b)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, user string, limit int) ([]core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	present := make([]core.ExpenseEntry, 0, len(wb.expenses))
	for _, e := range wb.expenses {
		if e.Present() {
			present = append(present, e)
		}
	}
	return core.ReverseExpenses(present, limit), nil
}

func (s *Store) ListDebts(_ context.Context, user string) ([]core.DebtEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	present := make([]core.DebtEntry, 0, len(wb.debts))
	for _, d := range wb.debts {
		if d.Present() {
			present = append(present, d)
		}
	}
	return core.ReverseDebts(present), nil
}

func (s *Store) ListSavings(_ context.Context, user string) ([]core.SavingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	present := make([]core.SavingEntry, 0, len(wb.savings))
	for _, sv := range wb.savings {
		if sv.Present() {
			present = append(present, sv)
		}
	}
	return core.ReverseSavings(present), nil
}

func (s *Store) Summary(_ context.Context, user string) (core.SummaryStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb := s.ensureLocked(user)
	return core.ComputeSummary(wb.expenses, wb.debts, wb.savings), nil
}
