// Package services orchestrates ledger operations: store writes are
// serialized per user and each append is announced on AMQP for the
// mirror worker.
package services

import (
	"context"
	"fmt"
	"sync"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/ledger"
	applog "khata/internal/log"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, event *amqp.EntryEvent) error
	Close() error
}

// LedgerService wraps a ledger store. Writes to the same user's ledger
// are serialized; file backends rewrite the whole workbook on append, so
// two concurrent appends for one user would lose one of them.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
	logger    *applog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewLedgerService(store ledger.Store, publisher EventPublisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.New(applog.Config{})
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentService),
		users:     make(map[string]*sync.Mutex),
	}
}

func (s *LedgerService) userLock(user string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.users[user]
	if !ok {
		lock = &sync.Mutex{}
		s.users[user] = lock
	}
	return lock
}

// Ensure provisions the user's ledger.
func (s *LedgerService) Ensure(ctx context.Context, user string) error {
	lock := s.userLock(user)
	lock.Lock()
	defer lock.Unlock()
	return s.store.Ensure(ctx, user)
}

// AddExpense appends an expense and publishes the entry event.
func (s *LedgerService) AddExpense(ctx context.Context, user string, e core.ExpenseEntry) error {
	lock := s.userLock(user)
	lock.Lock()
	err := s.store.AppendExpense(ctx, user, e)
	lock.Unlock()
	if err != nil {
		return fmt.Errorf("append expense: %w", err)
	}
	s.publishEvent(ctx, user, core.TableExpenses, e)
	return nil
}

// AddDebt appends a debt and publishes the entry event.
func (s *LedgerService) AddDebt(ctx context.Context, user string, d core.DebtEntry) error {
	lock := s.userLock(user)
	lock.Lock()
	err := s.store.AppendDebt(ctx, user, d)
	lock.Unlock()
	if err != nil {
		return fmt.Errorf("append debt: %w", err)
	}
	s.publishEvent(ctx, user, core.TableDebts, d)
	return nil
}

// AddSaving appends a saving and publishes the entry event.
func (s *LedgerService) AddSaving(ctx context.Context, user string, sv core.SavingEntry) error {
	lock := s.userLock(user)
	lock.Lock()
	err := s.store.AppendSaving(ctx, user, sv)
	lock.Unlock()
	if err != nil {
		return fmt.Errorf("append saving: %w", err)
	}
	s.publishEvent(ctx, user, core.TableSavings, sv)
	return nil
}

// AddBudget appends a budget row and publishes the entry event.
func (s *LedgerService) AddBudget(ctx context.Context, user string, b core.BudgetEntry) error {
	lock := s.userLock(user)
	lock.Lock()
	err := s.store.AppendBudget(ctx, user, b)
	lock.Unlock()
	if err != nil {
		return fmt.Errorf("append budget: %w", err)
	}
	s.publishEvent(ctx, user, core.TableBudgets, b)
	return nil
}

// Expenses lists the user's expenses newest first, optionally limited.
func (s *LedgerService) Expenses(ctx context.Context, user string, limit int) ([]core.ExpenseEntry, error) {
	return s.store.ListExpenses(ctx, user, limit)
}

// Debts lists the user's debts newest first.
func (s *LedgerService) Debts(ctx context.Context, user string) ([]core.DebtEntry, error) {
	return s.store.ListDebts(ctx, user)
}

// Savings lists the user's savings newest first.
func (s *LedgerService) Savings(ctx context.Context, user string) ([]core.SavingEntry, error) {
	return s.store.ListSavings(ctx, user)
}

// Summary recomputes the user's totals from the current ledger contents.
func (s *LedgerService) Summary(ctx context.Context, user string) (core.SummaryStats, error) {
	return s.store.Summary(ctx, user)
}

// publishEvent is best effort. The append already succeeded; a broker
// outage must not fail the request.
func (s *LedgerService) publishEvent(ctx context.Context, user, table string, entry any) {
	if s.publisher == nil {
		return
	}
	event, err := amqp.NewEntryEvent(user, table, entry)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build entry event",
			applog.FieldUsername, user, applog.FieldTable, table, applog.FieldError, err)
		return
	}
	if err := s.publisher.PublishEntryEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish entry event",
			applog.FieldUsername, user, applog.FieldTable, table, applog.FieldError, err)
	}
}

// Close releases the AMQP connection if one was configured.
func (s *LedgerService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
