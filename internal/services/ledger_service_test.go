package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/ledger/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.EntryEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishEntryEvent(_ context.Context, event *amqp.EntryEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestLedgerService_AddExpensePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(), pub, nil)
	ctx := context.Background()

	entry := core.ExpenseEntry{Date: "2024-01-15", Category: "Groceries", Amount: 45.50}
	if err := svc.AddExpense(ctx, "alice", entry); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	event := pub.events[0]
	if event.Username != "alice" || event.Table != core.TableExpenses {
		t.Errorf("event envelope = %s/%s, want alice/%s", event.Username, event.Table, core.TableExpenses)
	}
	var decoded core.ExpenseEntry
	if err := event.DecodeEntry(&decoded); err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if decoded != entry {
		t.Errorf("decoded entry = %+v, want %+v", decoded, entry)
	}

	expenses, err := svc.Expenses(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("Expenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("stored %d expenses, want 1", len(expenses))
	}
}

func TestLedgerService_PublishFailureDoesNotFailAppend(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(memory.New(), pub, nil)
	ctx := context.Background()

	if err := svc.AddDebt(ctx, "bob", core.DebtEntry{Date: "2024-02-01", Amount: 100}); err != nil {
		t.Fatalf("AddDebt should succeed despite publish failure: %v", err)
	}

	debts, err := svc.Debts(ctx, "bob")
	if err != nil {
		t.Fatalf("Debts: %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("stored %d debts, want 1", len(debts))
	}
}

func TestLedgerService_NilPublisher(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil, nil)
	ctx := context.Background()

	if err := svc.AddSaving(ctx, "carol", core.SavingEntry{Date: "2024-03-01", Amount: 500}); err != nil {
		t.Fatalf("AddSaving: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLedgerService_ConcurrentAppendsSameUser(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil, nil)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.AddExpense(ctx, "dave", core.ExpenseEntry{Date: "2024-04-01", Amount: 1})
			if err != nil {
				t.Errorf("AddExpense: %v", err)
			}
		}()
	}
	wg.Wait()

	expenses, err := svc.Expenses(ctx, "dave", 0)
	if err != nil {
		t.Fatalf("Expenses: %v", err)
	}
	if len(expenses) != n {
		t.Errorf("stored %d expenses, want %d", len(expenses), n)
	}

	stats, err := svc.Summary(ctx, "dave")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if stats.TotalExpenses != float64(n) {
		t.Errorf("TotalExpenses = %v, want %v", stats.TotalExpenses, float64(n))
	}
}

func TestLedgerService_CloseClosesPublisher(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(), pub, nil)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("Close should close the publisher")
	}
}
