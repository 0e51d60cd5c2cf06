package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/ledger/memory"
)

type staticSource struct {
	events []*amqp.EntryEvent
}

func (s *staticSource) ConsumeEntryEvents(ctx context.Context, handler func(*amqp.EntryEvent) error) error {
	for _, event := range s.events {
		if err := handler(event); err != nil {
			return err
		}
	}
	return context.Canceled
}

func mustEvent(t *testing.T, user, table string, entry any) *amqp.EntryEvent {
	t.Helper()
	event, err := amqp.NewEntryEvent(user, table, entry)
	if err != nil {
		t.Fatalf("NewEntryEvent: %v", err)
	}
	return event
}

func TestMirrorWorker_AppliesAllTables(t *testing.T) {
	mirror := memory.New()
	source := &staticSource{events: []*amqp.EntryEvent{
		mustEvent(t, "alice", core.TableExpenses, core.ExpenseEntry{Date: "2024-01-15", Category: "Groceries", Amount: 45.50}),
		mustEvent(t, "alice", core.TableDebts, core.DebtEntry{Date: "2024-01-16", Counterparty: "Bank", Amount: 100}),
		mustEvent(t, "alice", core.TableSavings, core.SavingEntry{Date: "2024-01-17", Type: "FD", Amount: 500}),
		mustEvent(t, "alice", core.TableBudgets, core.BudgetEntry{Month: "2024-01", Category: "Groceries", BudgetAmount: 200}),
	}}
	w := NewMirrorWorker(source, mirror, 2, nil)

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ctx := context.Background()
	expenses, err := mirror.ListExpenses(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Amount != 45.50 {
		t.Errorf("mirrored expenses = %+v", expenses)
	}
	debts, err := mirror.ListDebts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDebts: %v", err)
	}
	if len(debts) != 1 || debts[0].Counterparty != "Bank" {
		t.Errorf("mirrored debts = %+v", debts)
	}
	savings, err := mirror.ListSavings(ctx, "alice")
	if err != nil {
		t.Fatalf("ListSavings: %v", err)
	}
	if len(savings) != 1 || savings[0].Amount != 500 {
		t.Errorf("mirrored savings = %+v", savings)
	}
}

// overlapStore detects two appends for the same user running at once.
// File-backed mirrors read-modify-write the whole workbook, so an
// overlap there drops a row.
type overlapStore struct {
	*memory.Store

	inFlight int32
	overlaps int32
}

func (s *overlapStore) AppendExpense(ctx context.Context, user string, e core.ExpenseEntry) error {
	if atomic.AddInt32(&s.inFlight, 1) > 1 {
		atomic.AddInt32(&s.overlaps, 1)
	}
	time.Sleep(time.Millisecond)
	err := s.Store.AppendExpense(ctx, user, e)
	atomic.AddInt32(&s.inFlight, -1)
	return err
}

func TestMirrorWorker_SerializesAppendsPerUser(t *testing.T) {
	mirror := &overlapStore{Store: memory.New()}
	w := NewMirrorWorker(nil, mirror, 4, nil)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		event := mustEvent(t, "alice", core.TableExpenses,
			core.ExpenseEntry{Date: "2024-01-15", Category: "Groceries", Amount: float64(i)})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Apply(context.Background(), event); err != nil {
				t.Errorf("Apply: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&mirror.overlaps); got != 0 {
		t.Errorf("observed %d concurrent appends for one user, want 0", got)
	}
	expenses, err := mirror.ListExpenses(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != n {
		t.Errorf("mirrored %d expenses, want %d", len(expenses), n)
	}
}

func TestMirrorWorker_UnknownTable(t *testing.T) {
	w := NewMirrorWorker(nil, memory.New(), 1, nil)
	event := mustEvent(t, "bob", "Nonsense", core.ExpenseEntry{Date: "2024-01-01"})

	if err := w.Apply(context.Background(), event); err == nil {
		t.Error("Apply should fail for an unknown table")
	}
}

func TestMirrorWorker_BadPayload(t *testing.T) {
	w := NewMirrorWorker(nil, memory.New(), 1, nil)
	event := &amqp.EntryEvent{
		Username: "bob",
		Table:    core.TableExpenses,
		Entry:    []byte(`{"amount": "not a number"}`),
	}

	if err := w.Apply(context.Background(), event); err == nil {
		t.Error("Apply should fail for an undecodable payload")
	}
}
