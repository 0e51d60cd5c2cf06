// Package worker replays ledger entry events onto a secondary backend.
// The mirror gives the primary store (usually a workbook on disk) a
// durable copy in a database or Google spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/ledger"
	applog "khata/internal/log"
)

// EventSource is the slice of the AMQP client the worker consumes from.
type EventSource interface {
	ConsumeEntryEvents(ctx context.Context, handler func(*amqp.EntryEvent) error) error
}

// MirrorWorker applies entry events to the mirror store. Appends for the
// same user are serialized across consumers; file-backed mirrors rewrite
// the whole workbook on append, so two concurrent applies for one user
// would lose one of them.
type MirrorWorker struct {
	source      EventSource
	mirror      ledger.Store
	concurrency int
	logger      *applog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewMirrorWorker(source EventSource, mirror ledger.Store, concurrency int, logger *applog.Logger) *MirrorWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = applog.New(applog.Config{})
	}
	return &MirrorWorker{
		source:      source,
		mirror:      mirror,
		concurrency: concurrency,
		logger:      logger.WithComponent(applog.ComponentWorker),
		users:       make(map[string]*sync.Mutex),
	}
}

func (w *MirrorWorker) userLock(user string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.users[user]
	if !ok {
		lock = &sync.Mutex{}
		w.users[user] = lock
	}
	return lock
}

// Run consumes events until the context is cancelled. The configured
// number of consumers share the queue; the broker distributes deliveries
// across them. Each event is acked only after its append succeeds, so a
// crash mid-apply requeues instead of losing it.
func (w *MirrorWorker) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		group.Go(func() error {
			return w.source.ConsumeEntryEvents(ctx, func(event *amqp.EntryEvent) error {
				return w.Apply(ctx, event)
			})
		})
	}
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Apply replays a single entry event against the mirror store.
func (w *MirrorWorker) Apply(ctx context.Context, event *amqp.EntryEvent) error {
	w.logger.InfoContext(ctx, "Mirroring entry",
		applog.FieldUsername, event.Username,
		applog.FieldTable, event.Table,
		applog.FieldOperation, applog.OpMirror)

	lock := w.userLock(event.Username)
	lock.Lock()
	defer lock.Unlock()

	switch event.Table {
	case core.TableExpenses:
		var e core.ExpenseEntry
		if err := event.DecodeEntry(&e); err != nil {
			return fmt.Errorf("decode expense: %w", err)
		}
		return w.mirror.AppendExpense(ctx, event.Username, e)
	case core.TableDebts:
		var d core.DebtEntry
		if err := event.DecodeEntry(&d); err != nil {
			return fmt.Errorf("decode debt: %w", err)
		}
		return w.mirror.AppendDebt(ctx, event.Username, d)
	case core.TableSavings:
		var sv core.SavingEntry
		if err := event.DecodeEntry(&sv); err != nil {
			return fmt.Errorf("decode saving: %w", err)
		}
		return w.mirror.AppendSaving(ctx, event.Username, sv)
	case core.TableBudgets:
		var b core.BudgetEntry
		if err := event.DecodeEntry(&b); err != nil {
			return fmt.Errorf("decode budget: %w", err)
		}
		return w.mirror.AppendBudget(ctx, event.Username, b)
	default:
		return fmt.Errorf("unknown table %q", event.Table)
	}
}
