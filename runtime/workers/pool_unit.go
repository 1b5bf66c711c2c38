package workers

import (
	"chat-saga/contract"
	"context"
	"log/slog"
)

// Ensure *PoolUnitWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*PoolUnitWorker[int])(nil)

// PoolUnitWorker drains one mailbox in order. A handler error is logged and
// the worker moves on to the next item; a panic escapes to the supervisor.
type PoolUnitWorker[T any] struct {
	name   string
	inbox  *Mailbox[T]
	handle func(ctx context.Context, item T) error
	log    *slog.Logger
}

func NewPoolUnitWorker[T any](
	name string,
	inbox *Mailbox[T],
	handle func(ctx context.Context, item T) error,
	log *slog.Logger) *PoolUnitWorker[T] {
	return &PoolUnitWorker[T]{
		name:   name,
		inbox:  inbox,
		handle: handle,
		log:    log,
	}
}

func (w *PoolUnitWorker[T]) Name() string { return w.name }

func (w *PoolUnitWorker[T]) Run(ctx context.Context) error {
	for {
		item, err := w.inbox.Next(ctx)
		if err != nil {
			w.log.Debug("Stopping worker", "name", w.name)
			return nil
		}
		w.process(ctx, item)
	}
}

func (w *PoolUnitWorker[T]) process(ctx context.Context, item T) {
	defer w.inbox.Done()
	if err := w.handle(ctx, item); err != nil {
		w.log.Error("Work item failed", "name", w.name, "error", err)
	}
}
