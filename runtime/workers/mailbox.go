package workers

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker counts the work items pushed into mailboxes and not yet done.
// Items pushed while handling another item are counted before that one is
// released, so a zero count means the whole cascade is over.
type Tracker struct {
	pending atomic.Int64
}

func (t *Tracker) Pending() int64 { return t.pending.Load() }

func (t *Tracker) add() { t.pending.Add(1) }

func (t *Tracker) done() { t.pending.Add(-1) }

// Mailbox is an unbounded FIFO queue. Push never blocks so a worker can feed
// another worker that is feeding it back.
type Mailbox[T any] struct {
	mu      sync.Mutex
	items   []T
	notify  chan struct{}
	tracker *Tracker
}

func NewMailbox[T any](tracker *Tracker) *Mailbox[T] {
	if tracker == nil {
		tracker = &Tracker{}
	}
	return &Mailbox[T]{notify: make(chan struct{}, 1), tracker: tracker}
}

func (m *Mailbox[T]) Push(item T) {
	m.tracker.add()
	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an item is available or ctx is done. Every item returned
// must be released with Done once handled.
func (m *Mailbox[T]) Next(ctx context.Context) (T, error) {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			item := m.items[0]
			var zero T
			m.items[0] = zero
			m.items = m.items[1:]
			m.mu.Unlock()
			return item, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-m.notify:
		}
	}
}

func (m *Mailbox[T]) Done() { m.tracker.done() }

func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
