package workers

import (
	"chat-saga/contract"
	"chat-saga/domain/event"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout hands every appended record, in append order, to the permanent
// sinks and then to the subscribers whose filter accepts it.
//
// Permanent sinks are the internal routers: they only enqueue and must not
// fail. A subscriber gets sinkTimeout to consume a record; a slow or failing
// subscriber is logged and skipped, never retried.
type EventFanout struct {
	log         *slog.Logger
	records     *Mailbox[event.Record]
	sinks       []contract.EventSink
	registry    contract.IRegistry
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, sinks []contract.EventSink, registry contract.IRegistry,
	records *Mailbox[event.Record], sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		records:     records,
		sinks:       sinks,
		registry:    registry,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Name() string { return "event_fanout" }

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		record, err := w.records.Next(ctx)
		if err != nil {
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
		w.release(ctx, record)
	}
}

func (w *EventFanout) release(ctx context.Context, record event.Record) {
	defer w.records.Done()
	w.Fanout(ctx, record)
}

// Fanout delivers one record to every sink.
func (w *EventFanout) Fanout(ctx context.Context, record event.Record) {
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, record); err != nil {
			w.log.Error("Internal sink failed", "type", record.Type, "position", record.Position, "error", err)
		}
	}
	if w.registry == nil {
		return
	}
	for _, sink := range w.registry.SinksFor(record.Event) {
		w.deliver(ctx, sink, record)
	}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, record event.Record) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Subscriber panicked", "type", record.Type, "position", record.Position, "panic", r)
		}
	}()
	if err := sink.Consume(sinkCtx, record); err != nil {
		w.log.Warn("Subscriber dropped a record", "type", record.Type, "position", record.Position, "error", err)
	}
}
