package runtime

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"chat-saga/projection"
	"chat-saga/runtime/workers"
	"chat-saga/saga"
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
)

type Config struct {
	Shards          int
	SinkTimeout     time.Duration
	SettleInterval  time.Duration
	RestartInterval time.Duration
}

// job is one unit of work for a shard: a command, or a record routed to a
// process. reply is set for client commands only.
type job struct {
	target domain.Target
	cmd    command.Command
	record *event.Record
	cause  uint64
	reply  chan result
}

type result struct {
	effect Effect
	err    error
}

var _ contract.IDispatcher = (*Orchestrator)(nil)

// Orchestrator wires the engine to its workers:
//   - shards own disjoint sets of targets, one writer per target
//   - the fanout hands appended records, in position order, to sagas, views and subscribers
//   - one worker per view applies updates in arrival order
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	config     Config
	engine     *Engine
	pipeline   projection.Pipeline
	supervisor *workers.Supervisor
	registry   *Registry
	tracker    *workers.Tracker
	shards     []*workers.Mailbox[job]
	records    *workers.Mailbox[event.Record]
	views      map[string]*workers.Mailbox[event.Event]
	running    bool
	stopped    bool
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewOrchestrator(log *slog.Logger, config Config, engine *Engine, pipeline projection.Pipeline,
	supervisor *workers.Supervisor, registry *Registry) *Orchestrator {
	if config.Shards <= 0 {
		config.Shards = 1
	}
	if config.SettleInterval <= 0 {
		config.SettleInterval = 5 * time.Millisecond
	}
	if config.SinkTimeout <= 0 {
		config.SinkTimeout = time.Second
	}
	tracker := &workers.Tracker{}
	o := &Orchestrator{
		log:        log,
		config:     config,
		engine:     engine,
		pipeline:   pipeline,
		supervisor: supervisor,
		registry:   registry,
		tracker:    tracker,
		records:    workers.NewMailbox[event.Record](tracker),
		views:      make(map[string]*workers.Mailbox[event.Event]),
	}
	for i := 0; i < config.Shards; i++ {
		o.shards = append(o.shards, workers.NewMailbox[job](tracker))
	}
	for _, v := range pipeline.Views() {
		o.views[v.Name()] = workers.NewMailbox[event.Event](tracker)
	}
	engine.events.OnAppend(o.records.Push)
	return o
}

// Start launches every worker under the supervisor and returns at once.
// Starting twice is a no-op; an orchestrator is not restarted once stopped.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return errors.ErrEngineStopped
	}
	if o.running {
		return nil
	}

	o.supervisor.Add(o.prepareShards()...)
	o.supervisor.Add(o.prepareViews()...)
	o.supervisor.Add(o.prepareFanout())

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.done = make(chan struct{})
	o.running = true

	o.log.Info("Starting orchestrator and all supervised workers", "shards", len(o.shards), "views", len(o.views))
	go func() {
		defer close(o.done)
		o.supervisor.Run(runCtx)
	}()
	return nil
}

func (o *Orchestrator) prepareShards() []contract.Worker {
	var res []contract.Worker
	for i, inbox := range o.shards {
		res = append(res, workers.NewPoolUnitWorker(fmt.Sprintf("shard-%d", i), inbox, o.handle, o.log))
	}
	return res
}

func (o *Orchestrator) prepareViews() []contract.Worker {
	var res []contract.Worker
	for _, v := range o.pipeline.Views() {
		view := v
		res = append(res, workers.NewPoolUnitWorker("view-"+view.Name(), o.views[view.Name()],
			func(ctx context.Context, evt event.Event) error { return o.project(ctx, view, evt) }, o.log))
	}
	return res
}

func (o *Orchestrator) prepareFanout() contract.Worker {
	sinks := []contract.EventSink{sagaRouter{o}, viewDispatcher{o}}
	return workers.NewEventFanout(o.log, sinks, o.registry, o.records, o.config.SinkTimeout)
}

// Stop cancels the workers and waits for them to return. Queued work is dropped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	o.stopped = true
	o.supervisor.Stop()
	o.cancel()
	done := o.done
	o.mu.Unlock()
	<-done
	o.log.Info("Orchestrator stopped")
}

func (o *Orchestrator) isRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Submit runs a client command and waits for its answer: the event or
// rejection appended, a refusal from an archived process, or nil when a saga
// accepted the command and forwarded it.
func (o *Orchestrator) Submit(ctx context.Context, cmd command.Command) (event.Event, error) {
	if !o.isRunning() {
		return nil, errors.ErrEngineNotStarted
	}
	target := cmd.Target()
	if target.IsEmpty() {
		return nil, fmt.Errorf("%w: %T", errors.ErrMissingTarget, cmd)
	}
	reply := make(chan result, 1)
	o.dispatch(job{target: target, cmd: cmd, reply: reply})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-reply:
		return res.effect.Event, res.err
	}
}

func (o *Orchestrator) Subscribe(id string, filter event.Filter, sink contract.EventSink) {
	o.registry.Subscribe(id, filter, sink)
}

func (o *Orchestrator) Unsubscribe(id string) error {
	return o.registry.Unsubscribe(id)
}

// Settle waits until every queued command, record and view update has been
// handled, cascades included.
func (o *Orchestrator) Settle(ctx context.Context) error {
	ticker := time.NewTicker(o.config.SettleInterval)
	defer ticker.Stop()
	for {
		if o.tracker.Pending() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d items pending", errors.ErrSettleTimeout, o.tracker.Pending())
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) dispatch(j job) {
	o.shards[shardOf(j.target, len(o.shards))].Push(j)
}

// shardOf places every attempt of a process on the shard of its first one.
func shardOf(target domain.Target, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(target.Lineage().String()))
	return int(h.Sum32() % uint32(shards))
}

// handle runs one job on its shard. A panic is answered to the waiting
// caller before it reaches the supervisor.
func (o *Orchestrator) handle(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if j.reply != nil {
				j.reply <- result{err: errors.ErrWorkerPanic}
			}
			panic(r)
		}
	}()

	var effect Effect
	if j.record != nil {
		effect, err = o.engine.React(ctx, j.target, *j.record)
	} else {
		effect, err = o.engine.Execute(ctx, j.cmd, j.cause)
	}
	if err == nil {
		o.publish(effect)
	}
	if j.reply != nil {
		j.reply <- result{effect: effect, err: err}
	}
	return err
}

// publish relays the forwarded commands, all of them caused by the same
// position. Appended records already reached the fanout from the event store,
// in position order.
func (o *Orchestrator) publish(effect Effect) {
	for _, cmd := range effect.Commands {
		target := cmd.Target()
		if target.IsEmpty() {
			o.log.Error("Forwarded command has no target", "command", fmt.Sprintf("%T", cmd))
			continue
		}
		o.dispatch(job{target: target, cmd: cmd, cause: effect.Cause})
	}
}

func (o *Orchestrator) project(ctx context.Context, v projection.View, evt event.Event) error {
	emitted, err := v.Project(ctx, evt)
	if err != nil {
		return err
	}
	for _, change := range emitted {
		for _, follower := range o.pipeline.Followers(v.Name()) {
			o.views[follower.Name()].Push(change)
		}
	}
	return nil
}

// sagaRouter sends every record to the processes correlated with it.
type sagaRouter struct{ o *Orchestrator }

func (s sagaRouter) Consume(_ context.Context, record event.Record) error {
	for _, target := range saga.Route(record.Event) {
		r := record
		s.o.dispatch(job{target: target, record: &r})
	}
	return nil
}

// viewDispatcher queues every record on each view worker.
type viewDispatcher struct{ o *Orchestrator }

func (d viewDispatcher) Consume(_ context.Context, record event.Record) error {
	for _, v := range d.o.pipeline.Views() {
		d.o.views[v.Name()].Push(record.Event)
	}
	return nil
}
