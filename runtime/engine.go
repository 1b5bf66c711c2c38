// Package runtime runs entities and sagas on the event log and keeps the
// views in step. It carries no business rule of its own.
package runtime

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"chat-saga/entity"
	"chat-saga/errors"
	"chat-saga/repositories"
	"chat-saga/saga"
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

type ProcessStore interface {
	Get(target domain.Target) ([]byte, bool, error)
	Put(target domain.Target, state []byte) error
}

// Effect is what one command or one reaction left behind: the records
// appended and the commands a saga asks to forward.
type Effect struct {
	// Event is the answer to the caller. A refusal from an archived process is
	// answered here without being recorded.
	Event    event.Event
	Records  []event.Record
	Commands []command.Command
	// Cause is the causation position shared by every forwarded command.
	Cause uint64
}

// Engine executes one unit of work against the log. It is not safe to run two
// units for the same target concurrently; the orchestrator serializes them.
type Engine struct {
	events    repositories.IEventStore
	processes ProcessStore
	querier   contract.Querier
	log       *slog.Logger
}

func NewEngine(events repositories.IEventStore, processes ProcessStore, querier contract.Querier, log *slog.Logger) *Engine {
	return &Engine{events: events, processes: processes, querier: querier, log: log}
}

// Execute runs cmd on its target. cause is the position of the event that
// triggered it, 0 for a client command.
func (e *Engine) Execute(ctx context.Context, cmd command.Command, cause uint64) (Effect, error) {
	target := cmd.Target()
	if target.IsEmpty() {
		return Effect{}, fmt.Errorf("%w: %T", errors.ErrMissingTarget, cmd)
	}
	if target.Kind.IsProcess() {
		return e.handleProcess(ctx, target, cmd, cause)
	}
	return e.handleEntity(target, cmd, cause)
}

func (e *Engine) handleEntity(target domain.Target, cmd command.Command, cause uint64) (Effect, error) {
	records, err := e.events.Load(target)
	if err != nil {
		return Effect{}, fmt.Errorf("loading %s: %w", target, err)
	}
	agg, err := entity.Fold(target, lo.Map(records, func(r event.Record, _ int) event.Event { return r.Event }))
	if err != nil {
		return Effect{}, err
	}
	evt, err := agg.Handle(cmd)
	if err != nil {
		return Effect{}, err
	}
	record, err := e.events.Append(target, uint64(len(records)), cause, evt)
	if err != nil {
		return Effect{}, err
	}
	if event.IsRejection(evt) {
		e.log.Debug("Command rejected", "target", target.String(), "type", evt.Type())
	}
	return Effect{Event: evt, Records: []event.Record{record}, Cause: cause}, nil
}

func (e *Engine) handleProcess(ctx context.Context, target domain.Target, cmd command.Command, cause uint64) (Effect, error) {
	p, _, err := e.loadProcess(target)
	if err != nil {
		return Effect{}, err
	}
	for p.Status() == saga.StatusFailed {
		retry, ok := cmd.(command.Retryable)
		if !ok {
			break
		}
		cmd = retry.NextAttempt()
		target = cmd.Target()
		if p, _, err = e.loadProcess(target); err != nil {
			return Effect{}, err
		}
		e.log.Debug("Failed process retried", "target", target.String())
	}
	if p.Status().IsArchived() {
		e.log.Debug("Command refused by archived process", "target", target.String(), "status", p.Status())
		return Effect{Event: p.Refuse(cmd), Cause: cause}, nil
	}
	outcome, err := p.Handle(ctx, cmd, e.querier)
	if err != nil {
		return Effect{}, err
	}
	return e.commit(target, p, outcome, cause)
}

// React delivers a routed record to the process addressed by target. Records
// reaching a process that is unknown or not awaiting are ignored.
func (e *Engine) React(ctx context.Context, target domain.Target, record event.Record) (Effect, error) {
	p, found, err := e.loadProcess(target)
	if err != nil {
		return Effect{}, err
	}
	if !found || p.Status() != saga.StatusAwaiting {
		e.log.Debug("Event ignored by process", "target", target.String(), "type", record.Type, "found", found)
		return Effect{}, nil
	}
	outcome, err := p.React(ctx, record.Event, e.querier)
	if err != nil {
		return Effect{}, err
	}
	return e.commit(target, p, outcome, record.Position)
}

func (e *Engine) loadProcess(target domain.Target) (saga.Process, bool, error) {
	data, found, err := e.processes.Get(target)
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", target, err)
	}
	if !found {
		p, err := saga.New(target)
		return p, false, err
	}
	p, err := saga.Load(target, data)
	return p, true, err
}

// commit appends the terminal event first, then saves the state: a crash in
// between leaves the process awaiting, never archived without its event.
func (e *Engine) commit(target domain.Target, p saga.Process, outcome saga.Outcome, cause uint64) (Effect, error) {
	effect := Effect{Event: outcome.Event, Commands: outcome.Commands, Cause: cause}
	if outcome.Event != nil {
		version, err := e.events.Version(target)
		if err != nil {
			return Effect{}, err
		}
		record, err := e.events.Append(target, version, cause, outcome.Event)
		if err != nil {
			return Effect{}, err
		}
		effect.Records = append(effect.Records, record)
	}
	state, err := saga.Encode(p)
	if err != nil {
		return Effect{}, err
	}
	if err := e.processes.Put(target, state); err != nil {
		return Effect{}, fmt.Errorf("saving %s: %w", target, err)
	}
	e.log.Debug("Process advanced", "target", target.String(), "status", p.Status(), "commands", len(outcome.Commands))
	return effect, nil
}
