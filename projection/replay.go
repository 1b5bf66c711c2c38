package projection

import (
	"chat-saga/domain/event"
	"context"
	"fmt"
)

const replayPageSize = 200

// maxFollowDepth bounds the chain of state changes forwarded between views.
const maxFollowDepth = 4

// Pipeline projects events into a set of views and forwards the state changes
// a view emits to the views following it.
type Pipeline struct {
	views     []View
	followers map[string][]View
}

func NewPipeline(views ...View) Pipeline {
	p := Pipeline{views: views, followers: make(map[string][]View)}
	for _, v := range views {
		follower, ok := v.(Follower)
		if !ok {
			continue
		}
		for _, name := range follower.Follows() {
			p.followers[name] = append(p.followers[name], v)
		}
	}
	return p
}

func (p Pipeline) Views() []View { return p.views }

// Followers returns the views fed by the state changes of the named view.
func (p Pipeline) Followers(name string) []View { return p.followers[name] }

// Project applies evt to every view in order.
func (p Pipeline) Project(ctx context.Context, evt event.Event) error {
	for _, v := range p.views {
		if err := p.projectInto(ctx, v, evt, 0); err != nil {
			return err
		}
	}
	return nil
}

func (p Pipeline) projectInto(ctx context.Context, v View, evt event.Event, depth int) error {
	if depth > maxFollowDepth {
		return fmt.Errorf("state changes of %s follow too deep", v.Name())
	}
	emitted, err := v.Project(ctx, evt)
	if err != nil {
		return fmt.Errorf("projecting %s into %s: %w", evt.Type(), v.Name(), err)
	}
	for _, change := range emitted {
		for _, follower := range p.followers[v.Name()] {
			if err := p.projectInto(ctx, follower, change, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

type Log interface {
	ReadAll(after uint64, limit int) ([]event.Record, error)
}

type ReplayOptions struct {
	// AfterPosition skips records up to this position.
	AfterPosition uint64
	// UntilPosition stops after this position, 0 replays to the end of the log.
	UntilPosition uint64
	// Filter skips the records it refuses.
	Filter func(event.Record) bool
}

// Replay folds the log through the pipeline page by page and returns the last
// position applied. Replaying the same log into empty views gives the same rows.
func Replay(ctx context.Context, log Log, pipeline Pipeline, options ReplayOptions) (uint64, error) {
	last := options.AfterPosition
	for {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		records, err := log.ReadAll(last, replayPageSize)
		if err != nil {
			return last, fmt.Errorf("reading log after %d: %w", last, err)
		}
		if len(records) == 0 {
			return last, nil
		}
		for _, record := range records {
			if options.UntilPosition > 0 && record.Position > options.UntilPosition {
				return last, nil
			}
			last = record.Position
			if options.Filter != nil && !options.Filter(record) {
				continue
			}
			if err := pipeline.Project(ctx, record.Event); err != nil {
				return last, err
			}
		}
		if len(records) < replayPageSize {
			return last, nil
		}
	}
}
