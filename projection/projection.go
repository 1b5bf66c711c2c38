// Package projection builds the read side from routed events.
// Every view is a deterministic fold: the same events routed in the same order
// produce the same rows. Views never accept commands.
package projection

import (
	"chat-saga/domain/event"
	"context"
	"encoding/json"
	"fmt"
)

// Store is the row storage shared by all views.
type Store interface {
	Get(view, key string) ([]byte, bool, error)
	Put(view, key string, value []byte) error
	Delete(view, key string) error
	Scan(view, prefix string, visit func(key string, value []byte) error) error
}

// View consumes routed events. Project returns the state changes other views
// may follow, nil for most views.
type View interface {
	Name() string
	Project(ctx context.Context, evt event.Event) ([]event.Event, error)
}

// Follower is a view fed by the state changes of other views.
type Follower interface {
	View
	Follows() []string
}

// Table is a typed access to the rows of one view.
type Table[R any] struct {
	store Store
	name  string
}

func NewTable[R any](store Store, name string) Table[R] {
	return Table[R]{store: store, name: name}
}

func (t Table[R]) Get(key string) (R, bool, error) {
	var row R
	data, found, err := t.store.Get(t.name, key)
	if err != nil || !found {
		return row, false, err
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return row, false, fmt.Errorf("decoding %s row %s: %w", t.name, key, err)
	}
	return row, true, nil
}

// Find returns the rows whose key starts with prefix, in key order.
func (t Table[R]) Find(prefix string) ([]R, error) {
	var rows []R
	err := t.store.Scan(t.name, prefix, func(key string, data []byte) error {
		var row R
		if err := json.Unmarshal(data, &row); err != nil {
			return fmt.Errorf("decoding %s row %s: %w", t.name, key, err)
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

// keys returns the row keys starting with prefix.
func (t Table[R]) keys(prefix string) ([]string, error) {
	var keys []string
	err := t.store.Scan(t.name, prefix, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	return keys, err
}

func (t Table[R]) put(key string, row R) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return t.store.Put(t.name, key, data)
}

func (t Table[R]) drop(key string) error {
	return t.store.Delete(t.name, key)
}

type Action int

const (
	Keep Action = iota
	Save
	Drop
)

// Change is the effect of one event on one row. Before or After is nil when the
// row did not exist or was dropped.
type Change[R any] struct {
	Key    string
	Before *R
	After  *R
}

// Projector applies an event in two phases: route computes the affected keys,
// possibly by reading rows of its own table, then apply folds the event into
// each addressed row. The routing read is a snapshot and is not linearized with
// writes to the same rows.
type Projector[R any] struct {
	Table Table[R]
	route func(ctx context.Context, evt event.Event) ([]string, error)
	apply func(key string, row R, exists bool, evt event.Event) (R, Action)
}

func (p Projector[R]) Project(ctx context.Context, evt event.Event) ([]Change[R], error) {
	keys, err := p.route(ctx, evt)
	if err != nil {
		return nil, fmt.Errorf("routing %s in %s: %w", evt.Type(), p.Table.name, err)
	}
	var changes []Change[R]
	for _, key := range keys {
		row, exists, err := p.Table.Get(key)
		if err != nil {
			return changes, err
		}
		next, action := p.apply(key, row, exists, evt)
		switch action {
		case Save:
			if err := p.Table.put(key, next); err != nil {
				return changes, err
			}
			change := Change[R]{Key: key, After: &next}
			if exists {
				change.Before = &row
			}
			changes = append(changes, change)
		case Drop:
			if !exists {
				continue
			}
			if err := p.Table.drop(key); err != nil {
				return changes, err
			}
			changes = append(changes, Change[R]{Key: key, Before: &row})
		}
	}
	return changes, nil
}

func single(key string) ([]string, error) {
	if key == "" {
		return nil, nil
	}
	return []string{key}, nil
}
