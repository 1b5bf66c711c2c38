// Package entity holds the write-side state machines. Each one validates
// commands against its current state and folds its own events; none of them
// reaches another entity, cross-entity effects belong to sagas.
package entity

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"fmt"
)

type Aggregate interface {
	// Handle returns the event or rejection produced by cmd. The error is
	// reserved for faults, such as a command sent to the wrong kind.
	Handle(cmd command.Command) (event.Event, error)
	// Apply folds evt into a new state. It never validates.
	Apply(evt event.Event) Aggregate
}

// New returns the initial state of the entity addressed by target.
func New(target domain.Target) (Aggregate, error) {
	switch target.Kind {
	case domain.KindUser:
		return User{ID: domain.UserID(target.Key)}, nil
	case domain.KindReservedEmail:
		return ReservedEmail{Email: domain.Email(target.Key)}, nil
	case domain.KindChat:
		return Chat{ID: domain.ChatID(target.Key)}, nil
	case domain.KindMessage:
		return Message{ID: domain.MessageID(target.Key)}, nil
	}
	return nil, fmt.Errorf("%w: %s", errors.ErrUnknownCommand, target.Kind)
}

// Fold replays events over the initial state of target.
func Fold(target domain.Target, events []event.Event) (Aggregate, error) {
	agg, err := New(target)
	if err != nil {
		return nil, err
	}
	for _, evt := range events {
		agg = agg.Apply(evt)
	}
	return agg, nil
}

func unknown(cmd command.Command, kind domain.Kind) error {
	return fmt.Errorf("%w: %T sent to %s", errors.ErrUnknownCommand, cmd, kind)
}
