//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	if named, ok := w.(interface{ Name() string }); ok {
		return named.Name()
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives appended records pushed by the runtime.
type EventSink interface {
	Consume(ctx context.Context, record event.Record) error
}

// Querier is the read side seen by sagas. Answers may lag the write side.
type Querier interface {
	// ChatMembers returns the current members of a live chat, false if the chat is unknown or deleted.
	ChatMembers(ctx context.Context, chat domain.ChatID) ([]domain.UserID, bool, error)
	// LiveMessages returns the messages of a chat that are not marked deleted, oldest first.
	LiveMessages(ctx context.Context, chat domain.ChatID) ([]domain.MessageID, error)
}

// IRegistry holds the external subscriptions to the event log.
type IRegistry interface {
	Subscribe(id string, filter event.Filter, sink EventSink)
	Unsubscribe(id string) error
	SinksFor(evt event.Event) []EventSink
}

// IDispatcher submits commands to the write side and manages subscriptions.
type IDispatcher interface {
	Submit(ctx context.Context, cmd command.Command) (event.Event, error)
	Subscribe(id string, filter event.Filter, sink EventSink)
	Unsubscribe(id string) error
}
