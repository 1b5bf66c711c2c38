// Package saga holds the processes that drive several entities to a joint
// outcome. A process reacts to a command or to a routed event and answers with
// an Outcome; it never touches an entity directly.
package saga

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusAwaiting  Status = "awaiting"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// IsArchived reports a terminal status. An archived process is never written again.
func (s Status) IsArchived() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Outcome is what a process answers to one command or one event.
// Every command of a fan-out shares the causation of the triggering event.
type Outcome struct {
	Event    event.Event
	Commands []command.Command
}

type Process interface {
	Status() Status
	// Handle receives the initiating command of the process.
	Handle(ctx context.Context, cmd command.Command, q contract.Querier) (Outcome, error)
	// React receives a downstream event. Only awaiting processes are invoked.
	React(ctx context.Context, evt event.Event, q contract.Querier) (Outcome, error)
	// Refuse builds the failure answered to a command sent to an archived process.
	Refuse(cmd command.Command) event.Event
}

type base struct {
	State Status `json:"status"`
}

func (b *base) Status() Status {
	if b.State == "" {
		return StatusNew
	}
	return b.State
}

func (b *base) await(cmds ...command.Command) Outcome {
	b.State = StatusAwaiting
	return Outcome{Commands: cmds}
}

// finish archives the process, as a failure when evt is a rejection.
func (b *base) finish(evt event.Event, cmds ...command.Command) Outcome {
	b.State = lo.Ternary(event.IsRejection(evt), StatusFailed, StatusSucceeded)
	return Outcome{Event: evt, Commands: cmds}
}

// New returns a fresh process addressed by target.
func New(target domain.Target) (Process, error) {
	switch target.Kind {
	case domain.KindAccountCreation:
		return &AccountCreation{}, nil
	case domain.KindMessageSending:
		return &MessageSending{}, nil
	case domain.KindMessageEditing:
		return &MessageEditing{}, nil
	case domain.KindMessageRemoval:
		return &MessageRemoval{}, nil
	case domain.KindChatDeletion:
		return &ChatDeletion{}, nil
	}
	return nil, fmt.Errorf("%w: %s", errors.ErrUnknownProcess, target.Kind)
}

// Load rebuilds a process from its stored state.
func Load(target domain.Target, data []byte) (Process, error) {
	p, err := New(target)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", target, err)
	}
	return p, nil
}

func Encode(p Process) ([]byte, error) {
	return json.Marshal(p)
}

// Route returns the processes interested in evt. Events that no process
// correlates with return nil.
func Route(evt event.Event) []domain.Target {
	switch e := evt.(type) {
	case event.EmailReserved:
		return accountCreation(e.User)
	case event.EmailAlreadyReserved:
		return accountCreation(e.User)
	case event.UserRegistered:
		return accountCreation(e.User)
	case event.UserAlreadyRegistered:
		return accountCreation(e.User)

	case event.MessagePosted:
		return messageSending(e.Message)
	case event.MessageCannotBePosted:
		return messageSending(e.Message)

	case event.MessageContentUpdated:
		return messageEditing(e.Editing)
	case event.MessageContentCannotBeUpdated:
		return messageEditing(e.Editing)

	case event.MessageMarkedAsDeleted:
		return messageRemoval(e.MessageRef)
	case event.MessageCannotBeMarkedAsDeleted:
		return messageRemoval(e.MessageRef)

	case event.ChatMarkedAsDeleted:
		return chatDeletion(e.ChatRef)
	case event.ChatCannotBeMarkedAsDeleted:
		return chatDeletion(e.ChatRef)
	}
	return nil
}

func accountCreation(user domain.UserID) []domain.Target {
	if user == "" {
		return nil
	}
	return []domain.Target{{Kind: domain.KindAccountCreation, Key: string(user)}}
}

func messageSending(message domain.MessageID) []domain.Target {
	if message == "" {
		return nil
	}
	return []domain.Target{{Kind: domain.KindMessageSending, Key: string(message)}}
}

func messageEditing(editing domain.MessageEditingID) []domain.Target {
	if editing == "" {
		return nil
	}
	return []domain.Target{{Kind: domain.KindMessageEditing, Key: string(editing)}}
}

// messageRemoval ignores deletions issued by a chat deletion cascade.
func messageRemoval(ref domain.MessageRef) []domain.Target {
	removal, ok := ref.OperationID().Removal()
	if !ok {
		return nil
	}
	return []domain.Target{{Kind: domain.KindMessageRemoval, Key: removal.String()}}
}

func chatDeletion(ref domain.ChatRef) []domain.Target {
	deletion := ref.DeletionID()
	if deletion.IsEmpty() {
		return nil
	}
	return []domain.Target{{Kind: domain.KindChatDeletion, Key: deletion.String()}}
}

// checkMember answers why user cannot act in chat, or true when it can.
// The members view may lag behind the chat itself.
func checkMember(ctx context.Context, q contract.Querier, chat domain.ChatID, user domain.UserID) (event.Reason, bool, error) {
	members, found, err := q.ChatMembers(ctx, chat)
	if err != nil {
		return "", false, fmt.Errorf("reading members of chat %s: %w", chat, err)
	}
	if !found {
		return event.ReasonNotFound, false, nil
	}
	if !lo.Contains(members, user) {
		return event.ReasonNotAMember, false, nil
	}
	return "", true, nil
}

func unexpected(cmd command.Command, kind domain.Kind) error {
	return fmt.Errorf("%w: %T sent to %s", errors.ErrUnknownCommand, cmd, kind)
}
