package saga

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"context"
)

// MessageEditing correlates one edit intent under its own editing id, so the
// same message can be edited many times.
type MessageEditing struct {
	base
	Editing domain.MessageEditingID `json:"editing_id"`
	Message domain.MessageID        `json:"message_id"`
	User    domain.UserID           `json:"user_id"`
}

func (p *MessageEditing) Handle(ctx context.Context, cmd command.Command, q contract.Querier) (Outcome, error) {
	c, ok := cmd.(command.EditMessage)
	if !ok {
		return Outcome{}, unexpected(cmd, domain.KindMessageEditing)
	}
	if p.Status() != StatusNew {
		return Outcome{}, nil
	}
	p.Editing, p.Message, p.User = c.Editing, c.Message, c.User

	reason, member, err := checkMember(ctx, q, c.Chat, c.User)
	if err != nil {
		return Outcome{}, err
	}
	if !member {
		return p.finish(p.failed(reason)), nil
	}
	return p.await(command.UpdateMessageContent{
		Message: c.Message,
		Editing: c.Editing,
		User:    c.User,
		Content: c.Content,
		At:      c.At,
	}), nil
}

func (p *MessageEditing) React(_ context.Context, evt event.Event, _ contract.Querier) (Outcome, error) {
	switch e := evt.(type) {
	case event.MessageContentUpdated:
		return p.finish(event.MessageEdited{Editing: p.Editing, Message: p.Message, User: p.User}), nil
	case event.MessageContentCannotBeUpdated:
		return p.finish(p.failed(e.Reason)), nil
	}
	return Outcome{}, nil
}

func (p *MessageEditing) Refuse(cmd command.Command) event.Event {
	failed := p.failed(event.ReasonAlreadyProcessed)
	if c, ok := cmd.(command.EditMessage); ok {
		failed.Editing, failed.Message, failed.User = c.Editing, c.Message, c.User
	}
	return failed
}

func (p *MessageEditing) failed(reason event.Reason) event.MessageEditingFailed {
	return event.MessageEditingFailed{Editing: p.Editing, Message: p.Message, User: p.User, Reason: reason}
}
