package saga

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"context"
)

// MessageRemoval is keyed by the removal id. A failed removal leaves room for a
// later attempt on the same message; a successful one is final.
type MessageRemoval struct {
	base
	Removal domain.MessageRemovalID `json:"removal_id"`
	Chat    domain.ChatID           `json:"chat_id"`
	User    domain.UserID           `json:"user_id"`
}

func (p *MessageRemoval) Handle(ctx context.Context, cmd command.Command, q contract.Querier) (Outcome, error) {
	c, ok := cmd.(command.RemoveMessage)
	if !ok {
		return Outcome{}, unexpected(cmd, domain.KindMessageRemoval)
	}
	if p.Status() != StatusNew {
		return Outcome{}, nil
	}
	p.Removal, p.Chat, p.User = c.MessageRef.RemovalID(), c.Chat, c.User

	reason, member, err := checkMember(ctx, q, c.Chat, c.User)
	if err != nil {
		return Outcome{}, err
	}
	if !member {
		return p.finish(p.failed(reason)), nil
	}
	return p.await(command.MarkMessageAsDeleted{
		MessageRef: domain.MessageRef{Operation: domain.OperationOfMessageRemoval(p.Removal)},
		Chat:       c.Chat,
		Who:        c.User,
	}), nil
}

func (p *MessageRemoval) React(_ context.Context, evt event.Event, _ contract.Querier) (Outcome, error) {
	switch e := evt.(type) {
	case event.MessageMarkedAsDeleted:
		return p.finish(event.MessageRemoved{MessageRef: p.ref(), User: p.User}), nil
	case event.MessageCannotBeMarkedAsDeleted:
		return p.finish(p.failed(e.Reason)), nil
	}
	return Outcome{}, nil
}

func (p *MessageRemoval) Refuse(cmd command.Command) event.Event {
	failed := p.failed(event.ReasonAlreadyProcessed)
	if c, ok := cmd.(command.RemoveMessage); ok {
		failed.MessageRef = domain.MessageRef{Removal: c.MessageRef.RemovalID()}
		failed.User = c.User
	}
	return failed
}

func (p *MessageRemoval) ref() domain.MessageRef {
	return domain.MessageRef{Removal: p.Removal}
}

func (p *MessageRemoval) failed(reason event.Reason) event.MessageRemovalFailed {
	return event.MessageRemovalFailed{MessageRef: p.ref(), User: p.User, Reason: reason}
}
