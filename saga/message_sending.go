package saga

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"context"
)

// MessageSending posts a message once the author is known to be a chat member.
type MessageSending struct {
	base
	Message domain.MessageID `json:"message_id"`
	Chat    domain.ChatID    `json:"chat_id"`
	User    domain.UserID    `json:"user_id"`
}

func (p *MessageSending) Handle(ctx context.Context, cmd command.Command, q contract.Querier) (Outcome, error) {
	c, ok := cmd.(command.SendMessage)
	if !ok {
		return Outcome{}, unexpected(cmd, domain.KindMessageSending)
	}
	if p.Status() != StatusNew {
		return Outcome{}, nil
	}
	p.Message, p.Chat, p.User = c.Message, c.Chat, c.User

	reason, member, err := checkMember(ctx, q, c.Chat, c.User)
	if err != nil {
		return Outcome{}, err
	}
	if !member {
		return p.finish(p.failed(reason)), nil
	}
	return p.await(command.PostMessage{
		Message: c.Message,
		Chat:    c.Chat,
		User:    c.User,
		Content: c.Content,
		At:      c.At,
	}), nil
}

func (p *MessageSending) React(_ context.Context, evt event.Event, _ contract.Querier) (Outcome, error) {
	switch e := evt.(type) {
	case event.MessagePosted:
		return p.finish(event.MessageSent{Message: p.Message, Chat: p.Chat, User: p.User}), nil
	case event.MessageCannotBePosted:
		return p.finish(p.failed(e.Reason)), nil
	}
	return Outcome{}, nil
}

func (p *MessageSending) Refuse(cmd command.Command) event.Event {
	failed := p.failed(event.ReasonAlreadyProcessed)
	if c, ok := cmd.(command.SendMessage); ok {
		failed.Message, failed.Chat, failed.User = c.Message, c.Chat, c.User
	}
	return failed
}

func (p *MessageSending) failed(reason event.Reason) event.MessageCannotBeSent {
	return event.MessageCannotBeSent{Message: p.Message, Chat: p.Chat, User: p.User, Reason: reason}
}
