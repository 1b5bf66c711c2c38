package saga

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"context"
	"fmt"

	"github.com/samber/lo"
)

// ChatDeletion marks the chat deleted on behalf of the requester, then asks every
// live message of the chat to be deleted. It archives right after the fan-out and
// does not track the outcome of each message deletion.
type ChatDeletion struct {
	base
	Deletion domain.ChatDeletionID `json:"deletion_id"`
	User     domain.UserID         `json:"user_id"`
}

func (p *ChatDeletion) Handle(_ context.Context, cmd command.Command, _ contract.Querier) (Outcome, error) {
	c, ok := cmd.(command.DeleteChat)
	if !ok {
		return Outcome{}, unexpected(cmd, domain.KindChatDeletion)
	}
	if p.Status() != StatusNew {
		return Outcome{}, nil
	}
	p.Deletion, p.User = c.ChatRef.DeletionID(), c.User
	return p.await(command.MarkChatAsDeleted{
		ChatRef: domain.ChatRef{Operation: domain.OperationOfChatDeletion(p.Deletion)},
		Who:     c.User,
	}), nil
}

func (p *ChatDeletion) React(ctx context.Context, evt event.Event, q contract.Querier) (Outcome, error) {
	switch e := evt.(type) {
	case event.ChatMarkedAsDeleted:
		chat := e.ChatRef.ChatID()
		messages, err := q.LiveMessages(ctx, chat)
		if err != nil {
			return Outcome{}, fmt.Errorf("listing messages of chat %s: %w", chat, err)
		}
		operation := domain.OperationOfChatDeletion(p.Deletion)
		cascade := lo.Map(messages, func(message domain.MessageID, _ int) command.Command {
			return command.MarkMessageAsDeleted{
				MessageRef: domain.MessageRef{Message: message, Operation: operation},
				Chat:       chat,
				Who:        p.User,
			}
		})
		deleted := event.ChatDeleted{ChatRef: p.ref(), User: p.User, Messages: messages}
		return p.finish(deleted, cascade...), nil
	case event.ChatCannotBeMarkedAsDeleted:
		return p.finish(p.failed(e.Reason)), nil
	}
	return Outcome{}, nil
}

func (p *ChatDeletion) Refuse(cmd command.Command) event.Event {
	failed := p.failed(event.ReasonAlreadyProcessed)
	if c, ok := cmd.(command.DeleteChat); ok {
		failed.ChatRef = domain.ChatRef{Deletion: c.ChatRef.DeletionID()}
		failed.User = c.User
	}
	return failed
}

func (p *ChatDeletion) ref() domain.ChatRef {
	return domain.ChatRef{Deletion: p.Deletion}
}

func (p *ChatDeletion) failed(reason event.Reason) event.ChatDeletionFailed {
	return event.ChatDeletionFailed{ChatRef: p.ref(), User: p.User, Reason: reason}
}
