package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"context"
)

const MessageSearchView = "message_search"

type Index interface {
	Index(message domain.MessageID, chat domain.ChatID, content string) error
	Remove(message domain.MessageID) error
}

// MessageSearch keeps the full-text index in step with live message contents.
type MessageSearch struct {
	index Index
}

func NewMessageSearch(index Index) *MessageSearch {
	return &MessageSearch{index: index}
}

func (v *MessageSearch) Name() string { return MessageSearchView }

func (v *MessageSearch) Project(_ context.Context, evt event.Event) ([]event.Event, error) {
	switch e := evt.(type) {
	case event.MessagePosted:
		return nil, v.index.Index(e.Message, e.Chat, e.Content)
	case event.MessageContentUpdated:
		return nil, v.index.Index(e.Message, e.Chat, e.Content)
	case event.MessageMarkedAsDeleted:
		return nil, v.index.Remove(e.MessageID())
	}
	return nil, nil
}
