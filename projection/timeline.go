package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
)

const MessageViewName = "message"

// MessageRow mirrors one message, deleted ones included.
type MessageRow struct {
	Message     domain.MessageID `json:"message_id"`
	Chat        domain.ChatID    `json:"chat_id"`
	Author      domain.UserID    `json:"author"`
	Content     string           `json:"content"`
	WhenPosted  time.Time        `json:"when_posted"`
	WhenUpdated time.Time        `json:"when_updated,omitempty"`
	Deleted     bool             `json:"deleted"`
}

// MessageView keys rows by chat then message so the timeline of a chat is a
// prefix scan.
type MessageView struct {
	projector Projector[MessageRow]
}

func NewMessageView(store Store) *MessageView {
	v := &MessageView{}
	v.projector = Projector[MessageRow]{
		Table: NewTable[MessageRow](store, MessageViewName),
		route: func(_ context.Context, evt event.Event) ([]string, error) {
			switch e := evt.(type) {
			case event.MessagePosted:
				return single(messageKey(e.Chat, e.Message))
			case event.MessageContentUpdated:
				return single(messageKey(e.Chat, e.Message))
			case event.MessageMarkedAsDeleted:
				return single(messageKey(e.Chat, e.MessageID()))
			}
			return nil, nil
		},
		apply: v.apply,
	}
	return v
}

func messageKey(chat domain.ChatID, message domain.MessageID) string {
	if chat == "" || message == "" {
		return ""
	}
	return string(chat) + ":" + string(message)
}

func (v *MessageView) Name() string { return MessageViewName }

func (v *MessageView) Project(ctx context.Context, evt event.Event) ([]event.Event, error) {
	_, err := v.projector.Project(ctx, evt)
	return nil, err
}

func (v *MessageView) Message(chat domain.ChatID, message domain.MessageID) (MessageRow, bool, error) {
	return v.projector.Table.Get(messageKey(chat, message))
}

// Timeline returns the messages of a chat, oldest first. Deleted messages are
// skipped unless withDeleted is set.
func (v *MessageView) Timeline(chat domain.ChatID, withDeleted bool) ([]MessageRow, error) {
	rows, err := v.projector.Table.Find(string(chat) + ":")
	if err != nil {
		return nil, err
	}
	rows = lo.Filter(rows, func(row MessageRow, _ int) bool { return withDeleted || !row.Deleted })
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WhenPosted.Equal(rows[j].WhenPosted) {
			return rows[i].Message < rows[j].Message
		}
		return rows[i].WhenPosted.Before(rows[j].WhenPosted)
	})
	return rows, nil
}

func (v *MessageView) LiveMessages(chat domain.ChatID) ([]domain.MessageID, error) {
	rows, err := v.Timeline(chat, false)
	return lo.Map(rows, func(row MessageRow, _ int) domain.MessageID { return row.Message }), err
}

func (v *MessageView) apply(_ string, row MessageRow, exists bool, evt event.Event) (MessageRow, Action) {
	switch e := evt.(type) {
	case event.MessagePosted:
		if exists {
			return row, Keep
		}
		return MessageRow{Message: e.Message, Chat: e.Chat, Author: e.User, Content: e.Content, WhenPosted: e.WhenPosted}, Save
	case event.MessageContentUpdated:
		if !exists {
			return row, Keep
		}
		row.Content = e.Content
		row.WhenUpdated = e.WhenUpdated
		return row, Save
	case event.MessageMarkedAsDeleted:
		if !exists {
			return row, Keep
		}
		row.Deleted = true
		return row, Save
	}
	return row, Keep
}
