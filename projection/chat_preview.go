package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"context"

	"github.com/samber/lo"
)

const ChatPreviewView = "chat_preview"

// TypePreviewChanged is the state change emitted by the ChatPreview view.
// It is not stored in the event log.
const TypePreviewChanged event.Type = "chat_preview.changed"

type ChatPreview struct {
	Chat        domain.ChatID   `json:"chat_id"`
	Type        domain.ChatType `json:"type"`
	Name        string          `json:"name,omitempty"`
	Owner       domain.UserID   `json:"owner,omitempty"`
	Members     []domain.UserID `json:"members"`
	LastMessage *MessagePreview `json:"last_message,omitempty"`
}

// PreviewChanged carries a preview row before and after one event.
// Before is nil for a new chat, After is nil once the chat is deleted.
type PreviewChanged struct {
	Chat   domain.ChatID
	Before *ChatPreview
	After  *ChatPreview
}

func (PreviewChanged) Type() event.Type { return TypePreviewChanged }

// Members returns everybody concerned by the change, old and new members alike.
func (c PreviewChanged) Members() []domain.UserID {
	var members []domain.UserID
	if c.Before != nil {
		members = append(members, c.Before.Members...)
	}
	if c.After != nil {
		members = append(members, c.After.Members...)
	}
	return lo.Uniq(members)
}

type ChatPreviews struct {
	projector Projector[ChatPreview]
}

func NewChatPreviews(store Store) *ChatPreviews {
	v := &ChatPreviews{}
	v.projector = Projector[ChatPreview]{
		Table: NewTable[ChatPreview](store, ChatPreviewView),
		route: func(_ context.Context, evt event.Event) ([]string, error) {
			return single(string(chatOf(evt)))
		},
		apply: v.apply,
	}
	return v
}

func (v *ChatPreviews) Name() string { return ChatPreviewView }

func (v *ChatPreviews) Project(ctx context.Context, evt event.Event) ([]event.Event, error) {
	changes, err := v.projector.Project(ctx, evt)
	emitted := lo.Map(changes, func(change Change[ChatPreview], _ int) event.Event {
		return PreviewChanged{Chat: domain.ChatID(change.Key), Before: change.Before, After: change.After}
	})
	return emitted, err
}

func (v *ChatPreviews) Preview(chat domain.ChatID) (ChatPreview, bool, error) {
	return v.projector.Table.Get(string(chat))
}

func (v *ChatPreviews) apply(_ string, row ChatPreview, exists bool, evt event.Event) (ChatPreview, Action) {
	switch e := evt.(type) {
	case event.PersonalChatCreated:
		if exists {
			return row, Keep
		}
		return ChatPreview{Chat: e.Chat, Type: domain.ChatTypePersonal, Members: e.Members()}, Save
	case event.GroupChatCreated:
		if exists {
			return row, Keep
		}
		return ChatPreview{Chat: e.Chat, Type: domain.ChatTypeGroup, Name: e.Name, Owner: e.Owner, Members: e.Members}, Save
	}
	if !exists {
		return row, Keep
	}
	switch e := evt.(type) {
	case event.MembersAdded:
		row.Members = e.Members
		return row, Save
	case event.MembersRemoved:
		row.Members = e.Members
		return row, Save
	case event.UserLeftChat:
		row.Members = e.Members
		return row, Save
	case event.ChatMarkedAsDeleted:
		return row, Drop
	}
	last, changed := trackLastMessage(row.LastMessage, evt)
	if !changed {
		return row, Keep
	}
	row.LastMessage = last
	return row, Save
}
