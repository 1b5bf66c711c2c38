package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"context"
)

const ChatMembersView = "chat_members"

type ChatMembership struct {
	Chat    domain.ChatID   `json:"chat_id"`
	Type    domain.ChatType `json:"type"`
	Owner   domain.UserID   `json:"owner,omitempty"`
	Members []domain.UserID `json:"members"`
	Deleted bool            `json:"deleted"`
}

// ChatMembers answers membership checks of the sagas.
type ChatMembers struct {
	projector Projector[ChatMembership]
}

func NewChatMembers(store Store) *ChatMembers {
	v := &ChatMembers{}
	v.projector = Projector[ChatMembership]{
		Table: NewTable[ChatMembership](store, ChatMembersView),
		route: func(_ context.Context, evt event.Event) ([]string, error) {
			return single(string(chatOf(evt)))
		},
		apply: v.apply,
	}
	return v
}

func (v *ChatMembers) Name() string { return ChatMembersView }

func (v *ChatMembers) Project(ctx context.Context, evt event.Event) ([]event.Event, error) {
	_, err := v.projector.Project(ctx, evt)
	return nil, err
}

// Members returns the members of a live chat, false when it is unknown or deleted.
func (v *ChatMembers) Members(chat domain.ChatID) ([]domain.UserID, bool, error) {
	row, found, err := v.projector.Table.Get(string(chat))
	if err != nil || !found || row.Deleted {
		return nil, false, err
	}
	return row.Members, true, nil
}

func (v *ChatMembers) apply(_ string, row ChatMembership, exists bool, evt event.Event) (ChatMembership, Action) {
	switch e := evt.(type) {
	case event.PersonalChatCreated:
		if exists {
			return row, Keep
		}
		return ChatMembership{Chat: e.Chat, Type: domain.ChatTypePersonal, Members: e.Members()}, Save
	case event.GroupChatCreated:
		if exists {
			return row, Keep
		}
		return ChatMembership{Chat: e.Chat, Type: domain.ChatTypeGroup, Owner: e.Owner, Members: e.Members}, Save
	}
	if !exists {
		return row, Keep
	}
	switch e := evt.(type) {
	case event.MembersAdded:
		row.Members = e.Members
	case event.MembersRemoved:
		row.Members = e.Members
	case event.UserLeftChat:
		row.Members = e.Members
	case event.ChatMarkedAsDeleted:
		row.Deleted = true
	default:
		return row, Keep
	}
	return row, Save
}

// chatOf returns the chat an event belongs to, empty when it has none.
func chatOf(evt event.Event) domain.ChatID {
	switch e := evt.(type) {
	case event.PersonalChatCreated:
		return e.Chat
	case event.GroupChatCreated:
		return e.Chat
	case event.MembersAdded:
		return e.Chat
	case event.MembersRemoved:
		return e.Chat
	case event.UserLeftChat:
		return e.Chat
	case event.ChatMarkedAsDeleted:
		return e.ChatRef.ChatID()
	case event.MessagePosted:
		return e.Chat
	case event.MessageContentUpdated:
		return e.Chat
	case event.MessageMarkedAsDeleted:
		return e.Chat
	}
	return ""
}
