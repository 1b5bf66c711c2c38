package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"context"
	"strings"

	"github.com/samber/lo"
)

const ChatCardView = "chat_card"

// ChatCard is a chat as seen by one of its members.
type ChatCard struct {
	Chat        domain.ChatID   `json:"chat_id"`
	Viewer      domain.UserID   `json:"viewer"`
	Type        domain.ChatType `json:"type"`
	Name        string          `json:"name,omitempty"`
	Owner       domain.UserID   `json:"owner,omitempty"`
	Members     []domain.UserID `json:"members"`
	LastMessage *MessagePreview `json:"last_message,omitempty"`
}

type ChatCards struct {
	projector Projector[ChatCard]
}

func NewChatCards(store Store) *ChatCards {
	v := &ChatCards{}
	v.projector = Projector[ChatCard]{
		Table: NewTable[ChatCard](store, ChatCardView),
		route: v.route,
		apply: v.apply,
	}
	return v
}

func cardKey(chat domain.ChatID, viewer domain.UserID) string {
	return string(chat) + ":" + string(viewer)
}

func viewerOf(key string) domain.UserID {
	return domain.UserID(key[strings.LastIndex(key, ":")+1:])
}

func (v *ChatCards) Name() string { return ChatCardView }

func (v *ChatCards) Project(ctx context.Context, evt event.Event) ([]event.Event, error) {
	_, err := v.projector.Project(ctx, evt)
	return nil, err
}

func (v *ChatCards) Card(chat domain.ChatID, viewer domain.UserID) (ChatCard, bool, error) {
	return v.projector.Table.Get(cardKey(chat, viewer))
}

// Cards returns every card of a chat, one per viewer.
func (v *ChatCards) Cards(chat domain.ChatID) ([]ChatCard, error) {
	return v.projector.Table.Find(string(chat) + ":")
}

// route sends creations and additions to the named members. Everything else
// goes to the current holders of a card, read from this view itself.
func (v *ChatCards) route(_ context.Context, evt event.Event) ([]string, error) {
	chat := chatOf(evt)
	if chat == "" {
		return nil, nil
	}
	toKeys := func(members []domain.UserID) []string {
		return lo.Map(lo.Uniq(members), func(member domain.UserID, _ int) string { return cardKey(chat, member) })
	}
	switch e := evt.(type) {
	case event.PersonalChatCreated:
		return toKeys(e.Members()), nil
	case event.GroupChatCreated:
		return toKeys(e.Members), nil
	case event.MembersAdded:
		return toKeys(e.Members), nil
	}
	return v.projector.Table.keys(string(chat) + ":")
}

func (v *ChatCards) apply(key string, row ChatCard, exists bool, evt event.Event) (ChatCard, Action) {
	viewer := viewerOf(key)
	switch e := evt.(type) {
	case event.PersonalChatCreated:
		if exists {
			return row, Keep
		}
		return ChatCard{Chat: e.Chat, Viewer: viewer, Type: domain.ChatTypePersonal, Members: e.Members()}, Save
	case event.GroupChatCreated:
		if exists {
			return row, Keep
		}
		return ChatCard{Chat: e.Chat, Viewer: viewer, Type: domain.ChatTypeGroup, Name: e.Name, Owner: e.Owner, Members: e.Members}, Save
	case event.MembersAdded:
		if !exists {
			row = ChatCard{Chat: e.Chat, Viewer: viewer, Type: e.ChatType, Name: e.Name, Owner: e.Owner}
		}
		row.Members = e.Members
		return row, Save
	}
	if !exists {
		return row, Keep
	}
	switch e := evt.(type) {
	case event.MembersRemoved:
		if lo.Contains(e.Removed, viewer) {
			return row, Drop
		}
		row.Members = e.Members
		return row, Save
	case event.UserLeftChat:
		if e.User == viewer {
			return row, Drop
		}
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
