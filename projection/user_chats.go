package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"context"

	"github.com/samber/lo"
)

const UserChatsView = "user_chats"

// UserChatList lists the previews of the chats of a user, in the order the user joined them.
type UserChatList struct {
	User  domain.UserID `json:"user_id"`
	Chats []ChatPreview `json:"chats"`
}

// UserChats is rebuilt from the state changes of the ChatPreview view rather
// than from chat events.
type UserChats struct {
	projector Projector[UserChatList]
}

func NewUserChats(store Store) *UserChats {
	v := &UserChats{}
	v.projector = Projector[UserChatList]{
		Table: NewTable[UserChatList](store, UserChatsView),
		route: func(_ context.Context, evt event.Event) ([]string, error) {
			switch e := evt.(type) {
			case event.UserRegistered:
				return single(string(e.User))
			case PreviewChanged:
				return lo.Map(e.Members(), func(user domain.UserID, _ int) string { return string(user) }), nil
			}
			return nil, nil
		},
		apply: v.apply,
	}
	return v
}

func (v *UserChats) Name() string { return UserChatsView }

func (v *UserChats) Follows() []string { return []string{ChatPreviewView} }

func (v *UserChats) Project(ctx context.Context, evt event.Event) ([]event.Event, error) {
	_, err := v.projector.Project(ctx, evt)
	return nil, err
}

func (v *UserChats) Chats(user domain.UserID) (UserChatList, bool, error) {
	return v.projector.Table.Get(string(user))
}

func (v *UserChats) apply(key string, row UserChatList, exists bool, evt event.Event) (UserChatList, Action) {
	user := domain.UserID(key)
	switch e := evt.(type) {
	case event.UserRegistered:
		if exists {
			return row, Keep
		}
		return UserChatList{User: user, Chats: []ChatPreview{}}, Save

	case PreviewChanged:
		if !exists {
			row = UserChatList{User: user, Chats: []ChatPreview{}}
		}
		_, index, listed := lo.FindIndexOf(row.Chats, func(preview ChatPreview) bool { return preview.Chat == e.Chat })
		member := e.After != nil && lo.Contains(e.After.Members, user)
		switch {
		case member && listed:
			row.Chats[index] = *e.After
		case member:
			row.Chats = append(row.Chats, *e.After)
		case listed:
			row.Chats = append(row.Chats[:index:index], row.Chats[index+1:]...)
		default:
			return row, Keep
		}
		return row, Save
	}
	return row, Keep
}
