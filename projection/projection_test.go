package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"chat-saga/repositories"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T) Store {
	t.Helper()
	return repositories.NewViewStore(openDB(t), slog.Default())
}

func project(t *testing.T, v View, events ...event.Event) {
	t.Helper()
	for _, evt := range events {
		_, err := v.Project(context.Background(), evt)
		require.NoError(t, err)
	}
}

func posted(id domain.MessageID, user domain.UserID, content string, minute int) event.MessagePosted {
	return event.MessagePosted{
		Message:    id,
		Chat:       "chat-1",
		User:       user,
		Content:    content,
		WhenPosted: t0.Add(time.Duration(minute) * time.Minute),
	}
}

func deleted(id domain.MessageID) event.MessageMarkedAsDeleted {
	return event.MessageMarkedAsDeleted{MessageRef: domain.MessageRef{Message: id}, Chat: "chat-1", Who: "alice"}
}

func TestChatPreview_Tracks_Last_Message(t *testing.T) {
	req := require.New(t)
	previews := NewChatPreviews(newStore(t))

	// Given three messages sent to a chat
	project(t, previews,
		event.PersonalChatCreated{Chat: "chat-1", Creator: "alice", Member: "bob"},
		posted("m1", "alice", "one", 1),
		posted("m2", "bob", "two", 2),
		posted("m3", "alice", "three", 3),
	)
	preview, found, err := previews.Preview("chat-1")
	req.NoError(err)
	req.True(found)
	req.Equal(domain.MessageID("m3"), preview.LastMessage.Message)

	// When a message that is not the last one is edited or deleted
	project(t, previews,
		event.MessageContentUpdated{Message: "m2", Chat: "chat-1", User: "bob", Content: "2"},
		deleted("m1"),
	)

	// Then the preview is unchanged
	unchanged, _, err := previews.Preview("chat-1")
	req.NoError(err)
	req.Equal(preview, unchanged)

	// When the last message is edited, then deleted
	project(t, previews, event.MessageContentUpdated{Message: "m3", Chat: "chat-1", User: "alice", Content: "3"})
	edited, _, err := previews.Preview("chat-1")
	req.NoError(err)
	req.Equal("3", edited.LastMessage.Content)

	project(t, previews, deleted("m3"))

	// Then the last message is cleared
	cleared, _, err := previews.Preview("chat-1")
	req.NoError(err)
	req.Nil(cleared.LastMessage)
}

func TestChatPreview_Emits_Before_And_After(t *testing.T) {
	req := require.New(t)
	previews := NewChatPreviews(newStore(t))
	ctx := context.Background()

	emitted, err := previews.Project(ctx, event.GroupChatCreated{Chat: "chat-1", Owner: "alice", Name: "team", Members: []domain.UserID{"alice"}})
	req.NoError(err)
	req.Len(emitted, 1)
	created := emitted[0].(PreviewChanged)
	req.Nil(created.Before)
	req.Equal([]domain.UserID{"alice"}, created.After.Members)

	emitted, err = previews.Project(ctx, event.ChatMarkedAsDeleted{ChatRef: domain.ChatRef{Chat: "chat-1"}, Who: "alice"})
	req.NoError(err)
	dropped := emitted[0].(PreviewChanged)
	req.NotNil(dropped.Before)
	req.Nil(dropped.After)

	// An edit of an unknown message changes nothing and emits nothing
	emitted, err = previews.Project(ctx, event.MessageContentUpdated{Message: "m9", Chat: "chat-1"})
	req.NoError(err)
	req.Empty(emitted)
}

func TestChatCard_Fans_Out_To_Card_Holders(t *testing.T) {
	req := require.New(t)
	cards := NewChatCards(newStore(t))

	// Given a group chat extended with clara
	project(t, cards,
		event.GroupChatCreated{Chat: "chat-1", Owner: "alice", Name: "team", Members: []domain.UserID{"alice", "bob"}},
		event.MembersAdded{
			Chat: "chat-1", Who: "alice", ChatType: domain.ChatTypeGroup, Name: "team", Owner: "alice",
			Added: []domain.UserID{"clara"}, Members: []domain.UserID{"alice", "bob", "clara"},
		},
	)
	all, err := cards.Cards("chat-1")
	req.NoError(err)
	req.Len(all, 3)

	// Then the newcomer card is built from the event alone
	clara, found, err := cards.Card("chat-1", "clara")
	req.NoError(err)
	req.True(found)
	req.Equal("team", clara.Name)
	req.Equal(domain.UserID("alice"), clara.Owner)

	// When a message is posted, every holder sees it
	project(t, cards, posted("m1", "bob", "hello", 1))
	all, err = cards.Cards("chat-1")
	req.NoError(err)
	for _, card := range all {
		req.Equal(domain.MessageID("m1"), card.LastMessage.Message, "viewer %s", card.Viewer)
	}

	// When bob is removed, his card disappears and the others follow the membership
	project(t, cards, event.MembersRemoved{Chat: "chat-1", Who: "alice", Removed: []domain.UserID{"bob"}, Members: []domain.UserID{"alice", "clara"}})
	_, found, err = cards.Card("chat-1", "bob")
	req.NoError(err)
	req.False(found)
	alice, _, err := cards.Card("chat-1", "alice")
	req.NoError(err)
	req.Equal([]domain.UserID{"alice", "clara"}, alice.Members)

	// When the chat is deleted, no card is left
	project(t, cards, event.ChatMarkedAsDeleted{ChatRef: domain.ChatRef{Chat: "chat-1"}, Who: "alice"})
	all, err = cards.Cards("chat-1")
	req.NoError(err)
	req.Empty(all)
}

func TestUserChats_Follows_Chat_Previews(t *testing.T) {
	req := require.New(t)
	store := newStore(t)
	userChats := NewUserChats(store)
	pipeline := NewPipeline(NewChatPreviews(store), userChats)
	ctx := context.Background()

	for _, evt := range []event.Event{
		event.UserRegistered{User: "alice", DisplayName: "A", Email: "a@x"},
		event.UserRegistered{User: "bob", DisplayName: "B", Email: "b@x"},
		event.PersonalChatCreated{Chat: "chat-1", Creator: "alice", Member: "bob"},
		event.GroupChatCreated{Chat: "chat-2", Owner: "bob", Name: "team", Members: []domain.UserID{"bob"}},
		posted("m1", "alice", "hi", 1),
	} {
		req.NoError(pipeline.Project(ctx, evt))
	}

	// Then bob lists both chats in joining order, with the last message of the first one
	bob, found, err := userChats.Chats("bob")
	req.NoError(err)
	req.True(found)
	req.Len(bob.Chats, 2)
	req.Equal(domain.ChatID("chat-1"), bob.Chats[0].Chat)
	req.Equal("hi", bob.Chats[0].LastMessage.Content)
	req.Equal(domain.ChatID("chat-2"), bob.Chats[1].Chat)

	alice, _, err := userChats.Chats("alice")
	req.NoError(err)
	req.Len(alice.Chats, 1)

	// When the personal chat is deleted it leaves both lists
	req.NoError(pipeline.Project(ctx, event.ChatMarkedAsDeleted{ChatRef: domain.ChatRef{Chat: "chat-1"}, Who: "alice"}))
	bob, _, err = userChats.Chats("bob")
	req.NoError(err)
	req.Len(bob.Chats, 1)
	req.Equal(domain.ChatID("chat-2"), bob.Chats[0].Chat)
	alice, _, err = userChats.Chats("alice")
	req.NoError(err)
	req.Empty(alice.Chats)
}

func TestMessageView_Timeline_And_Live_Messages(t *testing.T) {
	req := require.New(t)
	messages := NewMessageView(newStore(t))

	project(t, messages,
		posted("zz", "alice", "first", 1),
		posted("aa", "bob", "second", 2),
		posted("mm", "alice", "third", 3),
		deleted("aa"),
	)

	timeline, err := messages.Timeline("chat-1", true)
	req.NoError(err)
	req.Len(timeline, 3)
	req.Equal(domain.MessageID("zz"), timeline[0].Message)
	req.True(timeline[1].Deleted)

	live, err := messages.LiveMessages("chat-1")
	req.NoError(err)
	req.Equal([]domain.MessageID{"zz", "mm"}, live)

	none, err := messages.LiveMessages("chat-2")
	req.NoError(err)
	req.Empty(none)
}

func TestChatMembers_Deleted_Chat_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	members := NewChatMembers(newStore(t))

	project(t, members, event.PersonalChatCreated{Chat: "chat-1", Creator: "alice", Member: "bob"})
	list, found, err := members.Members("chat-1")
	req.NoError(err)
	req.True(found)
	req.Equal([]domain.UserID{"alice", "bob"}, list)

	project(t, members, event.ChatMarkedAsDeleted{ChatRef: domain.ChatRef{Deletion: domain.ChatDeletionID{Chat: "chat-1"}}})
	_, found, err = members.Members("chat-1")
	req.NoError(err)
	req.False(found)
}

func TestMessageSearch_Follows_Message_Lifecycle(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	req.NoError(err)
	defer writer.Close()
	index := repositories.NewMessageIndex(writer, slog.Default(), 10)
	search := NewMessageSearch(index)

	project(t, search,
		posted("m1", "alice", "ship it", 1),
		posted("m2", "bob", "not yet", 2),
		event.MessageContentUpdated{Message: "m2", Chat: "chat-1", User: "bob", Content: "ship it now"},
		deleted("m1"),
	)

	ids, err := index.Search(context.Background(), "chat-1", "ship")
	req.NoError(err)
	req.Equal([]domain.MessageID{"m2"}, ids)
}

func TestReplay_Rebuilds_Identical_Rows(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	events, err := repositories.NewEventStore(openDB(t), slog.Default())
	req.NoError(err)
	defer events.Close()

	chat := domain.Target{Kind: domain.KindChat, Key: "chat-1"}
	_, err = events.Append(chat, 0, 0, event.PersonalChatCreated{Chat: "chat-1", Creator: "alice", Member: "bob"})
	req.NoError(err)
	for i, id := range []domain.MessageID{"m1", "m2", "m3"} {
		_, err = events.Append(domain.Target{Kind: domain.KindMessage, Key: string(id)}, 0, 0, posted(id, "alice", string(id), i))
		req.NoError(err)
	}
	_, err = events.Append(domain.Target{Kind: domain.KindMessage, Key: "m3"}, 1, 0, deleted("m3"))
	req.NoError(err)

	rebuild := func() (ChatPreview, UserChatList) {
		store := newStore(t)
		previews, userChats := NewChatPreviews(store), NewUserChats(store)
		last, err := Replay(ctx, events, NewPipeline(previews, userChats, NewMessageView(store)), ReplayOptions{})
		req.NoError(err)
		req.NotZero(last)
		preview, found, err := previews.Preview("chat-1")
		req.NoError(err)
		req.True(found)
		list, _, err := userChats.Chats("bob")
		req.NoError(err)
		return preview, list
	}

	firstPreview, firstList := rebuild()
	secondPreview, secondList := rebuild()

	req.Equal(firstPreview, secondPreview)
	req.Equal(firstList, secondList)
	req.Nil(firstPreview.LastMessage)
}

func TestReplay_Stops_At_Position(t *testing.T) {
	req := require.New(t)
	events, err := repositories.NewEventStore(openDB(t), slog.Default())
	req.NoError(err)
	defer events.Close()

	var positions []uint64
	for _, user := range []domain.UserID{"a", "b", "c"} {
		record, err := events.Append(domain.Target{Kind: domain.KindUser, Key: string(user)}, 0, 0, event.UserRegistered{User: user})
		req.NoError(err)
		positions = append(positions, record.Position)
	}

	userChats := NewUserChats(newStore(t))
	last, err := Replay(context.Background(), events, NewPipeline(userChats), ReplayOptions{UntilPosition: positions[1]})

	req.NoError(err)
	req.Equal(positions[1], last)
	_, found, err := userChats.Chats("c")
	req.NoError(err)
	req.False(found)
}
