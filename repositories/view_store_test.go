package repositories

import (
	"chat-saga/domain"
	"context"
	"log/slog"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"
)

func TestViewStore_Scan_By_Prefix(t *testing.T) {
	req := require.New(t)
	store := NewViewStore(openBadger(t), slog.Default())

	req.NoError(store.Put("chat_card", "chat-1:alice", []byte("a")))
	req.NoError(store.Put("chat_card", "chat-1:bob", []byte("b")))
	req.NoError(store.Put("chat_card", "chat-2:alice", []byte("c")))
	req.NoError(store.Put("chat_preview", "chat-1:", []byte("d")))

	var keys []string
	err := store.Scan("chat_card", "chat-1:", func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})

	req.NoError(err)
	req.Equal([]string{"chat-1:alice", "chat-1:bob"}, keys)

	// When a row is deleted it is not found anymore
	req.NoError(store.Delete("chat_card", "chat-1:bob"))
	_, found, err := store.Get("chat_card", "chat-1:bob")
	req.NoError(err)
	req.False(found)

	value, found, err := store.Get("chat_card", "chat-1:alice")
	req.NoError(err)
	req.True(found)
	req.Equal([]byte("a"), value)
}

func TestProcessStore_Get_Put(t *testing.T) {
	req := require.New(t)
	store := NewProcessStore(openBadger(t))
	target := domain.Target{Kind: domain.KindMessageSending, Key: "msg-1"}

	_, found, err := store.Get(target)
	req.NoError(err)
	req.False(found)

	req.NoError(store.Put(target, []byte(`{"status":"awaiting"}`)))
	state, found, err := store.Get(target)
	req.NoError(err)
	req.True(found)
	req.JSONEq(`{"status":"awaiting"}`, string(state))
}

func TestMessageIndex_Search_Within_Chat(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	req.NoError(err)
	defer writer.Close()
	index := NewMessageIndex(writer, slog.Default(), 10)

	// Given messages in two chats
	req.NoError(index.Index("m1", "chat-1", "deploy the release tonight"))
	req.NoError(index.Index("m2", "chat-1", "lunch at noon"))
	req.NoError(index.Index("m3", "chat-2", "release notes are ready"))

	// When searching a word in the first chat
	ids, err := index.Search(context.Background(), "chat-1", "release")

	// Then only its matching message is found
	req.NoError(err)
	req.Equal([]domain.MessageID{"m1"}, ids)

	// When the content changes and another message is removed
	req.NoError(index.Index("m2", "chat-1", "release party at noon"))
	req.NoError(index.Remove("m1"))

	ids, err = index.Search(context.Background(), "chat-1", "release")
	req.NoError(err)
	req.Equal([]domain.MessageID{"m2"}, ids)
}
