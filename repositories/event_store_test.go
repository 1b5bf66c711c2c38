package repositories

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newEventStore(t *testing.T) *EventStore {
	t.Helper()
	store, err := NewEventStore(openBadger(t), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStore_Append_And_Load_One_Stream(t *testing.T) {
	req := require.New(t)
	store := newEventStore(t)
	chat := domain.Target{Kind: domain.KindChat, Key: "chat-1"}
	other := domain.Target{Kind: domain.KindChat, Key: "chat-10"}

	// Given two events on a chat and one on a chat sharing its key prefix
	first, err := store.Append(chat, 0, 0, event.GroupChatCreated{Chat: "chat-1", Owner: "alice", Members: []domain.UserID{"alice"}})
	req.NoError(err)
	_, err = store.Append(other, 0, 0, event.GroupChatCreated{Chat: "chat-10", Owner: "bob", Members: []domain.UserID{"bob"}})
	req.NoError(err)
	second, err := store.Append(chat, 1, first.Position, event.MembersAdded{Chat: "chat-1", Who: "alice", Added: []domain.UserID{"bob"}})
	req.NoError(err)

	// When loading the chat
	records, err := store.Load(chat)

	// Then only its events come back, in order, decoded
	req.NoError(err)
	req.Len(records, 2)
	req.Equal(uint64(1), records[0].Seq)
	req.Equal(uint64(2), records[1].Seq)
	req.Equal(first.Position, records[1].Cause)
	req.Equal(second.Position, records[1].Position)
	req.IsType(event.MembersAdded{}, records[1].Event)

	version, err := store.Version(chat)
	req.NoError(err)
	req.Equal(uint64(2), version)
}

func TestEventStore_Append_Rejects_Stale_Version(t *testing.T) {
	req := require.New(t)
	store := newEventStore(t)
	user := domain.Target{Kind: domain.KindUser, Key: "alice"}

	_, err := store.Append(user, 0, 0, event.UserRegistered{User: "alice"})
	req.NoError(err)

	// When a writer believes the stream is still empty
	_, err = store.Append(user, 0, 0, event.UserRegistered{User: "alice"})

	// Then the append is refused
	req.ErrorIs(err, errors.ErrVersionConflict)
	records, err := store.Load(user)
	req.NoError(err)
	req.Len(records, 1)
}

func TestEventStore_ReadAll_Pages_In_Append_Order(t *testing.T) {
	req := require.New(t)
	store := newEventStore(t)

	for i, user := range []domain.UserID{"a", "b", "c", "d", "e"} {
		_, err := store.Append(domain.Target{Kind: domain.KindUser, Key: string(user)}, 0, 0, event.UserRegistered{User: user})
		req.NoError(err, "append %d", i)
	}

	page, err := store.ReadAll(0, 2)
	req.NoError(err)
	req.Len(page, 2)
	req.Equal(domain.UserID("a"), page[0].Event.(event.UserRegistered).User)

	rest, err := store.ReadAll(page[1].Position, 0)
	req.NoError(err)
	req.Len(rest, 3)
	req.Equal(domain.UserID("e"), rest[2].Event.(event.UserRegistered).User)
}

func TestEventStore_Observers_See_Concurrent_Appends_In_Position_Order(t *testing.T) {
	req := require.New(t)
	store := newEventStore(t)

	var mu sync.Mutex
	var observed []uint64
	store.OnAppend(func(record event.Record) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, record.Position)
	})

	// Given appends racing on distinct streams
	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chat := domain.ChatID(fmt.Sprintf("chat-%d", i))
			_, err := store.Append(domain.Target{Kind: domain.KindChat, Key: string(chat)}, 0, 0,
				event.GroupChatCreated{Chat: chat, Owner: "alice", Members: []domain.UserID{"alice"}})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Then observers saw the records in the order the log returns them
	records, err := store.ReadAll(0, 0)
	req.NoError(err)
	req.Len(records, 50)
	logged := make([]uint64, 0, len(records))
	for _, record := range records {
		logged = append(logged, record.Position)
	}
	req.Equal(logged, observed)
	req.IsIncreasing(observed)
}
