package runtime

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"chat-saga/mocks"
	"chat-saga/repositories"
	"chat-saga/saga"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newEngine(t *testing.T, querier *mocks.MockQuerier) (*Engine, *repositories.EventStore, repositories.ProcessStore) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	events, err := repositories.NewEventStore(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = events.Close()
		_ = db.Close()
	})
	processes := repositories.NewProcessStore(db)
	return NewEngine(events, processes, querier, slog.Default()), events, processes
}

func TestEngine_Execute_Persists_Rejections(t *testing.T) {
	req := require.New(t)
	engine, events, _ := newEngine(t, nil)
	ctx := context.Background()
	register := command.RegisterUser{User: "alice", DisplayName: "Alice", Email: "alice@x"}

	// Given a registered user
	first, err := engine.Execute(ctx, register, 0)
	req.NoError(err)
	req.IsType(event.UserRegistered{}, first.Event)

	// When the registration is repeated with a cause
	second, err := engine.Execute(ctx, register, first.Records[0].Position)

	// Then the rejection is appended after the success and carries the cause
	req.NoError(err)
	req.IsType(event.UserAlreadyRegistered{}, second.Event)
	req.Len(second.Records, 1)
	req.Equal(uint64(2), second.Records[0].Seq)
	req.Equal(first.Records[0].Position, second.Records[0].Cause)
	records, err := events.Load(register.Target())
	req.NoError(err)
	req.Len(records, 2)
}

func TestEngine_Execute_Without_Target(t *testing.T) {
	req := require.New(t)
	engine, _, _ := newEngine(t, nil)

	_, err := engine.Execute(context.Background(), command.PostMessage{Chat: "c"}, 0)

	req.ErrorIs(err, errors.ErrMissingTarget)
}

func TestEngine_Process_Lifecycle(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	querier := mocks.NewMockQuerier(ctrl)
	engine, events, processes := newEngine(t, querier)
	ctx := context.Background()
	send := command.SendMessage{Message: "m1", Chat: "c", User: "alice", Content: "hi", At: time.Now()}

	// Given alice is a member of the chat
	querier.EXPECT().ChatMembers(gomock.Any(), domain.ChatID("c")).Return([]domain.UserID{"alice"}, true, nil)

	// When the sending is started
	started, err := engine.Execute(ctx, send, 0)

	// Then the post is forwarded and nothing is recorded yet
	req.NoError(err)
	req.Nil(started.Event)
	req.Empty(started.Records)
	req.Len(started.Commands, 1)
	post := started.Commands[0].(command.PostMessage)

	// When the message entity answers and the record is routed back
	posted, err := engine.Execute(ctx, post, 0)
	req.NoError(err)
	finished, err := engine.React(ctx, send.Target(), posted.Records[0])

	// Then the process is archived with its terminal event caused by the post
	req.NoError(err)
	req.IsType(event.MessageSent{}, finished.Event)
	req.Equal(posted.Records[0].Position, finished.Records[0].Cause)
	state, found, err := processes.Get(send.Target())
	req.NoError(err)
	req.True(found)
	p, err := saga.Load(send.Target(), state)
	req.NoError(err)
	req.Equal(saga.StatusSucceeded, p.Status())

	// When the record is delivered again
	again, err := engine.React(ctx, send.Target(), posted.Records[0])

	// Then the archived process ignores it
	req.NoError(err)
	req.Nil(again.Event)
	version, err := events.Version(send.Target())
	req.NoError(err)
	req.Equal(uint64(1), version)
}

func TestEngine_React_Ignores_Unknown_Process(t *testing.T) {
	req := require.New(t)
	engine, _, processes := newEngine(t, nil)
	target := domain.Target{Kind: domain.KindMessageSending, Key: "ghost"}

	effect, err := engine.React(context.Background(), target, event.Record{Position: 3, Event: event.MessagePosted{Message: "ghost"}})

	req.NoError(err)
	req.Nil(effect.Event)
	_, found, err := processes.Get(target)
	req.NoError(err)
	req.False(found)
}

func TestEngine_Failed_Removal_Is_Retried_Under_Next_Attempt(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	querier := mocks.NewMockQuerier(ctrl)
	engine, _, processes := newEngine(t, querier)
	ctx := context.Background()
	querier.EXPECT().ChatMembers(gomock.Any(), domain.ChatID("c")).Return([]domain.UserID{"alice"}, true, nil).Times(2)

	// Given a removal of m1 failed for an outsider
	first, err := engine.Execute(ctx, command.RemoveMessage{MessageRef: domain.MessageRef{Message: "m1"}, Chat: "c", User: "eve"}, 0)
	req.NoError(err)
	req.IsType(event.MessageRemovalFailed{}, first.Event)

	// When a member removes the same message
	second, err := engine.Execute(ctx, command.RemoveMessage{MessageRef: domain.MessageRef{Message: "m1"}, Chat: "c", User: "alice"}, 0)

	// Then a second attempt is started and forwards the deletion under its own id
	req.NoError(err)
	req.Nil(second.Event)
	req.Len(second.Commands, 1)
	mark := second.Commands[0].(command.MarkMessageAsDeleted)
	removal, ok := mark.OperationID().Removal()
	req.True(ok)
	req.Equal(domain.MessageRemovalID{Message: "m1", Attempt: 1}, removal)
	req.Equal(domain.MessageID("m1"), mark.MessageID())

	state, found, err := processes.Get(domain.Target{Kind: domain.KindMessageRemoval, Key: "m1#1"})
	req.NoError(err)
	req.True(found)
	p, err := saga.Load(domain.Target{Kind: domain.KindMessageRemoval, Key: "m1#1"}, state)
	req.NoError(err)
	req.Equal(saga.StatusAwaiting, p.Status())
}
