package entity

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

// handleAndApply runs a command and folds the produced event, like the runtime does.
func handleAndApply(t *testing.T, agg Aggregate, cmd command.Command) (Aggregate, event.Event) {
	t.Helper()
	evt, err := agg.Handle(cmd)
	require.NoError(t, err)
	return agg.Apply(evt), evt
}

func TestReservedEmail_Only_First_User_Succeeds(t *testing.T) {
	req := require.New(t)
	email := domain.Email("a@x")
	users := []domain.UserID{"alice", "bob", "clara", "dave"}

	// Given a fresh reserved email
	agg, err := New(domain.Target{Kind: domain.KindReservedEmail, Key: string(email)})
	req.NoError(err)

	// When every user tries to reserve it
	successes := 0
	for i, user := range users {
		var evt event.Event
		agg, evt = handleAndApply(t, agg, command.ReserveEmail{Email: email, User: user})
		switch e := evt.(type) {
		case event.EmailReserved:
			successes++
			req.Equal(users[0], e.User)
		case event.EmailAlreadyReserved:
			req.NotZero(i)
			req.Equal(users[0], e.Owner)
			req.Equal(event.ReasonAlreadyReserved, e.RejectionReason())
		default:
			req.Failf("unexpected event", "%T", evt)
		}
	}

	// Then exactly one succeeded
	req.Equal(1, successes)
	req.Equal(users[0], agg.(ReservedEmail).Owner)
}

func TestReservedEmail_Same_User_Can_Reserve_Again(t *testing.T) {
	req := require.New(t)
	agg := Aggregate(ReservedEmail{Email: "a@x"})

	agg, _ = handleAndApply(t, agg, command.ReserveEmail{Email: "a@x", User: "alice"})
	_, evt := handleAndApply(t, agg, command.ReserveEmail{Email: "a@x", User: "alice"})

	req.Equal(event.EmailReserved{Email: "a@x", User: "alice"}, evt)
}

func TestUser_Identity_Is_Immutable(t *testing.T) {
	req := require.New(t)
	agg := Aggregate(User{ID: "alice"})

	agg, evt := handleAndApply(t, agg, command.RegisterUser{User: "alice", DisplayName: "A", Email: "a@x"})
	req.Equal(event.TypeUserRegistered, evt.Type())

	// When registering again with another name
	agg, evt = handleAndApply(t, agg, command.RegisterUser{User: "alice", DisplayName: "Other", Email: "o@x"})

	// Then it is rejected and nothing changes
	req.True(event.IsRejection(evt))
	req.Equal("A", agg.(User).DisplayName)
	req.Equal(domain.Email("a@x"), agg.(User).Email)
}

func TestEntity_Rejects_Foreign_Command(t *testing.T) {
	req := require.New(t)

	_, err := User{}.Handle(command.ReserveEmail{Email: "a@x", User: "alice"})
	req.Error(err)

	_, err = New(domain.Target{Kind: domain.KindChatDeletion, Key: "chat"})
	req.Error(err)
}
