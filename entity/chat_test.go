package entity

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

func groupChat(t *testing.T) Aggregate {
	t.Helper()
	agg, _ := handleAndApply(t, Chat{ID: "chat-1"}, command.CreateGroupChat{
		Chat:    "chat-1",
		Creator: "alice",
		Name:    "team",
		Members: []domain.UserID{"bob", "alice"},
	})
	return agg
}

func TestChat_Group_Creation_Fixes_Owner_And_Members(t *testing.T) {
	req := require.New(t)

	agg := groupChat(t)

	chat := agg.(Chat)
	req.Equal(domain.ChatTypeGroup, chat.Type)
	req.Equal(domain.UserID("alice"), chat.Owner)
	req.Equal([]domain.UserID{"alice", "bob"}, chat.Members)

	// Creating it again does not change its type
	agg, evt := handleAndApply(t, agg, command.CreatePersonalChat{Chat: "chat-1", Creator: "bob", Member: "clara"})
	req.Equal(event.TypeChatAlreadyExists, evt.Type())
	req.Equal(domain.ChatTypeGroup, agg.(Chat).Type)
}

func TestChat_Personal_Has_Two_Members(t *testing.T) {
	req := require.New(t)

	agg, evt := handleAndApply(t, Chat{ID: "chat-1"}, command.CreatePersonalChat{Chat: "chat-1", Creator: "alice", Member: "bob"})

	req.Equal(event.TypePersonalChatCreated, evt.Type())
	req.Equal([]domain.UserID{"alice", "bob"}, agg.(Chat).Members)

	// Members of a personal chat cannot change
	_, evt = handleAndApply(t, agg, command.AddMembers{Chat: "chat-1", Who: "alice", Members: []domain.UserID{"clara"}})
	req.Equal(event.ReasonPersonalChat, evt.(event.Rejection).RejectionReason())
}

func TestChat_Group_Deletion_Only_By_Owner(t *testing.T) {
	req := require.New(t)
	agg := groupChat(t)
	ref := domain.ChatRef{Deletion: domain.ChatDeletionID{Chat: "chat-1"}}

	// When a member who is not the owner deletes
	agg, evt := handleAndApply(t, agg, command.MarkChatAsDeleted{ChatRef: ref, Who: "bob"})

	// Then it is rejected
	rejected, ok := evt.(event.ChatCannotBeMarkedAsDeleted)
	req.True(ok)
	req.Equal(event.ReasonNotAuthorized, rejected.Reason)
	req.False(agg.(Chat).Deleted)

	// When the owner deletes
	agg, evt = handleAndApply(t, agg, command.MarkChatAsDeleted{ChatRef: ref, Who: "alice"})
	deleted, ok := evt.(event.ChatMarkedAsDeleted)
	req.True(ok)
	req.Equal(domain.ChatID("chat-1"), deleted.ChatID())
	req.True(agg.(Chat).Deleted)

	// Then a second deletion is rejected
	_, evt = handleAndApply(t, agg, command.MarkChatAsDeleted{ChatRef: ref, Who: "alice"})
	req.Equal(event.ReasonAlreadyDeleted, evt.(event.Rejection).RejectionReason())
}

func TestChat_Personal_Deletion_Only_By_Member(t *testing.T) {
	req := require.New(t)
	agg, _ := handleAndApply(t, Chat{ID: "chat-1"}, command.CreatePersonalChat{Chat: "chat-1", Creator: "alice", Member: "bob"})

	_, evt := handleAndApply(t, agg, command.MarkChatAsDeleted{ChatRef: domain.ChatRef{Chat: "chat-1"}, Who: "mallory"})
	req.Equal(event.ReasonNotAuthorized, evt.(event.Rejection).RejectionReason())

	_, evt = handleAndApply(t, agg, command.MarkChatAsDeleted{ChatRef: domain.ChatRef{Chat: "chat-1"}, Who: "bob"})
	req.Equal(event.TypeChatMarkedAsDeleted, evt.Type())
}

func TestChat_Membership_Changes(t *testing.T) {
	req := require.New(t)
	agg := groupChat(t)

	// Given the owner adds clara and an existing member
	agg, evt := handleAndApply(t, agg, command.AddMembers{Chat: "chat-1", Who: "alice", Members: []domain.UserID{"clara", "bob"}})
	added := evt.(event.MembersAdded)
	req.Equal([]domain.UserID{"clara"}, added.Added)
	req.Equal("team", added.Name)
	req.Equal([]domain.UserID{"alice", "bob", "clara"}, agg.(Chat).Members)

	// A non owner cannot remove
	_, evt = handleAndApply(t, agg, command.RemoveMembers{Chat: "chat-1", Who: "bob", Members: []domain.UserID{"clara"}})
	req.Equal(event.ReasonNotAuthorized, evt.(event.Rejection).RejectionReason())

	// The owner cannot be removed
	_, evt = handleAndApply(t, agg, command.RemoveMembers{Chat: "chat-1", Who: "alice", Members: []domain.UserID{"alice"}})
	req.Equal(event.ReasonOwnerCannotLeave, evt.(event.Rejection).RejectionReason())

	// When the owner removes bob and clara leaves
	agg, evt = handleAndApply(t, agg, command.RemoveMembers{Chat: "chat-1", Who: "alice", Members: []domain.UserID{"bob"}})
	req.Equal([]domain.UserID{"bob"}, evt.(event.MembersRemoved).Removed)
	agg, evt = handleAndApply(t, agg, command.LeaveChat{Chat: "chat-1", User: "clara"})
	req.Equal(event.TypeUserLeftChat, evt.Type())

	// Then only the owner is left, and the owner cannot leave
	req.Equal([]domain.UserID{"alice"}, agg.(Chat).Members)
	_, evt = handleAndApply(t, agg, command.LeaveChat{Chat: "chat-1", User: "alice"})
	req.Equal(event.ReasonOwnerCannotLeave, evt.(event.Rejection).RejectionReason())
}

func TestChat_Fold_Rebuilds_State(t *testing.T) {
	req := require.New(t)
	target := domain.Target{Kind: domain.KindChat, Key: "chat-1"}

	agg, err := Fold(target, []event.Event{
		event.GroupChatCreated{Chat: "chat-1", Owner: "alice", Name: "team", Members: []domain.UserID{"alice"}},
		event.MembershipCannotBeChanged{Chat: "chat-1", Who: "bob", Reason: event.ReasonNotAuthorized},
		event.MembersAdded{Chat: "chat-1", Who: "alice", Added: []domain.UserID{"bob"}, Members: []domain.UserID{"alice", "bob"}},
	})

	req.NoError(err)
	req.Equal(Chat{
		ID:      "chat-1",
		Type:    domain.ChatTypeGroup,
		Name:    "team",
		Owner:   "alice",
		Members: []domain.UserID{"alice", "bob"},
	}, agg)
}
