package event

import (
	"chat-saga/domain"
	"encoding/json"
)

// Type identifies the kind of an event.
type Type string

// Entity events.
const (
	TypeUserRegistered         Type = "user.registered"
	TypeUserAlreadyRegistered  Type = "user.already_registered"
	TypeEmailReserved          Type = "reserved_email.reserved"
	TypeEmailAlreadyReserved   Type = "reserved_email.already_reserved"
	TypePersonalChatCreated    Type = "chat.personal_created"
	TypeGroupChatCreated       Type = "chat.group_created"
	TypeChatAlreadyExists      Type = "chat.already_exists"
	TypeMembersAdded           Type = "chat.members_added"
	TypeMembersRemoved         Type = "chat.members_removed"
	TypeUserLeftChat           Type = "chat.user_left"
	TypeMembershipCannotChange Type = "chat.membership_cannot_change"
	TypeChatMarkedAsDeleted    Type = "chat.marked_as_deleted"
	TypeChatCannotBeDeleted    Type = "chat.cannot_be_marked_as_deleted"
	TypeMessagePosted          Type = "message.posted"
	TypeMessageCannotBePosted  Type = "message.cannot_be_posted"
	TypeMessageContentUpdated  Type = "message.content_updated"
	TypeMessageCannotBeUpdated Type = "message.content_cannot_be_updated"
	TypeMessageMarkedAsDeleted Type = "message.marked_as_deleted"
	TypeMessageCannotBeDeleted Type = "message.cannot_be_marked_as_deleted"
)

// Process events.
const (
	TypeAccountCreated        Type = "account_creation.created"
	TypeAccountCreationFailed Type = "account_creation.failed"
	TypeMessageSent           Type = "message_sending.sent"
	TypeMessageCannotBeSent   Type = "message_sending.failed"
	TypeMessageEdited         Type = "message_editing.edited"
	TypeMessageEditingFailed  Type = "message_editing.failed"
	TypeMessageRemoved        Type = "message_removal.removed"
	TypeMessageRemovalFailed  Type = "message_removal.failed"
	TypeChatDeleted           Type = "chat_deletion.deleted"
	TypeChatDeletionFailed    Type = "chat_deletion.failed"
)

type Event interface {
	Type() Type
}

// Rejection is an expected negative outcome of a command. It is stored and
// routed exactly like any other event.
type Rejection interface {
	Event
	RejectionReason() Reason
}

func IsRejection(e Event) bool {
	_, ok := e.(Rejection)
	return ok
}

type Reason string

const (
	ReasonNotFound         Reason = "not-found"
	ReasonAlreadyExists    Reason = "already-exists"
	ReasonAlreadyDeleted   Reason = "already-deleted"
	ReasonAlreadyReserved  Reason = "already-reserved"
	ReasonNotAuthor        Reason = "not-author"
	ReasonNotAuthorized    Reason = "not-authorized"
	ReasonNotAMember       Reason = "not-a-member"
	ReasonAlreadyMember    Reason = "already-member"
	ReasonPersonalChat     Reason = "personal-chat"
	ReasonOwnerCannotLeave Reason = "owner-cannot-leave"
	ReasonAlreadyProcessed Reason = "already-processed"
)

// Record is an event as appended to the log.
type Record struct {
	// Position is the global append position, starting at 1.
	Position uint64 `json:"position"`
	// Stream is the entity or process the event belongs to.
	Stream domain.Target `json:"stream"`
	// Seq is the position inside the stream, starting at 1.
	Seq uint64 `json:"seq"`
	// Cause is the position of the event whose reaction produced this one, 0 for client commands.
	Cause   uint64          `json:"cause,omitempty"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Event   Event           `json:"-"`
}

// Filter selects events for a subscriber. Empty Types matches every type.
type Filter struct {
	Types []Type
	Match func(Event) bool
}

func (f Filter) Accept(e Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == e.Type() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return f.Match == nil || f.Match(e)
}
