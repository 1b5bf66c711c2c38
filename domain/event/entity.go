package event

import (
	"chat-saga/domain"
	"time"
)

type UserRegistered struct {
	User        domain.UserID `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Email       domain.Email  `json:"email"`
}

func (UserRegistered) Type() Type { return TypeUserRegistered }

type UserAlreadyRegistered struct {
	User   domain.UserID `json:"user_id"`
	Reason Reason        `json:"reason"`
}

func (UserAlreadyRegistered) Type() Type               { return TypeUserAlreadyRegistered }
func (e UserAlreadyRegistered) RejectionReason() Reason { return e.Reason }

type EmailReserved struct {
	Email domain.Email  `json:"email"`
	User  domain.UserID `json:"user_id"`
}

func (EmailReserved) Type() Type { return TypeEmailReserved }

// EmailAlreadyReserved is raised for User when Owner holds the email.
type EmailAlreadyReserved struct {
	Email  domain.Email  `json:"email"`
	User   domain.UserID `json:"user_id"`
	Owner  domain.UserID `json:"owner"`
	Reason Reason        `json:"reason"`
}

func (EmailAlreadyReserved) Type() Type               { return TypeEmailAlreadyReserved }
func (e EmailAlreadyReserved) RejectionReason() Reason { return e.Reason }

type PersonalChatCreated struct {
	Chat    domain.ChatID `json:"chat_id"`
	Creator domain.UserID `json:"creator"`
	Member  domain.UserID `json:"member"`
}

func (PersonalChatCreated) Type() Type { return TypePersonalChatCreated }

func (e PersonalChatCreated) Members() []domain.UserID {
	return []domain.UserID{e.Creator, e.Member}
}

type GroupChatCreated struct {
	Chat    domain.ChatID   `json:"chat_id"`
	Owner   domain.UserID   `json:"owner"`
	Name    string          `json:"name"`
	Members []domain.UserID `json:"members"`
}

func (GroupChatCreated) Type() Type { return TypeGroupChatCreated }

type ChatAlreadyExists struct {
	Chat   domain.ChatID `json:"chat_id"`
	Who    domain.UserID `json:"who"`
	Reason Reason        `json:"reason"`
}

func (ChatAlreadyExists) Type() Type               { return TypeChatAlreadyExists }
func (e ChatAlreadyExists) RejectionReason() Reason { return e.Reason }

// MembersAdded carries the chat metadata so a newcomer's views can be built from it alone.
type MembersAdded struct {
	Chat     domain.ChatID   `json:"chat_id"`
	Who      domain.UserID   `json:"who"`
	ChatType domain.ChatType `json:"chat_type"`
	Name     string          `json:"name"`
	Owner    domain.UserID   `json:"owner"`
	Added    []domain.UserID `json:"added"`
	Members  []domain.UserID `json:"members"`
}

func (MembersAdded) Type() Type { return TypeMembersAdded }

type MembersRemoved struct {
	Chat    domain.ChatID   `json:"chat_id"`
	Who     domain.UserID   `json:"who"`
	Removed []domain.UserID `json:"removed"`
	Members []domain.UserID `json:"members"`
}

func (MembersRemoved) Type() Type { return TypeMembersRemoved }

type UserLeftChat struct {
	Chat    domain.ChatID   `json:"chat_id"`
	User    domain.UserID   `json:"user_id"`
	Members []domain.UserID `json:"members"`
}

func (UserLeftChat) Type() Type { return TypeUserLeftChat }

type MembershipCannotBeChanged struct {
	Chat   domain.ChatID `json:"chat_id"`
	Who    domain.UserID `json:"who"`
	Reason Reason        `json:"reason"`
}

func (MembershipCannotBeChanged) Type() Type               { return TypeMembershipCannotChange }
func (e MembershipCannotBeChanged) RejectionReason() Reason { return e.Reason }

type ChatMarkedAsDeleted struct {
	domain.ChatRef
	Who     domain.UserID   `json:"who"`
	Members []domain.UserID `json:"members"`
}

func (ChatMarkedAsDeleted) Type() Type { return TypeChatMarkedAsDeleted }

type ChatCannotBeMarkedAsDeleted struct {
	domain.ChatRef
	Who    domain.UserID `json:"who"`
	Reason Reason        `json:"reason"`
}

func (ChatCannotBeMarkedAsDeleted) Type() Type               { return TypeChatCannotBeDeleted }
func (e ChatCannotBeMarkedAsDeleted) RejectionReason() Reason { return e.Reason }

type MessagePosted struct {
	Message    domain.MessageID `json:"message_id"`
	Chat       domain.ChatID    `json:"chat_id"`
	User       domain.UserID    `json:"user_id"`
	Content    string           `json:"content"`
	WhenPosted time.Time        `json:"when_posted"`
}

func (MessagePosted) Type() Type { return TypeMessagePosted }

type MessageCannotBePosted struct {
	Message domain.MessageID `json:"message_id"`
	Chat    domain.ChatID    `json:"chat_id"`
	User    domain.UserID    `json:"user_id"`
	Reason  Reason           `json:"reason"`
}

func (MessageCannotBePosted) Type() Type               { return TypeMessageCannotBePosted }
func (e MessageCannotBePosted) RejectionReason() Reason { return e.Reason }

type MessageContentUpdated struct {
	Message     domain.MessageID        `json:"message_id"`
	Editing     domain.MessageEditingID `json:"editing_id,omitempty"`
	Chat        domain.ChatID           `json:"chat_id"`
	User        domain.UserID           `json:"user_id"`
	Content     string                  `json:"content"`
	WhenUpdated time.Time               `json:"when_updated"`
}

func (MessageContentUpdated) Type() Type { return TypeMessageContentUpdated }

type MessageContentCannotBeUpdated struct {
	Message domain.MessageID        `json:"message_id"`
	Editing domain.MessageEditingID `json:"editing_id,omitempty"`
	User    domain.UserID           `json:"user_id"`
	Reason  Reason                  `json:"reason"`
}

func (MessageContentCannotBeUpdated) Type() Type               { return TypeMessageCannotBeUpdated }
func (e MessageContentCannotBeUpdated) RejectionReason() Reason { return e.Reason }

type MessageMarkedAsDeleted struct {
	domain.MessageRef
	Chat domain.ChatID `json:"chat_id"`
	Who  domain.UserID `json:"who"`
}

func (MessageMarkedAsDeleted) Type() Type { return TypeMessageMarkedAsDeleted }

type MessageCannotBeMarkedAsDeleted struct {
	domain.MessageRef
	Who    domain.UserID `json:"who"`
	Reason Reason        `json:"reason"`
}

func (MessageCannotBeMarkedAsDeleted) Type() Type               { return TypeMessageCannotBeDeleted }
func (e MessageCannotBeMarkedAsDeleted) RejectionReason() Reason { return e.Reason }
