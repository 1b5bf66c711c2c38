// Package command lists every command accepted by entities and processes.
// A command names its target; it never carries behaviour.
package command

import (
	"chat-saga/domain"
	"time"
)

type Command interface {
	Target() domain.Target
}

// RegisterUser fixes the identity of a user.
type RegisterUser struct {
	User        domain.UserID `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Email       domain.Email  `json:"email"`
}

func (c RegisterUser) Target() domain.Target {
	return domain.Target{Kind: domain.KindUser, Key: string(c.User)}
}

type ReserveEmail struct {
	Email domain.Email  `json:"email"`
	User  domain.UserID `json:"user_id"`
}

func (c ReserveEmail) Target() domain.Target {
	return domain.Target{Kind: domain.KindReservedEmail, Key: string(c.Email)}
}

type CreatePersonalChat struct {
	Chat    domain.ChatID `json:"chat_id"`
	Creator domain.UserID `json:"creator"`
	Member  domain.UserID `json:"member"`
}

func (c CreatePersonalChat) Target() domain.Target {
	return domain.Target{Kind: domain.KindChat, Key: string(c.Chat)}
}

type CreateGroupChat struct {
	Chat    domain.ChatID   `json:"chat_id"`
	Creator domain.UserID   `json:"creator"`
	Name    string          `json:"name"`
	Members []domain.UserID `json:"members"`
}

func (c CreateGroupChat) Target() domain.Target {
	return domain.Target{Kind: domain.KindChat, Key: string(c.Chat)}
}

type AddMembers struct {
	Chat    domain.ChatID   `json:"chat_id"`
	Who     domain.UserID   `json:"who"`
	Members []domain.UserID `json:"members"`
}

func (c AddMembers) Target() domain.Target {
	return domain.Target{Kind: domain.KindChat, Key: string(c.Chat)}
}

type RemoveMembers struct {
	Chat    domain.ChatID   `json:"chat_id"`
	Who     domain.UserID   `json:"who"`
	Members []domain.UserID `json:"members"`
}

func (c RemoveMembers) Target() domain.Target {
	return domain.Target{Kind: domain.KindChat, Key: string(c.Chat)}
}

type LeaveChat struct {
	Chat domain.ChatID `json:"chat_id"`
	User domain.UserID `json:"user_id"`
}

func (c LeaveChat) Target() domain.Target {
	return domain.Target{Kind: domain.KindChat, Key: string(c.Chat)}
}

// MarkChatAsDeleted is issued by the ChatDeletion process on behalf of Who.
type MarkChatAsDeleted struct {
	domain.ChatRef
	Who domain.UserID `json:"who"`
}

func (c MarkChatAsDeleted) Target() domain.Target {
	return domain.Target{Kind: domain.KindChat, Key: string(c.ChatRef.ChatID())}
}

type PostMessage struct {
	Message domain.MessageID `json:"message_id"`
	Chat    domain.ChatID    `json:"chat_id"`
	User    domain.UserID    `json:"user_id"`
	Content string           `json:"content"`
	At      time.Time        `json:"at"`
}

func (c PostMessage) Target() domain.Target {
	return domain.Target{Kind: domain.KindMessage, Key: string(c.Message)}
}

type UpdateMessageContent struct {
	Message domain.MessageID        `json:"message_id"`
	Editing domain.MessageEditingID `json:"editing_id,omitempty"`
	User    domain.UserID           `json:"user_id"`
	Content string                  `json:"content"`
	At      time.Time               `json:"at"`
}

func (c UpdateMessageContent) Target() domain.Target {
	return domain.Target{Kind: domain.KindMessage, Key: string(c.Message)}
}

// MarkMessageAsDeleted may be addressed through any message identifier shape.
// A non-empty Chat restricts the deletion to a message of that chat.
type MarkMessageAsDeleted struct {
	domain.MessageRef
	Chat domain.ChatID `json:"chat_id,omitempty"`
	Who  domain.UserID `json:"who"`
}

func (c MarkMessageAsDeleted) Target() domain.Target {
	return domain.Target{Kind: domain.KindMessage, Key: string(c.MessageRef.MessageID())}
}
