package command

import (
	"chat-saga/domain"
	"time"
)

// Retryable is a process command that starts a fresh attempt once the process
// addressed by its key has failed.
type Retryable interface {
	Command
	NextAttempt() Command
}

// CreateAccount starts the AccountCreation process of a user.
type CreateAccount struct {
	User        domain.UserID `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Email       domain.Email  `json:"email"`
}

func (c CreateAccount) Target() domain.Target {
	return domain.Target{Kind: domain.KindAccountCreation, Key: string(c.User)}
}

type SendMessage struct {
	Message domain.MessageID `json:"message_id"`
	Chat    domain.ChatID    `json:"chat_id"`
	User    domain.UserID    `json:"user_id"`
	Content string           `json:"content"`
	At      time.Time        `json:"at"`
}

func (c SendMessage) Target() domain.Target {
	return domain.Target{Kind: domain.KindMessageSending, Key: string(c.Message)}
}

type EditMessage struct {
	Editing domain.MessageEditingID `json:"editing_id"`
	Message domain.MessageID        `json:"message_id"`
	Chat    domain.ChatID           `json:"chat_id"`
	User    domain.UserID           `json:"user_id"`
	Content string                  `json:"content"`
	At      time.Time               `json:"at"`
}

func (c EditMessage) Target() domain.Target {
	return domain.Target{Kind: domain.KindMessageEditing, Key: string(c.Editing)}
}

type RemoveMessage struct {
	domain.MessageRef
	Chat domain.ChatID `json:"chat_id"`
	User domain.UserID `json:"user_id"`
}

func (c RemoveMessage) Target() domain.Target {
	return domain.Target{Kind: domain.KindMessageRemoval, Key: c.MessageRef.RemovalID().String()}
}

func (c RemoveMessage) NextAttempt() Command {
	c.MessageRef = domain.MessageRef{Removal: c.MessageRef.RemovalID().Next()}
	return c
}

type DeleteChat struct {
	domain.ChatRef
	User domain.UserID `json:"user_id"`
}

func (c DeleteChat) Target() domain.Target {
	return domain.Target{Kind: domain.KindChatDeletion, Key: c.ChatRef.DeletionID().String()}
}

func (c DeleteChat) NextAttempt() Command {
	c.ChatRef = domain.ChatRef{Deletion: c.ChatRef.DeletionID().Next()}
	return c
}
