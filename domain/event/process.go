package event

import "chat-saga/domain"

type AccountCreated struct {
	User  domain.UserID `json:"user_id"`
	Email domain.Email  `json:"email"`
}

func (AccountCreated) Type() Type { return TypeAccountCreated }

type AccountCreationFailed struct {
	User   domain.UserID `json:"user_id"`
	Email  domain.Email  `json:"email"`
	Reason Reason        `json:"reason"`
}

func (AccountCreationFailed) Type() Type               { return TypeAccountCreationFailed }
func (e AccountCreationFailed) RejectionReason() Reason { return e.Reason }

type MessageSent struct {
	Message domain.MessageID `json:"message_id"`
	Chat    domain.ChatID    `json:"chat_id"`
	User    domain.UserID    `json:"user_id"`
}

func (MessageSent) Type() Type { return TypeMessageSent }

type MessageCannotBeSent struct {
	Message domain.MessageID `json:"message_id"`
	Chat    domain.ChatID    `json:"chat_id"`
	User    domain.UserID    `json:"user_id"`
	Reason  Reason           `json:"reason"`
}

func (MessageCannotBeSent) Type() Type               { return TypeMessageCannotBeSent }
func (e MessageCannotBeSent) RejectionReason() Reason { return e.Reason }

type MessageEdited struct {
	Editing domain.MessageEditingID `json:"editing_id"`
	Message domain.MessageID        `json:"message_id"`
	User    domain.UserID           `json:"user_id"`
}

func (MessageEdited) Type() Type { return TypeMessageEdited }

type MessageEditingFailed struct {
	Editing domain.MessageEditingID `json:"editing_id"`
	Message domain.MessageID        `json:"message_id"`
	User    domain.UserID           `json:"user_id"`
	Reason  Reason                  `json:"reason"`
}

func (MessageEditingFailed) Type() Type               { return TypeMessageEditingFailed }
func (e MessageEditingFailed) RejectionReason() Reason { return e.Reason }

type MessageRemoved struct {
	domain.MessageRef
	User domain.UserID `json:"user_id"`
}

func (MessageRemoved) Type() Type { return TypeMessageRemoved }

type MessageRemovalFailed struct {
	domain.MessageRef
	User   domain.UserID `json:"user_id"`
	Reason Reason        `json:"reason"`
}

func (MessageRemovalFailed) Type() Type               { return TypeMessageRemovalFailed }
func (e MessageRemovalFailed) RejectionReason() Reason { return e.Reason }

type ChatDeleted struct {
	domain.ChatRef
	User domain.UserID `json:"user_id"`
	// Messages lists the messages whose removal was requested by the cascade.
	Messages []domain.MessageID `json:"messages,omitempty"`
}

func (ChatDeleted) Type() Type { return TypeChatDeleted }

type ChatDeletionFailed struct {
	domain.ChatRef
	User   domain.UserID `json:"user_id"`
	Reason Reason        `json:"reason"`
}

func (ChatDeletionFailed) Type() Type               { return TypeChatDeletionFailed }
func (e ChatDeletionFailed) RejectionReason() Reason { return e.Reason }
