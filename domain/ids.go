// Package domain contains the identifiers shared by every entity, process and view.
// It holds no runtime, storage or transport logic.
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type UserID string

type ChatID string

type MessageID string

type Email string

// MessageEditingID correlates one edit intent with its MessageEditing process.
type MessageEditingID string

func NewUserID() UserID { return UserID(uuid.NewString()) }

func NewChatID() ChatID { return ChatID(uuid.NewString()) }

func NewMessageID() MessageID { return MessageID(uuid.NewString()) }

func NewMessageEditingID() MessageEditingID { return MessageEditingID(uuid.NewString()) }

type ChatType string

const (
	ChatTypePersonal ChatType = "personal"
	ChatTypeGroup    ChatType = "group"
)

// Kind names a family of keyed write-side units: an entity or a process.
type Kind string

const (
	KindUser          Kind = "user"
	KindReservedEmail Kind = "reserved_email"
	KindChat          Kind = "chat"
	KindMessage       Kind = "message"

	KindAccountCreation Kind = "account_creation"
	KindMessageSending  Kind = "message_sending"
	KindMessageEditing  Kind = "message_editing"
	KindMessageRemoval  Kind = "message_removal"
	KindChatDeletion    Kind = "chat_deletion"
)

// IsProcess reports whether the kind is a saga rather than an entity.
func (k Kind) IsProcess() bool {
	switch k {
	case KindAccountCreation, KindMessageSending, KindMessageEditing, KindMessageRemoval, KindChatDeletion:
		return true
	}
	return false
}

// Target addresses one single-writer unit.
type Target struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key"`
}

func (t Target) IsEmpty() bool { return t.Kind == "" || t.Key == "" }

func (t Target) String() string { return string(t.Kind) + ":" + t.Key }

// Lineage strips the attempt from a process key. Every attempt of a process
// shares the lineage of its first one.
func (t Target) Lineage() Target {
	if !t.Kind.IsProcess() {
		return t
	}
	key, _, _ := strings.Cut(t.Key, attemptSeparator)
	return Target{Kind: t.Kind, Key: key}
}

const attemptSeparator = "#"

func attemptKey(key string, attempt uint32) string {
	if attempt == 0 {
		return key
	}
	return fmt.Sprintf("%s%s%d", key, attemptSeparator, attempt)
}
