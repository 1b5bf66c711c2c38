package domain

// MessageRemovalID identifies a user-initiated removal of a single message.
// Attempt counts the removals of the message started after a failed one.
type MessageRemovalID struct {
	Message MessageID `json:"message_id,omitempty"`
	Attempt uint32    `json:"attempt,omitempty"`
}

func (id MessageRemovalID) IsEmpty() bool { return id.Message == "" }

func (id MessageRemovalID) String() string { return attemptKey(string(id.Message), id.Attempt) }

// Next returns the removal of the same message one attempt later.
func (id MessageRemovalID) Next() MessageRemovalID {
	id.Attempt++
	return id
}

// ChatDeletionID identifies the deletion of a chat and its cascade.
type ChatDeletionID struct {
	Chat    ChatID `json:"chat_id,omitempty"`
	Attempt uint32 `json:"attempt,omitempty"`
}

func (id ChatDeletionID) IsEmpty() bool { return id.Chat == "" }

func (id ChatDeletionID) String() string { return attemptKey(string(id.Chat), id.Attempt) }

func (id ChatDeletionID) Next() ChatDeletionID {
	id.Attempt++
	return id
}

type OperationKind string

const (
	OperationNone           OperationKind = ""
	OperationMessageRemoval OperationKind = "message_removal"
	OperationChatDeletion   OperationKind = "chat_deletion"
)

// OperationID tells why a message is being removed: either a MessageRemoval
// or a ChatDeletion. The zero value is the "none" variant.
type OperationID struct {
	Kind           OperationKind    `json:"kind,omitempty"`
	MessageRemoval MessageRemovalID `json:"message_removal,omitempty"`
	ChatDeletion   ChatDeletionID   `json:"chat_deletion,omitempty"`
}

func OperationOfMessageRemoval(id MessageRemovalID) OperationID {
	if id.IsEmpty() {
		return OperationID{}
	}
	return OperationID{Kind: OperationMessageRemoval, MessageRemoval: id}
}

func OperationOfChatDeletion(id ChatDeletionID) OperationID {
	if id.IsEmpty() {
		return OperationID{}
	}
	return OperationID{Kind: OperationChatDeletion, ChatDeletion: id}
}

func (o OperationID) IsEmpty() bool {
	_, removal := o.Removal()
	_, deletion := o.Deletion()
	return !removal && !deletion
}

// Removal returns the wrapped removal id when the operation is a message removal.
func (o OperationID) Removal() (MessageRemovalID, bool) {
	if o.Kind != OperationMessageRemoval || o.MessageRemoval.IsEmpty() {
		return MessageRemovalID{}, false
	}
	return o.MessageRemoval, true
}

// Deletion returns the wrapped chat deletion id when the operation is part of a chat deletion.
func (o OperationID) Deletion() (ChatDeletionID, bool) {
	if o.Kind != OperationChatDeletion || o.ChatDeletion.IsEmpty() {
		return ChatDeletionID{}, false
	}
	return o.ChatDeletion, true
}

func (o OperationID) IsMessageRemoval() bool {
	_, ok := o.Removal()
	return ok
}

func (o OperationID) IsChatDeletion() bool {
	_, ok := o.Deletion()
	return ok
}

// MessageRef carries whichever message identifier shape its producer had at hand.
// Accessors resolve the requested shape: the field itself, then a wider shape
// that contains it, then a narrower shape it can be built from. An empty value
// means the shape cannot be derived.
type MessageRef struct {
	Message   MessageID        `json:"message_id,omitempty"`
	Removal   MessageRemovalID `json:"removal_id,omitempty"`
	Operation OperationID      `json:"operation_id,omitempty"`
}

func (r MessageRef) MessageID() MessageID {
	if r.Message != "" {
		return r.Message
	}
	if !r.Removal.IsEmpty() {
		return r.Removal.Message
	}
	if removal, ok := r.Operation.Removal(); ok {
		return removal.Message
	}
	return ""
}

func (r MessageRef) RemovalID() MessageRemovalID {
	if !r.Removal.IsEmpty() {
		return r.Removal
	}
	if removal, ok := r.Operation.Removal(); ok {
		return removal
	}
	if r.Message != "" {
		return MessageRemovalID{Message: r.Message}
	}
	return MessageRemovalID{}
}

func (r MessageRef) OperationID() OperationID {
	if !r.Operation.IsEmpty() {
		return r.Operation
	}
	return OperationOfMessageRemoval(r.RemovalID())
}

func (r MessageRef) IsEmpty() bool {
	return r.Message == "" && r.Removal.IsEmpty() && r.Operation.IsEmpty()
}

// ChatRef is the chat-side counterpart of MessageRef.
type ChatRef struct {
	Chat      ChatID         `json:"chat_id,omitempty"`
	Deletion  ChatDeletionID `json:"deletion_id,omitempty"`
	Operation OperationID    `json:"operation_id,omitempty"`
}

func (r ChatRef) ChatID() ChatID {
	if r.Chat != "" {
		return r.Chat
	}
	if !r.Deletion.IsEmpty() {
		return r.Deletion.Chat
	}
	if deletion, ok := r.Operation.Deletion(); ok {
		return deletion.Chat
	}
	return ""
}

func (r ChatRef) DeletionID() ChatDeletionID {
	if !r.Deletion.IsEmpty() {
		return r.Deletion
	}
	if deletion, ok := r.Operation.Deletion(); ok {
		return deletion
	}
	if r.Chat != "" {
		return ChatDeletionID{Chat: r.Chat}
	}
	return ChatDeletionID{}
}

// OperationID returns the chat-deletion operation. A populated operation of the
// message-removal variant does not describe a chat and is skipped.
func (r ChatRef) OperationID() OperationID {
	if r.Operation.IsChatDeletion() {
		return r.Operation
	}
	return OperationOfChatDeletion(r.DeletionID())
}

func (r ChatRef) IsEmpty() bool {
	return r.Chat == "" && r.Deletion.IsEmpty() && r.Operation.IsEmpty()
}
