package event

import (
	"chat-saga/errors"
	"encoding/json"
	"fmt"
)

type decoder func(payload []byte) (Event, error)

func decode[T Event](payload []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return e, nil
}

// decoders is the closed set of persisted event types.
var decoders = map[Type]decoder{
	TypeUserRegistered:         decode[UserRegistered],
	TypeUserAlreadyRegistered:  decode[UserAlreadyRegistered],
	TypeEmailReserved:          decode[EmailReserved],
	TypeEmailAlreadyReserved:   decode[EmailAlreadyReserved],
	TypePersonalChatCreated:    decode[PersonalChatCreated],
	TypeGroupChatCreated:       decode[GroupChatCreated],
	TypeChatAlreadyExists:      decode[ChatAlreadyExists],
	TypeMembersAdded:           decode[MembersAdded],
	TypeMembersRemoved:         decode[MembersRemoved],
	TypeUserLeftChat:           decode[UserLeftChat],
	TypeMembershipCannotChange: decode[MembershipCannotBeChanged],
	TypeChatMarkedAsDeleted:    decode[ChatMarkedAsDeleted],
	TypeChatCannotBeDeleted:    decode[ChatCannotBeMarkedAsDeleted],
	TypeMessagePosted:          decode[MessagePosted],
	TypeMessageCannotBePosted:  decode[MessageCannotBePosted],
	TypeMessageContentUpdated:  decode[MessageContentUpdated],
	TypeMessageCannotBeUpdated: decode[MessageContentCannotBeUpdated],
	TypeMessageMarkedAsDeleted: decode[MessageMarkedAsDeleted],
	TypeMessageCannotBeDeleted: decode[MessageCannotBeMarkedAsDeleted],

	TypeAccountCreated:        decode[AccountCreated],
	TypeAccountCreationFailed: decode[AccountCreationFailed],
	TypeMessageSent:           decode[MessageSent],
	TypeMessageCannotBeSent:   decode[MessageCannotBeSent],
	TypeMessageEdited:         decode[MessageEdited],
	TypeMessageEditingFailed:  decode[MessageEditingFailed],
	TypeMessageRemoved:        decode[MessageRemoved],
	TypeMessageRemovalFailed:  decode[MessageRemovalFailed],
	TypeChatDeleted:           decode[ChatDeleted],
	TypeChatDeletionFailed:    decode[ChatDeletionFailed],
}

func Encode(e Event) ([]byte, error) {
	if _, ok := decoders[e.Type()]; !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEventType, e.Type())
	}
	return json.Marshal(e)
}

func Decode(t Type, payload []byte) (Event, error) {
	d, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEventType, t)
	}
	return d(payload)
}
