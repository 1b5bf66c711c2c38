package event

import (
	"chat-saga/domain"
	"chat-saga/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodec_Keeps_Embedded_Identifier_Shape(t *testing.T) {
	req := require.New(t)
	original := MessageMarkedAsDeleted{
		MessageRef: domain.MessageRef{
			Message:   "msg-1",
			Operation: domain.OperationOfChatDeletion(domain.ChatDeletionID{Chat: "chat-1"}),
		},
		Chat: "chat-1",
		Who:  "alice",
	}

	payload, err := Encode(original)
	req.NoError(err)
	decoded, err := Decode(original.Type(), payload)

	req.NoError(err)
	req.Equal(original, decoded)
	req.True(decoded.(MessageMarkedAsDeleted).OperationID().IsChatDeletion())
}

func TestCodec_Keeps_Timestamps(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	original := MessagePosted{Message: "msg-1", Chat: "chat-1", User: "alice", Content: "hi", WhenPosted: at}

	payload, err := Encode(original)
	req.NoError(err)
	decoded, err := Decode(TypeMessagePosted, payload)

	req.NoError(err)
	req.True(at.Equal(decoded.(MessagePosted).WhenPosted))
}

func TestCodec_Unknown_Type(t *testing.T) {
	req := require.New(t)

	_, err := Decode("room.opened", []byte(`{}`))
	req.ErrorIs(err, errors.ErrUnknownEventType)

	_, err = Decode(TypeUserRegistered, []byte(`{`))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestFilter_Accept(t *testing.T) {
	req := require.New(t)
	posted := MessagePosted{Message: "msg-1", Chat: "chat-1"}

	req.True(Filter{}.Accept(posted))
	req.True(Filter{Types: []Type{TypeMessagePosted}}.Accept(posted))
	req.False(Filter{Types: []Type{TypeUserRegistered}}.Accept(posted))

	inChat := Filter{
		Types: []Type{TypeMessagePosted},
		Match: func(e Event) bool { return e.(MessagePosted).Chat == "chat-2" },
	}
	req.False(inChat.Accept(posted))
}
