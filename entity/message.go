package entity

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"time"
)

// Message content can only be changed by its author while it is not deleted.
// Deletion is terminal.
type Message struct {
	ID          domain.MessageID
	Chat        domain.ChatID
	Author      domain.UserID
	Content     string
	WhenPosted  time.Time
	WhenUpdated time.Time
	Deleted     bool
}

func (m Message) exists() bool { return m.Author != "" }

func (m Message) Handle(cmd command.Command) (event.Event, error) {
	switch cmd := cmd.(type) {
	case command.PostMessage:
		if m.exists() {
			return event.MessageCannotBePosted{
				Message: cmd.Message,
				Chat:    cmd.Chat,
				User:    cmd.User,
				Reason:  event.ReasonAlreadyExists,
			}, nil
		}
		return event.MessagePosted{
			Message:    cmd.Message,
			Chat:       cmd.Chat,
			User:       cmd.User,
			Content:    cmd.Content,
			WhenPosted: cmd.At,
		}, nil

	case command.UpdateMessageContent:
		var reason event.Reason
		switch {
		case !m.exists():
			reason = event.ReasonNotFound
		case m.Author != cmd.User:
			reason = event.ReasonNotAuthor
		case m.Deleted:
			reason = event.ReasonAlreadyDeleted
		}
		if reason != "" {
			return event.MessageContentCannotBeUpdated{
				Message: cmd.Message,
				Editing: cmd.Editing,
				User:    cmd.User,
				Reason:  reason,
			}, nil
		}
		return event.MessageContentUpdated{
			Message:     cmd.Message,
			Editing:     cmd.Editing,
			Chat:        m.Chat,
			User:        cmd.User,
			Content:     cmd.Content,
			WhenUpdated: cmd.At,
		}, nil

	case command.MarkMessageAsDeleted:
		switch {
		case !m.exists(), cmd.Chat != "" && cmd.Chat != m.Chat:
			return event.MessageCannotBeMarkedAsDeleted{MessageRef: cmd.MessageRef, Who: cmd.Who, Reason: event.ReasonNotFound}, nil
		case m.Deleted:
			return event.MessageCannotBeMarkedAsDeleted{MessageRef: cmd.MessageRef, Who: cmd.Who, Reason: event.ReasonAlreadyDeleted}, nil
		}
		return event.MessageMarkedAsDeleted{MessageRef: cmd.MessageRef, Chat: m.Chat, Who: cmd.Who}, nil
	}
	return nil, unknown(cmd, domain.KindMessage)
}

func (m Message) Apply(evt event.Event) Aggregate {
	switch e := evt.(type) {
	case event.MessagePosted:
		m.ID = e.Message
		m.Chat = e.Chat
		m.Author = e.User
		m.Content = e.Content
		m.WhenPosted = e.WhenPosted
	case event.MessageContentUpdated:
		m.Content = e.Content
		m.WhenUpdated = e.WhenUpdated
	case event.MessageMarkedAsDeleted:
		m.Deleted = true
	}
	return m
}
