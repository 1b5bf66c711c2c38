package projection

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"time"
)

type MessagePreview struct {
	Message    domain.MessageID `json:"message_id"`
	User       domain.UserID    `json:"user_id"`
	Content    string           `json:"content"`
	WhenPosted time.Time        `json:"when_posted"`
}

// trackLastMessage returns the last message after evt and whether it changed.
// A post always replaces it. An edit or a deletion only touches it when it is
// about the cached message.
func trackLastMessage(last *MessagePreview, evt event.Event) (*MessagePreview, bool) {
	switch e := evt.(type) {
	case event.MessagePosted:
		return &MessagePreview{Message: e.Message, User: e.User, Content: e.Content, WhenPosted: e.WhenPosted}, true
	case event.MessageContentUpdated:
		if last == nil || last.Message != e.Message {
			return last, false
		}
		updated := *last
		updated.Content = e.Content
		return &updated, true
	case event.MessageMarkedAsDeleted:
		if last == nil || last.Message != e.MessageID() {
			return last, false
		}
		return nil, true
	}
	return last, false
}
