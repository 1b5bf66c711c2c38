package runtime

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/projection"
	"context"
)

var _ contract.Querier = ViewQuerier{}

// ViewQuerier answers saga queries from the views. Answers lag the log by
// whatever the view workers have not applied yet.
type ViewQuerier struct {
	members  *projection.ChatMembers
	messages *projection.MessageView
}

func NewViewQuerier(catalog *projection.Catalog) ViewQuerier {
	return ViewQuerier{members: catalog.Members, messages: catalog.Messages}
}

func (q ViewQuerier) ChatMembers(_ context.Context, chat domain.ChatID) ([]domain.UserID, bool, error) {
	return q.members.Members(chat)
}

func (q ViewQuerier) LiveMessages(_ context.Context, chat domain.ChatID) ([]domain.MessageID, error) {
	return q.messages.LiveMessages(chat)
}
