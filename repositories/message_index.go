package repositories

import (
	"chat-saga/domain"
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
)

const (
	fieldChat    = "chat_id"
	fieldContent = "content"
	idField      = "_id"
)

// MessageIndex is the full-text index of live message contents.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger, limit int) MessageIndex {
	return MessageIndex{writer: writer, log: log, limit: limit}
}

// Index adds or replaces the document of a message.
func (i MessageIndex) Index(message domain.MessageID, chat domain.ChatID, content string) error {
	doc := bluge.NewDocument(string(message)).
		AddField(bluge.NewKeywordField(fieldChat, string(chat)).StoreValue()).
		AddField(bluge.NewTextField(fieldContent, content).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

func (i MessageIndex) Remove(message domain.MessageID) error {
	return i.writer.Delete(bluge.Identifier(message))
}

// Search returns the ids of the messages of chat matching text, best match first.
func (i MessageIndex) Search(ctx context.Context, chat domain.ChatID, text string) ([]domain.MessageID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Unable to close index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(string(chat)).SetField(fieldChat)).
		AddMust(bluge.NewMatchQuery(text).SetField(fieldContent))

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(i.limit, query))
	if err != nil {
		return nil, err
	}

	var ids []domain.MessageID
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == idField {
				ids = append(ids, domain.MessageID(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		match, err = matches.Next()
	}
	return ids, err
}
