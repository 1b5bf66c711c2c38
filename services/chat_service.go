package services

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"chat-saga/projection"
	"context"
	"fmt"
	"time"
)

type IChatService interface {
	Register(ctx context.Context, req RegisterRequest) (domain.UserID, event.Event, error)
	CreatePersonalChat(ctx context.Context, creator, member domain.UserID) (domain.ChatID, event.Event, error)
	CreateGroupChat(ctx context.Context, req CreateGroupChatRequest) (domain.ChatID, event.Event, error)
	AddMembers(ctx context.Context, req MembersRequest) (event.Event, error)
	RemoveMembers(ctx context.Context, req MembersRequest) (event.Event, error)
	LeaveChat(ctx context.Context, chat domain.ChatID, user domain.UserID) (event.Event, error)
	SendMessage(ctx context.Context, req SendMessageRequest) (domain.MessageID, event.Event, error)
	EditMessage(ctx context.Context, req EditMessageRequest) (domain.MessageEditingID, event.Event, error)
	RemoveMessage(ctx context.Context, req RemoveMessageRequest) (event.Event, error)
	DeleteChat(ctx context.Context, chat domain.ChatID, user domain.UserID) (event.Event, error)

	ChatsOf(user domain.UserID) ([]projection.ChatPreview, error)
	Card(chat domain.ChatID, viewer domain.UserID) (projection.ChatCard, bool, error)
	Timeline(chat domain.ChatID, viewer domain.UserID) ([]projection.MessageRow, error)
	Search(ctx context.Context, chat domain.ChatID, viewer domain.UserID, text string) ([]domain.MessageID, error)

	Watch(id string, filter event.Filter, sink contract.EventSink)
	Unwatch(id string) error
}

type Searcher interface {
	Search(ctx context.Context, chat domain.ChatID, text string) ([]domain.MessageID, error)
}

// ChatService validates client requests, mints identifiers and turns requests
// into commands. Answers from Submit are returned as is: a rejection is an
// event, not an error.
type ChatService struct {
	dispatcher contract.IDispatcher
	catalog    *projection.Catalog
	searcher   Searcher
	now        func() time.Time
}

var _ IChatService = (*ChatService)(nil)

func NewChatService(dispatcher contract.IDispatcher, catalog *projection.Catalog, searcher Searcher) *ChatService {
	return &ChatService{dispatcher: dispatcher, catalog: catalog, searcher: searcher, now: time.Now}
}

func (s *ChatService) Register(ctx context.Context, req RegisterRequest) (domain.UserID, event.Event, error) {
	if err := check(req); err != nil {
		return "", nil, err
	}
	user := domain.NewUserID()
	evt, err := s.dispatcher.Submit(ctx, command.CreateAccount{User: user, DisplayName: req.DisplayName, Email: domain.Email(req.Email)})
	return user, evt, err
}

func (s *ChatService) CreatePersonalChat(ctx context.Context, creator, member domain.UserID) (domain.ChatID, event.Event, error) {
	if creator == "" || member == "" || creator == member {
		return "", nil, fmt.Errorf("%w: a personal chat needs two distinct users", errors.ErrInvalidRequest)
	}
	chat := domain.NewChatID()
	evt, err := s.dispatcher.Submit(ctx, command.CreatePersonalChat{Chat: chat, Creator: creator, Member: member})
	return chat, evt, err
}

func (s *ChatService) CreateGroupChat(ctx context.Context, req CreateGroupChatRequest) (domain.ChatID, event.Event, error) {
	if err := check(req); err != nil {
		return "", nil, err
	}
	chat := domain.NewChatID()
	evt, err := s.dispatcher.Submit(ctx, command.CreateGroupChat{Chat: chat, Creator: req.Creator, Name: req.Name, Members: req.Members})
	return chat, evt, err
}

func (s *ChatService) AddMembers(ctx context.Context, req MembersRequest) (event.Event, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.dispatcher.Submit(ctx, command.AddMembers{Chat: req.Chat, Who: req.Who, Members: req.Members})
}

func (s *ChatService) RemoveMembers(ctx context.Context, req MembersRequest) (event.Event, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.dispatcher.Submit(ctx, command.RemoveMembers{Chat: req.Chat, Who: req.Who, Members: req.Members})
}

func (s *ChatService) LeaveChat(ctx context.Context, chat domain.ChatID, user domain.UserID) (event.Event, error) {
	if chat == "" || user == "" {
		return nil, fmt.Errorf("%w: chat and user are required", errors.ErrInvalidRequest)
	}
	return s.dispatcher.Submit(ctx, command.LeaveChat{Chat: chat, User: user})
}

// SendMessage returns nil as event once the sending is accepted; the message
// itself shows up in the views when the saga completes.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (domain.MessageID, event.Event, error) {
	if err := check(req); err != nil {
		return "", nil, err
	}
	if err := checkContent(req.Content); err != nil {
		return "", nil, err
	}
	message := domain.NewMessageID()
	evt, err := s.dispatcher.Submit(ctx, command.SendMessage{
		Message: message,
		Chat:    req.Chat,
		User:    req.User,
		Content: req.Content,
		At:      s.now().UTC(),
	})
	return message, evt, err
}

func (s *ChatService) EditMessage(ctx context.Context, req EditMessageRequest) (domain.MessageEditingID, event.Event, error) {
	if err := check(req); err != nil {
		return "", nil, err
	}
	if err := checkContent(req.Content); err != nil {
		return "", nil, err
	}
	editing := domain.NewMessageEditingID()
	evt, err := s.dispatcher.Submit(ctx, command.EditMessage{
		Editing: editing,
		Message: req.Message,
		Chat:    req.Chat,
		User:    req.User,
		Content: req.Content,
		At:      s.now().UTC(),
	})
	return editing, evt, err
}

func (s *ChatService) RemoveMessage(ctx context.Context, req RemoveMessageRequest) (event.Event, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.dispatcher.Submit(ctx, command.RemoveMessage{
		MessageRef: domain.MessageRef{Message: req.Message},
		Chat:       req.Chat,
		User:       req.User,
	})
}

func (s *ChatService) DeleteChat(ctx context.Context, chat domain.ChatID, user domain.UserID) (event.Event, error) {
	if chat == "" || user == "" {
		return nil, fmt.Errorf("%w: chat and user are required", errors.ErrInvalidRequest)
	}
	return s.dispatcher.Submit(ctx, command.DeleteChat{ChatRef: domain.ChatRef{Chat: chat}, User: user})
}

func (s *ChatService) ChatsOf(user domain.UserID) ([]projection.ChatPreview, error) {
	list, _, err := s.catalog.UserChats.Chats(user)
	return list.Chats, err
}

func (s *ChatService) Card(chat domain.ChatID, viewer domain.UserID) (projection.ChatCard, bool, error) {
	return s.catalog.Cards.Card(chat, viewer)
}

// Timeline returns the live messages of a chat to one of its members.
func (s *ChatService) Timeline(chat domain.ChatID, viewer domain.UserID) ([]projection.MessageRow, error) {
	if err := s.mustBeMember(chat, viewer); err != nil {
		return nil, err
	}
	return s.catalog.Messages.Timeline(chat, false)
}

func (s *ChatService) Search(ctx context.Context, chat domain.ChatID, viewer domain.UserID, text string) ([]domain.MessageID, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("%w: search is not enabled", errors.ErrInvalidRequest)
	}
	if err := s.mustBeMember(chat, viewer); err != nil {
		return nil, err
	}
	return s.searcher.Search(ctx, chat, text)
}

func (s *ChatService) mustBeMember(chat domain.ChatID, viewer domain.UserID) error {
	_, found, err := s.catalog.Cards.Card(chat, viewer)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s is not a member of %s", errors.ErrRowNotFound, viewer, chat)
	}
	return nil
}

func (s *ChatService) Watch(id string, filter event.Filter, sink contract.EventSink) {
	s.dispatcher.Subscribe(id, filter, sink)
}

func (s *ChatService) Unwatch(id string) error {
	return s.dispatcher.Unsubscribe(id)
}
