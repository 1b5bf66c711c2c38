package services

import (
	"chat-saga/domain"
	"chat-saga/errors"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	DisplayName string `validate:"required,max=64"`
	Email       string `validate:"required,email"`
}

type CreateGroupChatRequest struct {
	Creator domain.UserID   `validate:"required"`
	Name    string          `validate:"required,max=128"`
	Members []domain.UserID `validate:"dive,required"`
}

type MembersRequest struct {
	Chat    domain.ChatID   `validate:"required"`
	Who     domain.UserID   `validate:"required"`
	Members []domain.UserID `validate:"required,min=1,dive,required"`
}

type SendMessageRequest struct {
	Chat    domain.ChatID `validate:"required"`
	User    domain.UserID `validate:"required"`
	Content string        `validate:"required,max=4096"`
}

type EditMessageRequest struct {
	Message domain.MessageID `validate:"required"`
	Chat    domain.ChatID    `validate:"required"`
	User    domain.UserID    `validate:"required"`
	Content string           `validate:"required,max=4096"`
}

type RemoveMessageRequest struct {
	Message domain.MessageID `validate:"required"`
	Chat    domain.ChatID    `validate:"required"`
	User    domain.UserID    `validate:"required"`
}

func check(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}

func checkContent(content string) error {
	if !hasVisibleText(content) {
		return fmt.Errorf("%w: content has no visible character", errors.ErrInvalidRequest)
	}
	return nil
}

func hasVisibleText(s string) bool {
	for _, char := range s {
		if !unicode.IsSpace(char) && unicode.IsPrint(char) {
			return true
		}
	}
	return false
}
