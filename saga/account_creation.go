package saga

import (
	"chat-saga/contract"
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
	"context"
)

// AccountCreation reserves the email first, then registers the user.
type AccountCreation struct {
	base
	User        domain.UserID `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Email       domain.Email  `json:"email"`
}

func (p *AccountCreation) Handle(_ context.Context, cmd command.Command, _ contract.Querier) (Outcome, error) {
	c, ok := cmd.(command.CreateAccount)
	if !ok {
		return Outcome{}, unexpected(cmd, domain.KindAccountCreation)
	}
	if p.Status() != StatusNew {
		return Outcome{}, nil
	}
	p.User, p.DisplayName, p.Email = c.User, c.DisplayName, c.Email
	return p.await(command.ReserveEmail{Email: c.Email, User: c.User}), nil
}

func (p *AccountCreation) React(_ context.Context, evt event.Event, _ contract.Querier) (Outcome, error) {
	switch e := evt.(type) {
	case event.EmailReserved:
		if e.Email != p.Email {
			return Outcome{}, nil
		}
		return p.await(command.RegisterUser{User: p.User, DisplayName: p.DisplayName, Email: p.Email}), nil
	case event.EmailAlreadyReserved:
		if e.Email != p.Email {
			return Outcome{}, nil
		}
		return p.finish(event.AccountCreationFailed{User: p.User, Email: p.Email, Reason: e.Reason}), nil
	case event.UserRegistered:
		return p.finish(event.AccountCreated{User: p.User, Email: p.Email}), nil
	case event.UserAlreadyRegistered:
		return p.finish(event.AccountCreationFailed{User: p.User, Email: p.Email, Reason: e.Reason}), nil
	}
	return Outcome{}, nil
}

func (p *AccountCreation) Refuse(cmd command.Command) event.Event {
	failed := event.AccountCreationFailed{User: p.User, Email: p.Email, Reason: event.ReasonAlreadyProcessed}
	if c, ok := cmd.(command.CreateAccount); ok {
		failed.User, failed.Email = c.User, c.Email
	}
	return failed
}
