package entity

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"
)

type User struct {
	ID          domain.UserID
	DisplayName string
	Email       domain.Email
	Registered  bool
}

func (u User) Handle(cmd command.Command) (event.Event, error) {
	switch c := cmd.(type) {
	case command.RegisterUser:
		if u.Registered {
			return event.UserAlreadyRegistered{User: c.User, Reason: event.ReasonAlreadyExists}, nil
		}
		return event.UserRegistered{User: c.User, DisplayName: c.DisplayName, Email: c.Email}, nil
	}
	return nil, unknown(cmd, domain.KindUser)
}

func (u User) Apply(evt event.Event) Aggregate {
	if e, ok := evt.(event.UserRegistered); ok {
		u.ID = e.User
		u.DisplayName = e.DisplayName
		u.Email = e.Email
		u.Registered = true
	}
	return u
}

// ReservedEmail binds an email to the first user who reserves it. There is no release.
type ReservedEmail struct {
	Email domain.Email
	Owner domain.UserID
}

func (r ReservedEmail) Handle(cmd command.Command) (event.Event, error) {
	switch c := cmd.(type) {
	case command.ReserveEmail:
		if r.Owner != "" && r.Owner != c.User {
			return event.EmailAlreadyReserved{
				Email:  c.Email,
				User:   c.User,
				Owner:  r.Owner,
				Reason: event.ReasonAlreadyReserved,
			}, nil
		}
		return event.EmailReserved{Email: c.Email, User: c.User}, nil
	}
	return nil, unknown(cmd, domain.KindReservedEmail)
}

func (r ReservedEmail) Apply(evt event.Event) Aggregate {
	if e, ok := evt.(event.EmailReserved); ok && r.Owner == "" {
		r.Email = e.Email
		r.Owner = e.User
	}
	return r
}
