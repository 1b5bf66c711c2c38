package entity

import (
	"chat-saga/domain"
	"chat-saga/domain/command"
	"chat-saga/domain/event"

	"github.com/samber/lo"
)

// Chat is never removed, only marked deleted. Its type is fixed at creation.
type Chat struct {
	ID      domain.ChatID
	Type    domain.ChatType
	Name    string
	Owner   domain.UserID
	Members []domain.UserID
	Deleted bool
}

func (c Chat) exists() bool { return c.Type != "" }

func (c Chat) isMember(user domain.UserID) bool { return lo.Contains(c.Members, user) }

func (c Chat) Handle(cmd command.Command) (event.Event, error) {
	switch cmd := cmd.(type) {
	case command.CreatePersonalChat:
		if c.exists() {
			return event.ChatAlreadyExists{Chat: cmd.Chat, Who: cmd.Creator, Reason: event.ReasonAlreadyExists}, nil
		}
		return event.PersonalChatCreated{Chat: cmd.Chat, Creator: cmd.Creator, Member: cmd.Member}, nil

	case command.CreateGroupChat:
		if c.exists() {
			return event.ChatAlreadyExists{Chat: cmd.Chat, Who: cmd.Creator, Reason: event.ReasonAlreadyExists}, nil
		}
		members := lo.Uniq(append([]domain.UserID{cmd.Creator}, cmd.Members...))
		return event.GroupChatCreated{Chat: cmd.Chat, Owner: cmd.Creator, Name: cmd.Name, Members: members}, nil

	case command.AddMembers:
		if reason, ok := c.canChangeMembership(cmd.Who); !ok {
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.Who, Reason: reason}, nil
		}
		added := lo.Without(lo.Uniq(cmd.Members), c.Members...)
		if len(added) == 0 {
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.Who, Reason: event.ReasonAlreadyMember}, nil
		}
		return event.MembersAdded{
			Chat:     cmd.Chat,
			Who:      cmd.Who,
			ChatType: c.Type,
			Name:     c.Name,
			Owner:    c.Owner,
			Added:    added,
			Members:  append(append([]domain.UserID{}, c.Members...), added...),
		}, nil

	case command.RemoveMembers:
		if reason, ok := c.canChangeMembership(cmd.Who); !ok {
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.Who, Reason: reason}, nil
		}
		if lo.Contains(cmd.Members, c.Owner) {
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.Who, Reason: event.ReasonOwnerCannotLeave}, nil
		}
		removed := lo.Filter(c.Members, func(member domain.UserID, _ int) bool {
			return lo.Contains(cmd.Members, member)
		})
		if len(removed) == 0 {
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.Who, Reason: event.ReasonNotAMember}, nil
		}
		return event.MembersRemoved{
			Chat:    cmd.Chat,
			Who:     cmd.Who,
			Removed: removed,
			Members: lo.Without(c.Members, removed...),
		}, nil

	case command.LeaveChat:
		switch {
		case !c.exists():
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.User, Reason: event.ReasonNotFound}, nil
		case c.Deleted:
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.User, Reason: event.ReasonAlreadyDeleted}, nil
		case c.Type == domain.ChatTypePersonal:
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.User, Reason: event.ReasonPersonalChat}, nil
		case !c.isMember(cmd.User):
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.User, Reason: event.ReasonNotAMember}, nil
		case cmd.User == c.Owner:
			return event.MembershipCannotBeChanged{Chat: cmd.Chat, Who: cmd.User, Reason: event.ReasonOwnerCannotLeave}, nil
		}
		return event.UserLeftChat{Chat: cmd.Chat, User: cmd.User, Members: lo.Without(c.Members, cmd.User)}, nil

	case command.MarkChatAsDeleted:
		if reason, ok := c.canBeDeletedBy(cmd.Who); !ok {
			return event.ChatCannotBeMarkedAsDeleted{ChatRef: cmd.ChatRef, Who: cmd.Who, Reason: reason}, nil
		}
		return event.ChatMarkedAsDeleted{ChatRef: cmd.ChatRef, Who: cmd.Who, Members: c.Members}, nil
	}
	return nil, unknown(cmd, domain.KindChat)
}

// canChangeMembership allows only the owner of a live group chat.
func (c Chat) canChangeMembership(who domain.UserID) (event.Reason, bool) {
	switch {
	case !c.exists():
		return event.ReasonNotFound, false
	case c.Deleted:
		return event.ReasonAlreadyDeleted, false
	case c.Type == domain.ChatTypePersonal:
		return event.ReasonPersonalChat, false
	case who != c.Owner:
		return event.ReasonNotAuthorized, false
	}
	return "", true
}

func (c Chat) canBeDeletedBy(who domain.UserID) (event.Reason, bool) {
	switch {
	case !c.exists():
		return event.ReasonNotFound, false
	case c.Deleted:
		return event.ReasonAlreadyDeleted, false
	case c.Type == domain.ChatTypePersonal && !c.isMember(who):
		return event.ReasonNotAuthorized, false
	case c.Type == domain.ChatTypeGroup && who != c.Owner:
		return event.ReasonNotAuthorized, false
	}
	return "", true
}

func (c Chat) Apply(evt event.Event) Aggregate {
	switch e := evt.(type) {
	case event.PersonalChatCreated:
		c.ID = e.Chat
		c.Type = domain.ChatTypePersonal
		c.Members = e.Members()
	case event.GroupChatCreated:
		c.ID = e.Chat
		c.Type = domain.ChatTypeGroup
		c.Name = e.Name
		c.Owner = e.Owner
		c.Members = e.Members
	case event.MembersAdded:
		c.Members = e.Members
	case event.MembersRemoved:
		c.Members = e.Members
	case event.UserLeftChat:
		c.Members = e.Members
	case event.ChatMarkedAsDeleted:
		c.Deleted = true
	}
	return c
}
