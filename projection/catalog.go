package projection

// Catalog gathers every view of the chat read side over one store.
type Catalog struct {
	Members   *ChatMembers
	Cards     *ChatCards
	Previews  *ChatPreviews
	Messages  *MessageView
	UserChats *UserChats
	// Search is nil when no full-text index is configured.
	Search *MessageSearch
}

func NewCatalog(store Store, index Index) *Catalog {
	c := &Catalog{
		Members:   NewChatMembers(store),
		Cards:     NewChatCards(store),
		Previews:  NewChatPreviews(store),
		Messages:  NewMessageView(store),
		UserChats: NewUserChats(store),
	}
	if index != nil {
		c.Search = NewMessageSearch(index)
	}
	return c
}

// Pipeline lists the views in projection order, followers after the view they follow.
func (c *Catalog) Pipeline() Pipeline {
	views := []View{c.Members, c.Cards, c.Previews, c.Messages, c.UserChats}
	if c.Search != nil {
		views = append(views, c.Search)
	}
	return NewPipeline(views...)
}
