package main

import (
	"chat-saga/domain"
	"chat-saga/projection"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func render(w io.Writer, s scenario, catalog *projection.Catalog) {
	previews := newTable(w, "Chat", "Type", "Members", "Last message", "Author")
	if preview, found, err := catalog.Previews.Preview(s.chat); err == nil && found {
		previews.Append(previewRow(preview))
	}
	previews.Render()

	fmt.Fprintf(w, "\nChats of %s\n", s.bob)
	chats := newTable(w, "Chat", "Type", "Members", "Last message", "Author")
	if list, _, err := catalog.UserChats.Chats(s.bob); err == nil {
		for _, preview := range list.Chats {
			chats.Append(previewRow(preview))
		}
	}
	chats.Render()

	if len(s.found) > 0 {
		fmt.Fprintf(w, "\nSearch \"hi\": %s\n", strings.Join(lo.Map(s.found, func(id domain.MessageID, _ int) string { return string(id) }), ", "))
	}
}

func previewRow(p projection.ChatPreview) []string {
	last, author := "", ""
	if p.LastMessage != nil {
		last, author = p.LastMessage.Content, string(p.LastMessage.User)
	}
	members := lo.Map(p.Members, func(id domain.UserID, _ int) string { return string(id) })
	return []string{string(p.Chat), string(p.Type), strings.Join(members, ","), last, author}
}
