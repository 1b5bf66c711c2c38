package main

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"chat-saga/projection"
	"chat-saga/repositories"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH"`
	// INSPECT_COLOURS enables colorized record kinds
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

// inspect prints the event log of a database and the chat previews rebuilt
// from it. The database is opened read-only and views are replayed in memory.
func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if cfg.BadgerFilepath == "" {
		cfg.BadgerFilepath = database.DefaultPath
	}
	after := flag.Uint64("after", 0, "Skip records up to this position")
	until := flag.Uint64("until", 0, "Stop after this position, 0 reads to the end")
	kind := flag.String("kind", "", "Only show records of this stream kind")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	views, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		log.Fatal("Error while opening in-memory views: ", err)
	}
	defer views.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Position", "Stream", "Seq", "Cause", "Type", "Payload"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	var chats []domain.ChatID
	catalog := projection.NewCatalog(repositories.NewViewStore(views, slog.Default()), nil)
	last, err := projection.Replay(context.Background(), repositories.NewLogReader(db), catalog.Pipeline(), projection.ReplayOptions{
		AfterPosition: *after,
		UntilPosition: *until,
		Filter: func(record event.Record) bool {
			if record.Stream.Kind == domain.KindChat {
				chats = append(chats, domain.ChatID(record.Stream.Key))
			}
			if *kind == "" || string(record.Stream.Kind) == *kind {
				table.Append(row(record, cfg.Colours))
			}
			return true
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	table.Render()
	fmt.Printf("\nReplayed up to position %d\n\n", last)

	previews := tablewriter.NewWriter(os.Stdout)
	previews.SetHeader([]string{"Chat", "Type", "Name", "Members", "Last message"})
	previews.SetBorder(false)
	for _, chat := range lo.Uniq(chats) {
		preview, found, err := catalog.Previews.Preview(chat)
		if err != nil {
			log.Fatal(err)
		}
		if !found {
			continue
		}
		lastMessage := ""
		if preview.LastMessage != nil {
			lastMessage = fmt.Sprintf("%s: %s", preview.LastMessage.User, preview.LastMessage.Content)
		}
		members := lo.Map(preview.Members, func(id domain.UserID, _ int) string { return string(id) })
		previews.Append([]string{string(chat), string(preview.Type), preview.Name, strings.Join(members, ","), lastMessage})
	}
	previews.Render()
}

func row(record event.Record, colours bool) []string {
	kind := string(record.Type)
	if colours {
		switch {
		case event.IsRejection(record.Event):
			kind = color.New(color.FgRed).Render(kind)
		case record.Stream.Kind.IsProcess():
			kind = color.New(color.FgCyan).Render(kind)
		default:
			kind = color.New(color.FgGreen).Render(kind)
		}
	}
	return []string{
		fmt.Sprintf("%d", record.Position),
		record.Stream.String(),
		fmt.Sprintf("%d", record.Seq),
		fmt.Sprintf("%d", record.Cause),
		kind,
		string(record.Payload),
	}
}
