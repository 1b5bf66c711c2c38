package main

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"chat-saga/projection"
	"chat-saga/repositories"
	"chat-saga/runtime"
	"chat-saga/runtime/workers"
	"chat-saga/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the engine on a Badger database, plays the reference scenario
// and prints the resulting views.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if log.Enabled(context.Background(), slog.LevelDebug) {
		endpoint := "/inspect"
		log.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s?prefix=log:", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, RecordMapper)
	}

	events, err := repositories.NewEventStore(db, log)
	if err != nil {
		return fmt.Errorf("event store failed: %w", err)
	}
	defer func() { _ = events.Close() }()

	// 3. Full-text index (Bluge), optional
	var index projection.Index
	var searcher services.Searcher
	if config.BlugeFilepath != "" {
		writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
		if err != nil {
			return fmt.Errorf("search index opening failed: %w", err)
		}
		defer func() { _ = writer.Close() }()
		messageIndex := repositories.NewMessageIndex(writer, log, config.SearchLimit)
		index, searcher = messageIndex, messageIndex
	}

	// 4. Setup Supervision & Orchestration
	catalog := projection.NewCatalog(repositories.NewViewStore(db, log), index)
	engine := runtime.NewEngine(events, repositories.NewProcessStore(db), runtime.NewViewQuerier(catalog), log)
	orchestrator := runtime.NewOrchestrator(log, runtime.Config{
		Shards:          config.NumberOfShards,
		SinkTimeout:     config.SinkTimeout,
		SettleInterval:  config.SettleInterval,
		RestartInterval: config.RestartInterval,
	}, engine, catalog.Pipeline(), workers.NewSupervisor(log, config.RestartInterval), runtime.NewRegistry())

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator start failed: %w", err)
	}
	defer orchestrator.Stop()

	outcomes := &outcomeSink{log: log}
	orchestrator.Subscribe("scenario", event.Filter{Match: func(e event.Event) bool {
		return e.Type() == event.TypeAccountCreated || event.IsRejection(e)
	}}, outcomes)

	// 6. Scenario
	service := services.NewChatService(orchestrator, catalog, searcher)
	result, err := playScenario(ctx, log, service, orchestrator, config)
	if err != nil {
		return err
	}

	render(os.Stdout, result, catalog)
	log.Info("Program stopped cleanly")
	return nil
}

type scenario struct {
	alice, bob domain.UserID
	chat       domain.ChatID
	found      []domain.MessageID
}

func playScenario(ctx context.Context, log *slog.Logger, service *services.ChatService,
	orchestrator *runtime.Orchestrator, config Config) (scenario, error) {
	var s scenario
	settle := func() error {
		settleCtx, cancel := context.WithTimeout(ctx, config.SettleTimeout)
		defer cancel()
		return orchestrator.Settle(settleCtx)
	}

	alice, _, err := service.Register(ctx, services.RegisterRequest{DisplayName: "A", Email: "a@x.io"})
	if err != nil {
		return s, err
	}
	bob, _, err := service.Register(ctx, services.RegisterRequest{DisplayName: "B", Email: "b@x.io"})
	if err != nil {
		return s, err
	}
	if err := settle(); err != nil {
		return s, err
	}
	log.Info("Users registered", "alice", alice, "bob", bob)

	chat, evt, err := service.CreatePersonalChat(ctx, alice, bob)
	if err != nil {
		return s, err
	}
	if event.IsRejection(evt) {
		return s, fmt.Errorf("chat creation rejected: %s", evt.(event.Rejection).RejectionReason())
	}
	if err := settle(); err != nil {
		return s, err
	}

	if _, _, err := service.SendMessage(ctx, services.SendMessageRequest{Chat: chat, User: alice, Content: "hi"}); err != nil {
		return s, err
	}
	if err := settle(); err != nil {
		return s, err
	}

	s = scenario{alice: alice, bob: bob, chat: chat}
	if config.BlugeFilepath != "" {
		s.found, err = service.Search(ctx, chat, bob, "hi")
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

// outcomeSink logs saga outcomes and rejections as they are appended.
type outcomeSink struct {
	log *slog.Logger
}

func (o *outcomeSink) Consume(_ context.Context, record event.Record) error {
	o.log.Info("Outcome", "type", record.Type, "stream", record.Stream.String(), "position", record.Position)
	return nil
}
