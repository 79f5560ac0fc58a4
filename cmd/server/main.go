package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cipherchat/internal"
	"cipherchat/relay"
	"cipherchat/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or
// service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components and manages the server lifecycle, so
// that defers (badger cleanup) execute before the process exits.
func run() (int, error) {
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	users := repositories.NewUserRepository(db)
	groups := repositories.NewGroupRepository(db)

	// Hydrate the registry once; after this, persistence is only touched
	// on login and join, never on the message hot path.
	keys, err := users.LoadUsers()
	if err != nil {
		return exitRuntime, err
	}
	memberships, err := groups.LoadMemberships()
	if err != nil {
		return exitRuntime, err
	}
	logger.Info("Hydrated registries", "users", len(keys), "groups", len(memberships))

	registry := relay.NewRegistry(keys, memberships)
	dispatcher := relay.NewDispatcher(registry, users, groups, config.DefaultModel, logger)
	server := relay.NewServer(dispatcher, config.WriteTimeout, logger)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	if err := server.ListenAndServe(ctx, addr); err != nil {
		return exitRuntime, fmt.Errorf("relay server: %w", err)
	}
	return exitOK, nil
}
