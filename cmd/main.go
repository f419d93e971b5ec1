package main

import (
	"context"
	"errors"
	"os"

	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	// Durable state lives in the local database; a broken database falls
	// back to in-memory state so read-only commands still work.
	var state store.Store = store.NewMemoryStore()
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		defer db.Close()
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err == nil {
			state = store.NewSQLiteStore(db)
		} else {
			logger.Warn("failed to migrate state database, using in-memory state", "error", err)
		}
	} else {
		logger.Warn("failed to open state database, using in-memory state", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		State:  state,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "trailctl",
		Usage:    "Track job applications from your inbox to a spreadsheet",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not logged in, run `trailctl auth login` first")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
