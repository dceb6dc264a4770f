// Package main implements the entry point for the task management API
// server: a CRUD web API with JWT authentication, background jobs over
// Postgres, and an LLM agent-to-agent chat endpoint.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/Thinkabouthev/backend-hw2/internal/config"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/logger"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, connects the infrastructure, and starts the
// server. Split from main so initialization errors return instead of
// os.Exit-ing past deferred cleanup.
func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := connectDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.MigrateUp(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
