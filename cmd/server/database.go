package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/Thinkabouthev/backend-hw2/internal/config"
)

// connectDatabase opens the Postgres connection, retrying with a fixed delay
// between attempts. The database usually comes up alongside the server, so
// the first attempts are expected to fail during deploys.
func connectDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	attempts := cfg.Database.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Duration(cfg.Database.ConnectRetrySeconds) * time.Second

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := openAndPing(cfg.Database.URL)
		if err == nil {
			logger.Info("Database connection established", "attempt", attempt)
			return db, nil
		}
		lastErr = err

		logger.Warn("database connection failed",
			"attempt", attempt,
			"max_attempts", attempts,
			"retry_in", delay,
			"error", err)

		if attempt < attempts {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}

// openAndPing opens a pooled connection and verifies it with a short ping.
func openAndPing(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
