package postgres

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "goose")
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...), "component", "goose")
}

// MigrateUp applies all pending schema migrations embedded in the binary.
func MigrateUp(db *sql.DB, logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	start := time.Now()
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		logger.Warn("failed to read migration version after apply", "error", err)
	} else {
		logger.Info("schema migrations applied",
			"version", version,
			"duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}
