// Package testdb connects integration tests to a real Postgres instance.
// Tests that use it skip automatically unless TASKAPI_TEST_DATABASE_URL is
// set, so the default `go test ./...` run stays self-contained.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/stretchr/testify/require"

	"github.com/Thinkabouthev/backend-hw2/internal/platform/postgres"
)

// EnvVar names the environment variable carrying the test database URL.
const EnvVar = "TASKAPI_TEST_DATABASE_URL"

const connectTimeout = 5 * time.Second

// URL returns the configured test database URL, or "" when integration
// tests should be skipped.
func URL() string {
	return os.Getenv(EnvVar)
}

// Open connects to the test database, applies all embedded schema
// migrations, and registers cleanup that closes the connection. The test is
// skipped when no test database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skipf("set %s to run database integration tests", EnvVar)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "test database is not reachable")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, postgres.MigrateUp(db, logger), "failed to apply migrations")

	return db
}

// Reset truncates the application tables so each test starts from an empty
// schema. Jobs go first because tasks and users have no references to them.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range []string{"jobs", "tasks", "users"} {
		_, err := db.ExecContext(context.Background(),
			fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate %s", table)
	}
}
