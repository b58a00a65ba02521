// Package dbtest provides bootstrapped ledger stores for tests.
// SQLite stores are always available; PostgreSQL stores are started with
// testcontainers-go when Docker is running.
package dbtest

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"bimi-ledger/internal/config"
	"bimi-ledger/internal/pkg/db"
)

// Backend names a store flavor under test.
type Backend struct {
	Name string
	Open func(t *testing.T) *db.DB
}

// Backends returns every backend tests should run against.
func Backends() []Backend {
	return []Backend{
		{Name: "sqlite", Open: NewSQLite},
		{Name: "postgres", Open: NewPostgres},
	}
}

// Run runs fn once per backend as a subtest.
func Run(t *testing.T, fn func(t *testing.T, store *db.DB)) {
	t.Helper()
	for _, b := range Backends() {
		t.Run(b.Name, func(t *testing.T) {
			fn(t, b.Open(t))
		})
	}
}

// NewSQLite creates a bootstrapped SQLite store in a temporary directory.
func NewSQLite(t *testing.T) *db.DB {
	t.Helper()
	ctx := context.Background()

	store, err := db.Open(ctx, &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "ledger", "test.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Bootstrap(ctx))
	return store
}

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// NewPostgres starts a PostgreSQL container and returns a bootstrapped store.
// Skips the test if Docker is not available.
func NewPostgres(t *testing.T) *db.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := db.Open(ctx, &config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		DSN:      connStr,
		PoolSize: 4,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Bootstrap(ctx))
	return store
}
