package db_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/config"
	"bimi-ledger/internal/pkg/db"
	"bimi-ledger/internal/pkg/db/dbtest"
)

func sqliteConfig(path string) *config.DatabaseConfig {
	return &config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.sqlite")

	store, err := db.Open(context.Background(), sqliteConfig(path))
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_ParentIsFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := db.Open(context.Background(), sqliteConfig(filepath.Join(blocker, "ledger.sqlite")))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.True(t, apperrors.IsFatal(err))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := db.Open(context.Background(), &config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}

func TestBootstrap_NewAndExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.sqlite")

	store, err := db.Open(ctx, sqliteConfig(path))
	require.NoError(t, err)
	require.NoError(t, store.Bootstrap(ctx))
	require.NoError(t, store.Close())

	// Reopening an existing store only verifies it
	store, err = db.Open(ctx, sqliteConfig(path))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Bootstrap(ctx))
	require.NoError(t, db.Verify(ctx, store.DB))
}

func TestBootstrap_ForeignSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "foreign.sqlite")

	store, err := db.Open(ctx, sqliteConfig(path))
	require.NoError(t, err)
	defer store.Close()

	// An older layout with differently named columns
	_, err = store.ExecContext(ctx, `CREATE TABLE accounts (aid INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	err = store.Bootstrap(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSchemaCorrupt)
	assert.True(t, apperrors.IsFatal(err))
}

func TestWithTx(t *testing.T) {
	dbtest.Run(t, func(t *testing.T, store *db.DB) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := store.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO accounts (name) VALUES (?)`), "rolled back"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		err = store.WithTx(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO accounts (name) VALUES (?)`), "committed")
			return err
		})
		require.NoError(t, err)

		var names []string
		require.NoError(t, store.SelectContext(ctx, &names, `SELECT name FROM accounts`))
		assert.Equal(t, []string{"committed"}, names)
	})
}

func TestHealthCheck(t *testing.T) {
	store := dbtest.NewSQLite(t)
	assert.NoError(t, store.HealthCheck(context.Background()))

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.HealthCheck(context.Background()), apperrors.ErrStorageUnavailable)
}
