package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/config"
)

// pgDuplicateTable is the SQLSTATE for "relation already exists".
const pgDuplicateTable = "42P07"

// relation describes one table of the ledger and the columns every
// compatible store must expose.
type relation struct {
	name    string
	columns []string
}

var relations = []relation{
	{"accounts", []string{"id", "name"}},
	{"drinks", []string{"id", "name", "sale_price", "purchase_price", "deposit", "bottles_full", "bottles_empty", "deleted", "tracked_for_leaderboard"}},
	{"leaderboard", []string{"account_id", "drink_id", "quaffed"}},
	{"transactions", []string{"transaction_id", "account_id", "drink_id", "count", "unit_value", "timestamp"}},
}

var sqliteSchema = []string{
	`CREATE TABLE accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE drinks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		sale_price INTEGER NOT NULL,
		purchase_price INTEGER NOT NULL,
		deposit INTEGER NOT NULL,
		bottles_full INTEGER NOT NULL CHECK (bottles_full >= 0),
		bottles_empty INTEGER NOT NULL CHECK (bottles_empty >= 0),
		deleted BOOLEAN NOT NULL DEFAULT 0,
		tracked_for_leaderboard BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE leaderboard (
		account_id INTEGER NOT NULL,
		drink_id INTEGER NOT NULL,
		quaffed INTEGER NOT NULL,
		PRIMARY KEY (account_id, drink_id)
	)`,
	`CREATE TABLE transactions (
		transaction_id INTEGER NOT NULL,
		account_id INTEGER NOT NULL,
		drink_id INTEGER NOT NULL,
		count INTEGER NOT NULL CHECK (count > 0),
		unit_value INTEGER NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		PRIMARY KEY (transaction_id, account_id, drink_id)
	)`,
	`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE accounts (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE drinks (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		sale_price BIGINT NOT NULL,
		purchase_price BIGINT NOT NULL,
		deposit BIGINT NOT NULL,
		bottles_full BIGINT NOT NULL CHECK (bottles_full >= 0),
		bottles_empty BIGINT NOT NULL CHECK (bottles_empty >= 0),
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		tracked_for_leaderboard BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE leaderboard (
		account_id BIGINT NOT NULL,
		drink_id BIGINT NOT NULL,
		quaffed BIGINT NOT NULL,
		PRIMARY KEY (account_id, drink_id)
	)`,
	`CREATE TABLE transactions (
		transaction_id BIGINT NOT NULL,
		account_id BIGINT NOT NULL,
		drink_id BIGINT NOT NULL,
		count BIGINT NOT NULL CHECK (count > 0),
		unit_value BIGINT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (transaction_id, account_id, drink_id)
	)`,
	`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
}

// sequenceSchema holds the transaction id high-water mark. It is not one of
// the verified relations and is added to new and existing stores alike.
const sequenceSchema = `CREATE TABLE IF NOT EXISTS sequences (
	name TEXT PRIMARY KEY,
	value BIGINT NOT NULL
)`

// Bootstrap creates the four ledger relations. If they already exist the
// store is verified instead; a store that fails verification is reported
// as apperrors.ErrSchemaCorrupt.
func (d *DB) Bootstrap(ctx context.Context) error {
	return Bootstrap(ctx, d.DB)
}

// Bootstrap creates or verifies the ledger schema on conn.
func Bootstrap(ctx context.Context, conn *sqlx.DB) error {
	schema, err := schemaFor(conn.DriverName())
	if err != nil {
		return err
	}

	err = WithTx(ctx, conn, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case err == nil:
		log.Info().Msg("Created new ledger store")
	case isAlreadyExists(err):
		log.Info().Msg("Found an existing ledger store")
		if err := Verify(ctx, conn); err != nil {
			log.Error().Err(err).Msg("Ledger store is corrupt or was created by an incompatible version")
			return err
		}
		log.Info().Msg("Ledger store is usable")
	default:
		return fmt.Errorf("%w: failed to create schema: %v", apperrors.ErrStorageUnavailable, err)
	}

	if _, err := conn.ExecContext(ctx, sequenceSchema); err != nil {
		return fmt.Errorf("%w: failed to create sequences: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// Verify checks that every relation is queryable with the expected columns.
func Verify(ctx context.Context, conn sqlx.QueryerContext) error {
	for _, rel := range relations {
		query := fmt.Sprintf("SELECT %s FROM %s LIMIT 1", strings.Join(rel.columns, ", "), rel.name)
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("%w: relation %s: %v", apperrors.ErrSchemaCorrupt, rel.name, err)
		}
		rows.Close()
	}
	return nil
}

func schemaFor(driver string) ([]string, error) {
	switch driver {
	case config.DriverSQLite:
		return sqliteSchema, nil
	case config.DriverPostgres:
		return postgresSchema, nil
	default:
		return nil, fmt.Errorf("%w: no schema for driver %q", apperrors.ErrStorageUnavailable, driver)
	}
}

func isAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgDuplicateTable
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrError && strings.Contains(liteErr.Error(), "already exists")
	}
	return false
}
