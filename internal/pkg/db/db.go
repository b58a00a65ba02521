// Package db provides store connection management for the sqlite3 and pgx drivers.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/config"
)

// DB wraps sqlx.DB with additional functionality.
type DB struct {
	*sqlx.DB
}

// Open opens the store described by cfg and verifies the connection.
// For sqlite3 the parent directory of the database file is created if missing.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err = openSQLite(cfg)
	case config.DriverPostgres:
		conn, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", apperrors.ErrStorageUnavailable, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	configurePool(conn, cfg)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", apperrors.ErrStorageUnavailable, err)
	}

	log.Info().Str("driver", cfg.Driver).Msg("Connected to ledger store")

	return &DB{DB: conn}, nil
}

func openSQLite(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	path := cfg.DataSource()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create directory %s: %v", apperrors.ErrStorageUnavailable, dir, err)
	}

	log.Info().Str("path", path).Msg("Opening SQLite store")

	// BEGIN IMMEDIATE takes the write lock up front so concurrent writers
	// wait on busy_timeout instead of failing at commit.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", path)
	conn, err := sqlx.Open(config.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", apperrors.ErrStorageUnavailable, path, err)
	}
	return conn, nil
}

func openPostgres(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	connConfig, err := pgx.ParseConfig(cfg.DataSource())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse database config: %v", apperrors.ErrStorageUnavailable, err)
	}

	if cfg.ConnectTimeout > 0 {
		connConfig.ConnectTimeout = cfg.ConnectTimeout
	} else {
		connConfig.ConnectTimeout = 10 * time.Second
	}

	log.Info().
		Str("host", connConfig.Host).
		Uint16("port", connConfig.Port).
		Str("database", connConfig.Database).
		Int("pool_size", cfg.PoolSize).
		Msg("Connecting to PostgreSQL")

	return sqlx.NewDb(stdlib.OpenDB(*connConfig), config.DriverPostgres), nil
}

func configurePool(conn *sqlx.DB, cfg *config.DatabaseConfig) {
	// SQLite allows a single writer; one connection keeps every
	// statement on the same handle.
	if cfg.Driver == config.DriverSQLite {
		conn.SetMaxOpenConns(1)
	} else if cfg.PoolSize > 0 {
		conn.SetMaxOpenConns(cfg.PoolSize)
		conn.SetMaxIdleConns(max(cfg.PoolSize/4, 1))
	}

	if cfg.MaxConnLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.MaxConnLifetime)
	} else {
		conn.SetConnMaxLifetime(time.Hour)
	}

	if cfg.MaxConnIdleTime > 0 {
		conn.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	} else {
		conn.SetConnMaxIdleTime(30 * time.Minute)
	}
}

// Close closes the store.
func (d *DB) Close() error {
	if d.DB == nil {
		return nil
	}
	err := d.DB.Close()
	log.Info().Msg("Ledger store closed")
	return err
}

// HealthCheck performs a health check on the store connection.
func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// WithTx runs fn inside a store transaction. The transaction is committed
// if fn returns nil and rolled back otherwise.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return WithTx(ctx, d.DB, fn)
}

// WithTx runs fn inside a transaction started on conn.
func WithTx(ctx context.Context, conn *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
