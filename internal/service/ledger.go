// Package service provides the ledger: accounts, drinks, consumption, undo
// and the leaderboard, with every mutation applied atomically.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/pkg/db"
	"bimi-ledger/internal/pkg/lock"
	"bimi-ledger/internal/repository"
)

// Ledger owns the accounts, drinks, leaderboard and transaction relations.
// Reads go straight to the store; writes are serialized by an in-process
// writer lock and run in one store transaction each.
type Ledger struct {
	conn        *sqlx.DB
	accounts    *repository.AccountRepository
	drinks      *repository.DrinkRepository
	txs         *repository.TransactionRepository
	leaderboard *repository.LeaderboardRepository
	writer      *lock.Writer
	validate    *validator.Validate
	now         func() time.Time
}

// NewLedger creates a Ledger on an opened and bootstrapped store.
func NewLedger(conn *sqlx.DB) *Ledger {
	return &Ledger{
		conn:        conn,
		accounts:    repository.NewAccountRepository(conn),
		drinks:      repository.NewDrinkRepository(conn),
		txs:         repository.NewTransactionRepository(conn),
		leaderboard: repository.NewLeaderboardRepository(conn),
		writer:      lock.NewWriter(),
		validate:    validator.New(),
		now:         time.Now,
	}
}

// repos is the set of repositories bound to one store transaction.
type repos struct {
	accounts    *repository.AccountRepository
	drinks      *repository.DrinkRepository
	txs         *repository.TransactionRepository
	leaderboard *repository.LeaderboardRepository
}

// write runs fn under the writer lock inside a single store transaction.
func (l *Ledger) write(ctx context.Context, fn func(r repos) error) error {
	return l.writer.WithLock(ctx, func() error {
		return db.WithTx(ctx, l.conn, func(tx *sqlx.Tx) error {
			return fn(repos{
				accounts:    l.accounts.WithTx(tx),
				drinks:      l.drinks.WithTx(tx),
				txs:         l.txs.WithTx(tx),
				leaderboard: l.leaderboard.WithTx(tx),
			})
		})
	})
}

// invalid wraps a validation failure as apperrors.ErrInvalidInput.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
}
