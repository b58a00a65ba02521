package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/model"
)

// TransactionRepository handles the ledger entry log.
type TransactionRepository struct {
	q sqlx.ExtContext
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(q sqlx.ExtContext) *TransactionRepository {
	return &TransactionRepository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *TransactionRepository) WithTx(tx *sqlx.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// NextID allocates the next transaction id: one more than the highest id
// ever handed out, or 1 for a new store. Ids of undone transactions are not
// reused. Returns apperrors.ErrCapacityExceeded once the id space is exhausted.
func (r *TransactionRepository) NextID(ctx context.Context) (int64, error) {
	const query = `
		SELECT COALESCE(MAX(id), 0) FROM (
			SELECT MAX(transaction_id) AS id FROM transactions
			UNION ALL
			SELECT value AS id FROM sequences WHERE name = 'transaction_id'
		) ids
	`

	var maxID int64
	if err := sqlx.GetContext(ctx, r.q, &maxID, query); err != nil {
		return 0, fmt.Errorf("failed to read max transaction id: %w", err)
	}
	if maxID >= math.MaxInt64-1 {
		return 0, fmt.Errorf("%w: transaction id %d is the last one available", apperrors.ErrCapacityExceeded, maxID)
	}

	next := maxID + 1
	upsert := r.q.Rebind(`
		INSERT INTO sequences (name, value) VALUES ('transaction_id', ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`)
	if _, err := r.q.ExecContext(ctx, upsert, next); err != nil {
		return 0, fmt.Errorf("failed to record transaction id: %w", err)
	}
	return next, nil
}

// Append writes one ledger entry.
func (r *TransactionRepository) Append(ctx context.Context, e model.LedgerEntry) error {
	query := r.q.Rebind(`
		INSERT INTO transactions (transaction_id, account_id, drink_id, count, unit_value, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := r.q.ExecContext(ctx, query, e.TransactionID, e.AccountID, e.DrinkID, e.Count, e.UnitValue, e.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// GetByTransactionID returns all entries sharing one transaction id.
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID int64) ([]model.LedgerEntry, error) {
	query := r.q.Rebind(`
		SELECT transaction_id, account_id, drink_id, count, unit_value, timestamp
		FROM transactions
		WHERE transaction_id = ?
		ORDER BY drink_id
	`)

	entries := []model.LedgerEntry{}
	if err := sqlx.SelectContext(ctx, r.q, &entries, query, transactionID); err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return entries, nil
}

// DeleteByTransactionID removes all entries of one transaction and returns
// how many rows were removed.
func (r *TransactionRepository) DeleteByTransactionID(ctx context.Context, transactionID int64) (int64, error) {
	query := r.q.Rebind(`DELETE FROM transactions WHERE transaction_id = ?`)

	result, err := r.q.ExecContext(ctx, query, transactionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transaction: %w", err)
	}
	return result.RowsAffected()
}

// DeleteByAccount removes every entry of an account.
func (r *TransactionRepository) DeleteByAccount(ctx context.Context, accountID int64) error {
	query := r.q.Rebind(`DELETE FROM transactions WHERE account_id = ?`)

	if _, err := r.q.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

// History returns the entries of an account joined with drink names,
// ordered ascending by transaction id. Credit entries have no drink name.
func (r *TransactionRepository) History(ctx context.Context, accountID int64) ([]model.HistoryEntry, error) {
	query := r.q.Rebind(`
		SELECT t.transaction_id, d.name AS drink_name, t.count, t.unit_value, t.timestamp
		FROM transactions t
		LEFT OUTER JOIN drinks d ON d.id = t.drink_id
		WHERE t.account_id = ?
		ORDER BY t.transaction_id, t.drink_id
	`)

	history := []model.HistoryEntry{}
	if err := sqlx.SelectContext(ctx, r.q, &history, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return history, nil
}
