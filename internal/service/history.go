package service

import (
	"context"

	"bimi-ledger/internal/model"
)

// Transactions returns the history of an account ordered by transaction id.
// Entries of pure credits carry no drink name.
func (l *Ledger) Transactions(ctx context.Context, accountID int64) ([]model.HistoryEntry, error) {
	return l.txs.History(ctx, accountID)
}
