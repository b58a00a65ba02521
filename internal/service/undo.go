package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/model"
	"bimi-ledger/internal/repository"
)

// Entries returns the raw ledger entries of one transaction.
func (l *Ledger) Entries(ctx context.Context, transactionID int64) ([]model.LedgerEntry, error) {
	return l.txs.GetByTransactionID(ctx, transactionID)
}

// Undo reverses a transaction: bottles go back from empty to full, the
// leaderboard counters are decremented and the entries are deleted.
//
// The inverse is exact only if the consumption did not clamp full bottles
// at zero; after a clamp the restored split differs from the one before.
func (l *Ledger) Undo(ctx context.Context, transactionID int64) error {
	var entries []model.LedgerEntry
	err := l.write(ctx, func(r repos) error {
		var err error
		if entries, err = r.txs.GetByTransactionID(ctx, transactionID); err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("%w: %d", repository.ErrTransactionNotFound, transactionID)
		}

		for _, e := range entries {
			if e.IsCredit() {
				continue
			}

			drink, err := r.drinks.GetByID(ctx, e.DrinkID)
			if err != nil {
				return fmt.Errorf("drink %d: %w", e.DrinkID, err)
			}

			if drink.BottlesFull > math.MaxInt64-e.Count {
				return fmt.Errorf("%w: undoing transaction %d overflows full bottles of drink %d",
					apperrors.ErrInvalidInput, transactionID, drink.ID)
			}
			full, empty := RestoreStock(drink.BottlesFull, drink.BottlesEmpty, e.Count)
			if empty < 0 {
				return fmt.Errorf("%w: undoing transaction %d leaves drink %d with %d empty bottles",
					apperrors.ErrInvalidInput, transactionID, drink.ID, empty)
			}
			if err := r.drinks.SetStock(ctx, drink.ID, full, empty); err != nil {
				return err
			}

			if err := r.leaderboard.Decrement(ctx, e.AccountID, e.DrinkID, e.Count); err != nil {
				return err
			}
		}

		_, err = r.txs.DeleteByTransactionID(ctx, transactionID)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Int64("transaction_id", transactionID).Msg("Undo aborted")
		return err
	}

	log.Debug().Int64("transaction_id", transactionID).Int("entries", len(entries)).Msg("Transaction undone")
	return nil
}
