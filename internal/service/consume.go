package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"bimi-ledger/internal/model"
)

// Coalesce merges items with the same drink id by summing their quantities.
// The result keeps the order in which drink ids first appear. Quantities must
// be positive; a sum beyond the int64 range is reported as invalid input.
func Coalesce(items []model.ConsumeItem) ([]model.ConsumeItem, error) {
	index := make(map[int64]int, len(items))
	merged := make([]model.ConsumeItem, 0, len(items))
	for _, item := range items {
		i, ok := index[item.DrinkID]
		if !ok {
			index[item.DrinkID] = len(merged)
			merged = append(merged, item)
			continue
		}
		if merged[i].Quantity > math.MaxInt64-item.Quantity {
			return nil, invalid(fmt.Errorf("drink %d: total quantity exceeds %d", item.DrinkID, int64(math.MaxInt64)))
		}
		merged[i].Quantity += item.Quantity
	}
	return merged, nil
}

// ConsumeStock returns the bottle counts after quantity bottles were drunk.
// Full bottles never go below zero; empties grow by the whole quantity.
func ConsumeStock(full, empty, quantity int64) (newFull, newEmpty int64) {
	return max(full-quantity, 0), empty + quantity
}

// RestoreStock is the inverse of ConsumeStock for an unclamped consumption.
func RestoreStock(full, empty, quantity int64) (newFull, newEmpty int64) {
	return full + quantity, empty - quantity
}

func validateItems(items []model.ConsumeItem) error {
	if len(items) == 0 {
		return invalid(errors.New("no drinks to consume"))
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return invalid(fmt.Errorf("drink %d: quantity must be positive, got %d", item.DrinkID, item.Quantity))
		}
	}
	return nil
}

// Consume books the drinks in items on an account and returns the
// transaction id shared by the new ledger entries. Duplicate drink ids are
// merged. If any drink is unknown nothing is written.
func (l *Ledger) Consume(ctx context.Context, accountID int64, items []model.ConsumeItem) (int64, error) {
	if err := validateItems(items); err != nil {
		return 0, err
	}
	merged, err := Coalesce(items)
	if err != nil {
		return 0, err
	}

	var tid int64
	err = l.write(ctx, func(r repos) error {
		drinks := make([]*model.Drink, len(merged))
		for i, item := range merged {
			drink, err := r.drinks.GetByID(ctx, item.DrinkID)
			if err != nil {
				return fmt.Errorf("drink %d: %w", item.DrinkID, err)
			}
			if item.Quantity > math.MaxInt64-drink.BottlesEmpty {
				return invalid(fmt.Errorf("drink %d: %d empty bottles plus %d exceeds %d",
					drink.ID, drink.BottlesEmpty, item.Quantity, int64(math.MaxInt64)))
			}
			drinks[i] = drink
		}

		var err error
		if tid, err = r.txs.NextID(ctx); err != nil {
			return err
		}

		now := l.now()
		for i, item := range merged {
			drink := drinks[i]

			err := r.txs.Append(ctx, model.LedgerEntry{
				TransactionID: tid,
				AccountID:     accountID,
				DrinkID:       drink.ID,
				Count:         item.Quantity,
				UnitValue:     -drink.SalePrice,
				Timestamp:     now,
			})
			if err != nil {
				return err
			}

			full, empty := ConsumeStock(drink.BottlesFull, drink.BottlesEmpty, item.Quantity)
			if err := r.drinks.SetStock(ctx, drink.ID, full, empty); err != nil {
				return err
			}

			if err := r.leaderboard.Bump(ctx, accountID, drink.ID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int64("account_id", accountID).Int("items", len(merged)).Msg("Consumption aborted")
		return 0, err
	}

	log.Debug().Int64("account_id", accountID).Int64("transaction_id", tid).Int("items", len(merged)).Msg("Drinks consumed")
	return tid, nil
}
