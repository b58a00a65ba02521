package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"bimi-ledger/internal/model"
)

// Drinks returns all drinks that are not deleted, ordered ascending by name.
func (l *Ledger) Drinks(ctx context.Context) ([]model.Drink, error) {
	return l.drinks.ListActive(ctx)
}

// Drink returns one drink, including deleted ones.
func (l *Ledger) Drink(ctx context.Context, id int64) (*model.Drink, error) {
	return l.drinks.GetByID(ctx, id)
}

// CreateDrink inserts a new drink and returns its id.
func (l *Ledger) CreateDrink(ctx context.Context, f model.DrinkFields) (int64, error) {
	if err := l.validate.Struct(f); err != nil {
		return 0, invalid(err)
	}

	var id int64
	err := l.write(ctx, func(r repos) error {
		var err error
		id, err = r.drinks.Create(ctx, f)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int64("drink_id", id).Str("name", f.Name).Msg("Drink created")
	return id, nil
}

// UpdateDrink overwrites every editable field of an existing drink.
func (l *Ledger) UpdateDrink(ctx context.Context, id int64, f model.DrinkFields) error {
	if err := l.validate.Struct(f); err != nil {
		return invalid(err)
	}

	err := l.write(ctx, func(r repos) error {
		return r.drinks.Update(ctx, id, f)
	})
	if err != nil {
		return err
	}

	log.Debug().Int64("drink_id", id).Str("name", f.Name).Msg("Drink updated")
	return nil
}

// DeleteDrink soft-deletes a drink: it leaves the drink list and the
// leaderboard but keeps resolving in account histories.
func (l *Ledger) DeleteDrink(ctx context.Context, id int64) error {
	err := l.write(ctx, func(r repos) error {
		return r.drinks.SoftDelete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Debug().Int64("drink_id", id).Msg("Drink deleted")
	return nil
}
