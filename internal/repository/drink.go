package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bimi-ledger/internal/model"
)

const drinkColumns = `id, name, sale_price, purchase_price, deposit, bottles_full, bottles_empty, deleted, tracked_for_leaderboard`

// DrinkRepository handles drink and inventory persistence.
type DrinkRepository struct {
	q sqlx.ExtContext
}

// NewDrinkRepository creates a new DrinkRepository instance.
func NewDrinkRepository(q sqlx.ExtContext) *DrinkRepository {
	return &DrinkRepository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *DrinkRepository) WithTx(tx *sqlx.Tx) *DrinkRepository {
	return &DrinkRepository{q: tx}
}

// ListActive returns all drinks that are not deleted, ordered ascending by name.
func (r *DrinkRepository) ListActive(ctx context.Context) ([]model.Drink, error) {
	const query = `SELECT ` + drinkColumns + ` FROM drinks WHERE NOT deleted ORDER BY name, id`

	drinks := []model.Drink{}
	if err := sqlx.SelectContext(ctx, r.q, &drinks, query); err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", err)
	}
	sortByName(drinks, func(d model.Drink) string { return d.Name })
	return drinks, nil
}

// GetByID retrieves a drink by id, deleted or not.
// Returns ErrDrinkNotFound if the drink does not exist.
func (r *DrinkRepository) GetByID(ctx context.Context, id int64) (*model.Drink, error) {
	query := r.q.Rebind(`SELECT ` + drinkColumns + ` FROM drinks WHERE id = ?`)

	var drink model.Drink
	if err := sqlx.GetContext(ctx, r.q, &drink, query, id); err != nil {
		return nil, notFound(err, ErrDrinkNotFound, "get drink")
	}
	return &drink, nil
}

// Create inserts a new, not deleted drink and returns its id.
func (r *DrinkRepository) Create(ctx context.Context, f model.DrinkFields) (int64, error) {
	query := r.q.Rebind(`
		INSERT INTO drinks (name, sale_price, purchase_price, deposit, bottles_full, bottles_empty, deleted, tracked_for_leaderboard)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err := sqlx.GetContext(ctx, r.q, &id, query,
		f.Name, f.SalePrice, f.PurchasePrice, f.Deposit,
		f.BottlesFull, f.BottlesEmpty, false, f.TrackedForLeaderboard,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create drink: %w", err)
	}
	return id, nil
}

// Update overwrites the editable columns of a drink.
// Returns ErrDrinkNotFound if no row matched.
func (r *DrinkRepository) Update(ctx context.Context, id int64, f model.DrinkFields) error {
	query := r.q.Rebind(`
		UPDATE drinks
		SET name = ?, sale_price = ?, purchase_price = ?, deposit = ?,
		    bottles_full = ?, bottles_empty = ?, tracked_for_leaderboard = ?
		WHERE id = ?
	`)

	result, err := r.q.ExecContext(ctx, query,
		f.Name, f.SalePrice, f.PurchasePrice, f.Deposit,
		f.BottlesFull, f.BottlesEmpty, f.TrackedForLeaderboard, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update drink: %w", err)
	}
	return requireAffected(result, ErrDrinkNotFound)
}

// SoftDelete marks a drink deleted and removes it from the leaderboard.
// Returns ErrDrinkNotFound if no row matched.
func (r *DrinkRepository) SoftDelete(ctx context.Context, id int64) error {
	query := r.q.Rebind(`UPDATE drinks SET deleted = ?, tracked_for_leaderboard = ? WHERE id = ?`)

	result, err := r.q.ExecContext(ctx, query, true, false, id)
	if err != nil {
		return fmt.Errorf("failed to delete drink: %w", err)
	}
	return requireAffected(result, ErrDrinkNotFound)
}

// SetStock sets the bottle counts of a drink.
func (r *DrinkRepository) SetStock(ctx context.Context, id int64, full, empty int64) error {
	query := r.q.Rebind(`UPDATE drinks SET bottles_full = ?, bottles_empty = ? WHERE id = ?`)

	result, err := r.q.ExecContext(ctx, query, full, empty, id)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return requireAffected(result, ErrDrinkNotFound)
}
