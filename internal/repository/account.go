package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bimi-ledger/internal/model"
)

// AccountRepository handles account persistence.
type AccountRepository struct {
	q sqlx.ExtContext
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(q sqlx.ExtContext) *AccountRepository {
	return &AccountRepository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *AccountRepository) WithTx(tx *sqlx.Tx) *AccountRepository {
	return &AccountRepository{q: tx}
}

// List returns all accounts ordered ascending by name.
func (r *AccountRepository) List(ctx context.Context) ([]model.Account, error) {
	const query = `SELECT id, name FROM accounts ORDER BY name, id`

	accounts := []model.Account{}
	if err := sqlx.SelectContext(ctx, r.q, &accounts, query); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	sortByName(accounts, func(a model.Account) string { return a.Name })
	return accounts, nil
}

// Create inserts a new account and returns its id.
func (r *AccountRepository) Create(ctx context.Context, name string) (int64, error) {
	query := r.q.Rebind(`INSERT INTO accounts (name) VALUES (?) RETURNING id`)

	var id int64
	if err := sqlx.GetContext(ctx, r.q, &id, query, name); err != nil {
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return id, nil
}

// GetByID retrieves an account by id.
// Returns ErrAccountNotFound if the account does not exist.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	query := r.q.Rebind(`SELECT id, name FROM accounts WHERE id = ?`)

	var account model.Account
	if err := sqlx.GetContext(ctx, r.q, &account, query, id); err != nil {
		return nil, notFound(err, ErrAccountNotFound, "get account")
	}
	return &account, nil
}

// Rename sets the name of an account. Unknown ids are ignored.
func (r *AccountRepository) Rename(ctx context.Context, id int64, name string) error {
	query := r.q.Rebind(`UPDATE accounts SET name = ? WHERE id = ?`)

	if _, err := r.q.ExecContext(ctx, query, name, id); err != nil {
		return fmt.Errorf("failed to rename account: %w", err)
	}
	return nil
}

// Delete removes the account row only. Callers remove dependent rows.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	query := r.q.Rebind(`DELETE FROM accounts WHERE id = ?`)

	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
