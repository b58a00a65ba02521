package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bimi-ledger/internal/model"
)

// LeaderboardRepository handles the per-(account, drink) consumption counters.
type LeaderboardRepository struct {
	q sqlx.ExtContext
}

// NewLeaderboardRepository creates a new LeaderboardRepository instance.
func NewLeaderboardRepository(q sqlx.ExtContext) *LeaderboardRepository {
	return &LeaderboardRepository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *LeaderboardRepository) WithTx(tx *sqlx.Tx) *LeaderboardRepository {
	return &LeaderboardRepository{q: tx}
}

// Bump adds delta to a counter, creating the row with quaffed = delta if needed.
func (r *LeaderboardRepository) Bump(ctx context.Context, accountID, drinkID, delta int64) error {
	query := r.q.Rebind(`
		INSERT INTO leaderboard (account_id, drink_id, quaffed)
		VALUES (?, ?, ?)
		ON CONFLICT (account_id, drink_id)
		DO UPDATE SET quaffed = leaderboard.quaffed + excluded.quaffed
	`)

	if _, err := r.q.ExecContext(ctx, query, accountID, drinkID, delta); err != nil {
		return fmt.Errorf("failed to bump leaderboard: %w", err)
	}
	return nil
}

// Decrement subtracts delta from an existing counter. Missing rows are left
// alone and the counter has no floor.
func (r *LeaderboardRepository) Decrement(ctx context.Context, accountID, drinkID, delta int64) error {
	query := r.q.Rebind(`
		UPDATE leaderboard
		SET quaffed = quaffed - ?
		WHERE account_id = ? AND drink_id = ?
	`)

	if _, err := r.q.ExecContext(ctx, query, delta, accountID, drinkID); err != nil {
		return fmt.Errorf("failed to decrement leaderboard: %w", err)
	}
	return nil
}

// Get returns the counter of one pair, or 0 when no row exists.
func (r *LeaderboardRepository) Get(ctx context.Context, accountID, drinkID int64) (int64, error) {
	query := r.q.Rebind(`SELECT quaffed FROM leaderboard WHERE account_id = ? AND drink_id = ?`)

	var counters []int64
	if err := sqlx.SelectContext(ctx, r.q, &counters, query, accountID, drinkID); err != nil {
		return 0, fmt.Errorf("failed to get leaderboard counter: %w", err)
	}
	if len(counters) == 0 {
		return 0, nil
	}
	return counters[0], nil
}

// ListByAccount returns all counters of an account ordered by drink id.
func (r *LeaderboardRepository) ListByAccount(ctx context.Context, accountID int64) ([]model.LeaderboardCounter, error) {
	query := r.q.Rebind(`
		SELECT account_id, drink_id, quaffed
		FROM leaderboard
		WHERE account_id = ?
		ORDER BY drink_id
	`)

	counters := []model.LeaderboardCounter{}
	if err := sqlx.SelectContext(ctx, r.q, &counters, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list leaderboard counters: %w", err)
	}
	return counters, nil
}

// DeleteByAccount removes every counter of an account.
func (r *LeaderboardRepository) DeleteByAccount(ctx context.Context, accountID int64) error {
	query := r.q.Rebind(`DELETE FROM leaderboard WHERE account_id = ?`)

	if _, err := r.q.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete leaderboard counters: %w", err)
	}
	return nil
}

// Totals sums the counters per account and drink name for every drink name
// that is tracked and not deleted. Drinks sharing a name are aggregated.
func (r *LeaderboardRepository) Totals(ctx context.Context) ([]model.King, error) {
	const query = `
		SELECT a.name AS account_name, d.name AS drink_name, CAST(SUM(k.quaffed) AS BIGINT) AS quaffed
		FROM leaderboard k
		JOIN drinks d ON d.id = k.drink_id
		JOIN accounts a ON a.id = k.account_id
		WHERE d.name IN (
			SELECT DISTINCT name FROM drinks WHERE tracked_for_leaderboard AND NOT deleted
		)
		GROUP BY a.id, a.name, d.name
	`

	totals := []model.King{}
	if err := sqlx.SelectContext(ctx, r.q, &totals, query); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard totals: %w", err)
	}
	return totals, nil
}
