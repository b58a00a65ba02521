package service

import (
	"cmp"
	"context"
	"slices"

	"bimi-ledger/internal/model"
)

// Leaderboard returns, for every tracked drink name, the account that drank
// the most of it. Drinks sharing a name count together. Ties go to the
// account whose name sorts first. The result is ordered by account name.
func (l *Ledger) Leaderboard(ctx context.Context) ([]model.King, error) {
	totals, err := l.leaderboard.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return Kings(totals), nil
}

// Kings reduces per-(account, drink name) totals to one winner per drink name.
func Kings(totals []model.King) []model.King {
	best := make(map[string]model.King)
	for _, t := range totals {
		cur, ok := best[t.DrinkName]
		if !ok || t.Quaffed > cur.Quaffed || (t.Quaffed == cur.Quaffed && t.AccountName < cur.AccountName) {
			best[t.DrinkName] = t
		}
	}

	kings := make([]model.King, 0, len(best))
	for _, k := range best {
		kings = append(kings, k)
	}
	slices.SortFunc(kings, func(a, b model.King) int {
		return cmp.Or(
			cmp.Compare(a.AccountName, b.AccountName),
			cmp.Compare(a.DrinkName, b.DrinkName),
		)
	})
	return kings
}

// Counters returns the raw leaderboard counters of an account.
func (l *Ledger) Counters(ctx context.Context, accountID int64) ([]model.LeaderboardCounter, error) {
	return l.leaderboard.ListByAccount(ctx, accountID)
}
