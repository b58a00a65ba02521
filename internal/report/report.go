// Package report derives account balances and the consumption summary from
// the ledger. It is the only place the configured deposit is applied.
package report

import (
	"context"
	"fmt"

	"bimi-ledger/internal/config"
	"bimi-ledger/internal/model"
)

// Reader is the read side of the ledger used for reporting.
type Reader interface {
	Accounts(ctx context.Context) ([]model.Account, error)
	Transactions(ctx context.Context, accountID int64) ([]model.HistoryEntry, error)
	Leaderboard(ctx context.Context) ([]model.King, error)
}

// AccountBalance is the balance of one account in minor units.
type AccountBalance struct {
	Account model.Account
	Balance int64
}

// Summary is the data behind the periodic summary sent to all accounts.
type Summary struct {
	Currency string
	Balances []AccountBalance
	Kings    []model.King
}

// Reporter computes balances with a fixed per-account deposit.
type Reporter struct {
	ledger   Reader
	deposit  int64
	currency string
}

// NewReporter creates a new Reporter instance.
func NewReporter(ledger Reader, cfg config.LedgerConfig) *Reporter {
	return &Reporter{
		ledger:   ledger,
		deposit:  cfg.Deposit,
		currency: cfg.Currency,
	}
}

// Balance returns sum(count * unit_value) over the account's history minus the deposit.
func (r *Reporter) Balance(ctx context.Context, accountID int64) (int64, error) {
	history, err := r.ledger.Transactions(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return Sum(history) - r.deposit, nil
}

// Balances returns the balance of every account ordered by account name.
func (r *Reporter) Balances(ctx context.Context) ([]AccountBalance, error) {
	accounts, err := r.ledger.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	balances := make([]AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balance, err := r.Balance(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		balances = append(balances, AccountBalance{Account: account, Balance: balance})
	}
	return balances, nil
}

// Summary collects all balances and the leaderboard.
func (r *Reporter) Summary(ctx context.Context) (*Summary, error) {
	balances, err := r.Balances(ctx)
	if err != nil {
		return nil, err
	}

	kings, err := r.ledger.Leaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return &Summary{
		Currency: r.currency,
		Balances: balances,
		Kings:    kings,
	}, nil
}

// Sum adds up the signed value of history entries.
func Sum(history []model.HistoryEntry) int64 {
	var total int64
	for _, h := range history {
		total += h.Value()
	}
	return total
}
