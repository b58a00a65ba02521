package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bimi-ledger/internal/config"
	"bimi-ledger/internal/model"
)

type fakeLedger struct {
	accounts []model.Account
	history  map[int64][]model.HistoryEntry
	kings    []model.King
	err      error
}

func (f *fakeLedger) Accounts(ctx context.Context) ([]model.Account, error) {
	return f.accounts, f.err
}

func (f *fakeLedger) Transactions(ctx context.Context, accountID int64) ([]model.HistoryEntry, error) {
	return f.history[accountID], f.err
}

func (f *fakeLedger) Leaderboard(ctx context.Context) ([]model.King, error) {
	return f.kings, f.err
}

func name(s string) *string { return &s }

func newFake() *fakeLedger {
	return &fakeLedger{
		accounts: []model.Account{{ID: 2, Name: "Max"}, {ID: 1, Name: "Noob"}},
		history: map[int64][]model.HistoryEntry{
			1: {
				{TransactionID: 1, Count: 1, UnitValue: 1000},
				{TransactionID: 4, DrinkName: name("Fanta"), Count: 10, UnitValue: -100},
				{TransactionID: 4, DrinkName: name("Cola"), Count: 2, UnitValue: -100},
			},
		},
		kings: []model.King{{AccountName: "Noob", DrinkName: "Fanta", Quaffed: 10}},
	}
}

func TestSum(t *testing.T) {
	assert.Equal(t, int64(0), Sum(nil))
	assert.Equal(t, int64(-200), Sum(newFake().history[1]))
}

func TestReporter_Balance(t *testing.T) {
	r := NewReporter(newFake(), config.LedgerConfig{Deposit: 50})

	balance, err := r.Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(-250), balance)

	// No history still pays the deposit
	balance, err = r.Balance(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-50), balance)
}

func TestReporter_Summary(t *testing.T) {
	r := NewReporter(newFake(), config.LedgerConfig{Currency: "€"})

	summary, err := r.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "€", summary.Currency)
	assert.Equal(t, []AccountBalance{
		{Account: model.Account{ID: 2, Name: "Max"}, Balance: 0},
		{Account: model.Account{ID: 1, Name: "Noob"}, Balance: -200},
	}, summary.Balances)
	assert.Equal(t, newFake().kings, summary.Kings)
}

func TestReporter_Errors(t *testing.T) {
	f := newFake()
	f.err = errors.New("store gone")
	r := NewReporter(f, config.LedgerConfig{})

	_, err := r.Balance(context.Background(), 1)
	assert.ErrorIs(t, err, f.err)

	_, err = r.Summary(context.Background())
	assert.ErrorIs(t, err, f.err)
}
