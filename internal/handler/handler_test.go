package handler

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/config"
	"bimi-ledger/internal/pkg/db/dbtest"
	"bimi-ledger/internal/report"
	"bimi-ledger/internal/service"
)

type cli struct {
	registry *Registry
	out      *bytes.Buffer
	ledger   *service.Ledger
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	store := dbtest.NewSQLite(t)
	ledger := service.NewLedger(store.DB)
	reporter := report.NewReporter(ledger, config.LedgerConfig{Deposit: 100, Currency: "€"})

	out := &bytes.Buffer{}
	registry := NewRegistry()
	require.NoError(t, New(ledger, reporter, "€", out).Register(registry))
	return &cli{registry: registry, out: out, ledger: ledger}
}

// run executes a command and returns its output.
func (c *cli) run(t *testing.T, name string, args ...string) (string, error) {
	t.Helper()
	c.out.Reset()

	cmd, ok := c.registry.Get(name)
	require.True(t, ok, "command %s not registered", name)
	err := cmd.Run(context.Background(), args)
	return c.out.String(), err
}

func (c *cli) mustRun(t *testing.T, name string, args ...string) string {
	t.Helper()
	out, err := c.run(t, name, args...)
	require.NoError(t, err)
	return out
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"12", 1200, false},
		{"1.5", 150, false},
		{"0.05", 5, false},
		{"-2.50", -250, false},
		{"1.", 100, false},
		{".5", 50, false},
		{"92233720368547758.07", math.MaxInt64, false},
		{"-92233720368547758.08", math.MinInt64, false},
		{"", 0, true},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"1.x", 0, true},
		{"1.2.3", 0, true},
		{"--1.50", 0, true},
		{"--5", 0, true},
		{"-+2", 0, true},
		{"92233720368547758.08", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00 €", FormatAmount(0, "€"))
	assert.Equal(t, "12.34 €", FormatAmount(1234, "€"))
	assert.Equal(t, "-1.00 €", FormatAmount(-100, "€"))
	assert.Equal(t, "-0.05", FormatAmount(-5, ""))
	assert.Equal(t, "-92233720368547758.08", FormatAmount(math.MinInt64, ""))
	assert.Equal(t, "92233720368547758.07", FormatAmount(math.MaxInt64, ""))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Command{Name: "", Run: func(context.Context, []string) error { return nil }}))
	assert.Error(t, r.Register(Command{Name: "noop"}))

	require.NoError(t, New(nil, nil, "", &bytes.Buffer{}).Register(r))
	assert.Equal(t, 15, r.Count())

	commands := r.Commands()
	for i := 1; i < len(commands); i++ {
		assert.Less(t, commands[i-1].Name, commands[i].Name)
	}

	_, ok := r.Get("consume")
	assert.True(t, ok)
	_, ok = r.Get("transfer")
	assert.False(t, ok)
}

func TestCommands_AccountLifecycle(t *testing.T) {
	c := newCLI(t)

	assert.Equal(t, "Account 1 created\n", c.mustRun(t, "add-account", "Noob", "--credit", "10"))
	assert.Equal(t, "Account 2 created\n", c.mustRun(t, "add-account", "Max"))

	out := c.mustRun(t, "accounts")
	assert.Contains(t, out, "2  Max")
	assert.Contains(t, out, "1  Noob")

	c.mustRun(t, "rename-account", "2", "Max Mustermann")
	assert.Contains(t, c.mustRun(t, "accounts"), "Max Mustermann")

	assert.Contains(t, c.mustRun(t, "credit", "1", "-2.5"), "-2.50 €")

	out = c.mustRun(t, "history", "1")
	assert.Contains(t, out, "credit")
	assert.Contains(t, out, "10.00 €")
	// 10 - 2.50 - 1.00 deposit
	assert.Contains(t, out, "6.50 €")

	c.mustRun(t, "delete-account", "1")
	assert.NotContains(t, c.mustRun(t, "accounts"), "Noob")
}

func TestCommands_DrinksAndConsume(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "add-account", "Noob")

	assert.Equal(t, "Drink 1 created\n", c.mustRun(t, "add-drink", "Fanta",
		"--sale-price", "1", "--purchase-price", "0.85", "--deposit", "0.15",
		"--full", "5", "--empty", "15", "--tracked"))

	out := c.mustRun(t, "drinks")
	assert.Contains(t, out, "Fanta")
	assert.Contains(t, out, "1.00 €")

	assert.Equal(t, "Transaction 1 booked\n", c.mustRun(t, "consume", "1", "1:4", "1:6"))

	drink, err := c.ledger.Drink(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), drink.BottlesFull)
	assert.Equal(t, int64(25), drink.BottlesEmpty)

	out = c.mustRun(t, "kings")
	assert.Contains(t, out, "Noob")
	assert.Contains(t, out, "10")

	out = c.mustRun(t, "balances")
	assert.Contains(t, out, "-11.00 €")

	out = c.mustRun(t, "summary")
	assert.Contains(t, out, "Balances")
	assert.Contains(t, out, "Kings")

	c.mustRun(t, "undo", "1")
	drink, err = c.ledger.Drink(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), drink.BottlesFull)
	assert.Equal(t, int64(15), drink.BottlesEmpty)

	// Only the given flags change
	c.mustRun(t, "update-drink", "1", "--name", "Fanta Zero", "--full", "24")
	drink, err = c.ledger.Drink(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Fanta Zero", drink.Name)
	assert.Equal(t, int64(24), drink.BottlesFull)
	assert.Equal(t, int64(100), drink.SalePrice)
	assert.True(t, drink.TrackedForLeaderboard)

	c.mustRun(t, "delete-drink", "1")
	assert.NotContains(t, c.mustRun(t, "drinks"), "Fanta")
	assert.Equal(t, "No kings yet\n", c.mustRun(t, "kings"))
}

func TestCommands_Errors(t *testing.T) {
	c := newCLI(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"accounts", []string{"extra"}, apperrors.ErrInvalidInput},
		{"add-account", nil, apperrors.ErrInvalidInput},
		{"add-account", []string{"Noob", "--credit", "lots"}, apperrors.ErrInvalidInput},
		{"add-account", []string{"Noob", "--unknown"}, apperrors.ErrInvalidInput},
		{"credit", []string{"1", "--1.50"}, apperrors.ErrInvalidInput},
		{"credit", []string{"1", "0.001"}, apperrors.ErrInvalidInput},
		{"update-drink", []string{"1", "--bogus"}, apperrors.ErrInvalidInput},
		{"consume", []string{"1", "1:9223372036854775807", "1:1"}, apperrors.ErrInvalidInput},
		{"credit", []string{"x", "1"}, apperrors.ErrInvalidInput},
		{"consume", []string{"1"}, apperrors.ErrInvalidInput},
		{"consume", []string{"1", "7:zero"}, apperrors.ErrInvalidInput},
		{"consume", []string{"1", "7:0"}, apperrors.ErrInvalidInput},
		{"consume", []string{"1", "7"}, apperrors.ErrNotFound},
		{"undo", []string{"42"}, apperrors.ErrNotFound},
		{"update-drink", []string{"9", "--full", "1"}, apperrors.ErrNotFound},
		{"delete-drink", []string{"9"}, apperrors.ErrNotFound},
		{"add-drink", []string{"Mate", "--full", "-1"}, apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run(t, tt.name, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
