// Package handler provides the command handlers of the bimi command line.
// Each handler parses its arguments, calls the ledger and prints the result.
package handler

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/report"
	"bimi-ledger/internal/service"
)

// HandlerFunc runs one command with the arguments following its name.
type HandlerFunc func(ctx context.Context, args []string) error

// Command is a named command line operation.
type Command struct {
	Name  string
	Usage string
	Run   HandlerFunc
}

// Handler holds the dependencies shared by all commands.
type Handler struct {
	ledger   *service.Ledger
	reporter *report.Reporter
	currency string
	out      io.Writer
}

// New creates a new Handler writing its output to out.
func New(ledger *service.Ledger, reporter *report.Reporter, currency string, out io.Writer) *Handler {
	return &Handler{
		ledger:   ledger,
		reporter: reporter,
		currency: currency,
		out:      out,
	}
}

// Register adds every ledger command to r.
func (h *Handler) Register(r *Registry) error {
	commands := []Command{
		{Name: "accounts", Usage: "accounts", Run: h.HandleAccounts},
		{Name: "add-account", Usage: "add-account NAME [--credit AMOUNT]", Run: h.HandleAddAccount},
		{Name: "rename-account", Usage: "rename-account ACCOUNT_ID NAME", Run: h.HandleRenameAccount},
		{Name: "delete-account", Usage: "delete-account ACCOUNT_ID", Run: h.HandleDeleteAccount},
		{Name: "credit", Usage: "credit ACCOUNT_ID AMOUNT", Run: h.HandleCredit},
		{Name: "history", Usage: "history ACCOUNT_ID", Run: h.HandleHistory},
		{Name: "drinks", Usage: "drinks", Run: h.HandleDrinks},
		{Name: "add-drink", Usage: "add-drink NAME [drink flags]", Run: h.HandleAddDrink},
		{Name: "update-drink", Usage: "update-drink DRINK_ID [drink flags]", Run: h.HandleUpdateDrink},
		{Name: "delete-drink", Usage: "delete-drink DRINK_ID", Run: h.HandleDeleteDrink},
		{Name: "consume", Usage: "consume ACCOUNT_ID DRINK_ID[:QUANTITY]...", Run: h.HandleConsume},
		{Name: "undo", Usage: "undo TRANSACTION_ID", Run: h.HandleUndo},
		{Name: "kings", Usage: "kings", Run: h.HandleKings},
		{Name: "balances", Usage: "balances", Run: h.HandleBalances},
		{Name: "summary", Usage: "summary", Run: h.HandleSummary},
	}
	for _, c := range commands {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

const timeLayout = "2006-01-02 15:04"

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

func (h *Handler) printf(format string, args ...any) {
	fprintf(h.out, format, args...)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// usage reports a malformed command line as apperrors.ErrInvalidInput.
func usage(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// expectArgs checks the number of positional arguments.
func expectArgs(args []string, n int, synopsis string) error {
	if len(args) != n {
		return usage("usage: %s", synopsis)
	}
	return nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usage("invalid %s %q", what, s)
	}
	return id, nil
}

func parseAmount(s string) (int64, error) {
	amount, err := ParseAmount(s)
	if err != nil {
		return 0, usage("invalid amount %q", s)
	}
	return amount, nil
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(command string, fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usage("%s: %v", command, err)
	}
	return nil
}

// ParseAmount parses a decimal amount like "12", "-1.5" or "0.05" into
// minor units (hundredths). Amounts with more than two decimal places or
// outside the int64 range are rejected.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}

	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return minor.IntPart(), nil
}

// FormatAmount renders minor units as a decimal amount with currency symbol.
func FormatAmount(amount int64, currency string) string {
	s := decimal.New(amount, -2).StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
