package handler

import (
	"context"
	"text/tabwriter"
)

// HandleKings prints the top consumer of every tracked drink.
func (h *Handler) HandleKings(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, "kings"); err != nil {
		return err
	}

	kings, err := h.ledger.Leaderboard(ctx)
	if err != nil {
		return err
	}
	if len(kings) == 0 {
		h.printf("No kings yet\n")
		return nil
	}

	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	for _, k := range kings {
		fprintf(w, "%s\t%s\t%d\n", k.AccountName, k.DrinkName, k.Quaffed)
	}
	return w.Flush()
}

// HandleBalances prints the balance of every account.
func (h *Handler) HandleBalances(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, "balances"); err != nil {
		return err
	}

	balances, err := h.reporter.Balances(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, b := range balances {
		fprintf(w, "%s\t%s\t\n", b.Account.Name, FormatAmount(b.Balance, h.currency))
	}
	return w.Flush()
}

// HandleSummary prints balances followed by the kings.
func (h *Handler) HandleSummary(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, "summary"); err != nil {
		return err
	}

	summary, err := h.reporter.Summary(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fprintf(w, "Balances\n")
	for _, b := range summary.Balances {
		fprintf(w, "  %s\t%s\n", b.Account.Name, FormatAmount(b.Balance, summary.Currency))
	}
	fprintf(w, "Kings\n")
	for _, k := range summary.Kings {
		fprintf(w, "  %s\t%s\t%d\n", k.AccountName, k.DrinkName, k.Quaffed)
	}
	return w.Flush()
}
