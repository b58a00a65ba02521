package handler

import (
	"context"
	"text/tabwriter"
)

// HandleAccounts lists all accounts ordered by name.
func (h *Handler) HandleAccounts(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, "accounts"); err != nil {
		return err
	}

	accounts, err := h.ledger.Accounts(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	for _, a := range accounts {
		fprintf(w, "%d\t%s\n", a.ID, a.Name)
	}
	return w.Flush()
}

// HandleAddAccount creates an account, optionally with initial credit.
func (h *Handler) HandleAddAccount(ctx context.Context, args []string) error {
	fs := newFlagSet("add-account")
	credit := fs.String("credit", "0", "initial credit")
	if err := parseFlags("add-account", fs, args); err != nil {
		return err
	}
	if err := expectArgs(fs.Args(), 1, "add-account NAME [--credit AMOUNT]"); err != nil {
		return err
	}

	amount, err := parseAmount(*credit)
	if err != nil {
		return err
	}

	id, err := h.ledger.CreateAccount(ctx, fs.Arg(0), amount)
	if err != nil {
		return err
	}
	h.printf("Account %d created\n", id)
	return nil
}

// HandleRenameAccount renames an account.
func (h *Handler) HandleRenameAccount(ctx context.Context, args []string) error {
	if err := expectArgs(args, 2, "rename-account ACCOUNT_ID NAME"); err != nil {
		return err
	}
	id, err := parseID(args[0], "account id")
	if err != nil {
		return err
	}

	if err := h.ledger.RenameAccount(ctx, id, args[1]); err != nil {
		return err
	}
	h.printf("Account %d renamed to %s\n", id, args[1])
	return nil
}

// HandleDeleteAccount deletes an account with its history and counters.
func (h *Handler) HandleDeleteAccount(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, "delete-account ACCOUNT_ID"); err != nil {
		return err
	}
	id, err := parseID(args[0], "account id")
	if err != nil {
		return err
	}

	if err := h.ledger.DeleteAccount(ctx, id); err != nil {
		return err
	}
	h.printf("Account %d deleted\n", id)
	return nil
}

// HandleCredit books a credit (or debit, if negative) on an account.
func (h *Handler) HandleCredit(ctx context.Context, args []string) error {
	if err := expectArgs(args, 2, "credit ACCOUNT_ID AMOUNT"); err != nil {
		return err
	}
	id, err := parseID(args[0], "account id")
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	tid, err := h.ledger.AddCredit(ctx, id, amount)
	if err != nil {
		return err
	}
	h.printf("Transaction %d: %s credited to account %d\n", tid, FormatAmount(amount, h.currency), id)
	return nil
}

// HandleHistory prints the ledger entries of an account and its balance.
func (h *Handler) HandleHistory(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, "history ACCOUNT_ID"); err != nil {
		return err
	}
	id, err := parseID(args[0], "account id")
	if err != nil {
		return err
	}

	history, err := h.ledger.Transactions(ctx, id)
	if err != nil {
		return err
	}
	balance, err := h.reporter.Balance(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	for _, e := range history {
		what := "credit"
		if e.DrinkName != nil {
			what = *e.DrinkName
		}
		fprintf(w, "%d\t%s\t%s\t%d x %s\t%s\n",
			e.TransactionID,
			e.Timestamp.Local().Format(timeLayout),
			what,
			e.Count,
			FormatAmount(e.UnitValue, ""),
			FormatAmount(e.Value(), h.currency),
		)
	}
	fprintf(w, "\t\tbalance\t\t%s\n", FormatAmount(balance, h.currency))
	return w.Flush()
}
