package handler

import (
	"context"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"bimi-ledger/internal/model"
)

// drinkFlags binds the editable drink fields to command line flags.
type drinkFlags struct {
	command       string
	fs            *pflag.FlagSet
	name          *string
	salePrice     *string
	purchasePrice *string
	deposit       *string
	full          *int64
	empty         *int64
	tracked       *bool
}

func newDrinkFlags(command string) *drinkFlags {
	fs := newFlagSet(command)
	return &drinkFlags{
		command:       command,
		fs:            fs,
		name:          fs.String("name", "", "drink name"),
		salePrice:     fs.String("sale-price", "0", "price charged per bottle"),
		purchasePrice: fs.String("purchase-price", "0", "price paid per bottle"),
		deposit:       fs.String("deposit", "0", "deposit per bottle"),
		full:          fs.Int64("full", 0, "full bottles in stock"),
		empty:         fs.Int64("empty", 0, "empty bottles in stock"),
		tracked:       fs.Bool("tracked", false, "count the drink on the leaderboard"),
	}
}

// apply overwrites the fields of f whose flags were set.
func (d *drinkFlags) apply(f *model.DrinkFields) error {
	amounts := []struct {
		flag   string
		value  *string
		target *int64
	}{
		{"sale-price", d.salePrice, &f.SalePrice},
		{"purchase-price", d.purchasePrice, &f.PurchasePrice},
		{"deposit", d.deposit, &f.Deposit},
	}
	for _, a := range amounts {
		if !d.fs.Changed(a.flag) {
			continue
		}
		v, err := parseAmount(*a.value)
		if err != nil {
			return err
		}
		*a.target = v
	}

	if d.fs.Changed("name") {
		f.Name = *d.name
	}
	if d.fs.Changed("full") {
		f.BottlesFull = *d.full
	}
	if d.fs.Changed("empty") {
		f.BottlesEmpty = *d.empty
	}
	if d.fs.Changed("tracked") {
		f.TrackedForLeaderboard = *d.tracked
	}
	return nil
}

// HandleDrinks lists all drinks that are not deleted.
func (h *Handler) HandleDrinks(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, "drinks"); err != nil {
		return err
	}

	drinks, err := h.ledger.Drinks(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fprintf(w, "ID\tNAME\tPRICE\tFULL\tEMPTY\tTRACKED\n")
	for _, d := range drinks {
		fprintf(w, "%d\t%s\t%s\t%d\t%d\t%t\n",
			d.ID, d.Name, FormatAmount(d.SalePrice, h.currency), d.BottlesFull, d.BottlesEmpty, d.TrackedForLeaderboard)
	}
	return w.Flush()
}

// HandleAddDrink creates a drink from the name argument and drink flags.
func (h *Handler) HandleAddDrink(ctx context.Context, args []string) error {
	flags := newDrinkFlags("add-drink")
	if err := parseFlags(flags.command, flags.fs, args); err != nil {
		return err
	}
	if err := expectArgs(flags.fs.Args(), 1, "add-drink NAME [drink flags]"); err != nil {
		return err
	}

	f := model.DrinkFields{Name: flags.fs.Arg(0)}
	if err := flags.apply(&f); err != nil {
		return err
	}

	id, err := h.ledger.CreateDrink(ctx, f)
	if err != nil {
		return err
	}
	h.printf("Drink %d created\n", id)
	return nil
}

// HandleUpdateDrink changes the fields given as flags and keeps the rest.
func (h *Handler) HandleUpdateDrink(ctx context.Context, args []string) error {
	flags := newDrinkFlags("update-drink")
	if err := parseFlags(flags.command, flags.fs, args); err != nil {
		return err
	}
	if err := expectArgs(flags.fs.Args(), 1, "update-drink DRINK_ID [drink flags]"); err != nil {
		return err
	}
	id, err := parseID(flags.fs.Arg(0), "drink id")
	if err != nil {
		return err
	}

	drink, err := h.ledger.Drink(ctx, id)
	if err != nil {
		return err
	}
	f := drink.DrinkFields
	if err := flags.apply(&f); err != nil {
		return err
	}

	if err := h.ledger.UpdateDrink(ctx, id, f); err != nil {
		return err
	}
	h.printf("Drink %d updated\n", id)
	return nil
}

// HandleDeleteDrink soft-deletes a drink.
func (h *Handler) HandleDeleteDrink(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, "delete-drink DRINK_ID"); err != nil {
		return err
	}
	id, err := parseID(args[0], "drink id")
	if err != nil {
		return err
	}

	if err := h.ledger.DeleteDrink(ctx, id); err != nil {
		return err
	}
	h.printf("Drink %d deleted\n", id)
	return nil
}
