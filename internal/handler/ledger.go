package handler

import (
	"context"
	"strconv"
	"strings"

	"bimi-ledger/internal/model"
)

// parseItem parses "DRINK_ID" or "DRINK_ID:QUANTITY".
func parseItem(s string) (model.ConsumeItem, error) {
	drink, quantity, hasQuantity := strings.Cut(s, ":")

	id, err := parseID(drink, "drink id")
	if err != nil {
		return model.ConsumeItem{}, err
	}
	item := model.ConsumeItem{DrinkID: id, Quantity: 1}
	if !hasQuantity {
		return item, nil
	}

	if item.Quantity, err = strconv.ParseInt(quantity, 10, 64); err != nil {
		return model.ConsumeItem{}, usage("invalid quantity %q", quantity)
	}
	return item, nil
}

// HandleConsume books one or more drinks on an account.
func (h *Handler) HandleConsume(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("usage: consume ACCOUNT_ID DRINK_ID[:QUANTITY]...")
	}
	accountID, err := parseID(args[0], "account id")
	if err != nil {
		return err
	}

	items := make([]model.ConsumeItem, 0, len(args)-1)
	for _, arg := range args[1:] {
		item, err := parseItem(arg)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	tid, err := h.ledger.Consume(ctx, accountID, items)
	if err != nil {
		return err
	}
	h.printf("Transaction %d booked\n", tid)
	return nil
}

// HandleUndo reverses a transaction.
func (h *Handler) HandleUndo(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, "undo TRANSACTION_ID"); err != nil {
		return err
	}
	tid, err := parseID(args[0], "transaction id")
	if err != nil {
		return err
	}

	if err := h.ledger.Undo(ctx, tid); err != nil {
		return err
	}
	h.printf("Transaction %d undone\n", tid)
	return nil
}
