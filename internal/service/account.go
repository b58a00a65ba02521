package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"bimi-ledger/internal/model"
)

// Accounts returns all accounts ordered ascending by name.
func (l *Ledger) Accounts(ctx context.Context) ([]model.Account, error) {
	return l.accounts.List(ctx)
}

// Account returns one account.
func (l *Ledger) Account(ctx context.Context, id int64) (*model.Account, error) {
	return l.accounts.GetByID(ctx, id)
}

// CreateAccount inserts a new account and returns its id. A nonzero
// initialCredit is booked as a credit entry in the same transaction.
func (l *Ledger) CreateAccount(ctx context.Context, name string, initialCredit int64) (int64, error) {
	if err := l.validate.Var(name, "required"); err != nil {
		return 0, invalid(fmt.Errorf("account name: %w", err))
	}

	var id int64
	err := l.write(ctx, func(r repos) error {
		var err error
		if id, err = r.accounts.Create(ctx, name); err != nil {
			return err
		}
		if initialCredit == 0 {
			return nil
		}
		_, err = l.appendCredit(ctx, r, id, initialCredit)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int64("account_id", id).Str("name", name).Int64("credit", initialCredit).Msg("Account created")
	return id, nil
}

// RenameAccount sets the name of an account. The id is not checked.
func (l *Ledger) RenameAccount(ctx context.Context, id int64, name string) error {
	if err := l.validate.Var(name, "required"); err != nil {
		return invalid(fmt.Errorf("account name: %w", err))
	}
	return l.write(ctx, func(r repos) error {
		return r.accounts.Rename(ctx, id, name)
	})
}

// AddCredit books amount (negative for a debit) on an account and returns
// the new transaction id. The account id is not checked.
func (l *Ledger) AddCredit(ctx context.Context, accountID, amount int64) (int64, error) {
	var tid int64
	err := l.write(ctx, func(r repos) error {
		var err error
		tid, err = l.appendCredit(ctx, r, accountID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int64("account_id", accountID).Int64("transaction_id", tid).Int64("amount", amount).Msg("Credit added")
	return tid, nil
}

func (l *Ledger) appendCredit(ctx context.Context, r repos, accountID, amount int64) (int64, error) {
	tid, err := r.txs.NextID(ctx)
	if err != nil {
		return 0, err
	}
	err = r.txs.Append(ctx, model.LedgerEntry{
		TransactionID: tid,
		AccountID:     accountID,
		DrinkID:       model.CreditDrinkID,
		Count:         1,
		UnitValue:     amount,
		Timestamp:     l.now(),
	})
	return tid, err
}

// DeleteAccount removes an account with all its ledger entries and
// leaderboard counters. Irreversible.
func (l *Ledger) DeleteAccount(ctx context.Context, id int64) error {
	err := l.write(ctx, func(r repos) error {
		if err := r.accounts.Delete(ctx, id); err != nil {
			return err
		}
		if err := r.txs.DeleteByAccount(ctx, id); err != nil {
			return err
		}
		return r.leaderboard.DeleteByAccount(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Debug().Int64("account_id", id).Msg("Account deleted")
	return nil
}
