// Package model defines the data models for the beverage ledger.
package model

import "time"

// CreditDrinkID marks a ledger entry as a pure credit or debit.
const CreditDrinkID int64 = 0

// Account is a named holder of credit.
type Account struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// DrinkFields holds the caller-editable columns of a drink.
// All amounts are minor currency units.
type DrinkFields struct {
	Name                  string `db:"name" validate:"required"`
	SalePrice             int64  `db:"sale_price" validate:"min=0"`
	PurchasePrice         int64  `db:"purchase_price" validate:"min=0"`
	Deposit               int64  `db:"deposit" validate:"min=0"`
	BottlesFull           int64  `db:"bottles_full" validate:"min=0"`
	BottlesEmpty          int64  `db:"bottles_empty" validate:"min=0"`
	TrackedForLeaderboard bool   `db:"tracked_for_leaderboard"`
}

// Drink is an inventory item. Deleted drinks stay in the store so that
// historical ledger entries keep resolving their name.
type Drink struct {
	ID int64 `db:"id"`
	DrinkFields
	Deleted bool `db:"deleted"`
}

// LedgerEntry is one row of the transaction log.
// UnitValue is negative for consumption and positive for credit.
type LedgerEntry struct {
	TransactionID int64     `db:"transaction_id"`
	AccountID     int64     `db:"account_id"`
	DrinkID       int64     `db:"drink_id"`
	Count         int64     `db:"count"`
	UnitValue     int64     `db:"unit_value"`
	Timestamp     time.Time `db:"timestamp"`
}

// IsCredit reports whether the entry is a pure credit/debit.
func (e LedgerEntry) IsCredit() bool {
	return e.DrinkID == CreditDrinkID
}

// Value returns the signed total of the entry.
func (e LedgerEntry) Value() int64 {
	return e.Count * e.UnitValue
}

// LeaderboardCounter counts how many bottles of a drink an account consumed.
type LeaderboardCounter struct {
	AccountID int64 `db:"account_id"`
	DrinkID   int64 `db:"drink_id"`
	Quaffed   int64 `db:"quaffed"`
}

// King is the top consumer of one drink name.
type King struct {
	AccountName string `db:"account_name"`
	DrinkName   string `db:"drink_name"`
	Quaffed     int64  `db:"quaffed"`
}

// HistoryEntry is a ledger entry joined with its drink name.
// DrinkName is nil for pure credit/debit entries.
type HistoryEntry struct {
	TransactionID int64     `db:"transaction_id"`
	DrinkName     *string   `db:"drink_name"`
	Count         int64     `db:"count"`
	UnitValue     int64     `db:"unit_value"`
	Timestamp     time.Time `db:"timestamp"`
}

// Value returns the signed total of the entry.
func (h HistoryEntry) Value() int64 {
	return h.Count * h.UnitValue
}

// ConsumeItem is one (drink, quantity) pair of a consumption request.
type ConsumeItem struct {
	DrinkID  int64
	Quantity int64
}
