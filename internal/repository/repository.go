// Package repository provides data access layer implementations.
//
// Every repository works on an sqlx.ExtContext so the same code runs against
// the store directly or inside a transaction (see WithTx on each type).
// Queries use '?' placeholders and are rebound for the active driver.
package repository

import (
	"cmp"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"bimi-ledger/internal/apperrors"
)

// Repository errors.
var (
	ErrAccountNotFound     = fmt.Errorf("account %w", apperrors.ErrNotFound)
	ErrDrinkNotFound       = fmt.Errorf("drink %w", apperrors.ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", apperrors.ErrNotFound)
)

// notFound maps sql.ErrNoRows to target and wraps anything else.
func notFound(err error, target error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// sortByName orders records ascending by name in byte order. Collations
// differ between drivers, so the order is fixed here rather than in SQL.
func sortByName[T any](items []T, name func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(name(a), name(b))
	})
}

// requireAffected returns target when result touched no rows.
func requireAffected(result sql.Result, target error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return target
	}
	return nil
}
