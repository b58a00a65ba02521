// Package apperrors defines the error kinds reported by the ledger.
package apperrors

import "errors"

// ErrStorageUnavailable indicates the store could not be created or opened.
// It is fatal: callers are expected to terminate the process.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrSchemaCorrupt indicates an existing store failed relation verification.
// It is fatal as well, there is no migration path.
var ErrSchemaCorrupt = errors.New("schema corrupt")

// ErrNotFound indicates that a referenced account, drink or transaction is absent.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput indicates malformed values passed to a ledger operation.
var ErrInvalidInput = errors.New("invalid input")

// ErrCapacityExceeded indicates the transaction id space is exhausted.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// IsFatal reports whether err must terminate the process.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrSchemaCorrupt)
}
