package lock

import "errors"

// Lock-related errors.
var (
	// ErrLockTimeout is returned when the lock cannot be acquired before the context deadline.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrLockCanceled is returned when the context is canceled while waiting for the lock.
	ErrLockCanceled = errors.New("lock acquisition canceled")
)
