// Package lock provides the in-process writer lock that serializes ledger
// mutations. Transaction ids are allocated from the stored maximum, so two
// writers must never allocate concurrently.
package lock

import (
	"context"
	"errors"
)

// Writer is a mutual-exclusion lock whose acquisition honors context
// cancellation. The zero value is not usable; create one with NewWriter.
type Writer struct {
	sem chan struct{}
}

// NewWriter creates a new Writer lock.
func NewWriter() *Writer {
	return &Writer{sem: make(chan struct{}, 1)}
}

// Unlock releases the lock.
func (w *Writer) Unlock() {
	select {
	case <-w.sem:
	default:
		panic("lock: unlock of unlocked Writer")
	}
}

// LockContext acquires the lock or returns when ctx is done.
// Returns ErrLockTimeout if the deadline passed and ErrLockCanceled otherwise.
func (w *Writer) LockContext(ctx context.Context) error {
	select {
	case w.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return ErrLockCanceled
	}
}

// WithLock executes fn while holding the lock.
func (w *Writer) WithLock(ctx context.Context, fn func() error) error {
	if err := w.LockContext(ctx); err != nil {
		return err
	}
	defer w.Unlock()
	return fn()
}
