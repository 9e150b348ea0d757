package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrLockNotFound is returned when getLock yields an empty record.
	ErrLockNotFound = errors.New("lock not found")

	// ErrValueOverflow is returned when a uint256 id does not fit in uint64.
	ErrValueOverflow = errors.New("value overflows uint64")
)

// CallError wraps a failed contract read with the method name.
type CallError struct {
	Method string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// LockNotFoundError identifies the missing lock.
type LockNotFoundError struct {
	ID uint64
}

func (e *LockNotFoundError) Error() string {
	return fmt.Sprintf("lock %d not found", e.ID)
}

func (e *LockNotFoundError) Unwrap() error {
	return ErrLockNotFound
}
