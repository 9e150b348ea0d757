package vesting

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownLockType is returned when the contract reports a lockType
	// outside {0, 1, 2}.
	ErrUnknownLockType = errors.New("unknown lock type")
)

// LockTypeError carries the offending raw value.
type LockTypeError struct {
	LockType uint8
}

func (e *LockTypeError) Error() string {
	return fmt.Sprintf("unknown lock type %d", e.LockType)
}

func (e *LockTypeError) Unwrap() error {
	return ErrUnknownLockType
}
