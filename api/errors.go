package api

import (
	"errors"
	"net/http"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/explorer"
	"github.com/megascan/lock-engine/factory"
	"github.com/megascan/lock-engine/prefs"
	"github.com/megascan/lock-engine/vesting"
)

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// ErrBadRequest marks malformed path or query parameters.
var ErrBadRequest = errors.New("bad request")

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, factory.ErrInvalidSchedule) ||
		errors.Is(err, prefs.ErrInvalidAddress)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, chain.ErrLockNotFound) ||
		errors.Is(err, explorer.ErrNotFound) ||
		errors.Is(err, prefs.ErrNotFound)
}

// statusFor maps an error to the HTTP status it should be reported with.
func statusFor(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, vesting.ErrUnknownLockType):
		// The lock exists but its schedule cannot be interpreted.
		return http.StatusUnprocessableEntity
	case errors.Is(err, explorer.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
