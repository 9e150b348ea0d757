/*
Package prefs holds the per-user preferences MegaScan keeps locally: a
display profile per wallet address and a watchlist of tokens.

KEY CONCEPTS:
  Addresses are normalized to lowercase hex before they are used as keys,
  so "0xAbC..." and "0xabc..." name the same profile or watchlist entry.

  Profile:   username (at most 20 characters) and X handle (leading "@"
             removed, at most 30 characters).
  Watchlist: ordered by insertion. Adding a token already present is a
             no-op.

SEE ALSO:
  - store/sqlite/prefs.go: persistent Store
  - api/handlers.go: /api/profiles and /api/watchlist
*/
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
)

// Field limits.
const (
	MaxUsernameLen = 20
	MaxXHandleLen  = 30
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a profile or watchlist entry is missing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned for strings that are not 20-byte hex.
	ErrInvalidAddress = errors.New("invalid address")
)

// AddressError reports the rejected input.
type AddressError struct {
	Input string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid address %q", e.Input)
}

func (e *AddressError) Unwrap() error {
	return ErrInvalidAddress
}

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// =============================================================================
// TYPES
// =============================================================================

// Profile is the display identity of a wallet.
type Profile struct {
	Address   string
	Username  string
	XHandle   string
	UpdatedAt time.Time
}

// WatchItem is one watched token.
type WatchItem struct {
	Address string
	Name    string
	Symbol  string
	AddedAt time.Time
}

// Store persists profiles and the watchlist.
type Store interface {
	GetProfile(ctx context.Context, address string) (*Profile, error)
	SaveProfile(ctx context.Context, p Profile) error

	ListWatchlist(ctx context.Context) ([]WatchItem, error)
	// AddWatch returns false when the token was already watched.
	AddWatch(ctx context.Context, item WatchItem) (bool, error)
	RemoveWatch(ctx context.Context, address string) error
	IsWatched(ctx context.Context, address string) (bool, error)
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// NormalizeAddress validates a hex address and lowercases it.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", &AddressError{Input: s}
	}
	if !common.IsHexAddress(s) {
		return "", &AddressError{Input: s}
	}
	return strings.ToLower(common.HexToAddress(s).Hex()), nil
}

// NewProfile builds a normalized profile.
func NewProfile(address, username, xHandle string) (Profile, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Address:  addr,
		Username: truncate(strings.TrimSpace(username), MaxUsernameLen),
		XHandle:  truncate(strings.TrimPrefix(strings.TrimSpace(xHandle), "@"), MaxXHandleLen),
	}, nil
}

// NewWatchItem builds a normalized watchlist entry.
func NewWatchItem(address, name, symbol string) (WatchItem, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return WatchItem{}, err
	}
	return WatchItem{
		Address: addr,
		Name:    strings.TrimSpace(name),
		Symbol:  strings.TrimSpace(symbol),
	}, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
