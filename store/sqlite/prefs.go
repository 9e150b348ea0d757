package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/megascan/lock-engine/prefs"
)

// =============================================================================
// PROFILES (prefs.Store interface)
// =============================================================================

// GetProfile returns the profile of address, or prefs.ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, address string) (*prefs.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p prefs.Profile
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT address, username, x_handle, updated_at FROM profiles WHERE address = ?`,
		strings.ToLower(address),
	).Scan(&p.Address, &p.Username, &p.XHandle, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, prefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// SaveProfile inserts or replaces a profile.
func (s *Store) SaveProfile(ctx context.Context, p prefs.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO profiles (address, username, x_handle, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			username = excluded.username,
			x_handle = excluded.x_handle,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		strings.ToLower(p.Address), p.Username, p.XHandle, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// =============================================================================
// WATCHLIST (prefs.Store interface)
// =============================================================================

// ListWatchlist returns watched tokens in the order they were added.
func (s *Store) ListWatchlist(ctx context.Context) ([]prefs.WatchItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT address, name, symbol, added_at FROM watchlist ORDER BY added_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var items []prefs.WatchItem
	for rows.Next() {
		var w prefs.WatchItem
		var addedAt string
		if err := rows.Scan(&w.Address, &w.Name, &w.Symbol, &addedAt); err != nil {
			return nil, err
		}
		w.AddedAt = parseTime(addedAt)
		items = append(items, w)
	}
	return items, rows.Err()
}

// AddWatch adds a token. Re-adding an address in any casing is a no-op.
func (s *Store) AddWatch(ctx context.Context, item prefs.WatchItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO watchlist (address, name, symbol, added_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(address) DO NOTHING`,
		strings.ToLower(item.Address), item.Name, item.Symbol, formatTime(s.now()),
	)
	if err != nil {
		return false, fmt.Errorf("failed to add watch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveWatch deletes a token from the watchlist.
func (s *Store) RemoveWatch(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE address = ?`, strings.ToLower(address))
	if err != nil {
		return fmt.Errorf("failed to remove watch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return prefs.ErrNotFound
	}
	return nil
}

// IsWatched reports whether address is on the watchlist.
func (s *Store) IsWatched(ctx context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM watchlist WHERE address = ?`, strings.ToLower(address),
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
