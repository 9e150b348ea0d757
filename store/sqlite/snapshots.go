package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/megascan/lock-engine/locks"
)

// =============================================================================
// LOCK SNAPSHOTS (locks.SnapshotStore interface)
// =============================================================================

// SaveSnapshot appends a token scan result.
func (s *Store) SaveSnapshot(ctx context.Context, snap locks.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := snap.LockIDs
	if ids == nil {
		ids = []uint64{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode lock ids: %w", err)
	}

	takenAt := snap.TakenAt
	if takenAt.IsZero() {
		takenAt = s.now()
	}

	query := `
		INSERT INTO lock_snapshots (token, lock_count, total_locked, lock_ids_json, scanned, skipped, taken_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		tokenKey(snap.Token),
		snap.LockCount,
		snap.TotalLocked.String(), // Store as string, decimal precision
		string(idsJSON),
		int64(snap.Scanned),
		snap.Skipped,
		formatTime(takenAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest snapshot of token, or nil if none.
func (s *Store) LatestSnapshot(ctx context.Context, token common.Address) (*locks.Snapshot, error) {
	snaps, err := s.ListSnapshots(ctx, token, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

// ListSnapshots returns up to limit snapshots of token, newest first.
// A limit <= 0 returns all of them.
func (s *Store) ListSnapshots(ctx context.Context, token common.Address, limit int) ([]locks.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT token, lock_count, total_locked, lock_ids_json, scanned, skipped, taken_at
		FROM lock_snapshots WHERE token = ?
		ORDER BY taken_at DESC, id DESC
	`
	args := []any{tokenKey(token)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []locks.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func scanSnapshot(rows *sql.Rows) (locks.Snapshot, error) {
	var snap locks.Snapshot
	var token, total, idsJSON, takenAt string
	var scanned int64

	if err := rows.Scan(&token, &snap.LockCount, &total, &idsJSON, &scanned, &snap.Skipped, &takenAt); err != nil {
		return locks.Snapshot{}, err
	}

	snap.Token = common.HexToAddress(token)
	snap.TotalLocked, _ = decimal.NewFromString(total)
	snap.Scanned = uint64(scanned)
	snap.TakenAt = parseTime(takenAt)
	if err := json.Unmarshal([]byte(idsJSON), &snap.LockIDs); err != nil {
		return locks.Snapshot{}, fmt.Errorf("failed to decode lock ids: %w", err)
	}
	return snap, nil
}

func tokenKey(token common.Address) string {
	return strings.ToLower(token.Hex())
}
