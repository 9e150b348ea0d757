package locks

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Snapshot is a cached token scan result.
type Snapshot struct {
	Token       common.Address
	LockCount   int
	TotalLocked decimal.Decimal
	LockIDs     []uint64
	Scanned     uint64
	Skipped     int
	TakenAt     time.Time
}

// SnapshotStore persists token scan snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
	// LatestSnapshot returns nil without error when the token has none.
	LatestSnapshot(ctx context.Context, token common.Address) (*Snapshot, error)
	ListSnapshots(ctx context.Context, token common.Address, limit int) ([]Snapshot, error)
}

// NewSnapshot captures a scan result at the given time.
func NewSnapshot(t TokenLocks, at time.Time) Snapshot {
	ids := make([]uint64, 0, len(t.Locks))
	for _, l := range t.Locks {
		ids = append(ids, l.ID)
	}
	return Snapshot{
		Token:       t.Token,
		LockCount:   len(t.Locks),
		TotalLocked: BigToDecimal(t.TotalLocked),
		LockIDs:     ids,
		Scanned:     t.Scanned,
		Skipped:     t.Skipped,
		TakenAt:     at.UTC(),
	}
}
