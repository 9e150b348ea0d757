package locks

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/vesting"
)

// =============================================================================
// RECENT LOCKS - Newest locks first, for browsing the whole contract
// =============================================================================

const (
	// DefaultRecentLimit is how many locks Recent lists when no limit is given.
	DefaultRecentLimit = 50

	// MaxRecentLimit caps the limit a caller may ask for.
	MaxRecentLimit = 200
)

// VestedReader adds the contract's own vested figure to the scan reads.
type VestedReader interface {
	Reader
	VestedAmount(ctx context.Context, id uint64) (*big.Int, error)
}

// RecentLock is one row of the recent-locks listing. Cancelled locks are
// included.
type RecentLock struct {
	chain.Lock

	// Vested is the contract's vested amount, nil when the call failed.
	Vested *big.Int

	// VestedPercent is vested*10000/total/100, 0 when Vested is unknown.
	VestedPercent decimal.Decimal
}

// RecentLocks is the newest part of the contract's lock list.
type RecentLocks struct {
	Total uint64 // nextLockId
	Locks []RecentLock
}

// Recent lists up to limit locks, newest id first. A limit of 0 uses
// DefaultRecentLimit; larger limits are capped at MaxRecentLimit.
// Unreadable ids are left out.
func Recent(ctx context.Context, r VestedReader, limit uint64) (RecentLocks, error) {
	switch {
	case limit == 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	next, err := r.NextLockID(ctx)
	if err != nil {
		return RecentLocks{}, err
	}
	result := RecentLocks{Total: next}

	n := min(next, limit)
	result.Locks = make([]RecentLock, 0, n)
	for i := uint64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		id := next - 1 - i

		l, err := r.GetLock(ctx, id)
		if err != nil {
			continue
		}
		rl := RecentLock{Lock: l, VestedPercent: decimal.Zero}
		if vested, err := r.VestedAmount(ctx, id); err == nil {
			rl.Vested = vested
			rl.VestedPercent = vesting.ClaimProgress(BigToDecimal(vested), BigToDecimal(l.TotalAmount))
		}
		result.Locks = append(result.Locks, rl)
	}
	return result, nil
}
