/*
Package locks aggregates MegaLock and MegaBurn reads into the views the
explorer shows: active locks on a token, locks touching an address, burn
totals and lifecycle activity.

KEY CONCEPTS:
  Reader:      The chain reads a scan needs. *chain.Client satisfies it.

  Active lock: Not cancelled and remaining (total - claimed) > 0. Only active
               locks count toward a token's locked amount.

  Scan limit:  Token scans walk lock ids from 0. The walk is capped so a
               single request cannot fan out into thousands of calls.

SEE ALSO:
  - chain/client.go: contract reads
  - api/refresher.go: periodic scans stored as snapshots
*/
package locks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/vesting"
)

// DefaultScanLimit bounds how many lock ids ScanToken inspects.
const DefaultScanLimit = 100

// Reader is the subset of chain reads used by scans.
type Reader interface {
	NextLockID(ctx context.Context) (uint64, error)
	GetLock(ctx context.Context, id uint64) (chain.Lock, error)
	GetMilestones(ctx context.Context, id uint64) ([]vesting.Milestone, error)
	LocksByCreator(ctx context.Context, addr common.Address) ([]uint64, error)
	LocksByBeneficiary(ctx context.Context, addr common.Address) ([]uint64, error)
}

// TokenLocks is the result of scanning the lock contract for one token.
type TokenLocks struct {
	Token       common.Address
	Locks       []chain.Lock
	TotalLocked *big.Int
	// Scanned is the number of lock ids inspected.
	Scanned uint64
	// Skipped counts ids whose read failed.
	Skipped int
}

// Count returns the number of active locks found.
func (t TokenLocks) Count() int {
	return len(t.Locks)
}

// ScanToken walks lock ids [0, min(nextLockId, limit)) and collects the
// active locks of token. A limit of 0 uses DefaultScanLimit.
//
// Unreadable ids are skipped. Stepped locks get their milestones loaded;
// when that fails the lock is kept without them.
func ScanToken(ctx context.Context, r Reader, token common.Address, limit uint64) (TokenLocks, error) {
	if limit == 0 {
		limit = DefaultScanLimit
	}
	result := TokenLocks{Token: token, TotalLocked: new(big.Int)}

	next, err := r.NextLockID(ctx)
	if err != nil {
		return result, err
	}
	n := next
	if n > limit {
		n = limit
	}

	for id := uint64(0); id < n; id++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++

		l, err := r.GetLock(ctx, id)
		if err != nil {
			result.Skipped++
			continue
		}
		// Byte comparison, so hex casing of the input never matters.
		if l.Token != token || l.Cancelled {
			continue
		}
		remaining := l.Remaining()
		if remaining.Sign() <= 0 {
			continue
		}

		if l.Stepped() {
			if ms, err := r.GetMilestones(ctx, id); err == nil {
				l.Milestones = ms
			}
		}
		result.TotalLocked.Add(result.TotalLocked, remaining)
		result.Locks = append(result.Locks, l)
	}
	return result, nil
}
