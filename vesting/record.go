package vesting

import "math"

// =============================================================================
// FROM ON-CHAIN LOCK - Building a Schedule from getLock/getMilestones output
// =============================================================================

// FromLock builds the schedule variant for a lock as returned by the
// contract's getLock call. milestones are only used for stepped locks.
//
// The contract always returns a cliffTime; for linear locks it is kept as
// given (a cliff at or before start simply has no effect).
func FromLock(lockType uint8, start, cliff, end uint64, milestones []Milestone) (Schedule, error) {
	s, e := toUnix(start), toUnix(end)

	switch Kind(lockType) {
	case KindFixedDate:
		return FixedDate{Start: s, End: e}, nil
	case KindLinear:
		c := toUnix(cliff)
		return LinearVesting{Start: s, Cliff: &c, End: e}, nil
	case KindStepped:
		ms := make([]Milestone, len(milestones))
		copy(ms, milestones)
		return SteppedVesting{Start: s, End: e, Milestones: ms}, nil
	default:
		return nil, &LockTypeError{LockType: lockType}
	}
}

// toUnix narrows a uint64 contract timestamp; values past int64 are pinned.
func toUnix(ts uint64) int64 {
	if ts > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(ts)
}
