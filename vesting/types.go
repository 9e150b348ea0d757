/*
Package vesting reconstructs token unlock schedules from on-chain lock parameters.

PURPOSE:
  A lock created on the MegaLock contract releases its tokens according to one
  of three schedules. The contract is the authority on how much is claimable;
  this package rebuilds the same schedule locally so it can be plotted and
  probed ("what fraction was unlocked at time T?") without another RPC round
  trip.

KEY CONCEPTS IN THIS FILE (types.go):
  - Schedule: A sum type with exactly three variants (FixedDate,
    LinearVesting, SteppedVesting), each carrying only its own fields
  - Milestone: A (timestamp, basis points) unlock event for stepped locks
  - Point / Curve: The derived control points of the unlock function

DESIGN PRINCIPLES:
  1. Purity: BuildCurve and ValueAt have no side effects and no shared state
  2. Degrade, don't reject: malformed parameters still produce a monotonic
     curve; Inspect reports what looked wrong
  3. Integer time: timestamps are Unix seconds exactly as the contract stores them

USAGE:
  cliff := int64(100)
  curve := vesting.BuildCurve(vesting.LinearVesting{Start: 0, Cliff: &cliff, End: 200})
  curve.ValueAt(150) // 0.5

SEE ALSO:
  - curve.go: Curve construction and interpolation
  - inspect.go: Anomaly reporting for suspicious schedules
  - amount.go: Vested/claimable token amounts
*/
package vesting

import (
	"math"
	"time"
)

// =============================================================================
// KIND - Which schedule a lock follows (mirrors the contract's lockType)
// =============================================================================

type Kind uint8

const (
	KindFixedDate Kind = 0 // "Timelock" on chain: everything unlocks at End
	KindLinear    Kind = 1
	KindStepped   Kind = 2
)

// String returns the label shown next to a lock.
func (k Kind) String() string {
	switch k {
	case KindFixedDate:
		return "Timelock"
	case KindLinear:
		return "Linear Vesting"
	case KindStepped:
		return "Stepped Vesting"
	default:
		return "Unknown"
	}
}

// =============================================================================
// SCHEDULE - Tagged variant over the three lock shapes
// =============================================================================

// Schedule is implemented by FixedDate, LinearVesting and SteppedVesting only.
type Schedule interface {
	Kind() Kind

	// Window returns the nominal [start, end] of the schedule in Unix seconds.
	Window() (start, end int64)

	isSchedule()
}

// FixedDate releases everything at End.
type FixedDate struct {
	Start int64
	End   int64
}

// LinearVesting releases linearly from max(Start, Cliff) to End.
// A nil Cliff means the ramp begins at Start.
type LinearVesting struct {
	Start int64
	Cliff *int64
	End   int64
}

// SteppedVesting releases in discrete jumps at each milestone.
// Milestones are kept in the order the contract returned them.
type SteppedVesting struct {
	Start      int64
	End        int64
	Milestones []Milestone
}

func (FixedDate) Kind() Kind      { return KindFixedDate }
func (LinearVesting) Kind() Kind  { return KindLinear }
func (SteppedVesting) Kind() Kind { return KindStepped }

func (s FixedDate) Window() (int64, int64)      { return s.Start, s.End }
func (s LinearVesting) Window() (int64, int64)  { return s.Start, s.End }
func (s SteppedVesting) Window() (int64, int64) { return s.Start, s.End }

func (FixedDate) isSchedule()      {}
func (LinearVesting) isSchedule()  {}
func (SteppedVesting) isSchedule() {}

// RampStart returns the timestamp at which the linear ramp begins.
func (s LinearVesting) RampStart() int64 {
	if s.Cliff != nil && *s.Cliff > s.Start {
		return *s.Cliff
	}
	return s.Start
}

// =============================================================================
// MILESTONE
// =============================================================================

// BasisPointsTotal is 100% expressed in basis points.
const BasisPointsTotal = 10000

type Milestone struct {
	Timestamp   int64
	BasisPoints uint64
}

// TotalBasisPoints sums the milestones' basis points, saturating at
// math.MaxUint64.
func TotalBasisPoints(ms []Milestone) uint64 {
	var total uint64
	for _, m := range ms {
		if m.BasisPoints > math.MaxUint64-total {
			return math.MaxUint64
		}
		total += m.BasisPoints
	}
	return total
}

// =============================================================================
// CURVE - Derived control points
// =============================================================================

// Point is a control point of the unlock function.
type Point struct {
	At       int64
	Fraction float64
}

// Curve is an ordered, non-empty sequence of control points.
// Consecutive points may share a timestamp; that encodes a step.
type Curve struct {
	Kind   Kind
	Start  int64
	End    int64
	Points []Point
}

// =============================================================================
// STATUS - Where "now" falls relative to the schedule
// =============================================================================

type Status string

const (
	StatusNotStarted  Status = "not_started"
	StatusVesting     Status = "vesting"
	StatusFullyVested Status = "fully_vested"
)

// Unix converts a schedule timestamp to time.Time (UTC).
func Unix(ts int64) time.Time { return time.Unix(ts, 0).UTC() }
