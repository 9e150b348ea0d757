package vesting

import (
	"math"
	"sort"
)

// =============================================================================
// CURVE CONSTRUCTION
// =============================================================================

// RampSamples is the number of interior samples used for a linear ramp.
// The ramp is exactly linear, so any count keeps interpolation exact; 30 is
// enough for a smooth chart.
const RampSamples = 30

// FallbackSteps is the number of equal steps used for a stepped lock whose
// milestones are unknown.
const FallbackSteps = 5

// BuildCurve returns the control points of the unlock function for s.
//
// Guarantees for a schedule with End > Start:
//   - the curve is non-empty and ends at (End, 1)
//   - fractions never decrease in time order
//
// A schedule with End <= Start is treated as already fully vested.
func BuildCurve(s Schedule) Curve {
	start, end := s.Window()
	c := Curve{Kind: s.Kind(), Start: start, End: end}

	if end <= start {
		c.Points = []Point{{At: start, Fraction: 1}}
		return c
	}

	switch v := s.(type) {
	case FixedDate:
		c.Points = stepAtEnd(start, end)
	case LinearVesting:
		c.Points = linearPoints(v)
	case SteppedVesting:
		if len(v.Milestones) == 0 {
			c.Points = equalSteps(start, end, FallbackSteps)
		} else {
			c.Points = milestonePoints(v)
		}
	default:
		c.Points = stepAtEnd(start, end)
	}
	return c
}

// stepAtEnd is flat at 0 until end, then jumps to 1.
func stepAtEnd(start, end int64) []Point {
	return []Point{{At: start}, {At: end}, {At: end, Fraction: 1}}
}

func linearPoints(s LinearVesting) []Point {
	ramp := s.RampStart()
	if ramp >= s.End {
		// Cliff swallows the whole window.
		return stepAtEnd(s.Start, s.End)
	}

	pts := make([]Point, 0, RampSamples+2)
	pts = append(pts, Point{At: s.Start})
	if ramp > s.Start {
		pts = append(pts, Point{At: ramp})
	}

	span := distance(ramp, s.End)
	for i := uint64(1); i <= RampSamples; i++ {
		offset := partOf(span, i, RampSamples)
		at := advance(ramp, offset)
		if at == pts[len(pts)-1].At {
			continue
		}
		pts = append(pts, Point{At: at, Fraction: float64(offset) / float64(span)})
	}
	pts[len(pts)-1].Fraction = 1
	return pts
}

func equalSteps(start, end int64, steps uint64) []Point {
	span := distance(start, end)
	pts := make([]Point, 0, 2*steps+1)
	pts = append(pts, Point{At: start})
	for i := uint64(1); i <= steps; i++ {
		at := advance(start, partOf(span, i, steps))
		pts = appendPoint(pts, Point{At: at, Fraction: float64(i-1) / float64(steps)})
		pts = appendPoint(pts, Point{At: at, Fraction: float64(i) / float64(steps)})
	}
	return pts
}

// milestonePoints draws the jumps at each milestone. A milestone before Start
// shows where it falls. A milestone after End is folded into the closing jump
// at End, so the curve still reaches 1 at End instead of past it. The running
// total saturates at BasisPointsTotal.
func milestonePoints(s SteppedVesting) []Point {
	ms := orderedMilestones(s.Milestones)

	first := s.Start
	if ms[0].Timestamp < first {
		first = ms[0].Timestamp
	}
	pts := []Point{{At: first}}

	var cumulative uint64
	for _, m := range ms {
		if m.Timestamp > s.End {
			// Anything still locked is released at End below.
			break
		}
		before := basisPointsFraction(cumulative)
		if cumulative < BasisPointsTotal {
			cumulative += min(m.BasisPoints, BasisPointsTotal)
		}
		pts = appendPoint(pts, Point{At: m.Timestamp, Fraction: before})
		pts = appendPoint(pts, Point{At: m.Timestamp, Fraction: basisPointsFraction(cumulative)})
	}

	last := pts[len(pts)-1]
	if last.At < s.End {
		pts = append(pts, Point{At: s.End, Fraction: last.Fraction})
	}
	if last.Fraction < 1 {
		pts = append(pts, Point{At: s.End, Fraction: 1})
	}
	return pts
}

// orderedMilestones returns a time-ordered copy. Milestones sharing a
// timestamp keep their relative order.
func orderedMilestones(ms []Milestone) []Milestone {
	out := make([]Milestone, len(ms))
	copy(out, ms)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// distance is end-start for end >= start, computed without int64 overflow.
func distance(start, end int64) uint64 {
	return uint64(end) - uint64(start)
}

// partOf returns span*i/n rounded down, for i <= n, without overflowing.
func partOf(span, i, n uint64) uint64 {
	return span/n*i + span%n*i/n
}

// advance returns from+offset. The caller guarantees the sum fits in int64.
func advance(from int64, offset uint64) int64 {
	return int64(uint64(from) + offset)
}

func basisPointsFraction(bp uint64) float64 {
	if bp >= BasisPointsTotal {
		return 1
	}
	return float64(bp) / BasisPointsTotal
}

// appendPoint skips exact duplicates of the previous point.
func appendPoint(pts []Point, p Point) []Point {
	if n := len(pts); n > 0 && pts[n-1] == p {
		return pts
	}
	return append(pts, p)
}

// =============================================================================
// INTERPOLATION
// =============================================================================

// ValueAt returns the unlocked fraction at t.
//
// Before the first point it returns the first fraction, at or after the last
// point the last fraction. Between two points it interpolates linearly; where
// two points share a timestamp the later (post-step) one wins.
func (c Curve) ValueAt(t int64) float64 {
	pts := c.Points
	if len(pts) == 0 {
		return 0
	}

	j := sort.Search(len(pts), func(i int) bool { return pts[i].At > t })
	switch j {
	case 0:
		return clampFraction(pts[0].Fraction)
	case len(pts):
		return clampFraction(pts[len(pts)-1].Fraction)
	}

	a, b := pts[j-1], pts[j]
	f := a.Fraction + (b.Fraction-a.Fraction)*float64(distance(a.At, t))/float64(distance(a.At, b.At))
	return clampFraction(f)
}

// ValueAt is the free-function form of Curve.ValueAt.
func ValueAt(c Curve, t int64) float64 { return c.ValueAt(t) }

// Status reports where now falls on the curve.
func (c Curve) Status(now int64) Status {
	switch {
	case c.ValueAt(now) >= 1:
		return StatusFullyVested
	case now < c.Start:
		return StatusNotStarted
	default:
		return StatusVesting
	}
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
