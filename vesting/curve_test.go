package vesting_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascan/lock-engine/vesting"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const tolerance = 1e-9

func cliffAt(ts int64) *int64 { return &ts }

func linear(start, end int64) vesting.LinearVesting {
	return vesting.LinearVesting{Start: start, End: end}
}

func stepped(start, end int64, ms ...vesting.Milestone) vesting.SteppedVesting {
	return vesting.SteppedVesting{Start: start, End: end, Milestones: ms}
}

func ms(ts int64, bp uint64) vesting.Milestone {
	return vesting.Milestone{Timestamp: ts, BasisPoints: bp}
}

// sampleSchedules covers every variant and the edge cases callers hit.
func sampleSchedules() map[string]vesting.Schedule {
	return map[string]vesting.Schedule{
		"fixed":                vesting.FixedDate{Start: 1000, End: 2000},
		"linear":               linear(0, 1000),
		"linear_cliff":         vesting.LinearVesting{Start: 0, Cliff: cliffAt(100), End: 200},
		"linear_cliff_early":   vesting.LinearVesting{Start: 500, Cliff: cliffAt(0), End: 1500},
		"linear_cliff_late":    vesting.LinearVesting{Start: 0, Cliff: cliffAt(5000), End: 1000},
		"linear_short":         linear(10, 17),
		"stepped_full":         stepped(0, 200, ms(100, 5000), ms(200, 5000)),
		"stepped_short":        stepped(0, 1000, ms(250, 2500), ms(500, 2500)),
		"stepped_empty":        stepped(0, 1000),
		"stepped_unordered":    stepped(0, 1000, ms(800, 3000), ms(200, 3000)),
		"stepped_out_of_range": stepped(100, 1000, ms(50, 1000), ms(2000, 4000)),
		"stepped_overflow":     stepped(0, 100, ms(10, 8000), ms(20, 8000)),
		"stepped_saturated":    stepped(0, 300, ms(100, math.MaxUint64), ms(200, 5000)),
		"degenerate":           linear(500, 500),
	}
}

// =============================================================================
// FIXED DATE
// =============================================================================

func TestFixedDate_BoundaryScenario(t *testing.T) {
	// GIVEN: Timelock from 1000 to 2000
	curve := vesting.BuildCurve(vesting.FixedDate{Start: 1000, End: 2000})

	// THEN: Nothing before End, everything from End on
	assert.Equal(t, 0.0, curve.ValueAt(1500))
	assert.Equal(t, 1.0, curve.ValueAt(2000))
	assert.Equal(t, 1.0, curve.ValueAt(2500))
}

func TestFixedDate_ZeroUntilEnd(t *testing.T) {
	curve := vesting.BuildCurve(vesting.FixedDate{Start: 1000, End: 2000})

	for _, ts := range []int64{-10, 0, 999, 1000, 1001, 1999} {
		assert.Equal(t, 0.0, curve.ValueAt(ts), "t=%d", ts)
	}
	for _, ts := range []int64{2000, 2001, 1 << 40} {
		assert.Equal(t, 1.0, curve.ValueAt(ts), "t=%d", ts)
	}
}

// =============================================================================
// LINEAR VESTING
// =============================================================================

func TestLinear_NoCliff_ExactRamp(t *testing.T) {
	// GIVEN: Linear vesting over an awkward span (not a multiple of the sample count)
	start, end := int64(1_700_000_000), int64(1_700_000_000+86_400*97+13)
	curve := vesting.BuildCurve(linear(start, end))

	// THEN: Every timestamp matches the analytic ramp
	span := float64(end - start)
	for ts := start; ts <= end; ts += 7919 {
		want := float64(ts-start) / span
		assert.InDelta(t, want, curve.ValueAt(ts), tolerance, "t=%d", ts)
	}
	assert.Equal(t, 1.0, curve.ValueAt(end))
	assert.Equal(t, 0.0, curve.ValueAt(start-1))
	assert.Equal(t, 1.0, curve.ValueAt(end+1))
}

func TestLinear_BoundaryScenario_WithCliff(t *testing.T) {
	// GIVEN: start=0, cliff=100, end=200
	curve := vesting.BuildCurve(vesting.LinearVesting{Start: 0, Cliff: cliffAt(100), End: 200})

	assert.Equal(t, 0.0, curve.ValueAt(50))
	assert.InDelta(t, 0.5, curve.ValueAt(150), tolerance)
	assert.Equal(t, 1.0, curve.ValueAt(200))
}

func TestLinear_Cliff_FlatThenLinear(t *testing.T) {
	start, cliff, end := int64(0), int64(3_000), int64(12_000)
	curve := vesting.BuildCurve(vesting.LinearVesting{Start: start, Cliff: cliffAt(cliff), End: end})

	for ts := start; ts < cliff; ts += 250 {
		assert.Equal(t, 0.0, curve.ValueAt(ts), "t=%d before cliff", ts)
	}
	for ts := cliff; ts <= end; ts += 333 {
		want := float64(ts-cliff) / float64(end-cliff)
		assert.InDelta(t, want, curve.ValueAt(ts), tolerance, "t=%d", ts)
	}
	assert.Equal(t, 1.0, curve.ValueAt(end))
}

func TestLinear_CliffBeforeStart_RampsImmediately(t *testing.T) {
	curve := vesting.BuildCurve(vesting.LinearVesting{Start: 500, Cliff: cliffAt(0), End: 1500})

	assert.Equal(t, int64(500), curve.Points[0].At)
	assert.InDelta(t, 0.5, curve.ValueAt(1000), tolerance)
}

func TestLinear_CliffAfterEnd_DegeneratesToStep(t *testing.T) {
	curve := vesting.BuildCurve(vesting.LinearVesting{Start: 0, Cliff: cliffAt(5000), End: 1000})

	assert.Equal(t, 0.0, curve.ValueAt(999))
	assert.Equal(t, 1.0, curve.ValueAt(1000))
}

func TestLinear_SampleCount(t *testing.T) {
	curve := vesting.BuildCurve(linear(0, 3000))

	// start point + RampSamples interior samples, the last being End
	require.Len(t, curve.Points, vesting.RampSamples+1)
	assert.Equal(t, vesting.Point{At: 3000, Fraction: 1}, curve.Points[len(curve.Points)-1])
}

func TestLinear_ShortSpan_NoDuplicateSamples(t *testing.T) {
	curve := vesting.BuildCurve(linear(10, 17))

	for i := 1; i < len(curve.Points); i++ {
		assert.Greater(t, curve.Points[i].At, curve.Points[i-1].At)
	}
	assert.InDelta(t, 3.0/7.0, curve.ValueAt(13), tolerance)
}

// =============================================================================
// STEPPED VESTING
// =============================================================================

func TestStepped_BoundaryScenario(t *testing.T) {
	curve := vesting.BuildCurve(stepped(0, 200, ms(100, 5000), ms(200, 5000)))

	assert.Equal(t, 0.0, curve.ValueAt(50))
	assert.Equal(t, 0.5, curve.ValueAt(150))
	assert.Equal(t, 1.0, curve.ValueAt(200))
}

func TestStepped_JumpsAtEachMilestone(t *testing.T) {
	milestones := []vesting.Milestone{ms(100, 1000), ms(300, 2500), ms(600, 4000), ms(900, 2500)}
	curve := vesting.BuildCurve(stepped(0, 900, milestones...))

	var cumulative uint64
	for _, m := range milestones {
		before := curve.ValueAt(m.Timestamp - 1)
		cumulative += m.BasisPoints
		assert.InDelta(t, float64(cumulative)/10000, curve.ValueAt(m.Timestamp), tolerance)
		assert.InDelta(t, float64(m.BasisPoints)/10000, curve.ValueAt(m.Timestamp)-before, tolerance)
	}
	assert.Equal(t, 1.0, curve.ValueAt(900))
}

func TestStepped_Shortfall_ClosesAtEnd(t *testing.T) {
	// GIVEN: Milestones only release 50%
	curve := vesting.BuildCurve(stepped(0, 1000, ms(250, 2500), ms(500, 2500)))

	// THEN: Flat at 50% until End, then exactly 100%
	assert.Equal(t, 0.5, curve.ValueAt(999))
	assert.Equal(t, 1.0, curve.ValueAt(1000))
	last := curve.Points[len(curve.Points)-1]
	assert.Equal(t, vesting.Point{At: 1000, Fraction: 1}, last)
}

func TestStepped_NoMilestones_FiveEqualSteps(t *testing.T) {
	curve := vesting.BuildCurve(stepped(0, 1000))

	assert.Equal(t, 0.0, curve.ValueAt(199))
	assert.InDelta(t, 0.2, curve.ValueAt(200), tolerance)
	assert.InDelta(t, 0.4, curve.ValueAt(450), tolerance)
	assert.InDelta(t, 0.8, curve.ValueAt(999), tolerance)
	assert.Equal(t, 1.0, curve.ValueAt(1000))
}

func TestStepped_MilestoneOutsideWindow_PassThrough(t *testing.T) {
	// GIVEN: One milestone before start, one after end
	curve := vesting.BuildCurve(stepped(100, 1000, ms(50, 1000), ms(2000, 4000)))

	// THEN: The early jump shows where it falls; the late one is swallowed by closure at End
	assert.Equal(t, int64(50), curve.Points[0].At)
	assert.Equal(t, 0.0, curve.ValueAt(49))
	assert.InDelta(t, 0.1, curve.ValueAt(50), tolerance)
	assert.InDelta(t, 0.1, curve.ValueAt(999), tolerance)
	assert.Equal(t, 1.0, curve.ValueAt(1000))
}

func TestStepped_Unordered_StillMonotonic(t *testing.T) {
	curve := vesting.BuildCurve(stepped(0, 1000, ms(800, 3000), ms(200, 3000)))

	assert.InDelta(t, 0.3, curve.ValueAt(500), tolerance)
	assert.InDelta(t, 0.6, curve.ValueAt(800), tolerance)
}

func TestStepped_Overflow_CappedAtOne(t *testing.T) {
	curve := vesting.BuildCurve(stepped(0, 100, ms(10, 8000), ms(20, 8000)))

	assert.InDelta(t, 0.8, curve.ValueAt(15), tolerance)
	assert.Equal(t, 1.0, curve.ValueAt(20))
}

func TestStepped_HugeBasisPoints_NeverFallsBack(t *testing.T) {
	// GIVEN: A first milestone at the uint64 limit followed by a normal one
	curve := vesting.BuildCurve(stepped(0, 300, ms(100, math.MaxUint64), ms(200, 5000)))

	// THEN: Fully unlocked from the first milestone and stays there
	assert.Equal(t, 0.0, curve.ValueAt(99))
	assert.Equal(t, 1.0, curve.ValueAt(150))
	assert.Equal(t, 1.0, curve.ValueAt(250))
	assert.Equal(t, 1.0, curve.ValueAt(300))
	for _, p := range curve.Points {
		assert.LessOrEqual(t, p.Fraction, 1.0)
	}
}

// =============================================================================
// GENERAL PROPERTIES
// =============================================================================

func TestDegenerateWindow_FullyVested(t *testing.T) {
	for _, s := range []vesting.Schedule{
		vesting.FixedDate{Start: 500, End: 500},
		linear(500, 400),
		stepped(500, 500, ms(500, 5000)),
	} {
		curve := vesting.BuildCurve(s)
		assert.Equal(t, 1.0, curve.ValueAt(0))
		assert.Equal(t, 1.0, curve.ValueAt(500))
		assert.Equal(t, 1.0, curve.ValueAt(10_000))
	}
}

func TestBuildCurve_EndsAtOne_AndMonotonic(t *testing.T) {
	for name, s := range sampleSchedules() {
		t.Run(name, func(t *testing.T) {
			curve := vesting.BuildCurve(s)
			require.NotEmpty(t, curve.Points)

			for i := 1; i < len(curve.Points); i++ {
				assert.GreaterOrEqual(t, curve.Points[i].At, curve.Points[i-1].At, "points out of time order")
				assert.GreaterOrEqual(t, curve.Points[i].Fraction, curve.Points[i-1].Fraction, "fraction decreased")
			}

			_, end := s.Window()
			assert.Equal(t, 1.0, curve.ValueAt(end))
		})
	}
}

func TestValueAt_Monotonic_AllSchedules(t *testing.T) {
	for name, s := range sampleSchedules() {
		t.Run(name, func(t *testing.T) {
			curve := vesting.BuildCurve(s)
			start, end := s.Window()
			lo, hi := min(start, end)-100, max(start, end)+3000

			prev := curve.ValueAt(lo)
			for ts := lo + 1; ts <= hi; ts += 3 {
				v := curve.ValueAt(ts)
				assert.GreaterOrEqual(t, v, prev, "t=%d", ts)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
				prev = v
			}
		})
	}
}

func TestBuildCurve_Idempotent(t *testing.T) {
	for name, s := range sampleSchedules() {
		t.Run(name, func(t *testing.T) {
			a, b := vesting.BuildCurve(s), vesting.BuildCurve(s)
			assert.Equal(t, a, b)

			start, end := s.Window()
			for ts := start - 10; ts <= end+10; ts += 11 {
				assert.Equal(t, vesting.ValueAt(a, ts), vesting.ValueAt(b, ts))
			}
		})
	}
}

func TestBuildCurve_DoesNotMutateMilestones(t *testing.T) {
	input := []vesting.Milestone{ms(800, 3000), ms(200, 3000)}
	vesting.BuildCurve(stepped(0, 1000, input...))

	assert.Equal(t, int64(800), input[0].Timestamp)
	assert.Equal(t, int64(200), input[1].Timestamp)
}

func TestValueAt_EmptyCurve(t *testing.T) {
	assert.Equal(t, 0.0, vesting.Curve{}.ValueAt(100))
}

func TestCurveStatus(t *testing.T) {
	curve := vesting.BuildCurve(linear(1000, 2000))

	assert.Equal(t, vesting.StatusNotStarted, curve.Status(500))
	assert.Equal(t, vesting.StatusVesting, curve.Status(1500))
	assert.Equal(t, vesting.StatusFullyVested, curve.Status(2000))
}

func TestBuildCurve_ExtremeTimestamps(t *testing.T) {
	fromChain, err := vesting.FromLock(1, 1700000000, 0, math.MaxUint64, nil)
	require.NoError(t, err)

	schedules := map[string]vesting.Schedule{
		"linear_from_chain": fromChain,
		"linear_full_range": linear(math.MinInt64, math.MaxInt64),
		"linear_cliff":      vesting.LinearVesting{Start: 0, Cliff: cliffAt(math.MaxInt64 - 10), End: math.MaxInt64},
		"stepped_empty":     stepped(1700000000, math.MaxInt64),
		"stepped_negative":  stepped(math.MinInt64, math.MaxInt64),
		"fixed":             vesting.FixedDate{Start: math.MinInt64, End: math.MaxInt64},
	}

	for name, s := range schedules {
		t.Run(name, func(t *testing.T) {
			// WHEN: The window spans (nearly) the whole int64 range
			curve := vesting.BuildCurve(s)
			start, end := s.Window()

			// THEN: Points stay ordered and within [0, 1], ending at (End, 1)
			require.NotEmpty(t, curve.Points)
			assert.Equal(t, start, curve.Points[0].At)
			for i, p := range curve.Points {
				assert.GreaterOrEqual(t, p.Fraction, 0.0)
				assert.LessOrEqual(t, p.Fraction, 1.0)
				if i > 0 {
					assert.GreaterOrEqual(t, p.At, curve.Points[i-1].At, "points out of time order")
					assert.GreaterOrEqual(t, p.Fraction, curve.Points[i-1].Fraction, "fraction decreased")
				}
			}
			assert.Equal(t, vesting.Point{At: end, Fraction: 1}, curve.Points[len(curve.Points)-1])

			assert.Equal(t, 0.0, curve.ValueAt(start))
			assert.Equal(t, 1.0, curve.ValueAt(end))
			mid := curve.ValueAt(start/2 + end/2)
			assert.GreaterOrEqual(t, mid, 0.0)
			assert.LessOrEqual(t, mid, 1.0)
		})
	}
}

func TestLinear_FullRange_HalfwayAtMidpoint(t *testing.T) {
	curve := vesting.BuildCurve(linear(math.MinInt64, math.MaxInt64))

	assert.InDelta(t, 0.5, curve.ValueAt(0), 1e-6)
}
