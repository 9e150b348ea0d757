package vesting_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascan/lock-engine/vesting"
)

// =============================================================================
// FROM LOCK TESTS
// =============================================================================

func TestFromLock_Variants(t *testing.T) {
	s, err := vesting.FromLock(0, 1000, 0, 2000, nil)
	require.NoError(t, err)
	assert.Equal(t, vesting.FixedDate{Start: 1000, End: 2000}, s)

	s, err = vesting.FromLock(1, 0, 100, 200, nil)
	require.NoError(t, err)
	lv, ok := s.(vesting.LinearVesting)
	require.True(t, ok)
	require.NotNil(t, lv.Cliff)
	assert.Equal(t, int64(100), *lv.Cliff)
	assert.Equal(t, int64(100), lv.RampStart())

	milestones := []vesting.Milestone{{Timestamp: 100, BasisPoints: 5000}}
	s, err = vesting.FromLock(2, 0, 0, 200, milestones)
	require.NoError(t, err)
	sv, ok := s.(vesting.SteppedVesting)
	require.True(t, ok)
	assert.Equal(t, milestones, sv.Milestones)

	// The schedule owns its milestones
	milestones[0].BasisPoints = 1
	assert.Equal(t, uint64(5000), sv.Milestones[0].BasisPoints)
}

func TestFromLock_UnknownType(t *testing.T) {
	_, err := vesting.FromLock(7, 0, 0, 100, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, vesting.ErrUnknownLockType))
	var lte *vesting.LockTypeError
	require.ErrorAs(t, err, &lte)
	assert.Equal(t, uint8(7), lte.LockType)
}

func TestFromLock_ZeroCliff_RampsFromStart(t *testing.T) {
	s, err := vesting.FromLock(1, 1000, 0, 2000, nil)
	require.NoError(t, err)

	curve := vesting.BuildCurve(s)
	assert.InDelta(t, 0.5, curve.ValueAt(1500), 1e-9)
}

func TestKindLabels(t *testing.T) {
	assert.Equal(t, "Timelock", vesting.KindFixedDate.String())
	assert.Equal(t, "Linear Vesting", vesting.KindLinear.String())
	assert.Equal(t, "Stepped Vesting", vesting.KindStepped.String())
	assert.Equal(t, "Unknown", vesting.Kind(9).String())
}

// =============================================================================
// INSPECT TESTS
// =============================================================================

func codes(as []vesting.Anomaly) []vesting.AnomalyCode {
	out := make([]vesting.AnomalyCode, 0, len(as))
	for _, a := range as {
		out = append(out, a.Code)
	}
	return out
}

func TestInspect_WellFormed(t *testing.T) {
	assert.Empty(t, vesting.Inspect(vesting.FixedDate{Start: 0, End: 10}))
	assert.Empty(t, vesting.Inspect(vesting.LinearVesting{Start: 0, Cliff: cliffAt(5), End: 10}))
	assert.Empty(t, vesting.Inspect(stepped(0, 10, ms(5, 5000), ms(10, 5000))))
}

func TestInspect_FlagsWithoutFixing(t *testing.T) {
	s := stepped(100, 1000, ms(2000, 6000), ms(50, 6000))

	got := codes(vesting.Inspect(s))
	assert.Contains(t, got, vesting.AnomalyMilestonesUnordered)
	assert.Contains(t, got, vesting.AnomalyMilestoneOutOfWindow)
	assert.Contains(t, got, vesting.AnomalyBasisPointsOverflow)

	// Input is untouched
	assert.Equal(t, int64(2000), s.Milestones[0].Timestamp)
}

func TestInspect_DegenerateAndCliff(t *testing.T) {
	got := codes(vesting.Inspect(vesting.LinearVesting{Start: 10, Cliff: cliffAt(50), End: 10}))
	assert.Equal(t, []vesting.AnomalyCode{vesting.AnomalyDegenerateWindow, vesting.AnomalyCliffOutsideWindow}, got)

	got = codes(vesting.Inspect(stepped(0, 10)))
	assert.Equal(t, []vesting.AnomalyCode{vesting.AnomalyMilestonesMissing}, got)
}

func TestInspect_HugeBasisPointsFlagged(t *testing.T) {
	// GIVEN: Basis points whose plain uint64 sum would wrap around
	s := stepped(0, 300, ms(100, math.MaxUint64), ms(200, 5000))

	// THEN: The total saturates instead of wrapping, so the overflow is reported
	assert.Equal(t, uint64(math.MaxUint64), vesting.TotalBasisPoints(s.Milestones))
	assert.Equal(t, []vesting.AnomalyCode{vesting.AnomalyBasisPointsOverflow}, codes(vesting.Inspect(s)))
}

// =============================================================================
// AMOUNT TESTS
// =============================================================================

func TestVestedAmount(t *testing.T) {
	total := decimal.RequireFromString("1000000000000000000000") // 1000 tokens @ 18 decimals

	assert.True(t, vesting.VestedAmount(total, 0).IsZero())
	assert.True(t, vesting.VestedAmount(total, 1).Equal(total))
	assert.Equal(t, "250000000000000000000", vesting.VestedAmount(total, 0.25).String())
	assert.True(t, vesting.VestedAmount(total, 1.5).Equal(total))
}

func TestClaimableAndRemaining(t *testing.T) {
	total := decimal.NewFromInt(1000)
	claimed := decimal.NewFromInt(300)

	assert.Equal(t, "200", vesting.Claimable(total, claimed, 0.5).String())
	assert.True(t, vesting.Claimable(total, claimed, 0.1).IsZero(), "never negative")
	assert.Equal(t, "700", vesting.Remaining(total, claimed).String())
	assert.True(t, vesting.Remaining(claimed, total).IsZero())
}

func TestClaimProgress(t *testing.T) {
	assert.Equal(t, "33.33", vesting.ClaimProgress(decimal.NewFromInt(1), decimal.NewFromInt(3)).String())
	assert.Equal(t, "100", vesting.ClaimProgress(decimal.NewFromInt(5), decimal.NewFromInt(5)).String())
	assert.True(t, vesting.ClaimProgress(decimal.NewFromInt(5), decimal.Zero).IsZero())
}
