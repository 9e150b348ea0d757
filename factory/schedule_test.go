package factory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascan/lock-engine/factory"
	"github.com/megascan/lock-engine/vesting"
)

func TestParseSchedule_Linear(t *testing.T) {
	f := factory.NewScheduleFactory()

	s, err := f.ParseSchedule(`{"kind":"linear","start_time":0,"cliff_time":100,"end_time":200}`)
	require.NoError(t, err)

	lv, ok := s.(vesting.LinearVesting)
	require.True(t, ok, "expected LinearVesting, got %T", s)
	require.NotNil(t, lv.Cliff)
	assert.Equal(t, int64(100), *lv.Cliff)
	assert.Equal(t, int64(200), lv.End)
}

func TestParseSchedule_LockTypeInsteadOfKind(t *testing.T) {
	f := factory.NewScheduleFactory()

	s, err := f.ParseSchedule(`{"lock_type":2,"start_time":0,"end_time":200,
		"milestones":[{"timestamp":100,"basis_points":5000},{"timestamp":200,"basis_points":5000}]}`)
	require.NoError(t, err)

	sv, ok := s.(vesting.SteppedVesting)
	require.True(t, ok)
	assert.Len(t, sv.Milestones, 2)
	assert.Equal(t, 0.5, vesting.BuildCurve(s).ValueAt(150))
}

func TestParseSchedule_TimelockAlias(t *testing.T) {
	f := factory.NewScheduleFactory()

	s, err := f.ParseSchedule(`{"kind":"Timelock","start_time":1000,"end_time":2000,"cliff_time":5}`)
	require.NoError(t, err)
	assert.Equal(t, vesting.FixedDate{Start: 1000, End: 2000}, s)
}

func TestParseSchedule_Invalid(t *testing.T) {
	f := factory.NewScheduleFactory()

	cases := map[string]string{
		"no kind":       `{"start_time":0,"end_time":1}`,
		"unknown kind":  `{"kind":"cubic","start_time":0,"end_time":1}`,
		"bad lock type": `{"lock_type":3,"start_time":0,"end_time":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ParseSchedule(body)
			require.Error(t, err)
			assert.True(t, errors.Is(err, factory.ErrInvalidSchedule))
		})
	}

	_, err := f.ParseSchedule(`{not json`)
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewScheduleFactory()
	cliff := int64(50)
	schedules := []vesting.Schedule{
		vesting.FixedDate{Start: 1, End: 2},
		vesting.LinearVesting{Start: 0, Cliff: &cliff, End: 100},
		vesting.SteppedVesting{Start: 0, End: 100, Milestones: []vesting.Milestone{{Timestamp: 10, BasisPoints: 10000}}},
	}

	for _, s := range schedules {
		back, err := f.FromJSON(f.ToJSON(s))
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
}
