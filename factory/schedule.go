/*
Package factory provides JSON to Go schedule conversion.

PURPOSE:
  Converts JSON schedule definitions into vesting.Schedule values. The HTTP
  API and the CLI accept schedules in this form so a chart can be drawn for
  a lock that does not exist on chain yet (e.g. while filling the "create
  lock" form).

JSON SCHEMA:
  {
    "kind": "stepped",          // fixed_date | timelock | linear | stepped
    "lock_type": 2,             // alternative to kind: 0 | 1 | 2
    "start_time": 1700000000,
    "cliff_time": 1700086400,   // linear only, optional
    "end_time":   1702592000,
    "milestones": [             // stepped only
      {"timestamp": 1701000000, "basis_points": 2500}
    ]
  }

KEY FEATURES:
  - Accepts either a kind name or the contract's numeric lock type
  - Ignores fields that don't belong to the chosen variant
  - Round-trips through ToJSON

USAGE:
  f := factory.NewScheduleFactory()
  schedule, err := f.ParseSchedule(`{"kind":"linear","start_time":0,"end_time":200}`)

SEE ALSO:
  - vesting/types.go: Schedule variants
  - api/handlers.go: POST /api/curves
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/megascan/lock-engine/vesting"
)

// ErrInvalidSchedule is returned for JSON that cannot describe any schedule.
var ErrInvalidSchedule = errors.New("invalid schedule")

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a schedule.
type ScheduleJSON struct {
	Kind       string          `json:"kind,omitempty"`
	LockType   *uint8          `json:"lock_type,omitempty"`
	StartTime  int64           `json:"start_time"`
	CliffTime  *int64          `json:"cliff_time,omitempty"`
	EndTime    int64           `json:"end_time"`
	Milestones []MilestoneJSON `json:"milestones,omitempty"`
}

// MilestoneJSON represents a single stepped unlock.
type MilestoneJSON struct {
	Timestamp   int64  `json:"timestamp"`
	BasisPoints uint64 `json:"basis_points"`
}

// Kind names accepted in "kind".
const (
	KindFixedDate = "fixed_date"
	KindTimelock  = "timelock"
	KindLinear    = "linear"
	KindStepped   = "stepped"
)

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON schedules to vesting.Schedule values.
type ScheduleFactory struct{}

// NewScheduleFactory creates a new schedule factory.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseSchedule parses a JSON string into a Schedule.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (vesting.Schedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts ScheduleJSON to a vesting.Schedule.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) (vesting.Schedule, error) {
	kind, err := parseKind(sj)
	if err != nil {
		return nil, err
	}

	switch kind {
	case vesting.KindFixedDate:
		return vesting.FixedDate{Start: sj.StartTime, End: sj.EndTime}, nil

	case vesting.KindLinear:
		lv := vesting.LinearVesting{Start: sj.StartTime, End: sj.EndTime}
		if sj.CliffTime != nil {
			c := *sj.CliffTime
			lv.Cliff = &c
		}
		return lv, nil

	default:
		ms := make([]vesting.Milestone, 0, len(sj.Milestones))
		for _, m := range sj.Milestones {
			ms = append(ms, vesting.Milestone{Timestamp: m.Timestamp, BasisPoints: m.BasisPoints})
		}
		return vesting.SteppedVesting{Start: sj.StartTime, End: sj.EndTime, Milestones: ms}, nil
	}
}

// ToJSON converts a Schedule back to ScheduleJSON.
func (f *ScheduleFactory) ToJSON(s vesting.Schedule) ScheduleJSON {
	start, end := s.Window()
	lockType := uint8(s.Kind())
	sj := ScheduleJSON{
		Kind:      kindName(s.Kind()),
		LockType:  &lockType,
		StartTime: start,
		EndTime:   end,
	}

	switch v := s.(type) {
	case vesting.LinearVesting:
		if v.Cliff != nil {
			c := *v.Cliff
			sj.CliffTime = &c
		}
	case vesting.SteppedVesting:
		for _, m := range v.Milestones {
			sj.Milestones = append(sj.Milestones, MilestoneJSON{Timestamp: m.Timestamp, BasisPoints: m.BasisPoints})
		}
	}
	return sj
}

func parseKind(sj ScheduleJSON) (vesting.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(sj.Kind)) {
	case KindFixedDate, KindTimelock:
		return vesting.KindFixedDate, nil
	case KindLinear:
		return vesting.KindLinear, nil
	case KindStepped:
		return vesting.KindStepped, nil
	case "":
		if sj.LockType == nil {
			return 0, fmt.Errorf("%w: kind or lock_type is required", ErrInvalidSchedule)
		}
		k := vesting.Kind(*sj.LockType)
		if k > vesting.KindStepped {
			return 0, fmt.Errorf("%w: %w", ErrInvalidSchedule, &vesting.LockTypeError{LockType: *sj.LockType})
		}
		return k, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidSchedule, sj.Kind)
	}
}

func kindName(k vesting.Kind) string {
	switch k {
	case vesting.KindFixedDate:
		return KindFixedDate
	case vesting.KindLinear:
		return KindLinear
	default:
		return KindStepped
	}
}
