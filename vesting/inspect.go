package vesting

import "fmt"

// =============================================================================
// ANOMALIES - Reported, never corrected
// =============================================================================

// Lock parameters come from arbitrary contracts. BuildCurve always produces a
// sane curve; Inspect tells the caller which parts of the input it had to
// interpret generously so the UI can show a warning next to the chart.

type AnomalyCode string

const (
	AnomalyDegenerateWindow     AnomalyCode = "degenerate_window"
	AnomalyCliffOutsideWindow   AnomalyCode = "cliff_outside_window"
	AnomalyMilestonesUnordered  AnomalyCode = "milestones_unordered"
	AnomalyMilestoneOutOfWindow AnomalyCode = "milestone_outside_window"
	AnomalyBasisPointsOverflow  AnomalyCode = "basis_points_over_total"
	AnomalyMilestonesMissing    AnomalyCode = "milestones_missing"
)

type Anomaly struct {
	Code    AnomalyCode
	Message string
}

func (a Anomaly) String() string { return string(a.Code) + ": " + a.Message }

// Inspect lists the anomalies found in s. An empty result means the schedule
// is well formed.
func Inspect(s Schedule) []Anomaly {
	var out []Anomaly
	start, end := s.Window()

	if end <= start {
		out = append(out, Anomaly{
			Code:    AnomalyDegenerateWindow,
			Message: fmt.Sprintf("end %d is not after start %d; treated as fully vested", end, start),
		})
	}

	switch v := s.(type) {
	case LinearVesting:
		if v.Cliff != nil && (*v.Cliff < start || *v.Cliff > end) {
			out = append(out, Anomaly{
				Code:    AnomalyCliffOutsideWindow,
				Message: fmt.Sprintf("cliff %d outside [%d, %d]", *v.Cliff, start, end),
			})
		}

	case SteppedVesting:
		if len(v.Milestones) == 0 {
			out = append(out, Anomaly{
				Code:    AnomalyMilestonesMissing,
				Message: fmt.Sprintf("no milestones; approximated with %d equal steps", FallbackSteps),
			})
			break
		}
		for i := 1; i < len(v.Milestones); i++ {
			if v.Milestones[i].Timestamp < v.Milestones[i-1].Timestamp {
				out = append(out, Anomaly{
					Code:    AnomalyMilestonesUnordered,
					Message: fmt.Sprintf("milestone %d at %d precedes milestone %d at %d", i, v.Milestones[i].Timestamp, i-1, v.Milestones[i-1].Timestamp),
				})
				break
			}
		}
		for i, m := range v.Milestones {
			if m.Timestamp < start || m.Timestamp > end {
				out = append(out, Anomaly{
					Code:    AnomalyMilestoneOutOfWindow,
					Message: fmt.Sprintf("milestone %d at %d outside [%d, %d]", i, m.Timestamp, start, end),
				})
			}
		}
		if total := TotalBasisPoints(v.Milestones); total > BasisPointsTotal {
			out = append(out, Anomaly{
				Code:    AnomalyBasisPointsOverflow,
				Message: fmt.Sprintf("milestones sum to %d basis points", total),
			})
		}
	}
	return out
}
