package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/megascan/lock-engine/factory"
	"github.com/megascan/lock-engine/vesting"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Build a vesting curve and print its points",
	Long: `Builds the unlock curve of a schedule given by flags (or as JSON with
--schedule) and prints its control points. Each --at adds a probe row.

Examples:
  megascan curve --kind timelock --start 1700000000 --end 1710000000
  megascan curve --kind stepped --start 0 --end 300 --milestone 100:2500 --milestone 200:7500
  megascan curve --schedule '{"kind":"linear","start_time":0,"cliff_time":100,"end_time":200}' --at 150`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := scheduleFromFlags(cmd)
		if err != nil {
			return err
		}
		ats, err := cmd.Flags().GetInt64Slice("at")
		if err != nil {
			return err
		}
		return printCurve(s, ats)
	},
}

func init() {
	addCurveFlags(curveCmd.Flags())
}

func addCurveFlags(f *pflag.FlagSet) {
	f.String("schedule", "", "Schedule as JSON (overrides the other schedule flags)")
	f.String("kind", "linear", "Schedule kind: timelock, linear or stepped")
	f.Int64("start", 0, "Start time (Unix seconds)")
	f.Int64("cliff", 0, "Cliff time for linear schedules (Unix seconds)")
	f.Int64("end", 0, "End time (Unix seconds)")
	f.StringArray("milestone", nil, "Stepped milestone as timestamp:basis_points (repeatable)")
	f.Int64Slice("at", nil, "Timestamps to evaluate the curve at (repeatable)")
}

func printCurve(s vesting.Schedule, ats []int64) error {
	curve := vesting.BuildCurve(s)
	if err := writeAnomalies(os.Stdout, vesting.Inspect(s)); err != nil {
		return err
	}
	if err := writeCurveTable(os.Stdout, curve); err != nil {
		return err
	}
	return writeProbeTable(os.Stdout, curve, ats)
}

func scheduleFromFlags(cmd *cobra.Command) (vesting.Schedule, error) {
	schedules := factory.NewScheduleFactory()
	f := cmd.Flags()

	if raw, _ := f.GetString("schedule"); raw != "" {
		return schedules.ParseSchedule(raw)
	}

	kind, _ := f.GetString("kind")
	start, _ := f.GetInt64("start")
	end, _ := f.GetInt64("end")
	sj := factory.ScheduleJSON{Kind: kind, StartTime: start, EndTime: end}

	if f.Changed("cliff") {
		cliff, _ := f.GetInt64("cliff")
		sj.CliffTime = &cliff
	}

	specs, _ := f.GetStringArray("milestone")
	for _, raw := range specs {
		m, err := parseMilestone(raw)
		if err != nil {
			return nil, err
		}
		sj.Milestones = append(sj.Milestones, m)
	}

	return schedules.FromJSON(sj)
}

// parseMilestone reads "timestamp:basis_points".
func parseMilestone(raw string) (factory.MilestoneJSON, error) {
	ts, bp, ok := strings.Cut(raw, ":")
	if !ok {
		return factory.MilestoneJSON{}, fmt.Errorf("milestone %q: want timestamp:basis_points", raw)
	}
	t, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return factory.MilestoneJSON{}, fmt.Errorf("milestone %q: bad timestamp: %w", raw, err)
	}
	b, err := strconv.ParseUint(strings.TrimSpace(bp), 10, 64)
	if err != nil {
		return factory.MilestoneJSON{}, fmt.Errorf("milestone %q: bad basis points: %w", raw, err)
	}
	return factory.MilestoneJSON{Timestamp: t, BasisPoints: b}, nil
}
