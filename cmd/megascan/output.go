package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/locks"
	"github.com/megascan/lock-engine/vesting"
)

var (
	warnColor   = color.New(color.FgYellow, color.Bold)
	vestedColor = color.New(color.FgGreen, color.Bold)
	labelColor  = color.New(color.FgCyan)
)

// writeCurveTable prints the control points of curve, one row each.
func writeCurveTable(w io.Writer, curve vesting.Curve) error {
	if _, err := fmt.Fprintf(w, "%s (%s -> %s)\n",
		labelColor.Sprint(curve.Kind.String()), formatTime(curve.Start), formatTime(curve.End)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Time (UTC)", "Unix", "Unlocked"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(curve.Points))
	for i, p := range curve.Points {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			formatTime(p.At),
			strconv.FormatInt(p.At, 10),
			formatFraction(p.Fraction),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeProbeTable evaluates curve at each timestamp.
func writeProbeTable(w io.Writer, curve vesting.Curve, ats []int64) error {
	if len(ats) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"At (UTC)", "Unix", "Unlocked", "Status"})

	data := make([][]string, 0, len(ats))
	for _, at := range ats {
		data = append(data, []string{
			formatTime(at),
			strconv.FormatInt(at, 10),
			formatFraction(curve.ValueAt(at)),
			string(curve.Status(at)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeAnomalies(w io.Writer, anomalies []vesting.Anomaly) error {
	for _, a := range anomalies {
		if _, err := warnColor.Fprintf(w, "warning: %s\n", a.String()); err != nil {
			return err
		}
	}
	return nil
}

// writeLockSummary prints the lock's fields and amounts at view.At.
func writeLockSummary(w io.Writer, view locks.LockView, meta *chain.TokenMeta) error {
	l := view.Lock
	decimals := decimalsOf(meta)
	symbol := "tokens"
	if meta != nil {
		symbol = meta.Symbol
	}
	amount := func(d decimal.Decimal) string {
		return locks.FormatTokenAmount(d.BigInt(), decimals) + " " + symbol
	}

	status := string(view.Status)
	if view.Status == vesting.StatusFullyVested {
		status = vestedColor.Sprint("FULLY VESTED")
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	rows := [][]string{
		{"Lock", "#" + strconv.FormatUint(l.ID, 10)},
		{"Type", vesting.Kind(l.LockType).String()},
		{"Token", l.Token.Hex()},
		{"Creator", locks.ShortenAddress(l.Creator.Hex())},
		{"Beneficiary", locks.ShortenAddress(l.Beneficiary.Hex())},
		{"Total", amount(locks.BigToDecimal(l.TotalAmount))},
		{"Claimed", amount(locks.BigToDecimal(l.ClaimedAmount)) + " (" + view.Progress.StringFixed(2) + "%)"},
		{"Vested", amount(view.Vested)},
		{"Claimable", amount(view.Claimable)},
		{"Unlocked", formatFraction(view.Fraction)},
		{"Status", status},
		{"Cancelled", strconv.FormatBool(l.Cancelled)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func formatFraction(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 2, 64) + "%"
}

func formatTime(ts int64) string {
	return vesting.Unix(ts).Format(time.DateTime)
}
