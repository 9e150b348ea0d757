package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/locks"
)

var lockCmd = &cobra.Command{
	Use:   "lock <id>",
	Short: "Fetch a lock from chain and print its curve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid lock id %q: %w", args[0], err)
		}
		at, _ := cmd.Flags().GetInt64("at")
		if !cmd.Flags().Changed("at") {
			at = time.Now().Unix()
		}

		ctx := cmd.Context()
		c, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		l, err := c.GetLockWithMilestones(ctx, id)
		if err != nil {
			return err
		}
		view, err := locks.NewLockView(l, at)
		if err != nil {
			return err
		}

		var meta *chain.TokenMeta
		if m, err := c.TokenMeta(ctx, l.Token); err == nil {
			meta = &m
		} else {
			warnColor.Fprintf(os.Stderr, "warning: token metadata unavailable: %v\n", err)
		}

		if err := writeLockSummary(os.Stdout, view, meta); err != nil {
			return err
		}
		if err := writeAnomalies(os.Stdout, view.Anomalies); err != nil {
			return err
		}
		if err := writeCurveTable(os.Stdout, view.Curve); err != nil {
			return err
		}

		if onchain, err := c.VestedAmount(ctx, id); err == nil {
			fmt.Printf("Contract reports vested: %s\n", locks.FormatTokenAmount(onchain, decimalsOf(meta)))
		}
		return nil
	},
}

func init() {
	lockCmd.Flags().Int64("at", 0, "Evaluate at this Unix time instead of now")
}

func decimalsOf(meta *chain.TokenMeta) uint8 {
	if meta == nil {
		return locks.DefaultDecimals
	}
	return meta.Decimals
}
