package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/megascan/lock-engine/api"
	"github.com/megascan/lock-engine/store/sqlite"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Snapshot the locks of every watchlisted token once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		c, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		h := api.NewHandler(c, nil, store, store)
		h.ScanLimit = cfg.ScanLimit
		res := api.NewRefresher(h).RunNow(ctx)

		fmt.Printf("Refreshed %d of %d tokens (%d failed) in %v\n", res.Saved, res.Tokens, res.Failed, res.Elapsed)
		if res.Failed > 0 {
			return fmt.Errorf("%d tokens failed to refresh", res.Failed)
		}
		return nil
	},
}
