package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/megascan/lock-engine/store/sqlite"
)

// migrateCmd runs database migrations for the SQLite store.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage the schema version of the SQLite store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  megascan migrate

  # Rollback everything
  megascan migrate --target-version 0`,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		res, err := sqlite.Migrate(cfg.DBPath, targetVersion)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if !res.Changed {
			fmt.Printf("%s already at version %d\n", cfg.DBPath, res.To)
			return nil
		}
		fmt.Printf("Migrated %s from version %d to %d\n", cfg.DBPath, res.From, res.To)
		return nil
	},
}
