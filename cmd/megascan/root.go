package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/config"
	"github.com/megascan/lock-engine/locks"
)

// cfg holds the validated configuration once PersistentPreRunE has run.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "megascan",
	Short:         "Vesting curves, locks and burns on MegaETH.",
	Long:          `megascan reads MegaLock and MegaBurn state from MegaETH, reconstructs vesting curves and serves them as JSON.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(viper.GetViper())
		return err
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(migrateCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.String("db", config.DefaultDBPath, "SQLite database path (\":memory:\" for in-memory)")
	flags.String("rpc-url", chain.DefaultRPCURL, "MegaETH JSON-RPC endpoint")
	flags.String("explorer-url", "", "Blockscout v2 API base URL")
	flags.String("price-url", "", "DexScreener API base URL")
	flags.String("lock-address", "", "MegaLock contract address")
	flags.String("burn-address", "", "MegaBurn contract address")
	flags.Int("scan-limit", locks.DefaultScanLimit, "Maximum lock ids inspected per token scan")
	bindFlags(rootCmd)

	serveCmd.Flags().Int("port", config.DefaultPort, "HTTP server port")
	serveCmd.Flags().String("refresh-interval", config.DefaultRefreshInterval, "Snapshot refresh interval (0 disables)")
	serveCmd.Flags().String("allowed-origins", "", "Comma-separated CORS origins")
	bindFlags(serveCmd)

	migrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	bindFlags(migrateCmd)
}

// bindFlags binds cmd's flags to viper. A flag the user did not set ranks
// below the environment, the config file and config.SetDefaults.
func bindFlags(cmd *cobra.Command) {
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		log.Fatalf("Error binding %s flags: %v", cmd.Name(), err)
	}
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Fatalf("Error binding %s flags: %v", cmd.Name(), err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".megascan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	config.BindEnv(viper.GetViper())
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Warning: could not read config file: %v", err)
		}
	}
}

// dialChain connects to the configured RPC endpoint.
func dialChain(ctx context.Context) (*chain.Client, error) {
	c, err := chain.Dial(ctx, cfg.RPCURL, cfg.Addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.RPCURL, err)
	}
	return c, nil
}
