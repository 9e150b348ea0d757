/*
main.go - Application entry point

PURPOSE:
  The megascan command: the MegaScan lock engine server plus a few
  inspection commands for the terminal.

COMMANDS:
  serve      HTTP API with the background snapshot refresher
  curve      Build a vesting curve from flags and print it
  lock <id>  Fetch a lock from chain and print its curve
  refresh    Snapshot every watchlisted token once
  migrate    Run the SQLite schema migrations

CONFIGURATION (highest precedence first):
  1. Command-line flags
  2. MEGASCAN_* environment variables (a .env file is loaded if present)
  3. .megascan.yaml in the working or home directory, or --config
  4. Built-in defaults (MegaETH mainnet)

EXAMPLES:
  # Serve on another port with an in-memory database
  megascan serve --port 3001 --db ":memory:"

  # Linear vesting with a cliff, probed at two times
  megascan curve --kind linear --start 0 --cliff 100 --end 200 --at 50 --at 150

  # Inspect lock 12 on mainnet
  megascan lock 12

SEE ALSO:
  - config/config.go: Settings and validation
  - api/server.go: Router configuration
*/
package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
