package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/megascan/lock-engine/api"
	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/explorer"
	"github.com/megascan/lock-engine/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API and the background refresher.

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests, stops the refresher and closes the database.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	chainClient, err := dialChain(ctx)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	exp := explorer.NewClient(explorer.Config{BaseURL: cfg.ExplorerURL, PriceURL: cfg.PriceURL})

	// Initialize handler
	handler := api.NewHandler(chainClient, exp, store, store)
	handler.ScanLimit = cfg.ScanLimit

	refresher := api.NewRefresher(handler)
	refresher.Interval = cfg.RefreshInterval
	refresher.Enabled = cfg.RefreshInterval > 0
	refresher.Start()
	defer refresher.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on http://localhost:%d (chain %d via %s)", cfg.Port, chain.ChainID, cfg.RPCURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Println("[Server] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("[Server] Stopped")
	return nil
}
