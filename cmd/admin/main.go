// Command admin is the VFL operator CLI for player identity reconciliation.
//
// Usage:
//
//	vfl-admin migrate
//	vfl-admin scan --kind stat
//	vfl-admin suggest "Jack OKearney" --team Keilor
//	vfl-admin apply --file assignments.json
//	vfl-admin apply --auto --dry-run
//	vfl-admin import-stats round4.csv --match m-2025-04-01 --round R4 --derive-totals
//	vfl-admin players add --name "Tom Hickey" --team Keilor --alias Tommy
//	vfl-admin players search hickey
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/store"
	"github.com/vflfantasy/vfl-data/internal/storeopen"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// openStore is swapped in tests.
var openStore = storeopen.Open

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vfl-admin",
		Short:         "VFL player identity reconciliation CLI",
		SilenceUsage:  true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(scanCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(applyCmd())
	root.AddCommand(importStatsCmd())
	root.AddCommand(playersCmd())
	return root
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithStore handles config loading, store connection, and context
// cancellation.
func runWithStore(fn func(ctx context.Context, cfg *config.Config, st store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(ctx, cfg, st)
}
