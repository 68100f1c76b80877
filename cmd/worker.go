package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/drivelink/backoffice/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs",
	Long:  `Run background jobs such as warming the permission cache for every active admin.`,
}

var cacheWarmCmd = &cobra.Command{
	Use:   "cache-warm",
	Short: "Refresh the permission cache of every active admin",
	Run: func(cmd *cobra.Command, args []string) {
		startCacheWarm()
	},
}

var warmTimeout time.Duration

func startCacheWarm() {
	cfg := mustLoadConfig()
	lg := logger.LoggerWrapper()

	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ids, err := a.admins.ActiveIDs(ctx)
	if err != nil {
		lg.Error("failed to list active admins", "error", err)
		os.Exit(1)
	}

	lg.Info("warming permission cache",
		"admins", len(ids),
		"workers", cfg.Authorization.WarmerWorkers,
		"queue_size", cfg.Authorization.WarmerQueueSize)

	if err := a.warmer.Enqueue(ctx, ids...); err != nil {
		lg.Error("failed to enqueue warm jobs", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		a.warmer.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		lg.Warn("cache warm timeout reached, stopping")
	}

	refreshed, failed := a.warmer.Stats()
	lg.Info("permission cache warm complete", "refreshed", refreshed, "failed", failed)
}

func init() {
	cacheWarmCmd.Flags().DurationVar(&warmTimeout, "timeout", 2*time.Minute, "Maximum time to spend warming")
	workerCmd.AddCommand(cacheWarmCmd)
}
