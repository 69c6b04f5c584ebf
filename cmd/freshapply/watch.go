package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/freshapply/internal/scheduler"
)

var (
	watchSchedule string
	watchOnce     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scrape and write the digest on a schedule",
	Long: `Run a scrape followed by a digest immediately, then again on the configured
cron schedule until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchSchedule, "schedule", "s", "", `Cron spec or descriptor such as "@every 6h" (default from config)`)
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single scrape and digest, then exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	job := func(ctx context.Context) error {
		stats, err := a.runner(ctx).Run(ctx, clock())
		if err != nil {
			return fmt.Errorf("scrape failed: %w", err)
		}
		path, d, err := a.writeDigest(ctx, clock())
		if err != nil {
			return err
		}
		a.logger.Info("digest written",
			zap.String("run_id", stats.RunID),
			zap.String("path", path),
			zap.Int("postings", len(d.Evaluations)))
		fmt.Fprintf(out, "%s: %s, digest %s\n", stats.RunID, stats, path)
		return nil
	}

	if watchOnce {
		return job(ctx)
	}

	spec := a.cfg.Schedule
	if watchSchedule != "" {
		spec = watchSchedule
	}
	s, err := scheduler.New(spec, job, a.logger)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
