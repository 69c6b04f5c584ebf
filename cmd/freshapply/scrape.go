package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/freshapply/internal/observability"
	"github.com/jonathan/freshapply/internal/scrape"
)

var (
	scrapeNoDigest bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape every configured board and store new postings",
	Long: `Fetch every configured job board, keep in-scope product roles, store them
with repost detection, and write today's digest.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeNoDigest, "no-digest", false, "Skip writing the digest after scraping")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runner := a.runner(ctx)
	runner.Progress = func(res scrape.BoardResult) {
		if res.Err != nil {
			fmt.Fprintf(out, "[%d/%d] %s: error: %v\n", res.Index, res.Total, res.Board, res.Err)
			return
		}
		fmt.Fprintf(out, "[%d/%d] %s: %d jobs\n", res.Index, res.Total, res.Board, res.Jobs)
	}

	stats, err := runner.Run(ctx, clock())
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	fmt.Fprintf(out, "Scrape complete: %s\n", stats)
	if verbose {
		observability.NewPrinter(out).PrintStats(&stats)
	}

	if scrapeNoDigest {
		return nil
	}
	path, _, err := a.writeDigest(ctx, clock())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Digest written to %s\n", path)
	return nil
}
