package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/freshapply/internal/observability"
	"github.com/jonathan/freshapply/internal/quality"
)

var (
	auditJSON bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check stored postings against the scoring and sanitizer rules",
	Long: `Re-evaluate every stored posting and report sanitizer leaks, breakdown
mismatches, tier rule violations, implausible published dates and likely
work-type misclassifications. Exits non-zero when any check fails.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(ctx); err != nil {
		return err
	}

	records, err := a.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list postings: %w", err)
	}
	report := quality.Audit(records, clock(), a.evaluator)

	out := cmd.OutOrStdout()
	switch {
	case auditJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	case verbose:
		observability.NewPrinter(out).PrintAudit(&report)
	default:
		report.Print(out)
	}

	if !report.Passed() {
		return fmt.Errorf("audit failed: %d failures", report.Failures())
	}
	return nil
}
