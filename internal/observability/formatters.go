// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/quality"
	"github.com/jonathan/freshapply/internal/scrape"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintEvaluation outputs a human-readable summary of one evaluation.
func (p *Printer) PrintEvaluation(ev *engine.Evaluation) {
	if ev == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:     %s\n", ev.Title))
	if ev.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:   %s\n", ev.Company))
	}
	sb.WriteString(fmt.Sprintf("Location:  %s (%s)\n", orDash(ev.Location), ev.WorkType))
	if ev.LocationFlag != "" {
		sb.WriteString(fmt.Sprintf("Flag:      %s\n", ev.LocationFlag))
	}
	if ev.ExtractedSalary != "" {
		sb.WriteString(fmt.Sprintf("Salary:    %s\n", ev.ExtractedSalary))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Tier:      %s\n", ev.Tier))
	sb.WriteString(fmt.Sprintf("Freshness: %d   Fit: %d   Combined: %.1f\n", ev.FreshnessScore, ev.FitScore, ev.Combined))
	sb.WriteString(fmt.Sprintf("In scope:  %t\n", ev.TitleVerdict.InScope))
	sb.WriteString("\n")

	sb.WriteString("Fit breakdown:\n")
	for _, b := range ev.FitBreakdown {
		sb.WriteString(fmt.Sprintf("  • %-20s %2d/%-2d", b.Bucket, b.Weight, b.MaxPts))
		if b.MatchedTerms != nil {
			sb.WriteString("  " + *b.MatchedTerms)
		}
		sb.WriteString("\n")
	}

	p.printBox("EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggestions outputs resume suggestions, highest priority first.
func (p *Printer) PrintSuggestions(ev *engine.Evaluation) {
	if ev == nil || len(ev.Suggestions) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range ev.Suggestions {
		sb.WriteString(fmt.Sprintf("%s (%s, +%d pts)\n", s.Bucket, s.Status, s.Priority))
		sb.WriteString(fmt.Sprintf("  Keywords: %s\n", s.Keywords))
		count := min(len(s.Bullets), 2)
		for j := 0; j < count; j++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", s.Bullets[j]))
		}
		if i < len(ev.Suggestions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RESUME SUGGESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs a scrape run summary.
func (p *Printer) PrintStats(stats *scrape.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", stats.RunID))
	sb.WriteString(fmt.Sprintf("Boards:   %d\n", stats.Boards))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", stats.Finished.Sub(stats.Started).Round(time.Millisecond)))
	sb.WriteString("\n")
	sb.WriteString(stats.String())

	p.printBox("SCRAPE SUMMARY", sb.String())
}

// PrintAudit outputs the first failures and warnings of a quality report.
func (p *Printer) PrintAudit(report *quality.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Checked:  %d postings\n", report.Checked))
	sb.WriteString(fmt.Sprintf("Failures: %d   Warnings: %d\n", report.Failures(), report.Warnings()))

	count := min(len(report.Findings), maxItemsToShow)
	if count > 0 {
		sb.WriteString("\n")
	}
	for i := 0; i < count; i++ {
		f := report.Findings[i]
		sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", f.Severity, f.PostingID, f.Message))
	}
	if len(report.Findings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Findings)-maxItemsToShow))
	}

	p.printBox("QUALITY AUDIT", strings.TrimSuffix(sb.String(), "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
