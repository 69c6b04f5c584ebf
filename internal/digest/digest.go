// Package digest renders the daily Markdown digest and HTML dashboard of evaluated
// postings.
package digest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/scoring"
)

var tierEmoji = map[scoring.Tier]string{
	scoring.ApplyToday:    "🔴",
	scoring.ApplyThisWeek: "🟡",
	scoring.WatchList:     "⚪",
}

// Digest is a ranked snapshot of evaluated postings.
type Digest struct {
	Generated   time.Time
	Evaluations []engine.Evaluation
	// DisplayName maps a company slug to its display name.
	DisplayName func(company string) string
}

// New returns a digest with evaluations in digest order. names may be nil, in
// which case ats.DisplayName is used.
func New(generated time.Time, evals []engine.Evaluation, names func(string) string) Digest {
	sorted := make([]engine.Evaluation, len(evals))
	copy(sorted, evals)
	Sort(sorted)
	if names == nil {
		names = ats.DisplayName
	}
	return Digest{Generated: generated.UTC(), Evaluations: sorted, DisplayName: names}
}

// Sort orders evaluations by tier, then combined score descending, then title.
func Sort(evals []engine.Evaluation) {
	sort.SliceStable(evals, func(i, j int) bool {
		a, b := evals[i], evals[j]
		if a.Tier.Rank() != b.Tier.Rank() {
			return a.Tier.Rank() < b.Tier.Rank()
		}
		if a.Combined != b.Combined {
			return a.Combined > b.Combined
		}
		return a.Title < b.Title
	})
}

// Counts returns the number of postings per tier.
func (d Digest) Counts() map[scoring.Tier]int {
	counts := map[scoring.Tier]int{}
	for _, e := range d.Evaluations {
		counts[e.Tier]++
	}
	return counts
}

// Filter returns the evaluations in tier, or all of them when tier is empty.
func (d Digest) Filter(tier scoring.Tier) []engine.Evaluation {
	if tier == "" {
		return d.Evaluations
	}
	var out []engine.Evaluation
	for _, e := range d.Evaluations {
		if e.Tier == tier {
			out = append(out, e)
		}
	}
	return out
}

// FileName returns the digest file name for the generation date.
func (d Digest) FileName() string {
	return fmt.Sprintf("digest-%s.md", d.Generated.Format(time.DateOnly))
}

// Render writes the digest as Markdown.
func (d Digest) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	line("# FreshApply Daily Digest — %s", d.Generated.Format(time.DateOnly))
	line("")
	line("*Generated %s · %s PM roles tracked*", d.Generated.Format("2006-01-02 15:04 UTC"), humanize.Comma(int64(len(d.Evaluations))))
	line("")

	counts := d.Counts()
	for _, tier := range scoring.Tiers {
		if n := counts[tier]; n > 0 {
			line("- **%s**: %s roles", tier, humanize.Comma(int64(n)))
		}
	}
	line("")

	var current scoring.Tier
	for _, e := range d.Evaluations {
		if e.Tier != current {
			current = e.Tier
			line("---")
			line("")
			line("## %s %s", tierEmoji[current], current)
			line("")
		}
		d.renderEntry(line, e)
	}

	if len(d.Evaluations) == 0 {
		line("*No PM roles found across tracked boards. Try running again later.*")
	}
	return bw.Flush()
}

func (d Digest) renderEntry(line func(string, ...any), e engine.Evaluation) {
	link := e.Title
	if e.URL != "" {
		link = fmt.Sprintf("[%s](%s)", e.Title, e.URL)
	}
	repost := ""
	if e.Reposted {
		repost = " *(repost)*"
	}
	loc := ""
	if e.Location != "" {
		loc = " · " + e.Location
	}

	line("### %s%s", link, repost)
	line("**%s**%s", d.DisplayName(e.Company), loc)
	line("Freshness: **%d** · Fit: **%d** · Combined: **%.0f**", e.FreshnessScore, e.FitScore, e.Combined)

	var extras []string
	if e.ExtractedSalary != "" {
		extras = append(extras, "Salary: "+e.ExtractedSalary)
	}
	if e.LocationFlag != "" {
		extras = append(extras, "Flag: "+string(e.LocationFlag))
	}
	if len(extras) > 0 {
		line("%s", strings.Join(extras, " · "))
	}

	line("First seen: %s · Last seen: %s", datePart(e.FirstSeenAt), datePart(e.LastSeenAt))
	line("")
}

// datePart returns the YYYY-MM-DD prefix of a timestamp.
func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// WriteFile renders d into dir/FileName(), creating dir, and returns the path.
func WriteFile(dir string, d Digest) (string, error) {
	return writeFile(dir, d.FileName(), d.Render)
}

// WriteHTMLFile renders the dashboard into dir/DashboardFileName(), creating dir,
// and returns the path.
func WriteHTMLFile(dir string, d Digest) (string, error) {
	return writeFile(dir, d.DashboardFileName(), d.RenderHTML)
}

func writeFile(dir, name string, render func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create digest directory: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create digest file: %w", err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write digest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write digest: %w", err)
	}
	return path, nil
}
