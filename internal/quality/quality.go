// Package quality audits stored postings for pipeline defects: unsanitized
// HTML, inconsistent scores, implausible published dates and misclassified
// work types.
package quality

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/location"
	"github.com/jonathan/freshapply/internal/sanitize"
	"github.com/jonathan/freshapply/internal/scoring"
	"github.com/jonathan/freshapply/internal/store"
)

// Severity grades a finding.
type Severity string

const (
	SeverityFail Severity = "fail"
	SeverityWarn Severity = "warn"
)

// Check names the audit that produced a finding.
type Check string

const (
	CheckSanitizer Check = "sanitizer"
	CheckBreakdown Check = "breakdown"
	CheckBucketCap Check = "bucket_cap"
	CheckTier      Check = "tier"
	CheckPublished Check = "published_at"
	CheckWorkType  Check = "work_type"
)

// Finding is one defect in one posting.
type Finding struct {
	PostingID string   `json:"posting_id"`
	Check     Check    `json:"check"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// Report is the result of an audit.
type Report struct {
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings"`
}

// Failures counts fail-severity findings.
func (r Report) Failures() int {
	return r.count(SeverityFail)
}

// Warnings counts warn-severity findings.
func (r Report) Warnings() int {
	return r.count(SeverityWarn)
}

// Passed reports whether the audit found no failures.
func (r Report) Passed() bool {
	return r.Failures() == 0
}

func (r Report) count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// Print writes a plain-text report.
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Audited %d postings: %d failures, %d warnings\n", r.Checked, r.Failures(), r.Warnings())
	for _, f := range r.Findings {
		fmt.Fprintf(w, "  [%s] %s %s: %s\n", strings.ToUpper(string(f.Severity)), f.PostingID, f.Check, f.Message)
	}
}

var remoteEligibleRe = regexp.MustCompile(`(?i)remote\s*(?:eligible|friendly|ok|okay|option|possible|available)`)

// Audit evaluates every record as of now and checks the results.
func Audit(records []store.Record, now time.Time, e *engine.Evaluator) Report {
	report := Report{Checked: len(records)}
	th := e.Thresholds()

	for _, r := range records {
		ev := e.Evaluate(r.Posting(), now)
		add := func(check Check, sev Severity, format string, args ...any) {
			report.Findings = append(report.Findings, Finding{
				PostingID: r.ID,
				Check:     check,
				Severity:  sev,
				Message:   fmt.Sprintf(format, args...),
			})
		}

		// Sanitizer contract on the stored HTML
		problems, err := sanitize.Audit(r.DescriptionHTML)
		if err != nil {
			add(CheckSanitizer, SeverityFail, "unparseable description HTML: %v", err)
		}
		for _, p := range problems {
			add(CheckSanitizer, SeverityFail, "%s", p)
		}

		checkBreakdown(ev, add)

		if want := expectedTier(ev, th); want != ev.Tier {
			add(CheckTier, SeverityFail, "tier %q but freshness %d, fit %d, AI %t imply %q",
				ev.Tier, ev.FreshnessScore, ev.FitScore, ev.HasAI, want)
		}

		checkPublished(r, now, add)

		if ev.WorkType == location.OnSite {
			if m := remoteEligibleRe.FindString(r.Description); m != "" {
				add(CheckWorkType, SeverityWarn, "classified On-site but description says %q", m)
			}
		}
	}
	return report
}

type addFunc func(check Check, sev Severity, format string, args ...any)

func checkBreakdown(ev engine.Evaluation, add addFunc) {
	sum := 0
	for _, b := range ev.FitBreakdown {
		sum += b.Weight
		if b.Weight > b.MaxPts {
			add(CheckBucketCap, SeverityFail, "%s weight %d exceeds cap %d", b.Bucket, b.Weight, b.MaxPts)
		}
		if b.Hits == 0 && (b.Weight != 0 || b.MatchedTerms != nil) {
			add(CheckBreakdown, SeverityFail, "%s has no hits but weight %d", b.Bucket, b.Weight)
		}
	}
	if total := min(scoring.MaxFit, sum); total != ev.FitScore {
		add(CheckBreakdown, SeverityFail, "breakdown sums to %d but fit score is %d", total, ev.FitScore)
	}
}

func expectedTier(ev engine.Evaluation, th scoring.Thresholds) scoring.Tier {
	switch {
	case ev.FreshnessScore >= th.TodayFreshness && ev.FitScore >= th.TodayFit && ev.HasAI:
		return scoring.ApplyToday
	case ev.FreshnessScore >= th.WeekFreshness && ev.FitScore >= th.WeekFit:
		return scoring.ApplyThisWeek
	default:
		return scoring.WatchList
	}
}

func checkPublished(r store.Record, now time.Time, add addFunc) {
	if r.PublishedAt == "" {
		return
	}
	pub, ok := scoring.ParseTimestamp(r.PublishedAt)
	if !ok {
		add(CheckPublished, SeverityWarn, "unparseable published date %q", r.PublishedAt)
		return
	}
	if pub.After(now.Add(scoring.FutureTolerance)) {
		add(CheckPublished, SeverityFail, "published %s is in the future", r.PublishedAt)
		return
	}
	if pub.Year() < scoring.EarliestPlausibleYear {
		add(CheckPublished, SeverityWarn, "published %s predates %d", r.PublishedAt, scoring.EarliestPlausibleYear)
	}
	if first, ok := scoring.ParseTimestamp(r.FirstSeenAt); ok && pub.After(first.Add(scoring.AfterSeenTolerance)) {
		add(CheckPublished, SeverityFail, "published %s after first seen %s", r.PublishedAt, r.FirstSeenAt)
	}
}
