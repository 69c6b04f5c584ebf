// Package engine evaluates a job posting end to end: sanitization, salary,
// location, fit, freshness and tier.
package engine

import (
	"context"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/freshapply/internal/location"
	"github.com/jonathan/freshapply/internal/sanitize"
	"github.com/jonathan/freshapply/internal/scoring"
	"github.com/jonathan/freshapply/internal/titles"
)

// Posting is the input to an evaluation. Every text field may be empty.
type Posting struct {
	ID               string `json:"id,omitempty"`
	Company          string `json:"company,omitempty"`
	Title            string `json:"title" validate:"required,max=500"`
	URL              string `json:"url,omitempty" validate:"omitempty,url"`
	RawHTML          string `json:"rawHtml,omitempty"`
	PlainDescription string `json:"plainDescription,omitempty"`
	Location         string `json:"location,omitempty"`
	FirstSeenAt      string `json:"firstSeenAt"`
	LastSeenAt       string `json:"lastSeenAt,omitempty"`
	Reposted         bool   `json:"reposted"`
	PublishedAt      string `json:"publishedAt,omitempty"`
}

// Evaluation holds everything derived from a Posting.
type Evaluation struct {
	ID          string `json:"id,omitempty"`
	Company     string `json:"company,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Location    string `json:"location"`
	FirstSeenAt string `json:"firstSeenAt"`
	LastSeenAt  string `json:"lastSeenAt,omitempty"`
	Reposted    bool   `json:"reposted"`

	CleanedHTML     string              `json:"cleanedHtml"`
	PlainText       string              `json:"plainText"`
	ExtractedSalary string              `json:"extractedSalary"`
	CountrySet      location.CountrySet `json:"countrySet"`
	IsRegionOnly    bool                `json:"isRegionOnly"`
	WorkType        location.WorkType   `json:"workType"`
	LocationFlag    location.Flag       `json:"locationFlag"`

	FitScore        int                  `json:"fitScore"`
	FitBreakdown    scoring.Breakdown    `json:"fitBreakdown"`
	FreshnessScore  int                  `json:"freshnessScore"`
	FreshnessAnchor string               `json:"freshnessAnchor"`
	HasAI           bool                 `json:"hasAI"`
	Tier            scoring.Tier         `json:"tier"`
	Combined        float64              `json:"combined"`
	TitleVerdict    titles.Verdict       `json:"titleVerdict"`
	Suggestions     []scoring.Suggestion `json:"suggestions,omitempty"`
}

// Options configure an Evaluator.
type Options struct {
	UserCountry string
	UserCity    string
	// PreferPublishedAt measures freshness from the board's published date when
	// it is plausible.
	PreferPublishedAt bool
	Thresholds        *scoring.Thresholds
}

// Evaluator is immutable after New and safe for concurrent use.
type Evaluator struct {
	opts     Options
	resolver *location.Resolver
	titles   *titles.Classifier
	fit      *scoring.FitScorer
	tiers    *scoring.TierClassifier
}

// New returns an Evaluator using the default rule tables.
func New(opts Options) *Evaluator {
	tiers := scoring.DefaultTierClassifier()
	if opts.Thresholds != nil {
		tiers = scoring.NewTierClassifier(*opts.Thresholds)
	}
	return &Evaluator{
		opts:     opts,
		resolver: location.Default(),
		titles:   titles.Default(),
		fit:      scoring.DefaultFitScorer(),
		tiers:    tiers,
	}
}

// Thresholds returns the tier thresholds in use.
func (e *Evaluator) Thresholds() scoring.Thresholds {
	return e.tiers.Thresholds()
}

// InScope reports whether a title passes the role gate.
func (e *Evaluator) InScope(title string) bool {
	return e.titles.InScope(title)
}

// Evaluate derives an Evaluation from p as of now.
func (e *Evaluator) Evaluate(p Posting, now time.Time) Evaluation {
	// 1. Text
	plain := p.PlainDescription
	if plain == "" {
		plain = sanitize.StripHTML(p.RawHTML)
	}
	cleaned := sanitize.SanitizeHTML(p.RawHTML)
	salary := sanitize.ExtractSalary(plain)

	// 2. Location
	countries := e.resolver.DetectCountries(p.Location)
	workType := e.resolver.ClassifyWorkType(p.Location, plain)
	flag := e.resolver.ClassifyFlag(p.Location, workType, e.opts.UserCountry, e.opts.UserCity)

	// 3. Scores
	breakdown := e.fit.Breakdown(p.Title, plain)
	fit := breakdown.Total()

	anchor := p.FirstSeenAt
	if e.opts.PreferPublishedAt {
		anchor = scoring.FreshnessAnchor(p.FirstSeenAt, p.PublishedAt, now)
	}
	fresh := scoring.FreshnessScore(anchor, now, p.Reposted)

	hasAI := scoring.HasAI(p.Title + " " + plain)

	return Evaluation{
		ID:          p.ID,
		Company:     p.Company,
		Title:       p.Title,
		URL:         p.URL,
		Location:    p.Location,
		FirstSeenAt: p.FirstSeenAt,
		LastSeenAt:  p.LastSeenAt,
		Reposted:    p.Reposted,

		CleanedHTML:     cleaned,
		PlainText:       plain,
		ExtractedSalary: salary,
		CountrySet:      countries,
		IsRegionOnly:    e.resolver.IsRegionOnly(p.Location),
		WorkType:        workType,
		LocationFlag:    flag,

		FitScore:        fit,
		FitBreakdown:    breakdown,
		FreshnessScore:  fresh,
		FreshnessAnchor: anchor,
		HasAI:           hasAI,
		Tier:            e.tiers.ClassifyScores(fresh, fit, hasAI),
		Combined:        round1(scoring.Combined(fresh, fit)),
		TitleVerdict:    e.titles.Classify(p.Title),
		Suggestions:     scoring.Suggest(breakdown, fit),
	}
}

// EvaluateAll evaluates postings in parallel, at most limit at a time, and
// returns results in input order. limit <= 0 uses GOMAXPROCS.
func (e *Evaluator) EvaluateAll(ctx context.Context, postings []Posting, now time.Time, limit int) ([]Evaluation, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]Evaluation, len(postings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range postings {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Evaluate(p, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
