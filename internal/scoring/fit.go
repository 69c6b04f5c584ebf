// Package scoring rates job postings: keyword fit, posting freshness, and the
// priority tier that combines them.
package scoring

import (
	"regexp"
	"strings"
)

// MaxFit caps the total fit score.
const MaxFit = 100

// Bucket is a group of related keyword patterns. Each distinct pattern that matches
// earns BasePoints, up to MaxPoints for the bucket.
type Bucket struct {
	Name       string
	BasePoints int
	MaxPoints  int
	Patterns   []string
}

// DefaultBuckets returns the keyword buckets for AI product-management roles.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{
			Name: "AI / ML", BasePoints: 8, MaxPoints: 30,
			Patterns: []string{
				`\bai\b`, `\bartificial\s+intelligence\b`, `\bmachine\s+learning\b`,
				`\bml\b`, `\bllm\b`, `\blarge\s+language\s+model`,
				`\bgenerative\b`, `\bdeep\s+learning\b`, `\bnlp\b`,
				`\bfoundation\s+model`, `\bgpt\b`, `\btransformer\b`,
			},
		},
		{
			Name: "Seniority", BasePoints: 10, MaxPoints: 25,
			Patterns: []string{
				`\bsenior\b`, `\bstaff\b`, `\bprincipal\b`, `\bdirector\b`,
				`\blead\b`, `\bhead\s+of\b`, `\bvp\b`,
			},
		},
		{
			Name: "Domain Fit", BasePoints: 7, MaxPoints: 25,
			Patterns: []string{
				`\bplatform\b`, `\benterprise\b`, `\binfrastructure\b`,
				`\bworkflow\b`, `\bautomation\b`, `\bagent\b`, `\bagentic\b`,
			},
		},
		{
			Name: "Industry Verticals", BasePoints: 10, MaxPoints: 20,
			Patterns: []string{
				`\breal\s+estate\b`, `\bproptech\b`,
				`\bhealthcare\b`, `\bhealth\s+tech\b`, `\bclinical\b`,
			},
		},
	}
}

// BucketScore is one line of a fit breakdown.
type BucketScore struct {
	Bucket       string  `json:"bucket"`
	Weight       int     `json:"weight"`
	MaxPts       int     `json:"maxPts"`
	Hits         int     `json:"hits"`
	MatchedTerms *string `json:"matchedTerms"`
}

// Breakdown lists bucket scores in bucket order.
type Breakdown []BucketScore

// Total sums bucket weights, capped at MaxFit.
func (b Breakdown) Total() int {
	total := 0
	for _, s := range b {
		total += s.Weight
	}
	return min(MaxFit, total)
}

type compiledBucket struct {
	Bucket
	patterns []*regexp.Regexp
}

// FitScorer scores text against keyword buckets. It is immutable and safe for
// concurrent use.
type FitScorer struct {
	buckets []compiledBucket
}

// NewFitScorer compiles the bucket patterns case-insensitively. It panics on an
// invalid pattern.
func NewFitScorer(buckets []Bucket) *FitScorer {
	s := &FitScorer{}
	for _, b := range buckets {
		cb := compiledBucket{Bucket: b}
		for _, p := range b.Patterns {
			cb.patterns = append(cb.patterns, regexp.MustCompile(`(?i)`+p))
		}
		s.buckets = append(s.buckets, cb)
	}
	return s
}

var defaultFitScorer = NewFitScorer(DefaultBuckets())

// DefaultFitScorer returns the scorer built from DefaultBuckets.
func DefaultFitScorer() *FitScorer {
	return defaultFitScorer
}

// Breakdown scores title and description bucket by bucket. Hits count distinct
// patterns, not occurrences.
func (s *FitScorer) Breakdown(title, description string) Breakdown {
	text := title + " " + description
	breakdown := make(Breakdown, 0, len(s.buckets))
	for _, b := range s.buckets {
		var matched []string
		for _, re := range b.patterns {
			if m := re.FindString(text); m != "" {
				matched = append(matched, m)
			}
		}
		score := BucketScore{
			Bucket: b.Name,
			Weight: min(b.MaxPoints, len(matched)*b.BasePoints),
			MaxPts: b.MaxPoints,
			Hits:   len(matched),
		}
		if len(matched) > 0 {
			joined := strings.Join(matched, ", ")
			score.MatchedTerms = &joined
		}
		breakdown = append(breakdown, score)
	}
	return breakdown
}

// Score returns the capped fit score, always equal to Breakdown(...).Total().
func (s *FitScorer) Score(title, description string) int {
	return s.Breakdown(title, description).Total()
}

// FitScore scores with the default buckets.
func FitScore(title, description string) int {
	return defaultFitScorer.Score(title, description)
}
