package scoring

import (
	"strings"
	"time"
)

// RepostPenalty is subtracted from the freshness of a reposted listing.
const RepostPenalty = 15

// staleScore applies past the last step.
const staleScore = 5

type freshnessStep struct {
	maxHours float64
	score    int
}

var freshnessSteps = []freshnessStep{
	{maxHours: 6, score: 100},
	{maxHours: 24, score: 90},
	{maxHours: 48, score: 80},
	{maxHours: 72, score: 70},
	{maxHours: 168, score: 55},
	{maxHours: 336, score: 35},
	{maxHours: 720, score: 15},
}

// timestampLayouts are tried in order; layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses ISO-8601 style timestamps as stored by boards and the store.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FreshnessForAge maps a listing age onto the freshness staircase. Negative ages
// count as zero.
func FreshnessForAge(age time.Duration, reposted bool) int {
	hours := max(0, age.Hours())
	score := staleScore
	for _, step := range freshnessSteps {
		if hours <= step.maxHours {
			score = step.score
			break
		}
	}
	if reposted {
		score = max(0, score-RepostPenalty)
	}
	return score
}

// FreshnessScore scores a listing first seen at firstSeenAt. An unparseable
// timestamp scores 0.
func FreshnessScore(firstSeenAt string, now time.Time, reposted bool) int {
	first, ok := ParseTimestamp(firstSeenAt)
	if !ok {
		return 0
	}
	return FreshnessForAge(now.Sub(first), reposted)
}

// Published-date sanity bounds.
const (
	FutureTolerance       = 24 * time.Hour
	AfterSeenTolerance    = time.Hour
	EarliestPlausibleYear = 2020
)

// FreshnessAnchor picks the timestamp freshness is measured from. The board's
// published date is used when it parses, is not in the future and does not
// postdate first sighting; otherwise firstSeenAt.
func FreshnessAnchor(firstSeenAt, publishedAt string, now time.Time) string {
	pub, ok := ParseTimestamp(publishedAt)
	if !ok {
		return firstSeenAt
	}
	if pub.After(now.Add(FutureTolerance)) {
		return firstSeenAt
	}
	if first, ok := ParseTimestamp(firstSeenAt); ok && pub.After(first.Add(AfterSeenTolerance)) {
		return firstSeenAt
	}
	return publishedAt
}
