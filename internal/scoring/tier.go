package scoring

import "regexp"

// Tier is the priority bucket for a posting.
type Tier string

const (
	ApplyToday    Tier = "Apply Today"
	ApplyThisWeek Tier = "Apply This Week"
	WatchList     Tier = "Watch List"
)

// Tiers lists tiers from most to least urgent.
var Tiers = []Tier{ApplyToday, ApplyThisWeek, WatchList}

// Rank orders tiers; lower is more urgent. Unknown tiers sort last.
func (t Tier) Rank() int {
	for i, tier := range Tiers {
		if t == tier {
			return i
		}
	}
	return len(Tiers)
}

// ParseTier maps a tier name back to a Tier.
func ParseTier(s string) (Tier, bool) {
	for _, tier := range Tiers {
		if string(tier) == s {
			return tier, true
		}
	}
	return "", false
}

// Thresholds are the minimum scores for the two upper tiers.
type Thresholds struct {
	TodayFreshness int `json:"today_freshness" yaml:"today_freshness"`
	TodayFit       int `json:"today_fit" yaml:"today_fit"`
	WeekFreshness  int `json:"week_freshness" yaml:"week_freshness"`
	WeekFit        int `json:"week_fit" yaml:"week_fit"`
}

// DefaultThresholds returns the 70/40 and 50/25 cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TodayFreshness: 70,
		TodayFit:       40,
		WeekFreshness:  50,
		WeekFit:        25,
	}
}

var aiKeywordRe = regexp.MustCompile(`(?i)\bai\b|\bartificial.intelligence|\bml\b|\bllm\b|\bmachine.learn`)

// HasAI reports whether text mentions AI or machine learning.
func HasAI(text string) bool {
	return aiKeywordRe.MatchString(text)
}

// TierClassifier assigns tiers. It is immutable and safe for concurrent use.
type TierClassifier struct {
	th Thresholds
}

// NewTierClassifier returns a classifier using th.
func NewTierClassifier(th Thresholds) *TierClassifier {
	return &TierClassifier{th: th}
}

var defaultTierClassifier = NewTierClassifier(DefaultThresholds())

// DefaultTierClassifier returns the classifier using DefaultThresholds.
func DefaultTierClassifier() *TierClassifier {
	return defaultTierClassifier
}

// Thresholds returns the configured cut-offs.
func (c *TierClassifier) Thresholds() Thresholds {
	return c.th
}

// Classify assigns a tier from the two scores and the posting's title and
// description text.
func (c *TierClassifier) Classify(freshness, fit int, text string) Tier {
	return c.ClassifyScores(freshness, fit, HasAI(text))
}

// ClassifyScores evaluates the tier rules in order; the first that holds wins.
func (c *TierClassifier) ClassifyScores(freshness, fit int, hasAI bool) Tier {
	if freshness >= c.th.TodayFreshness && fit >= c.th.TodayFit && hasAI {
		return ApplyToday
	}
	if freshness >= c.th.WeekFreshness && fit >= c.th.WeekFit {
		return ApplyThisWeek
	}
	return WatchList
}

// ClassifyTier uses the default thresholds.
func ClassifyTier(freshness, fit int, text string) Tier {
	return defaultTierClassifier.Classify(freshness, fit, text)
}

// Combined blends freshness and fit for ranking within a tier.
func Combined(freshness, fit int) float64 {
	return float64(freshness)*0.4 + float64(fit)*0.6
}
