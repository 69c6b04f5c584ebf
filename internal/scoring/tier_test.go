package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTier(t *testing.T) {
	const aiText = "Senior PM, AI Platform"
	const plainText = "Product Manager, Checkout"

	tests := []struct {
		name      string
		freshness int
		fit       int
		text      string
		expected  Tier
	}{
		{"fresh, strong fit, AI", 80, 50, aiText, ApplyToday},
		{"at today thresholds", 70, 40, aiText, ApplyToday},
		{"fresh, strong fit, no AI", 80, 50, plainText, ApplyThisWeek},
		{"moderate without AI", 60, 30, plainText, ApplyThisWeek},
		{"just below today freshness", 69, 40, aiText, ApplyThisWeek},
		{"at week thresholds", 50, 25, plainText, ApplyThisWeek},
		{"week fit too low", 90, 24, aiText, WatchList},
		{"stale and weak", 20, 10, aiText, WatchList},
		{"stale but strong", 35, 90, aiText, WatchList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTier(tt.freshness, tt.fit, tt.text))
		})
	}
}

func TestHasAI(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"AI Platform", true},
		{"artificial intelligence", true},
		{"Machine Learning team", true},
		{"machine-learning infra", true},
		{"ML Ops", true},
		{"LLM evaluation", true},
		{"email marketing", false},
		{"HTML templates", false},
		{"Checkout flow", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, HasAI(tt.text), tt.text)
	}
}

func TestTierClassifier_CustomThresholds(t *testing.T) {
	c := NewTierClassifier(Thresholds{TodayFreshness: 90, TodayFit: 60, WeekFreshness: 10, WeekFit: 10})

	assert.Equal(t, ApplyThisWeek, c.ClassifyScores(80, 50, true))
	assert.Equal(t, ApplyToday, c.ClassifyScores(90, 60, true))
	assert.Equal(t, WatchList, c.ClassifyScores(5, 50, true))
	assert.Equal(t, 90, c.Thresholds().TodayFreshness)
}

func TestTierRankAndParse(t *testing.T) {
	assert.Equal(t, 0, ApplyToday.Rank())
	assert.Equal(t, 1, ApplyThisWeek.Rank())
	assert.Equal(t, 2, WatchList.Rank())
	assert.Equal(t, 3, Tier("Someday").Rank())

	tier, ok := ParseTier("Watch List")
	assert.True(t, ok)
	assert.Equal(t, WatchList, tier)

	_, ok = ParseTier("watch list")
	assert.False(t, ok)
}

func TestCombined(t *testing.T) {
	assert.InDelta(t, 100.0, Combined(100, 100), 0.001)
	assert.InDelta(t, 80.0, Combined(50, 100), 0.001)
	assert.InDelta(t, 76.0, Combined(100, 60), 0.001)
	assert.InDelta(t, 0.0, Combined(0, 0), 0.001)
}
