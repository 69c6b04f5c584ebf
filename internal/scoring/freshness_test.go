package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func hoursAgo(h float64) string {
	return fixedNow.Add(-time.Duration(h * float64(time.Hour))).Format(time.RFC3339)
}

func TestFreshnessScore_Steps(t *testing.T) {
	tests := []struct {
		hours    float64
		reposted bool
		expected int
	}{
		{hours: 2, expected: 100},
		{hours: 12, expected: 90},
		{hours: 30, expected: 80},
		{hours: 60, expected: 70},
		{hours: 120, expected: 55},
		{hours: 240, expected: 35},
		{hours: 500, expected: 15},
		{hours: 1000, expected: 5},
		{hours: 2, reposted: true, expected: 85},
		{hours: 120, reposted: true, expected: 40},
		{hours: 1000, reposted: true, expected: 0},
	}

	for _, tt := range tests {
		got := FreshnessScore(hoursAgo(tt.hours), fixedNow, tt.reposted)
		assert.Equal(t, tt.expected, got, "hours=%v reposted=%v", tt.hours, tt.reposted)
	}
}

func TestFreshnessForAge_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		expected int
	}{
		{"exactly 6h", 6 * time.Hour, 100},
		{"just past 6h", 6*time.Hour + time.Second, 90},
		{"exactly 24h", 24 * time.Hour, 90},
		{"just past 24h", 24*time.Hour + time.Second, 80},
		{"exactly 48h", 48 * time.Hour, 80},
		{"just past 48h", 48*time.Hour + time.Second, 70},
		{"exactly 72h", 72 * time.Hour, 70},
		{"just past 72h", 72*time.Hour + time.Second, 55},
		{"exactly 168h", 168 * time.Hour, 55},
		{"just past 168h", 168*time.Hour + time.Second, 35},
		{"exactly 336h", 336 * time.Hour, 35},
		{"just past 336h", 336*time.Hour + time.Second, 15},
		{"exactly 720h", 720 * time.Hour, 15},
		{"just past 720h", 720*time.Hour + time.Minute, 5},
		{"future timestamp", -3 * time.Hour, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FreshnessForAge(tt.age, false))
		})
	}
}

func TestFreshnessForAge_NonIncreasingWithRepostPenalty(t *testing.T) {
	prev := FreshnessForAge(0, false)
	for age := time.Duration(0); age <= 800*time.Hour; age += 30 * time.Minute {
		plain := FreshnessForAge(age, false)
		assert.LessOrEqual(t, plain, prev, "age=%v", age)
		assert.Equal(t, max(0, plain-RepostPenalty), FreshnessForAge(age, true), "age=%v", age)
		prev = plain
	}
}

func TestFreshnessScore_Unparseable(t *testing.T) {
	for _, input := range []string{"", "   ", "yesterday", "2026-13-45"} {
		assert.Equal(t, 0, FreshnessScore(input, fixedNow, false), "input %q", input)
		assert.Equal(t, 0, FreshnessScore(input, fixedNow, true), "input %q", input)
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2026-03-15T10:00:00Z", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"2026-03-15T10:00:00.123456+00:00", time.Date(2026, 3, 15, 10, 0, 0, 123456000, time.UTC)},
		{"2026-03-15T10:00:00", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"2026-03-15 10:00:00", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.input)
		assert.True(t, ok, tt.input)
		assert.True(t, tt.expected.Equal(got), "%s parsed as %s", tt.input, got)
	}
}

func TestFreshnessAnchor(t *testing.T) {
	firstSeen := hoursAgo(10)

	tests := []struct {
		name      string
		published string
		expected  string
	}{
		{"no published date", "", firstSeen},
		{"unparseable published date", "soon", firstSeen},
		{"published before first seen", hoursAgo(100), hoursAgo(100)},
		{"published within an hour after first seen", hoursAgo(9.5), hoursAgo(9.5)},
		{"published well after first seen", hoursAgo(2), firstSeen},
		{"published in the far future", fixedNow.Add(48 * time.Hour).Format(time.RFC3339), firstSeen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FreshnessAnchor(firstSeen, tt.published, fixedNow))
		})
	}
}
