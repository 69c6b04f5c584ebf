package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_StrongFitGetsNone(t *testing.T) {
	tc := curatedFitCases[0]
	breakdown := DefaultFitScorer().Breakdown(tc.title, tc.description)

	assert.Nil(t, Suggest(breakdown, breakdown.Total()))
}

func TestSuggest_MissingAndPartial(t *testing.T) {
	tc := curatedFitCases[3] // director proptech: 0 AI, 10 seniority, capped domain and industry
	breakdown := DefaultFitScorer().Breakdown(tc.title, tc.description)

	got := Suggest(breakdown, breakdown.Total())

	require.Len(t, got, 2)
	assert.Equal(t, "AI / ML", got[0].Bucket)
	assert.Equal(t, StatusMissing, got[0].Status)
	assert.Equal(t, 30, got[0].Priority)
	assert.NotEmpty(t, got[0].Bullets)
	assert.NotEmpty(t, got[0].Learning)

	assert.Equal(t, "Seniority", got[1].Bucket)
	assert.Equal(t, StatusPartial, got[1].Status)
	assert.Equal(t, 15, got[1].Priority)
}

func TestSuggest_ZeroFitCoversEveryBucket(t *testing.T) {
	breakdown := DefaultFitScorer().Breakdown("Product Manager", "checkout funnels")

	got := Suggest(breakdown, 0)

	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Priority, got[i].Priority)
	}
	// Equal priorities keep bucket order.
	assert.Equal(t, "Seniority", got[1].Bucket)
	assert.Equal(t, "Domain Fit", got[2].Bucket)
}
