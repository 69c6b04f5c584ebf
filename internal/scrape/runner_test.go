package scrape

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/metrics"
	"github.com/jonathan/freshapply/internal/store"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu    sync.Mutex
	jobs  map[string][]ats.Job
	fail  map[string]error
	calls int
}

func (f *fakeSource) Jobs(_ context.Context, b ats.Board) ([]ats.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[b.String()]; err != nil {
		return nil, err
	}
	return f.jobs[b.String()], nil
}

func job(platform ats.Platform, company, id, description string) ats.Job {
	return ats.Job{
		ID:          ats.JobID(platform, company, id),
		Platform:    platform,
		Company:     company,
		Title:       "Senior Product Manager",
		Description: description,
	}
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "jobs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunner_Run(t *testing.T) {
	boards := []ats.Board{
		{Platform: ats.Greenhouse, Slug: "acme"},
		{Platform: ats.Lever, Slug: "broken"},
		{Platform: ats.Ashby, Slug: "acme"},
	}
	source := &fakeSource{
		jobs: map[string][]ats.Job{
			"greenhouse:acme": {
				job(ats.Greenhouse, "acme", "1", "Own the roadmap."),
				job(ats.Greenhouse, "acme", "2", "Lead the platform."),
			},
			"ashby:acme": {
				// Same description as gh:acme:1 under a new ID.
				job(ats.Ashby, "acme", "9", "Own the roadmap."),
			},
		},
		fail: map[string]error{"lever:broken": errors.New("HTTP status 404")},
	}
	st := newStore(t)

	var progress []BoardResult
	r := &Runner{
		Boards:      boards,
		Fetcher:     source,
		Store:       st,
		Metrics:     metrics.New(),
		Logger:      zaptest.NewLogger(t),
		Concurrency: 2,
		Progress:    func(res BoardResult) { progress = append(progress, res) },
		Clock:       func() time.Time { return now.Add(time.Minute) },
	}

	stats, err := r.Run(context.Background(), now)
	require.NoError(t, err)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 2, stats.New)
	assert.Equal(t, 1, stats.Reposted)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 3, stats.Boards)
	assert.Equal(t, now.Add(time.Minute), stats.Finished)
	assert.Equal(t, "2 new · 0 updated · 1 reposts · 1 errors", stats.String())

	require.Len(t, progress, 3)
	assert.Equal(t, 1, progress[0].Index)
	assert.Equal(t, 2, progress[0].Jobs)
	assert.Error(t, progress[1].Err)
	assert.Equal(t, 3, progress[2].Total)

	records, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// A second pass sees every job again.
	stats, err = r.Run(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Updated)
	assert.Equal(t, 0, stats.New)
	assert.NotEqual(t, "", stats.RunID)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{
		Boards:  []ats.Board{{Platform: ats.Greenhouse, Slug: "acme"}},
		Fetcher: &fakeSource{},
		Store:   newStore(t),
	}

	_, err := r.Run(ctx, now)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingStore struct {
	store.Store
}

func (failingStore) Upsert(context.Context, ats.Job, time.Time) (store.Outcome, error) {
	return "", &store.Error{Op: "upsert", Cause: errors.New("disk full")}
}

func TestRunner_StoreErrorIsFatal(t *testing.T) {
	source := &fakeSource{jobs: map[string][]ats.Job{
		"greenhouse:acme": {job(ats.Greenhouse, "acme", "1", "x")},
	}}
	r := &Runner{
		Boards:  []ats.Board{{Platform: ats.Greenhouse, Slug: "acme"}},
		Fetcher: source,
		Store:   failingStore{},
	}

	_, err := r.Run(context.Background(), now)
	require.Error(t, err)

	var storeErr *store.Error
	assert.ErrorAs(t, err, &storeErr)
}
