// Package scrape runs one pass over the configured boards and records what it finds.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/metrics"
	"github.com/jonathan/freshapply/internal/store"
)

// DefaultConcurrency bounds concurrent board fetches.
const DefaultConcurrency = 8

// Source lists a board's in-scope jobs. *ats.Client implements it.
type Source interface {
	Jobs(ctx context.Context, b ats.Board) ([]ats.Job, error)
}

// BoardResult reports one board after its jobs were stored.
type BoardResult struct {
	Index int
	Total int
	Board ats.Board
	Jobs  int
	Err   error
}

// Stats summarizes a run.
type Stats struct {
	RunID    string    `json:"run_id"`
	New      int       `json:"new"`
	Updated  int       `json:"updated"`
	Reposted int       `json:"reposted"`
	Errors   int       `json:"errors"`
	Boards   int       `json:"boards"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

func (s Stats) String() string {
	return fmt.Sprintf("%d new · %d updated · %d reposts · %d errors", s.New, s.Updated, s.Reposted, s.Errors)
}

// Runner fetches boards concurrently and upserts their jobs in board order, so
// repost detection does not depend on fetch timing.
type Runner struct {
	Boards      []ats.Board
	Fetcher     Source
	Store       store.Store
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	Concurrency int
	// Progress, if set, is called once per board in board order.
	Progress func(BoardResult)
	// Clock defaults to time.Now and stamps Stats.Finished.
	Clock func() time.Time
}

type fetched struct {
	jobs []ats.Job
	err  error
}

// Run scrapes every board, stamping sightings with now. A failing board is
// logged and counted; store failures and cancellation abort the run.
func (r *Runner) Run(ctx context.Context, now time.Time) (Stats, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	stats := Stats{RunID: uuid.NewString(), Boards: len(r.Boards), Started: now}
	logger = logger.With(zap.String("run_id", stats.RunID))
	logger.Info("scrape started", zap.Int("boards", len(r.Boards)), zap.Int("concurrency", limit))

	// 1. Fetch boards concurrently
	results := make([]fetched, len(r.Boards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, b := range r.Boards {
		g.Go(func() error {
			start := time.Now()
			jobs, err := r.Fetcher.Jobs(gctx, b)
			r.Metrics.ObserveBoard(string(b.Platform), err, time.Since(start))
			results[i] = fetched{jobs: jobs, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("scrape cancelled: %w", err)
	}

	// 2. Store in board order
	for i, b := range r.Boards {
		res := results[i]
		if res.err != nil {
			stats.Errors++
			logger.Warn("board failed", zap.Stringer("board", b), zap.Error(res.err))
			r.report(BoardResult{Index: i + 1, Total: len(r.Boards), Board: b, Err: res.err})
			continue
		}

		for _, job := range res.jobs {
			outcome, err := r.Store.Upsert(ctx, job, now)
			if err != nil {
				return stats, fmt.Errorf("failed to store %s: %w", job.ID, err)
			}
			r.Metrics.ObserveUpsert(string(outcome))
			switch outcome {
			case store.OutcomeNew:
				stats.New++
			case store.OutcomeUpdated:
				stats.Updated++
			case store.OutcomeReposted:
				stats.Reposted++
			}
		}
		logger.Debug("board stored", zap.Stringer("board", b), zap.Int("jobs", len(res.jobs)))
		r.report(BoardResult{Index: i + 1, Total: len(r.Boards), Board: b, Jobs: len(res.jobs)})
	}

	stats.Finished = clock()
	r.Metrics.ObserveRun(stats.Finished)
	logger.Info("scrape complete",
		zap.Int("new", stats.New),
		zap.Int("updated", stats.Updated),
		zap.Int("reposted", stats.Reposted),
		zap.Int("errors", stats.Errors),
		zap.Duration("elapsed", stats.Finished.Sub(stats.Started)),
	)
	return stats, nil
}

func (r *Runner) report(res BoardResult) {
	if r.Progress != nil {
		r.Progress(res)
	}
}
