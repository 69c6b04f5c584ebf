package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/cache"
	"github.com/jonathan/freshapply/internal/config"
	"github.com/jonathan/freshapply/internal/digest"
	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/fetch"
	"github.com/jonathan/freshapply/internal/logging"
	"github.com/jonathan/freshapply/internal/metrics"
	"github.com/jonathan/freshapply/internal/scrape"
	"github.com/jonathan/freshapply/internal/store"
)

// endpoints is swapped for a local server in tests.
var endpoints = ats.DefaultEndpoints()

// clock stamps scrapes and evaluations.
var clock = time.Now

// app holds the dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	evaluator *engine.Evaluator
	store     store.Store
	cache     *cache.Redis
}

// newApp loads configuration and builds the logger and evaluator. The store is
// opened separately so commands that never touch it stay offline.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics.New(),
		evaluator: engine.New(cfg.EvaluatorOptions()),
	}, nil
}

func (a *app) openStore(ctx context.Context) error {
	st, err := store.Open(ctx, a.cfg.DatabaseURL, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	a.store = st
	return nil
}

// getter returns the HTTP getter, wrapped in the Redis cache when one is
// configured and reachable.
func (a *app) getter(ctx context.Context) fetch.Getter {
	opts := fetch.DefaultOptions()
	opts.Timeout = a.cfg.RequestTimeout()
	client := fetch.NewClient(opts)
	if a.cfg.RedisURL == "" {
		return client
	}

	if a.cache == nil {
		rc, err := cache.Connect(ctx, a.cfg.RedisURL)
		if err != nil {
			a.logger.Warn("redis unavailable, fetching without cache", zap.Error(err))
			return client
		}
		a.cache = rc
	}
	return fetch.NewCachedFetcher(client, a.cache, &fetch.CachedFetcherConfig{
		CacheTTL: a.cfg.CacheTTL(),
		Logger:   a.logger,
	})
}

func (a *app) runner(ctx context.Context) *scrape.Runner {
	return &scrape.Runner{
		Boards:      a.cfg.BoardList(),
		Fetcher:     ats.NewClient(a.getter(ctx), endpoints, nil),
		Store:       a.store,
		Metrics:     a.metrics,
		Logger:      a.logger,
		Concurrency: a.cfg.Concurrency,
		Clock:       clock,
	}
}

// storedDigest evaluates every stored posting as of now.
func (a *app) storedDigest(ctx context.Context, now time.Time) (digest.Digest, error) {
	records, err := a.store.List(ctx)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("failed to list postings: %w", err)
	}
	evals, err := a.evaluator.EvaluateAll(ctx, store.Postings(records), now, a.cfg.Concurrency)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("failed to evaluate postings: %w", err)
	}
	for _, ev := range evals {
		a.metrics.ObserveEvaluation(string(ev.Tier))
	}
	return digest.New(now, evals, a.cfg.DisplayNames()), nil
}

// writeDigest renders the stored postings into the digest directory.
func (a *app) writeDigest(ctx context.Context, now time.Time) (string, digest.Digest, error) {
	d, err := a.storedDigest(ctx, now)
	if err != nil {
		return "", d, err
	}
	path, err := digest.WriteFile(a.cfg.DigestDir, d)
	if err != nil {
		return "", d, err
	}
	return path, d, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	_ = a.logger.Sync()
}
