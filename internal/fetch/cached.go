package fetch

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a cached response stays fresh.
const DefaultCacheTTL = 30 * time.Minute

// DefaultKeyPrefix namespaces cached responses.
const DefaultKeyPrefix = "freshapply:fetch:"

// Cache stores response bodies. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFetcher wraps a Getter with a response cache. Cache failures are
// logged and fall through to the network.
type CachedFetcher struct {
	next      Getter
	cache     Cache
	cacheTTL  time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	KeyPrefix string
	Logger    *zap.Logger
}

// NewCachedFetcher creates a cached fetcher. A nil cache disables caching.
func NewCachedFetcher(next Getter, cache Cache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	f := &CachedFetcher{
		next:      next,
		cache:     cache,
		cacheTTL:  config.CacheTTL,
		keyPrefix: config.KeyPrefix,
		logger:    config.Logger,
	}
	if f.cacheTTL == 0 {
		f.cacheTTL = DefaultCacheTTL
	}
	if f.keyPrefix == "" {
		f.keyPrefix = DefaultKeyPrefix
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// Key returns the cache key for urlStr.
func (f *CachedFetcher) Key(urlStr string) string {
	return f.keyPrefix + urlStr
}

// Get returns a fresh cached body if present, otherwise fetches and caches it.
func (f *CachedFetcher) Get(ctx context.Context, urlStr string) (*Result, error) {
	key := f.Key(urlStr)

	// Step 1: Try the cache
	if f.cache != nil {
		body, err := f.cache.Get(ctx, key)
		switch {
		case err != nil:
			f.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		case body != nil:
			return &Result{URL: urlStr, Body: body, StatusCode: http.StatusOK}, nil
		}
	}

	// Step 2: Fetch fresh content
	result, err := f.next.Get(ctx, urlStr)
	if err != nil {
		return result, err
	}

	// Step 3: Store in cache
	if f.cache != nil {
		if err := f.cache.Set(ctx, key, result.Body, f.cacheTTL); err != nil {
			f.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}
