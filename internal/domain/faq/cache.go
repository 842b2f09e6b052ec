package faq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yanqian/polyglot-faq/pkg/metrics"
)

// Cache is the shared key/value cache used for translated fields and rendered responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix removes every key starting with prefix and returns how many were removed.
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

type cacheKeys struct {
	prefix string
}

func (k cacheKeys) namespace() string {
	return k.prefix + ":"
}

func (k cacheKeys) field(id int64, field Field, lang string) string {
	return fmt.Sprintf("%s:field:%d:%s:%s", k.prefix, id, field, lang)
}

func (k cacheKeys) list(lang string) string {
	return fmt.Sprintf("%s:list:%s", k.prefix, lang)
}

func (k cacheKeys) detail(id int64, lang string) string {
	return fmt.Sprintf("%s:detail:%d:%s", k.prefix, id, lang)
}

func (k cacheKeys) translations(id int64) string {
	return fmt.Sprintf("%s:translations:%d", k.prefix, id)
}

// cacheGuard bounds every cache call and turns failures into misses.
type cacheGuard struct {
	cache   Cache
	timeout time.Duration
	metrics *metrics.Recorder
	logger  *slog.Logger
}

func newCacheGuard(cache Cache, timeout time.Duration, recorder *metrics.Recorder, logger *slog.Logger) *cacheGuard {
	return &cacheGuard{cache: cache, timeout: timeout, metrics: recorder, logger: logger}
}

func (g *cacheGuard) get(ctx context.Context, level, key string) ([]byte, bool) {
	if g.cache == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	value, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("cache get failed", "key", key, "error", err)
		g.metrics.CacheLookup(level, metrics.ResultError)
		return nil, false
	}
	if !ok {
		g.metrics.CacheLookup(level, metrics.ResultMiss)
		return nil, false
	}
	g.metrics.CacheLookup(level, metrics.ResultHit)
	return value, true
}

func (g *cacheGuard) set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if g.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.cache.Set(ctx, key, value, ttl); err != nil {
		g.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (g *cacheGuard) purge(ctx context.Context, prefix string) {
	if g.cache == nil {
		return
	}
	// Prefix scans walk the whole keyspace, allow more than a single lookup.
	ctx, cancel := context.WithTimeout(ctx, 4*g.timeout)
	defer cancel()
	removed, err := g.cache.DeleteByPrefix(ctx, prefix)
	if err != nil {
		g.logger.Warn("cache invalidation failed", "prefix", prefix, "removed", removed, "error", err)
		g.metrics.Invalidation(metrics.ResultFailure, removed)
		return
	}
	g.logger.Debug("cache invalidated", "prefix", prefix, "removed", removed)
	g.metrics.Invalidation(metrics.ResultSuccess, removed)
}

func (g *cacheGuard) ping(ctx context.Context) error {
	if g.cache == nil {
		return fmt.Errorf("cache not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.cache.Ping(ctx)
}
