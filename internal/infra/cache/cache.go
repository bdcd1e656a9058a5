// Package cache provides TTL caches shared across concurrent requests.
package cache

import (
	"context"

	"github.com/goccy/go-json"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/infra/metrics"
)

// Store is a TTL key-value store. Values are JSON-encoded so backends
// never share mutable state with callers.
type Store interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Flush(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	Stats() Stats
}

// Stats tracks cache performance.
type Stats struct {
	Hits   int64
	Misses int64
}

// Typed is a typed view over a Store. Backend failures read as misses.
type Typed[T any] struct {
	store Store
}

// NewTyped wraps a store.
func NewTyped[T any](store Store) *Typed[T] {
	return &Typed[T]{store: store}
}

// Store returns the underlying store.
func (c *Typed[T]) Store() Store {
	return c.store
}

// Get returns the cached value for key.
func (c *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		zlog.Warn().Msgf("cache get failed: cache=%s key=%s error=%v", c.store.Name(), key, err)
		metrics.CacheMisses.WithLabelValues(c.store.Name()).Inc()
		return zero, false
	}
	if !ok {
		metrics.CacheMisses.WithLabelValues(c.store.Name()).Inc()
		return zero, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		zlog.Warn().Msgf("cache decode failed: cache=%s key=%s error=%v", c.store.Name(), key, err)
		metrics.CacheMisses.WithLabelValues(c.store.Name()).Inc()
		return zero, false
	}
	metrics.CacheHits.WithLabelValues(c.store.Name()).Inc()
	return v, true
}

// Set stores v under key. Failures are logged and dropped.
func (c *Typed[T]) Set(ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		zlog.Warn().Msgf("cache encode failed: cache=%s key=%s error=%v", c.store.Name(), key, err)
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		zlog.Warn().Msgf("cache set failed: cache=%s key=%s error=%v", c.store.Name(), key, err)
	}
}
