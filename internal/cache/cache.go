// Package cache provides the expiring key-value cache the data core is
// built on. Entries carry a per-entry TTL; expired entries are deleted
// lazily on read. Store failures degrade to cache misses so a broken
// local store can never block a live fetch.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Namespace prefixes every key so a single bulk delete can reset all
// app-local state without touching unrelated storage.
const Namespace = "vayu:"

// Default TTLs. AQI entries expire sooner than assistant responses
// because air-quality conditions change faster than cached advice text.
const (
	DefaultAQITTL       = 30 * time.Minute
	DefaultAssistantTTL = time.Hour
)

// ErrNonPositiveTTL is returned by Put when the TTL is zero or negative.
var ErrNonPositiveTTL = errors.New("ttl must be positive")

// Metrics receives cache hit/miss observations. Implementations must be
// safe for concurrent use.
type Metrics interface {
	RecordHit(ctx context.Context)
	RecordMiss(ctx context.Context)
}

// Config holds configuration for the cache.
type Config struct {
	// Store is the persistence layer (required).
	Store Store

	// Logger for swallowed store errors.
	Logger zerolog.Logger

	// Metrics receives hit/miss counts (optional).
	Metrics Metrics

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Cache is an expiring key-value cache over a pluggable Store.
type Cache struct {
	store   Store
	logger  zerolog.Logger
	metrics Metrics
	now     func() time.Time
}

// New creates a cache over the given store.
func New(cfg Config) *Cache {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		store:   cfg.Store,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     now,
	}
}

// envelope is the serialized form of a cache entry.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Get returns the cached value for key if present and not expired.
// An expired entry is deleted as a side effect of observing it.
func Get[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T

	raw, err := c.store.Get(ctx, Namespace+key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		c.recordMiss(ctx)
		return zero, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Unreadable entries are stale-shaped leftovers; drop them.
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, deleting")
		c.deleteQuietly(ctx, key)
		c.recordMiss(ctx)
		return zero, false
	}

	if c.now().After(env.ExpiresAt) {
		c.deleteQuietly(ctx, key)
		c.recordMiss(ctx)
		return zero, false
	}

	var value T
	if err := json.Unmarshal(env.Data, &value); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache payload undecodable, deleting")
		c.deleteQuietly(ctx, key)
		c.recordMiss(ctx)
		return zero, false
	}

	c.recordHit(ctx)
	return value, true
}

// Put stores value under key with the given TTL, overwriting any prior
// entry. Store write failures are swallowed: the entry is simply absent
// on the next read.
func Put[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrNonPositiveTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	now := c.now()
	raw, err := json.Marshal(envelope{
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return err
	}

	if err := c.store.Set(ctx, Namespace+key, raw); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed, ignoring")
	}
	return nil
}

// Clear deletes every entry whose key starts with prefix. An empty
// prefix clears the whole namespace.
func (c *Cache) Clear(ctx context.Context, prefix string) {
	if err := c.store.DeletePrefix(ctx, Namespace+prefix); err != nil {
		c.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache clear failed")
	}
}

func (c *Cache) deleteQuietly(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, Namespace+key); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

func (c *Cache) recordHit(ctx context.Context) {
	if c.metrics != nil {
		c.metrics.RecordHit(ctx)
	}
}

func (c *Cache) recordMiss(ctx context.Context) {
	if c.metrics != nil {
		c.metrics.RecordMiss(ctx)
	}
}
