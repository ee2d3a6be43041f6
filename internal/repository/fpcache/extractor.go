// Package fpcache caches fingerprints keyed by the content hash of the image bytes.
package fpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/db"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
)

const keyPrefix = "smartsample:fp:"

// DefaultSize is the in-memory tier capacity.
const DefaultSize = 10000

// store is the consumer interface for the shared cache tier (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Config sizes the cache.
type Config struct {
	// Size of the in-memory LRU. Zero means DefaultSize.
	Size int
	// TTL for entries in the shared store. Zero keeps them forever.
	TTL time.Duration
}

// CachedExtractor wraps an extractor with an in-memory LRU and an optional
// shared KV store.
type CachedExtractor struct {
	inner      fingerprint.Extractor
	layout     fingerprint.Layout
	memory     *lru.Cache[string, fingerprint.Fingerprint]
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. s may be nil to run memory-only.
// cacheTotal is a counter vec with labels "tier" and "result", passed explicitly.
func New(
	inner fingerprint.Extractor,
	layout fingerprint.Layout,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedExtractor, error) {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}
	memory, err := lru.New[string, fingerprint.Fingerprint](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &CachedExtractor{
		inner:      inner,
		layout:     layout,
		memory:     memory,
		store:      s,
		ttl:        cfg.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}, nil
}

// Extract returns a cached fingerprint or calls the inner extractor.
func (c *CachedExtractor) Extract(ctx context.Context, data []byte) (fingerprint.Fingerprint, error) {
	key := c.cacheKey(data)

	if fp, ok := c.memory.Get(key); ok {
		c.inc("memory", "hit")
		return fp, nil
	}
	c.inc("memory", "miss")

	if c.store != nil {
		if fp, ok := c.getFromStore(ctx, key); ok {
			c.inc("store", "hit")
			c.memory.Add(key, fp)
			return fp, nil
		}
		c.inc("store", "miss")
	}

	fp, err := c.inner.Extract(ctx, data)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("extract fingerprint: %w", err)
	}

	c.memory.Add(key, fp)
	c.putToStore(ctx, key, fp)
	return fp, nil
}

// Purge drops every cached fingerprint of this layout from both tiers and
// returns how many shared entries were removed.
func (c *CachedExtractor) Purge(ctx context.Context) (int64, error) {
	c.memory.Purge()
	if c.store == nil {
		return 0, nil
	}
	n, err := c.store.DeleteByPrefix(ctx, c.prefix())
	if err != nil {
		return n, fmt.Errorf("purge shared cache: %w", err)
	}
	return n, nil
}

// Len returns the number of entries in the memory tier.
func (c *CachedExtractor) Len() int { return c.memory.Len() }

func (c *CachedExtractor) inc(tier, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(tier, result).Inc()
	}
}

func (c *CachedExtractor) prefix() string {
	return keyPrefix + c.layout.Tag() + ":"
}

func (c *CachedExtractor) cacheKey(data []byte) string {
	h := sha256.Sum256(data)
	return c.prefix() + hex.EncodeToString(h[:])
}

func (c *CachedExtractor) getFromStore(ctx context.Context, key string) (fingerprint.Fingerprint, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached fingerprint", zap.String("key", key), zap.Error(err))
		}
		return fingerprint.Fingerprint{}, false
	}
	if len(data) == 0 {
		return fingerprint.Fingerprint{}, false
	}

	fp, err := fingerprint.FromBytes(data, c.layout.Width())
	if err != nil {
		c.logger.Warn("Failed to parse cached fingerprint", zap.String("key", key), zap.Error(err))
		return fingerprint.Fingerprint{}, false
	}
	return fp, true
}

func (c *CachedExtractor) putToStore(ctx context.Context, key string, fp fingerprint.Fingerprint) {
	if c.store == nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, fp.Bytes(), c.ttl); err != nil {
		c.logger.Warn("Failed to cache fingerprint", zap.String("key", key), zap.Error(err))
	}
}
