package cache

import (
	"context"
	"strings"
	"time"

	"stock-reconciler/internal/engine"
	"stock-reconciler/internal/models"
	"stock-reconciler/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// bulkConcurrency bounds how many cache misses a single bulk request fans
// out to upstream at once.
const bulkConcurrency = 10

// Entry is one cached resolution. Entries are replaced whole: there is no
// observable state with some condition groups populated and others not.
type Entry struct {
	Result    models.StockResult `json:"result"`
	FetchedAt time.Time          `json:"fetched_at"`
	TTL       time.Duration      `json:"ttl"`
}

// Store is the cache's storage port. Implementations hold whole entries
// keyed by normalized SKU; Get returns nil for an absent key.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// Cache fronts the reconciliation engine for every caller. TTL-based,
// single-flight: concurrent lookups for the same SKU share one upstream
// resolution, and a stale entry is transparently re-fetched on next access.
type Cache struct {
	store    Store
	resolver engine.Resolver
	ttl      time.Duration
	group    singleflight.Group
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects the time source, so tests drive TTL expiry without
// sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a reconciliation cache over a store and the engine that
// resolves misses.
func New(store Store, resolver engine.Resolver, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		resolver: resolver,
		ttl:      ttl,
		now:      time.Now,
		logger:   util.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key normalizes a SKU into its cache key.
func Key(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Resolve returns the stock result for a SKU, fetching through the engine
// on miss or expiry.
func (c *Cache) Resolve(ctx context.Context, sku string) models.StockResult {
	ctx, span := util.StartSpan(ctx, "Cache.Resolve")
	defer span.End()

	key := Key(sku)

	if entry := c.lookup(ctx, key); entry != nil {
		util.CacheHitsTotal.Inc()
		return entry.Result
	}
	util.CacheMissesTotal.Inc()

	result, _, shared := c.group.Do(key, func() (interface{}, error) {
		return c.fetch(ctx, key, sku), nil
	})
	if shared {
		util.CacheSharedTotal.Inc()
	}
	return result.(models.StockResult)
}

// lookup returns a fresh, well-formed entry or nil. A damaged entry is
// never trusted: it is dropped and the lookup falls through to a fresh
// resolution.
func (c *Cache) lookup(ctx context.Context, key string) *Entry {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Cache store read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if entry == nil {
		return nil
	}
	if entry.Result.Source == "" || entry.FetchedAt.IsZero() {
		c.logger.Warn("Dropping corrupt cache entry", zap.String("key", key))
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("Failed to drop corrupt cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	ttl := entry.TTL
	if ttl <= 0 {
		ttl = c.ttl
	}
	if c.now().Sub(entry.FetchedAt) >= ttl {
		return nil
	}
	return entry
}

// fetch resolves through the engine and stores the complete entry. Store
// write failures degrade to uncached behavior, never to a caller-visible
// error.
func (c *Cache) fetch(ctx context.Context, key, sku string) models.StockResult {
	result := c.resolver.Resolve(ctx, sku)
	entry := Entry{Result: result, FetchedAt: c.now(), TTL: c.ttl}
	if err := c.store.Set(ctx, key, entry); err != nil {
		c.logger.Warn("Cache store write failed", zap.String("key", key), zap.Error(err))
	}
	return result
}

// ResolveBulk resolves many SKUs at once: hits are served locally, misses
// fan out concurrently without serializing unrelated SKUs behind each
// other. Misses funnel through the same single-flight group as single
// lookups, so bulk and single callers dedupe against each other.
func (c *Cache) ResolveBulk(ctx context.Context, skus []string) map[string]models.StockResult {
	ctx, span := util.StartSpan(ctx, "Cache.ResolveBulk")
	defer span.End()

	results := make(map[string]models.StockResult, len(skus))
	seen := make(map[string]bool, len(skus))

	var misses []string
	for _, sku := range skus {
		key := Key(sku)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if entry := c.lookup(ctx, key); entry != nil {
			util.CacheHitsTotal.Inc()
			results[sku] = entry.Result
			continue
		}
		misses = append(misses, sku)
	}

	if len(misses) == 0 {
		return results
	}

	resolved := make([]models.StockResult, len(misses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for i, sku := range misses {
		i, sku := i, sku
		g.Go(func() error {
			resolved[i] = c.Resolve(gctx, sku)
			return nil
		})
	}
	_ = g.Wait()

	for i, sku := range misses {
		results[sku] = resolved[i]
	}
	return results
}

// Invalidate drops a single SKU's entry so the next Resolve bypasses the
// cache. Used after a write to that SKU's stock; sibling SKUs are never
// touched.
func (c *Cache) Invalidate(ctx context.Context, sku string) error {
	key := Key(sku)
	util.CacheInvalidationsTotal.Inc()
	if err := c.store.Delete(ctx, key); err != nil {
		return err
	}
	c.logger.Info("Cache entry invalidated", zap.String("sku", sku))
	return nil
}
