package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stock-reconciler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver returns a fixed result and counts resolutions. When
// block is set, every resolution parks until the channel is closed.
type countingResolver struct {
	calls int32
	block chan struct{}
}

func (r *countingResolver) Resolve(_ context.Context, sku string) models.StockResult {
	atomic.AddInt32(&r.calls, 1)
	if r.block != nil {
		<-r.block
	}
	return models.StockResult{
		SKU:           sku,
		SellableTotal: 23,
		GR:            models.LocationBreakdown{MTY: 19, CDMX: 4},
		Source:        models.SourceDirect,
	}
}

func (r *countingResolver) count() int32 {
	return atomic.LoadInt32(&r.calls)
}

func TestResolveCachesResult(t *testing.T) {
	resolver := &countingResolver{}
	c := New(NewMemoryStore(), resolver, 30*time.Minute)
	ctx := context.Background()

	first := c.Resolve(ctx, "SNTV001763")
	second := c.Resolve(ctx, "SNTV001763")

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), resolver.count())
}

func TestResolveKeyNormalization(t *testing.T) {
	resolver := &countingResolver{}
	c := New(NewMemoryStore(), resolver, 30*time.Minute)
	ctx := context.Background()

	c.Resolve(ctx, "sntv001763")
	c.Resolve(ctx, " SNTV001763 ")

	assert.Equal(t, int32(1), resolver.count())
}

func TestConcurrentResolveSingleFlight(t *testing.T) {
	resolver := &countingResolver{block: make(chan struct{})}
	c := New(NewMemoryStore(), resolver, 30*time.Minute)
	ctx := context.Background()

	const callers = 10
	var wg sync.WaitGroup
	results := make([]models.StockResult, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Resolve(ctx, "SNTV001763")
		}()
	}

	// Let every caller reach the in-flight fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(resolver.block)
	wg.Wait()

	assert.Equal(t, int32(1), resolver.count(), "concurrent callers must share one upstream resolution")
	for _, r := range results {
		assert.Equal(t, 23, r.SellableTotal)
	}
}

func TestResolveTTLExpiry(t *testing.T) {
	resolver := &countingResolver{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	c := New(NewMemoryStore(), resolver, 30*time.Minute, WithClock(clock))
	ctx := context.Background()

	c.Resolve(ctx, "SNTV001763")
	advance(29 * time.Minute)
	c.Resolve(ctx, "SNTV001763")
	assert.Equal(t, int32(1), resolver.count(), "entry still fresh")

	advance(2 * time.Minute)
	c.Resolve(ctx, "SNTV001763")
	assert.Equal(t, int32(2), resolver.count(), "expired entry triggers exactly one re-resolution")
}

func TestInvalidate(t *testing.T) {
	resolver := &countingResolver{}
	c := New(NewMemoryStore(), resolver, 30*time.Minute)
	ctx := context.Background()

	c.Resolve(ctx, "SNTV001763")
	require.NoError(t, c.Invalidate(ctx, "SNTV001763"))
	c.Resolve(ctx, "SNTV001763")

	assert.Equal(t, int32(2), resolver.count())
}

func TestInvalidateLeavesSiblings(t *testing.T) {
	resolver := &countingResolver{}
	store := NewMemoryStore()
	c := New(store, resolver, 30*time.Minute)
	ctx := context.Background()

	c.Resolve(ctx, "SKU-A")
	c.Resolve(ctx, "SKU-B")
	require.NoError(t, c.Invalidate(ctx, "SKU-A"))

	c.Resolve(ctx, "SKU-B")
	assert.Equal(t, int32(2), resolver.count(), "sibling entry must survive invalidation")
	assert.Equal(t, 1, store.Len())
}

func TestResolveBulkFetchesOnlyMisses(t *testing.T) {
	resolver := &countingResolver{}
	c := New(NewMemoryStore(), resolver, 30*time.Minute)
	ctx := context.Background()

	c.Resolve(ctx, "SKU-A")
	require.Equal(t, int32(1), resolver.count())

	results := c.ResolveBulk(ctx, []string{"SKU-A", "SKU-B", "SKU-C"})

	assert.Len(t, results, 3)
	assert.Equal(t, int32(3), resolver.count(), "only the two misses reach upstream")
	for sku, r := range results {
		assert.Equal(t, 23, r.SellableTotal, "sku %s", sku)
	}
}

func TestCorruptEntryIsReResolved(t *testing.T) {
	resolver := &countingResolver{}
	store := NewMemoryStore()
	c := New(store, resolver, 30*time.Minute)
	ctx := context.Background()

	// A partially-written entry: no source marker, zero fetch time.
	require.NoError(t, store.Set(ctx, "SKU-A", Entry{}))

	res := c.Resolve(ctx, "SKU-A")

	assert.Equal(t, int32(1), resolver.count(), "damaged entry must not be trusted")
	assert.Equal(t, models.SourceDirect, res.Source)
}
