package engine

import (
	"context"
	"sync"
	"testing"

	"stock-reconciler/internal/models"

	"github.com/stretchr/testify/assert"
)

// fakeResolver returns canned results per SKU and records what was asked.
type fakeResolver struct {
	mu      sync.Mutex
	results map[string]models.StockResult
	asked   []string
}

func (f *fakeResolver) Resolve(_ context.Context, sku string) models.StockResult {
	f.mu.Lock()
	f.asked = append(f.asked, sku)
	f.mu.Unlock()
	if r, ok := f.results[sku]; ok {
		return r
	}
	return models.EmptyStockResult(sku)
}

func directResult(sku string, mty int) models.StockResult {
	return models.StockResult{
		SKU:           sku,
		SellableTotal: mty,
		GR:            models.LocationBreakdown{MTY: mty},
		Source:        models.SourceDirect,
	}
}

func TestResolveListingSumsAllVariations(t *testing.T) {
	// Variation A resolves to zero, variation B holds 21 units. The
	// item-level total must be 21: stock under a sibling variation is never
	// masked.
	resolver := &fakeResolver{results: map[string]models.StockResult{
		"SNTV001763-A": models.EmptyStockResult("SNTV001763-A"),
		"SNTV001763-B": directResult("SNTV001763-B", 21),
	}}
	va := NewVariationAggregator(resolver)

	listing := models.Listing{
		ID: 10, SKU: "SNTV001763", HasVariations: true,
		Variations: []models.Variation{
			{ID: 1, ListingID: 10, SKU: "SNTV001763-A"},
			{ID: 2, ListingID: 10, SKU: "SNTV001763-B"},
		},
	}

	stock := va.ResolveListing(context.Background(), listing)

	assert.Equal(t, 21, stock.Total)
	assert.Len(t, stock.Variations, 2)
	assert.Equal(t, int64(1), stock.Variations[0].VariationID)
	assert.Equal(t, 0, stock.Variations[0].Stock.SellableTotal)
	assert.Equal(t, 21, stock.Variations[1].Stock.SellableTotal)

	// Every variation was queried independently; the parent SKU was not.
	assert.ElementsMatch(t, []string{"SNTV001763-A", "SNTV001763-B"}, resolver.asked)
}

func TestResolveListingExactSum(t *testing.T) {
	resolver := &fakeResolver{results: map[string]models.StockResult{
		"V1": directResult("V1", 3),
		"V2": directResult("V2", 5),
		"V3": directResult("V3", 11),
	}}
	va := NewVariationAggregator(resolver)

	listing := models.Listing{
		ID: 11, SKU: "PARENT", HasVariations: true,
		Variations: []models.Variation{
			{ID: 1, SKU: "V1"}, {ID: 2, SKU: "V2"}, {ID: 3, SKU: "V3"},
		},
	}

	stock := va.ResolveListing(context.Background(), listing)

	sum := 0
	for _, v := range stock.Variations {
		sum += v.Stock.SellableTotal
	}
	assert.Equal(t, sum, stock.Total)
	assert.Equal(t, 19, stock.Total)
}

func TestResolveListingWithoutVariations(t *testing.T) {
	resolver := &fakeResolver{results: map[string]models.StockResult{
		"SNFN000095": directResult("SNFN000095", 4),
	}}
	va := NewVariationAggregator(resolver)

	stock := va.ResolveListing(context.Background(), models.Listing{ID: 12, SKU: "SNFN000095"})

	assert.Equal(t, 4, stock.Total)
	assert.Len(t, stock.Variations, 1)
	assert.Equal(t, "SNFN000095", stock.Variations[0].SKU)
}

func TestResolveListingParentFallback(t *testing.T) {
	// When no variation carries its own SKU, the parent SKU is the only
	// warehouse handle for the listing.
	resolver := &fakeResolver{results: map[string]models.StockResult{
		"PARENT": directResult("PARENT", 9),
	}}
	va := NewVariationAggregator(resolver)

	listing := models.Listing{
		ID: 13, SKU: "PARENT", HasVariations: true,
		Variations: []models.Variation{{ID: 1}, {ID: 2}},
	}

	stock := va.ResolveListing(context.Background(), listing)

	assert.Equal(t, 9, stock.Total)
	assert.Equal(t, []string{"PARENT"}, resolver.asked)
}
