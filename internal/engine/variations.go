package engine

import (
	"context"

	"stock-reconciler/internal/models"
	"stock-reconciler/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// variationConcurrency bounds the per-listing fan-out against upstream.
const variationConcurrency = 8

// VariationAggregator resolves every variation of a listing independently
// and folds the results into an item-level total.
//
// The defect class this exists to eliminate: risk checks that only inspect
// the parent SKU while real stock lives under a sibling variation's SKU.
// Every variation is queried, not just the first or a representative one.
type VariationAggregator struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewVariationAggregator creates a variation aggregator over a resolver
// (normally the reconciliation cache, so per-variation lookups share it).
func NewVariationAggregator(resolver Resolver) *VariationAggregator {
	return &VariationAggregator{
		resolver: resolver,
		logger:   util.GetLogger(),
	}
}

// ResolveListing resolves stock for a listing. Listings without variations
// resolve through their own SKU; listings with variations resolve each
// variation's SKU independently and sum. The item total is reported only
// after every variation fetch completes; a partial total is never
// surfaced.
func (va *VariationAggregator) ResolveListing(ctx context.Context, listing models.Listing) models.ListingStock {
	ctx, span := util.StartSpan(ctx, "VariationAggregator.ResolveListing")
	defer span.End()

	if len(listing.Variations) == 0 {
		result := va.resolver.Resolve(ctx, listing.SKU)
		return models.ListingStock{
			ListingID: listing.ID,
			Variations: []models.VariationStockResult{
				{VariationID: 0, SKU: listing.SKU, Stock: result},
			},
			Total: result.SellableTotal,
		}
	}

	results := make([]models.VariationStockResult, len(listing.Variations))

	anyVariationSKU := false
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(variationConcurrency)
	for i, v := range listing.Variations {
		i, v := i, v
		if v.SKU == "" {
			results[i] = models.VariationStockResult{
				VariationID: v.ID,
				SKU:         "",
				Stock:       models.EmptyStockResult(""),
			}
			continue
		}
		anyVariationSKU = true
		g.Go(func() error {
			results[i] = models.VariationStockResult{
				VariationID: v.ID,
				SKU:         v.SKU,
				Stock:       va.resolver.Resolve(gctx, v.SKU),
			}
			return nil
		})
	}
	// Resolve never errors; Wait is a join point only.
	_ = g.Wait()

	if !anyVariationSKU {
		// No variation carries its own SKU; the parent SKU is the only
		// handle the warehouse has for this listing.
		parent := va.resolver.Resolve(ctx, listing.SKU)
		va.logger.Debug("Listing variations carry no SKUs, using parent",
			zap.Int64("listing_id", listing.ID),
			zap.String("sku", listing.SKU))
		return models.ListingStock{
			ListingID:  listing.ID,
			Variations: results,
			Total:      parent.SellableTotal,
		}
	}

	total := 0
	for _, r := range results {
		total += r.Stock.SellableTotal
	}

	return models.ListingStock{
		ListingID:  listing.ID,
		Variations: results,
		Total:      total,
	}
}
