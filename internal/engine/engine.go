package engine

import (
	"context"

	"stock-reconciler/internal/models"
	"stock-reconciler/internal/util"

	"go.uber.org/zap"
)

// StockSource is the authoritative warehouse query capability. A nil row
// slice means the upstream has no data for the query; adapter failures are
// already collapsed into that outcome at the adapter boundary.
type StockSource interface {
	QueryStock(ctx context.Context, query models.StockQuery) []models.StockRow
}

// Resolver answers "how many physically sellable units exist right now" for
// a SKU. Implemented by Engine and by the reconciliation cache that fronts
// it.
type Resolver interface {
	Resolve(ctx context.Context, sku string) models.StockResult
}

// Engine runs the reconciliation pipeline for a single SKU: resolve the
// condition set from the SKU's suffix, query the authoritative source for
// the base SKU, probe suffixed variants when the direct query is empty, and
// fold the raw rows into a StockResult.
//
// The engine never returns an error: "no data" is a first-class zero-stock
// answer, not a failure.
type Engine struct {
	source StockSource
	logger *zap.Logger
}

// NewEngine creates a reconciliation engine over the authoritative source.
func NewEngine(source StockSource) *Engine {
	return &Engine{
		source: source,
		logger: util.GetLogger(),
	}
}

// Resolve computes the stock result for one SKU.
func (e *Engine) Resolve(ctx context.Context, sku string) models.StockResult {
	ctx, span := util.StartSpan(ctx, "Engine.Resolve")
	defer span.End()

	base := models.BaseSKU(sku)
	query := models.StockQuery{
		SKU:         base,
		Conditions:  models.ConditionsForSKU(sku),
		LocationIDs: models.LocationIDs(),
	}

	if rows := e.source.QueryStock(ctx, query); rows != nil {
		util.ResolutionsTotal.WithLabelValues(string(models.SourceDirect)).Inc()
		return Aggregate(sku, rows, models.SourceDirect)
	}

	if rows := e.probeSuffixes(ctx, base); rows != nil {
		util.ResolutionsTotal.WithLabelValues(string(models.SourceFallback)).Inc()
		return Aggregate(sku, rows, models.SourceFallback)
	}

	util.ResolutionsTotal.WithLabelValues(string(models.SourceNone)).Inc()
	e.logger.Debug("No warehouse data for SKU", zap.String("sku", sku))
	return models.EmptyStockResult(sku)
}

// probeSuffixes tries the base SKU under each sellable condition suffix, in
// fixed order, returning the first non-empty result. Probes are sequential
// on purpose: stop as soon as real data is found, and bound upstream load.
// Some SKUs are registered in the warehouse only under a suffixed variant,
// which is why this exists at all.
func (e *Engine) probeSuffixes(ctx context.Context, base string) []models.StockRow {
	for _, sfx := range models.SellableSuffixes {
		util.FallbackProbesTotal.Inc()
		query := models.StockQuery{
			SKU: base + "-" + string(sfx),
			// The probe asks where the SKU is registered, so it spans the
			// whole closed set; the aggregator still sums only the
			// conditions legal for the original SKU.
			Conditions:  models.AllConditions,
			LocationIDs: models.LocationIDs(),
		}
		if rows := e.source.QueryStock(ctx, query); rows != nil {
			return rows
		}
	}
	return nil
}
