package engine

import (
	"stock-reconciler/internal/models"
)

// Aggregate folds raw per-location, per-condition rows into the canonical
// StockResult for a SKU.
//
// The sellable total sums the sellable-primary warehouses only, over the
// condition set resolved from the SKU's suffix: GR group for regular SKUs,
// GR+IC for IC-suffixed SKUs. The TJ quantity is reported in the breakdowns
// but never counted. Other is structurally zero; there is no secondary
// stock source.
func Aggregate(sku string, rows []models.StockRow, source models.ResolutionSource) models.StockResult {
	var gr, ic models.LocationBreakdown

	for _, row := range rows {
		loc, ok := models.LocationByID(row.LocationID)
		if !ok {
			continue
		}
		target := &gr
		if row.Condition.IsIC() {
			target = &ic
		}
		switch loc.Code {
		case models.LocationMTY.Code:
			target.MTY += row.Quantity
		case models.LocationCDMX.Code:
			target.CDMX += row.Quantity
		case models.LocationTJ.Code:
			target.TJ += row.Quantity
		}
	}

	sellable := gr.Sellable()
	if models.IsICSuffixed(sku) {
		sellable += ic.Sellable()
	}

	if sellable == 0 && gr == (models.LocationBreakdown{}) && ic == (models.LocationBreakdown{}) {
		// Rows existed but carried nothing usable; same answer as no data.
		return models.EmptyStockResult(sku)
	}

	return models.StockResult{
		SKU:           sku,
		SellableTotal: sellable,
		GR:            gr,
		IC:            ic,
		Other:         0,
		Source:        source,
	}
}
