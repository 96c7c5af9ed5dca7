package service

import (
	"context"
	"sort"

	"stock-reconciler/internal/engine"
	"stock-reconciler/internal/models"
	"stock-reconciler/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// reportConcurrency bounds how many listings resolve at once while building
// a report.
const reportConcurrency = 5

// listingCatalog is the slice of the store the report reads. Implemented by
// store.Store.
type listingCatalog interface {
	GetListings(ctx context.Context) ([]models.Listing, error)
	GetListingsBySKUs(ctx context.Context, skus []string) ([]models.Listing, error)
}

// ReportService builds the stock-issues report: listings whose marketplace
// quantity disagrees with reconciled warehouse stock. All warehouse numbers
// come from the reconciliation pipeline; the marketplace quantity comes
// from the listing catalog.
type ReportService struct {
	store      listingCatalog
	aggregator *engine.VariationAggregator
	threshold  int
	logger     *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(store listingCatalog, aggregator *engine.VariationAggregator, threshold int) *ReportService {
	return &ReportService{
		store:      store,
		aggregator: aggregator,
		threshold:  threshold,
		logger:     util.GetLogger(),
	}
}

// ListingIssue is one report row.
type ListingIssue struct {
	ListingID      int64  `json:"listing_id"`
	Title          string `json:"title"`
	SKU            string `json:"sku"`
	MarketplaceQty int    `json:"marketplace_qty"`
	WarehouseQty   int    `json:"warehouse_qty"`
}

// StockIssuesReport buckets listings by the kind of disagreement.
type StockIssuesReport struct {
	// Restock: the marketplace shows nothing to sell, but the warehouse
	// holds sellable units.
	Restock []ListingIssue `json:"restock"`
	// OversellRisk: the marketplace is selling units the warehouse does
	// not have.
	OversellRisk []ListingIssue `json:"oversell_risk"`
	// LowStock: sellable units below the configured threshold.
	LowStock []ListingIssue `json:"low_stock"`

	TotalScanned int `json:"total_scanned"`
	Skipped      int `json:"skipped"`
}

// StockIssues scans the listing catalog and classifies every listing
// against its reconciled warehouse stock. A non-empty skus argument scopes
// the scan to those listing SKUs. Each listing resolves through the full
// pipeline, variation by variation, so stock under a sibling variation's
// SKU is never missed.
func (s *ReportService) StockIssues(ctx context.Context, skus []string) (*StockIssuesReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.StockIssues")
	defer span.End()

	var listings []models.Listing
	var err error
	if len(skus) > 0 {
		listings, err = s.store.GetListingsBySKUs(ctx, skus)
	} else {
		listings, err = s.store.GetListings(ctx)
	}
	if err != nil {
		return nil, err
	}

	report := &StockIssuesReport{
		Restock:      []ListingIssue{},
		OversellRisk: []ListingIssue{},
		LowStock:     []ListingIssue{},
		TotalScanned: len(listings),
	}

	type scanned struct {
		listing      models.Listing
		warehouseQty int
		skip         bool
	}
	results := make([]scanned, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for i, listing := range listings {
		i, listing := i, listing
		if listing.SKU == "" && len(listing.Variations) == 0 {
			results[i] = scanned{skip: true}
			continue
		}
		g.Go(func() error {
			stock := s.aggregator.ResolveListing(gctx, listing)
			results[i] = scanned{listing: listing, warehouseQty: stock.Total}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.skip {
			report.Skipped++
			continue
		}
		issue := ListingIssue{
			ListingID:      r.listing.ID,
			Title:          r.listing.Title,
			SKU:            r.listing.SKU,
			MarketplaceQty: marketplaceQty(r.listing),
			WarehouseQty:   r.warehouseQty,
		}
		switch {
		case issue.MarketplaceQty == 0 && issue.WarehouseQty > 0:
			report.Restock = append(report.Restock, issue)
		case issue.MarketplaceQty > 0 && issue.WarehouseQty == 0:
			report.OversellRisk = append(report.OversellRisk, issue)
		case issue.WarehouseQty > 0 && issue.WarehouseQty < s.threshold:
			report.LowStock = append(report.LowStock, issue)
		}
	}

	sort.Slice(report.Restock, func(i, j int) bool {
		return report.Restock[i].WarehouseQty > report.Restock[j].WarehouseQty
	})
	sort.Slice(report.OversellRisk, func(i, j int) bool {
		return report.OversellRisk[i].MarketplaceQty > report.OversellRisk[j].MarketplaceQty
	})
	sort.Slice(report.LowStock, func(i, j int) bool {
		return report.LowStock[i].WarehouseQty < report.LowStock[j].WarehouseQty
	})

	s.logger.Info("Stock issues report built",
		zap.Int("scanned", report.TotalScanned),
		zap.Int("restock", len(report.Restock)),
		zap.Int("oversell_risk", len(report.OversellRisk)),
		zap.Int("low_stock", len(report.LowStock)))

	return report, nil
}

// marketplaceQty is the listing's sellable quantity on the marketplace
// side: the sum of variation quantities when variations exist.
func marketplaceQty(listing models.Listing) int {
	if len(listing.Variations) == 0 {
		return listing.MarketplaceQty
	}
	total := 0
	for _, v := range listing.Variations {
		total += v.MarketplaceQty
	}
	return total
}
