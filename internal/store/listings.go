package store

import (
	"context"
	"database/sql"
	"fmt"

	"stock-reconciler/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetListingByID retrieves a listing with its variations.
func (s *Store) GetListingByID(ctx context.Context, id int64) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.GetContext(ctx, &listing, "SELECT * FROM listings WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("listing not found: %d", id)
	}
	if err != nil {
		return nil, err
	}

	variations, err := s.GetVariationsByListingID(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Variations = variations
	return &listing, nil
}

// GetVariationsByListingID retrieves a listing's variations in stable order.
func (s *Store) GetVariationsByListingID(ctx context.Context, listingID int64) ([]models.Variation, error) {
	var variations []models.Variation
	err := s.db.SelectContext(ctx, &variations,
		"SELECT * FROM variations WHERE listing_id = $1 ORDER BY id", listingID)
	return variations, err
}

// GetVariationByID retrieves one variation.
func (s *Store) GetVariationByID(ctx context.Context, id int64) (*models.Variation, error) {
	var v models.Variation
	err := s.db.GetContext(ctx, &v, "SELECT * FROM variations WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("variation not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetListings retrieves every listing with its variations.
func (s *Store) GetListings(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := s.db.SelectContext(ctx, &listings, "SELECT * FROM listings ORDER BY id"); err != nil {
		return nil, err
	}

	var variations []models.Variation
	if err := s.db.SelectContext(ctx, &variations,
		"SELECT * FROM variations ORDER BY listing_id, id"); err != nil {
		return nil, err
	}

	byListing := make(map[int64][]models.Variation)
	for _, v := range variations {
		byListing[v.ListingID] = append(byListing[v.ListingID], v)
	}
	for i := range listings {
		listings[i].Variations = byListing[listings[i].ID]
	}
	return listings, nil
}

// GetListingsBySKUs retrieves listings for a batch of SKUs, each with its
// variations.
func (s *Store) GetListingsBySKUs(ctx context.Context, skus []string) ([]models.Listing, error) {
	if len(skus) == 0 {
		return []models.Listing{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM listings WHERE sku IN (?)", skus)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var listings []models.Listing
	if err := s.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]int64, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	query, args, err = sqlx.In(
		"SELECT * FROM variations WHERE listing_id IN (?) ORDER BY listing_id, id", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var variations []models.Variation
	if err := s.db.SelectContext(ctx, &variations, query, args...); err != nil {
		return nil, err
	}
	byListing := make(map[int64][]models.Variation)
	for _, v := range variations {
		byListing[v.ListingID] = append(byListing[v.ListingID], v)
	}
	for i := range listings {
		listings[i].Variations = byListing[listings[i].ID]
	}
	return listings, nil
}

// UpdateVariationQtyTx sets one variation's marketplace quantity and writes
// the audit row in the same transaction. Sibling variations are never
// touched. Returns the previous quantity.
func (s *Store) UpdateVariationQtyTx(ctx context.Context, log *models.StockUpdateLog) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var prevQty int
	err = tx.GetContext(ctx, &prevQty,
		"SELECT marketplace_qty FROM variations WHERE id = $1 AND listing_id = $2 FOR UPDATE",
		log.VariationID, log.ListingID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock variation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE variations SET marketplace_qty = $1 WHERE id = $2",
		log.NewQty, log.VariationID)
	if err != nil {
		return 0, fmt.Errorf("failed to update variation quantity: %w", err)
	}

	log.PrevQty = prevQty
	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock_update_log (id, listing_id, variation_id, sku, prev_qty, new_qty, update_trigger, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		log.ID, log.ListingID, log.VariationID, log.SKU, log.PrevQty, log.NewQty, log.Trigger)
	if err != nil {
		return 0, fmt.Errorf("failed to write stock update log: %w", err)
	}

	return prevQty, tx.Commit()
}

// GetStockUpdateLog retrieves the most recent audit rows for a SKU.
func (s *Store) GetStockUpdateLog(ctx context.Context, sku string, limit int) ([]models.StockUpdateLog, error) {
	var logs []models.StockUpdateLog
	err := s.db.SelectContext(ctx, &logs,
		"SELECT * FROM stock_update_log WHERE sku = $1 ORDER BY created_at DESC LIMIT $2",
		sku, limit)
	return logs, err
}
