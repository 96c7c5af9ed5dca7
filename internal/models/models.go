package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a marketplace publication. The marketplace-listing collaborator
// supplies this metadata; the engine only reads it.
type Listing struct {
	ID             int64     `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	SKU            string    `db:"sku" json:"sku"`
	MarketplaceQty int       `db:"marketplace_qty" json:"marketplace_qty"`
	HasVariations  bool      `db:"has_variations" json:"has_variations"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Variations []Variation `db:"-" json:"variations,omitempty"`
}

// Variation is one purchasable option of a listing, carrying its own SKU.
type Variation struct {
	ID             int64  `db:"id" json:"id"`
	ListingID      int64  `db:"listing_id" json:"listing_id"`
	SKU            string `db:"sku" json:"sku"`
	MarketplaceQty int    `db:"marketplace_qty" json:"marketplace_qty"`
}

// StockUpdateLog is the audit row written for every variation-targeted stock
// write.
type StockUpdateLog struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ListingID   int64     `db:"listing_id" json:"listing_id"`
	VariationID int64     `db:"variation_id" json:"variation_id"`
	SKU         string    `db:"sku" json:"sku"`
	PrevQty     int       `db:"prev_qty" json:"prev_qty"`
	NewQty      int       `db:"new_qty" json:"new_qty"`
	Trigger     string    `db:"update_trigger" json:"trigger"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Stock update triggers
const (
	TriggerManual         = "manual"
	TriggerBelowThreshold = "below_threshold"
)
