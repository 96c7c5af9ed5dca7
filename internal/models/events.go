package models

import "time"

// Event types
const (
	EventTypeStockUpdated     = "STOCK_UPDATED"
	EventTypeStockInvalidated = "STOCK_INVALIDATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// StockUpdatedEvent is published after a variation-targeted stock write.
// Consumers use it to drop exactly the affected SKU from their caches;
// sibling variations are never touched.
type StockUpdatedEvent struct {
	BaseEvent
	ListingID   int64  `json:"listing_id"`
	VariationID int64  `json:"variation_id"`
	SKU         string `json:"sku"`
	PrevQty     int    `json:"prev_qty"`
	NewQty      int    `json:"new_qty"`
	Trigger     string `json:"trigger"`
}

// StockInvalidatedEvent is published when a cache entry is explicitly
// invalidated through the API, so sibling instances drop theirs too.
type StockInvalidatedEvent struct {
	BaseEvent
	SKU string `json:"sku"`
}
