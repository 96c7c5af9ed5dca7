package service

import (
	"context"
	"fmt"
	"time"

	"stock-reconciler/internal/cache"
	"stock-reconciler/internal/models"
	"stock-reconciler/internal/store"
	"stock-reconciler/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockEventPublisher publishes stock domain events to the broker.
// Implemented by broker.EventPublisher.
type StockEventPublisher interface {
	PublishStockUpdated(ctx context.Context, event *models.StockUpdatedEvent) error
	PublishStockInvalidated(ctx context.Context, event *models.StockInvalidatedEvent) error
}

// StockUpdateService applies variation-targeted stock writes. A write hits
// exactly one variation's SKU: the audit row, the published event, and the
// cache invalidation all carry that SKU and never touch a sibling.
type StockUpdateService struct {
	store          *store.Store
	cache          *cache.Cache
	eventPublisher StockEventPublisher
	logger         *zap.Logger
}

// NewStockUpdateService creates a new stock update service
func NewStockUpdateService(
	store *store.Store,
	cache *cache.Cache,
	eventPublisher StockEventPublisher,
) *StockUpdateService {
	return &StockUpdateService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// UpdateVariationStockRequest is a request to set one variation's quantity.
type UpdateVariationStockRequest struct {
	Quantity *int   `json:"quantity" binding:"required"`
	Trigger  string `json:"trigger,omitempty"`
}

// UpdateVariationStock sets one variation's marketplace quantity.
func (s *StockUpdateService) UpdateVariationStock(
	ctx context.Context,
	listingID, variationID int64,
	req *UpdateVariationStockRequest,
) (*models.StockUpdateLog, error) {
	ctx, span := util.StartSpan(ctx, "StockUpdateService.UpdateVariationStock")
	defer span.End()

	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must be zero or positive")
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = models.TriggerManual
	}
	if !knownTrigger(trigger) {
		return nil, fmt.Errorf("unknown trigger %q", trigger)
	}

	variation, err := s.store.GetVariationByID(ctx, variationID)
	if err != nil {
		return nil, err
	}
	if variation.ListingID != listingID {
		return nil, fmt.Errorf("variation %d does not belong to listing %d", variationID, listingID)
	}
	if variation.SKU == "" {
		return nil, fmt.Errorf("variation %d has no SKU", variationID)
	}

	logEntry := &models.StockUpdateLog{
		ID:          uuid.New(),
		ListingID:   listingID,
		VariationID: variationID,
		SKU:         variation.SKU,
		NewQty:      *req.Quantity,
		Trigger:     trigger,
	}

	prevQty, err := s.store.UpdateVariationQtyTx(ctx, logEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to update variation stock: %w", err)
	}
	logEntry.PrevQty = prevQty
	logEntry.CreatedAt = time.Now()

	util.StockUpdatesTotal.WithLabelValues(trigger).Inc()
	s.logger.Info("Variation stock updated",
		zap.Int64("listing_id", listingID),
		zap.Int64("variation_id", variationID),
		zap.String("sku", variation.SKU),
		zap.Int("prev_qty", prevQty),
		zap.Int("new_qty", *req.Quantity))

	event := &models.StockUpdatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStockUpdated,
			Timestamp: time.Now(),
		},
		ListingID:   listingID,
		VariationID: variationID,
		SKU:         variation.SKU,
		PrevQty:     prevQty,
		NewQty:      *req.Quantity,
		Trigger:     trigger,
	}
	if err := s.eventPublisher.PublishStockUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish StockUpdated event", zap.Error(err))
	}

	// Local invalidation; sibling instances drop theirs via the event.
	if err := s.cache.Invalidate(ctx, variation.SKU); err != nil {
		s.logger.Error("Failed to invalidate cache after stock update",
			zap.String("sku", variation.SKU),
			zap.Error(err))
	}

	return logEntry, nil
}

// InvalidateStock drops a SKU's cache entry and broadcasts the invalidation
// so sibling instances drop theirs too. A publish failure degrades to
// local-only invalidation rather than failing the request.
func (s *StockUpdateService) InvalidateStock(ctx context.Context, sku string) error {
	ctx, span := util.StartSpan(ctx, "StockUpdateService.InvalidateStock")
	defer span.End()

	event := &models.StockInvalidatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStockInvalidated,
			Timestamp: time.Now(),
		},
		SKU: sku,
	}
	if err := s.eventPublisher.PublishStockInvalidated(ctx, event); err != nil {
		s.logger.Error("Failed to publish StockInvalidated event",
			zap.String("sku", sku),
			zap.Error(err))
	}

	return s.cache.Invalidate(ctx, sku)
}

// knownTrigger reports whether a trigger belongs to the closed vocabulary
// the audit log records.
func knownTrigger(trigger string) bool {
	return trigger == models.TriggerManual || trigger == models.TriggerBelowThreshold
}
