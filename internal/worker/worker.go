package worker

import (
	"context"
	"log"

	"stock-reconciler/internal/broker"
	"stock-reconciler/internal/cache"
	"stock-reconciler/internal/models"
)

// StockEventWorker keeps the reconciliation cache honest: every stock write
// or explicit invalidation published on the stock topic drops exactly the
// affected SKU's entry, on every instance.
type StockEventWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *cache.Cache
}

// NewStockEventWorker creates a new stock event worker
func NewStockEventWorker(consumer *broker.Consumer, c *cache.Cache) *StockEventWorker {
	eventHandler := broker.NewEventHandler()

	w := &StockEventWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		cache:        c,
	}

	eventHandler.OnStockUpdated(w.handleStockUpdated)
	eventHandler.OnStockInvalidated(w.handleStockInvalidated)

	return w
}

// Start starts the worker
func (w *StockEventWorker) Start(ctx context.Context) error {
	log.Println("Starting stock event worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockEventWorker) Stop() error {
	log.Println("Stopping stock event worker...")
	return w.consumer.Close()
}

func (w *StockEventWorker) handleStockUpdated(ctx context.Context, event *models.StockUpdatedEvent) error {
	log.Printf("Stock updated for SKU %s (variation %d), invalidating cache entry",
		event.SKU, event.VariationID)
	return w.cache.Invalidate(ctx, event.SKU)
}

func (w *StockEventWorker) handleStockInvalidated(ctx context.Context, event *models.StockInvalidatedEvent) error {
	return w.cache.Invalidate(ctx, event.SKU)
}
