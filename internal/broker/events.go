package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"stock-reconciler/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing stock domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishStockUpdated publishes StockUpdated event. Keyed by SKU so all
// events for one SKU stay ordered on one partition.
func (ep *EventPublisher) PublishStockUpdated(ctx context.Context, event *models.StockUpdatedEvent) error {
	key := fmt.Sprintf("sku-%s", event.SKU)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishStockInvalidated publishes StockInvalidated event
func (ep *EventPublisher) PublishStockInvalidated(ctx context.Context, event *models.StockInvalidatedEvent) error {
	key := fmt.Sprintf("sku-%s", event.SKU)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onStockUpdated     func(context.Context, *models.StockUpdatedEvent) error
	onStockInvalidated func(context.Context, *models.StockInvalidatedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnStockUpdated registers a handler for StockUpdated events
func (eh *EventHandler) OnStockUpdated(handler func(context.Context, *models.StockUpdatedEvent) error) {
	eh.onStockUpdated = handler
}

// OnStockInvalidated registers a handler for StockInvalidated events
func (eh *EventHandler) OnStockInvalidated(handler func(context.Context, *models.StockInvalidatedEvent) error) {
	eh.onStockInvalidated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeStockUpdated:
		if eh.onStockUpdated != nil {
			var event models.StockUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockUpdated event: %w", err)
			}
			return eh.onStockUpdated(ctx, &event)
		}

	case models.EventTypeStockInvalidated:
		if eh.onStockInvalidated != nil {
			var event models.StockInvalidatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockInvalidated event: %w", err)
			}
			return eh.onStockInvalidated(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
