package worker

import (
	"context"
	"log"

	"ordersystem/internal/broker"
	"ordersystem/internal/models"
	"ordersystem/internal/util"

	"go.uber.org/zap"
)

// AuditStore records which events have already been handled.
// Implemented by *store.Store.
type AuditStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// AuditWorker consumes domain events and writes an idempotent audit trail.
// Kafka delivers at-least-once, so every event is checked against the
// processed_events table before it is acted on.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        AuditStore
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, store AuditStore) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnProductChanged(w.handleProductChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}

func (w *AuditWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	w.logger.Info("Order recorded",
		zap.String("event_id", event.EventID),
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Int("product_count", len(event.ProductIDs)))

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *AuditWorker) handleProductChanged(ctx context.Context, event *models.ProductChangedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	w.logger.Info("Catalog change recorded",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("product_id", event.ProductID))

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
