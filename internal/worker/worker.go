package worker

import (
	"context"
	"log"
	"time"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockAlertWorker consumes SaleCompleted events and raises LowStock
// alerts for products the sale pushed to or below their threshold.
type StockAlertWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        service.SaleStore
	publisher    *broker.EventPublisher
	logger       *zap.Logger
}

// NewStockAlertWorker creates a new stock alert worker
func NewStockAlertWorker(
	consumer *broker.Consumer,
	store service.SaleStore,
	publisher *broker.EventPublisher,
) *StockAlertWorker {
	w := &StockAlertWorker{
		consumer:  consumer,
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnSaleCompleted(w.handleSaleCompleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StockAlertWorker) Start(ctx context.Context) error {
	log.Println("Starting stock alert worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockAlertWorker) Stop() error {
	log.Println("Stopping stock alert worker...")
	return w.consumer.Close()
}

// handleSaleCompleted re-reads the sold products and alerts on the ones
// now at or below their low stock threshold.
func (w *StockAlertWorker) handleSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error {
	for _, item := range event.Items {
		product, err := w.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			w.logger.Error("Failed to check stock after sale",
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			continue
		}

		if product.Stock > product.LowStockThreshold {
			continue
		}

		w.logger.Warn("Product low on stock",
			zap.String("product_id", product.ID),
			zap.String("name", product.Name),
			zap.Float64("stock", product.Stock),
			zap.Float64("threshold", product.LowStockThreshold))

		util.StockAlertsTotal.Inc()

		alert := &models.LowStockEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeLowStock,
				Timestamp: time.Now(),
			},
			ProductID: product.ID,
			Name:      product.Name,
			Stock:     product.Stock,
			Threshold: product.LowStockThreshold,
		}

		if err := w.publisher.PublishLowStock(ctx, alert); err != nil {
			w.logger.Error("Failed to publish LowStock event", zap.Error(err))
		}
	}

	return nil
}
