package worker

import (
	"context"

	"retail-service/internal/broker"
	"retail-service/internal/models"
	"retail-service/internal/redisclient"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"go.uber.org/zap"
)

// StockCacheWorker re-syncs the Redis stock cache from Postgres whenever an
// event touches inventory. The services already nudge the cache inline; this
// worker repairs drift from missed nudges and cache misses by re-reading the
// authoritative quantity.
type StockCacheWorker struct {
	store    *store.Store
	cache    *redisclient.Client
	consumer *broker.Consumer
	handler  *broker.EventHandler
	logger   *zap.Logger
}

// NewStockCacheWorker creates the worker and registers its event handlers
func NewStockCacheWorker(store *store.Store, cache *redisclient.Client, consumer *broker.Consumer) *StockCacheWorker {
	w := &StockCacheWorker{
		store:    store,
		cache:    cache,
		consumer: consumer,
		handler:  broker.NewEventHandler(),
		logger:   util.GetLogger(),
	}

	w.handler.OnOrderPlaced(w.handleOrderPlaced)
	w.handler.OnOrderCancelled(w.handleOrderCancelled)
	w.handler.OnShipmentReceived(w.handleShipmentReceived)

	return w
}

// Start consumes events until the context is cancelled
func (w *StockCacheWorker) Start(ctx context.Context) error {
	w.logger.Info("Stock cache worker starting")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop closes the underlying consumer
func (w *StockCacheWorker) Stop() {
	if err := w.consumer.Close(); err != nil {
		w.logger.Warn("Failed to close consumer", zap.Error(err))
	}
}

func (w *StockCacheWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	w.logger.Debug("Re-syncing stock cache for placed order",
		zap.Int64("order_id", event.OrderID))
	for _, line := range event.Lines {
		if err := w.syncProduct(ctx, line.ProductID); err != nil {
			return err
		}
	}
	return nil
}

func (w *StockCacheWorker) handleOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	w.logger.Debug("Re-syncing stock cache for cancelled order",
		zap.Int64("order_id", event.OrderID))
	for _, line := range event.Lines {
		if err := w.syncProduct(ctx, line.ProductID); err != nil {
			return err
		}
	}
	return nil
}

func (w *StockCacheWorker) handleShipmentReceived(ctx context.Context, event *models.ShipmentReceivedEvent) error {
	w.logger.Debug("Re-syncing stock cache for received shipment",
		zap.Int64("shipment_id", event.ShipmentID))
	for _, line := range event.Lines {
		if err := w.syncProduct(ctx, line.ProductID); err != nil {
			return err
		}
	}
	return nil
}

// syncProduct overwrites the cached stock entry with the database row. A
// product without an inventory row is dropped from the cache instead.
func (w *StockCacheWorker) syncProduct(ctx context.Context, productID int64) error {
	inv, err := w.store.GetInventoryByProductID(ctx, productID)
	if err != nil {
		return err
	}
	if inv == nil {
		if err := w.cache.DeleteStock(ctx, productID); err != nil {
			w.logger.Warn("Failed to drop cached stock",
				zap.Int64("product_id", productID), zap.Error(err))
		}
		return nil
	}

	if err := w.cache.SetStock(ctx, productID, inv.QuantityInStock, inv.ReorderLevel); err != nil {
		w.logger.Warn("Failed to re-sync cached stock",
			zap.Int64("product_id", productID), zap.Error(err))
	}
	return nil
}
