package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retail-service/internal/models"
	"retail-service/internal/redisclient"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"go.uber.org/zap"
)

// DefaultReorderLevel seeds inventory rows created without an explicit
// reorder threshold.
const DefaultReorderLevel = 10

// InventoryService manages stock levels and manual adjustments.
type InventoryService struct {
	store  *store.Store
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store *store.Store, cache *redisclient.Client) *InventoryService {
	return &InventoryService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// AdjustInventoryRequest represents a manual stock adjustment
type AdjustInventoryRequest struct {
	AdjustmentType string `json:"adjustment_type" binding:"required"`
	Quantity       int    `json:"quantity"`
	ReorderLevel   int    `json:"reorder_level"`
	Reason         string `json:"reason,omitempty"`
}

// AdjustInventoryResponse reports the before/after quantities
type AdjustInventoryResponse struct {
	InventoryID      int64  `json:"inventory_id"`
	ProductID        int64  `json:"product_id"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	StockStatus      string `json:"stock_status"`
}

// InventoryItemView is an inventory row with derived status
type InventoryItemView struct {
	store.InventoryDetail
	IsLowStock   bool   `json:"is_low_stock"`
	IsOutOfStock bool   `json:"is_out_of_stock"`
	StockStatus  string `json:"stock_status"`
}

// InventoryListView is the inventory screen: rows plus aggregate counts
type InventoryListView struct {
	Items               []InventoryItemView `json:"items"`
	TotalProducts       int                 `json:"total_products"`
	InStockCount        int                 `json:"in_stock_count"`
	LowStockCount       int                 `json:"low_stock_count"`
	OutOfStockCount     int                 `json:"out_of_stock_count"`
	TotalInventoryValue int64               `json:"total_inventory_value"`
	TotalInventoryCost  int64               `json:"total_inventory_cost"`
}

// applyAdjustment computes the post-adjustment quantity. Remove clamps at
// zero; stock never goes negative through a manual adjustment.
func applyAdjustment(current int, adjustmentType string, magnitude int) (int, error) {
	switch adjustmentType {
	case models.AdjustmentAdd:
		return current + magnitude, nil
	case models.AdjustmentRemove:
		if magnitude > current {
			return 0, nil
		}
		return current - magnitude, nil
	case models.AdjustmentSet:
		return magnitude, nil
	default:
		return 0, fmt.Errorf("%w: unknown adjustment type %q", ErrInvalidArgument, adjustmentType)
	}
}

// isPurchaseReason reports whether an adjustment reason marks a stock
// purchase that belongs in the expense ledger.
func isPurchaseReason(reason string) bool {
	return strings.Contains(strings.ToLower(reason), "purchase")
}

// Adjust applies a manual stock adjustment. An Add whose reason mentions a
// purchase also books the expense (cost price times added units) into the
// cash flow ledger, inside the same transaction.
func (s *InventoryService) Adjust(ctx context.Context, inventoryID int64, req *AdjustInventoryRequest) (*AdjustInventoryResponse, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Adjust")
	defer span.End()

	inv, err := s.store.GetInventoryByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: inventory %d", ErrNotFound, inventoryID)
	}

	product, err := s.store.GetProductByID(ctx, inv.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, inv.ProductID)
	}

	newQuantity, err := applyAdjustment(inv.QuantityInStock, req.AdjustmentType, req.Quantity)
	if err != nil {
		return nil, err
	}

	reorderLevel := req.ReorderLevel
	if reorderLevel <= 0 {
		reorderLevel = inv.ReorderLevel
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.SetInventory(ctx, inv.ID, newQuantity, reorderLevel); err != nil {
			return fmt.Errorf("failed to update inventory: %w", err)
		}

		if req.AdjustmentType == models.AdjustmentAdd && isPurchaseReason(req.Reason) {
			ref := fmt.Sprintf("ADJ-%s", time.Now().Format("20060102150405"))
			notes := req.Reason
			cf := &models.CashFlow{
				TransactionDate: time.Now(),
				Type:            models.CashFlowTypeExpense,
				Category:        models.CashFlowCategoryPurchase,
				Description: fmt.Sprintf("Stock adjustment for %s: Added %d units. %s",
					product.Name, req.Quantity, req.Reason),
				Amount:          product.CostPrice * int64(req.Quantity),
				ReferenceNumber: &ref,
				Notes:           &notes,
			}
			if err := tx.CreateCashFlow(ctx, cf); err != nil {
				return fmt.Errorf("failed to record purchase expense: %w", err)
			}
			util.CashFlowEntriesTotal.WithLabelValues(cf.Type, cf.Category).Inc()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.InventoryAdjustmentsTotal.WithLabelValues(req.AdjustmentType).Inc()

	if err := s.cache.SetStock(ctx, inv.ProductID, newQuantity, reorderLevel); err != nil {
		s.logger.Warn("Failed to refresh cached stock",
			zap.Int64("product_id", inv.ProductID),
			zap.Error(err))
	}

	s.logger.Info("Inventory adjusted",
		zap.Int64("inventory_id", inv.ID),
		zap.String("type", req.AdjustmentType),
		zap.Int("previous", inv.QuantityInStock),
		zap.Int("new", newQuantity))

	return &AdjustInventoryResponse{
		InventoryID:      inv.ID,
		ProductID:        inv.ProductID,
		PreviousQuantity: inv.QuantityInStock,
		NewQuantity:      newQuantity,
		StockStatus:      models.StockStatus(newQuantity, reorderLevel),
	}, nil
}

// buildInventoryView derives per-row status and aggregates. When a stock
// filter is set, rows outside it are dropped and the aggregates cover only
// the rows shown.
func buildInventoryView(rows []store.InventoryDetail, stockFilter string) *InventoryListView {
	view := &InventoryListView{Items: make([]InventoryItemView, 0, len(rows))}
	for _, row := range rows {
		item := InventoryItemView{
			InventoryDetail: row,
			IsLowStock:      models.IsLowStock(row.QuantityInStock, row.ReorderLevel),
			IsOutOfStock:    models.IsOutOfStock(row.QuantityInStock),
			StockStatus:     models.StockStatus(row.QuantityInStock, row.ReorderLevel),
		}
		if stockFilter != "" && item.StockStatus != stockFilter {
			continue
		}

		switch item.StockStatus {
		case models.StockStatusInStock:
			view.InStockCount++
		case models.StockStatusLowStock:
			view.LowStockCount++
		case models.StockStatusOutOfStock:
			view.OutOfStockCount++
		}
		view.TotalProducts++
		view.TotalInventoryValue += row.SellingPrice * int64(row.QuantityInStock)
		view.TotalInventoryCost += row.CostPrice * int64(row.QuantityInStock)
		view.Items = append(view.Items, item)
	}
	return view
}

// List retrieves the inventory screen with per-row status and aggregates
func (s *InventoryService) List(ctx context.Context, category, search, stockFilter string) (*InventoryListView, error) {
	rows, err := s.store.ListInventory(ctx, category, search)
	if err != nil {
		return nil, err
	}
	return buildInventoryView(rows, stockFilter), nil
}

// ListBelowReorder retrieves the reorder worklist. This view deliberately
// uses the wider quantity <= reorder level filter rather than the primary
// low-stock derivation; the two disagree between half the reorder level
// and the reorder level.
func (s *InventoryService) ListBelowReorder(ctx context.Context) ([]InventoryItemView, error) {
	rows, err := s.store.ListBelowReorder(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]InventoryItemView, 0, len(rows))
	for _, row := range rows {
		status := models.StockStatusLowStock
		if models.IsOutOfStock(row.QuantityInStock) {
			status = models.StockStatusOutOfStock
		}
		items = append(items, InventoryItemView{
			InventoryDetail: row,
			IsLowStock:      row.QuantityInStock > 0 && models.NeedsReorder(row.QuantityInStock, row.ReorderLevel),
			IsOutOfStock:    models.IsOutOfStock(row.QuantityInStock),
			StockStatus:     status,
		})
	}

	return items, nil
}
