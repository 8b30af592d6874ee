package service

import (
	"context"
	"time"

	"retail-service/internal/models"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"go.uber.org/zap"
)

// ReportService builds the dashboard from live rows. Every figure is
// recomputed per request; nothing here is persisted.
type ReportService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(store *store.Store) *ReportService {
	return &ReportService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// SalesFigures pairs revenue with realized profit over a window
type SalesFigures struct {
	Sales  int64 `json:"sales"`
	Profit int64 `json:"profit"`
	Orders int   `json:"orders"`
}

// Dashboard is the landing screen: sales and profit over the standard
// windows, lifecycle counts, stock health, and recent activity.
type Dashboard struct {
	TotalSales SalesFigures `json:"total_sales"`
	MonthSales SalesFigures `json:"month_sales"`
	TodaySales SalesFigures `json:"today_sales"`

	PendingOrders   int `json:"pending_orders"`
	PaidOrders      int `json:"paid_orders"`
	ShippedOrders   int `json:"shipped_orders"`
	DeliveredOrders int `json:"delivered_orders"`
	CancelledOrders int `json:"cancelled_orders"`

	PendingShipments   int `json:"pending_shipments"`
	InTransitShipments int `json:"in_transit_shipments"`

	TotalProducts       int   `json:"total_products"`
	LowStockCount       int   `json:"low_stock_count"`
	OutOfStockCount     int   `json:"out_of_stock_count"`
	TotalInventoryValue int64 `json:"total_inventory_value"`

	TotalMoneyIn  int64 `json:"total_money_in"`
	TotalMoneyOut int64 `json:"total_money_out"`

	RecentOrders    []models.Order      `json:"recent_orders"`
	RecentShipments []models.Shipment   `json:"recent_shipments"`
	LowStockItems   []InventoryItemView `json:"low_stock_items"`
}

// inWindow reports whether t falls on or after the window start.
func inWindow(t, start time.Time) bool {
	return !t.Before(start)
}

// accumulateSales folds one paid order into the sales windows. Sales sum
// subtotals, not grand totals, so shipping fees never inflate revenue; the
// month and today windows go by payment date, not order date.
func accumulateSales(dash *Dashboard, order *models.Order, profit int64, startOfDay, startOfMonth time.Time) {
	dash.TotalSales.Sales += order.Subtotal
	dash.TotalSales.Profit += profit
	dash.TotalSales.Orders++

	if order.PaymentDate == nil {
		return
	}
	if inWindow(*order.PaymentDate, startOfMonth) {
		dash.MonthSales.Sales += order.Subtotal
		dash.MonthSales.Profit += profit
		dash.MonthSales.Orders++
	}
	if inWindow(*order.PaymentDate, startOfDay) {
		dash.TodaySales.Sales += order.Subtotal
		dash.TodaySales.Profit += profit
		dash.TodaySales.Orders++
	}
}

// Build assembles the dashboard. Sales and profit come only from orders at
// or past the Paid stage; pending and cancelled orders contribute nothing.
func (s *ReportService) Build(ctx context.Context) (*Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Build")
	defer span.End()

	dash := &Dashboard{}

	paidOrders, err := s.store.ListPaidOrders(ctx)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]int64, len(paidOrders))
	for i := range paidOrders {
		orderIDs[i] = paidOrders[i].ID
	}
	allItems, err := s.store.GetOrderItemsByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	itemsByOrder := make(map[int64][]models.OrderItem, len(paidOrders))
	for _, item := range allItems {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for i := range paidOrders {
		order := &paidOrders[i]
		profit := models.OrderProfit(order, itemsByOrder[order.ID])
		accumulateSales(dash, order, profit, startOfDay, startOfMonth)
	}

	allOrders, err := s.store.ListOrders(ctx, store.OrderFilter{})
	if err != nil {
		return nil, err
	}
	for i := range allOrders {
		switch allOrders[i].Status {
		case models.OrderStatusPending:
			dash.PendingOrders++
		case models.OrderStatusPaid:
			dash.PaidOrders++
		case models.OrderStatusShipped:
			dash.ShippedOrders++
		case models.OrderStatusDelivered:
			dash.DeliveredOrders++
		case models.OrderStatusCancelled:
			dash.CancelledOrders++
		}
	}
	if len(allOrders) > 5 {
		dash.RecentOrders = allOrders[:5]
	} else {
		dash.RecentOrders = allOrders
	}

	shipments, err := s.store.ListShipments(ctx, store.ShipmentFilter{})
	if err != nil {
		return nil, err
	}
	for i := range shipments {
		switch shipments[i].Status {
		case models.ShipmentStatusPending:
			dash.PendingShipments++
		case models.ShipmentStatusInTransit:
			dash.InTransitShipments++
		}
	}
	if len(shipments) > 5 {
		dash.RecentShipments = shipments[:5]
	} else {
		dash.RecentShipments = shipments
	}

	rows, err := s.store.ListInventory(ctx, "", "")
	if err != nil {
		return nil, err
	}
	dash.LowStockItems = make([]InventoryItemView, 0)
	for i := range rows {
		dash.TotalProducts++
		dash.TotalInventoryValue += rows[i].SellingPrice * int64(rows[i].QuantityInStock)

		status := models.StockStatus(rows[i].QuantityInStock, rows[i].ReorderLevel)
		switch status {
		case models.StockStatusLowStock:
			dash.LowStockCount++
		case models.StockStatusOutOfStock:
			dash.OutOfStockCount++
		default:
			continue
		}
		dash.LowStockItems = append(dash.LowStockItems, InventoryItemView{
			InventoryDetail: rows[i],
			IsLowStock:      models.IsLowStock(rows[i].QuantityInStock, rows[i].ReorderLevel),
			IsOutOfStock:    models.IsOutOfStock(rows[i].QuantityInStock),
			StockStatus:     status,
		})
	}

	flows, err := s.store.ListCashFlows(ctx, store.CashFlowFilter{})
	if err != nil {
		return nil, err
	}
	for i := range flows {
		switch flows[i].Type {
		case models.CashFlowTypeIncome:
			dash.TotalMoneyIn += flows[i].Amount
		case models.CashFlowTypeExpense:
			dash.TotalMoneyOut += flows[i].Amount
		}
	}

	return dash, nil
}
