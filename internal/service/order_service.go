package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retail-service/internal/broker"
	"retail-service/internal/models"
	"retail-service/internal/redisclient"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService converts carts into orders and drives the order lifecycle,
// reconciling inventory and the cash flow ledger on each transition.
type OrderService struct {
	store          *store.Store
	cache          *redisclient.Client
	eventPublisher *broker.EventPublisher
	shippingFee    int64
	logger         *zap.Logger
}

// NewOrderService creates a new order service. defaultShippingFee applies to
// checkouts that do not name a fee.
func NewOrderService(store *store.Store, cache *redisclient.Client, eventPublisher *broker.EventPublisher, defaultShippingFee int64) *OrderService {
	return &OrderService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		shippingFee:    defaultShippingFee,
		logger:         util.GetLogger(),
	}
}

// CheckoutRequest represents a cart-to-order conversion
type CheckoutRequest struct {
	SessionID       string  `json:"session_id" binding:"required"`
	CustomerName    string  `json:"customer_name"`
	ShippingAddress string  `json:"shipping_address"`
	ContactNumber   *string `json:"contact_number,omitempty"`
	ShippingFee     *int64  `json:"shipping_fee,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// CheckoutResponse identifies the created order
type CheckoutResponse struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Subtotal    int64  `json:"subtotal"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
}

// ProcessPaymentRequest records payment for a pending order
type ProcessPaymentRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required"`
	PaymentNotes  *string `json:"payment_notes,omitempty"`
}

// ProcessPaymentResponse reports the paid order and its realized profit
type ProcessPaymentResponse struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	Profit      int64  `json:"profit"`
}

// OrderDetail is an order with its snapshot lines and derived profit
type OrderDetail struct {
	Order  models.Order       `json:"order"`
	Items  []models.OrderItem `json:"items"`
	Profit int64              `json:"profit"`
}

// OrderListView is a filtered page of orders
type OrderListView struct {
	Orders      []models.Order `json:"orders"`
	TotalOrders int            `json:"total_orders"`
	TotalPages  int            `json:"total_pages"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
}

// generateOrderNumber derives the public order number from the order time.
func generateOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", t.Format("20060102"), t.Format("150405"))
}

// calculateSubtotal sums unit price times quantity over snapshot lines.
func calculateSubtotal(items []models.OrderItem) int64 {
	var subtotal int64
	for i := range items {
		subtotal += items[i].LineTotal()
	}
	return subtotal
}

// appendPaymentNote folds a payment note into the order's existing notes.
func appendPaymentNote(existing *string, note string) *string {
	if note == "" {
		return existing
	}
	entry := "Payment: " + note
	if existing == nil || *existing == "" {
		return &entry
	}
	combined := *existing + "\n" + entry
	return &combined
}

// Checkout snapshots the session's cart into a pending order, deducts every
// line from inventory and deletes the cart, all in one transaction. Stock
// sufficiency is not checked here; a stale cart can drive the quantity
// negative (see DESIGN.md).
func (s *OrderService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	cart, err := s.store.GetCartBySessionID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	var cartItems []models.CartItem
	if cart != nil {
		cartItems, err = s.store.GetCartItems(ctx, cart.ID)
		if err != nil {
			return nil, err
		}
	}
	if cart == nil || len(cartItems) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.ShippingAddress) == "" {
		util.CheckoutFailedTotal.WithLabelValues("missing_fields").Inc()
		return nil, fmt.Errorf("%w: customer name and shipping address are required", ErrValidation)
	}

	productIDs := make([]int64, len(cartItems))
	for i, item := range cartItems {
		productIDs[i] = item.ProductID
	}
	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[int64]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	shippingFee := s.shippingFee
	if req.ShippingFee != nil {
		shippingFee = *req.ShippingFee
	}

	now := time.Now()
	order := &models.Order{
		OrderNumber:     generateOrderNumber(now),
		OrderDate:       now,
		CustomerName:    req.CustomerName,
		ShippingAddress: req.ShippingAddress,
		ContactNumber:   req.ContactNumber,
		ShippingFee:     shippingFee,
		Status:          models.OrderStatusPending,
		Notes:           req.Notes,
	}

	// Snapshot lines at current catalog prices; later edits to the
	// product never alter this order.
	items := make([]models.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		product := productMap[ci.ProductID]
		if product == nil {
			continue
		}
		items = append(items, models.OrderItem{
			ProductID:   ci.ProductID,
			ProductName: product.Name,
			Quantity:    ci.Quantity,
			UnitPrice:   product.SellingPrice,
			UnitCost:    product.CostPrice,
		})
	}

	order.Subtotal = calculateSubtotal(items)
	order.TotalAmount = order.Subtotal + order.ShippingFee

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.CreateOrderItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			if err := tx.AddStock(ctx, items[i].ProductID, -items[i].Quantity); err != nil {
				return fmt.Errorf("failed to deduct stock: %w", err)
			}
		}
		if err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("db_error").Inc()
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_amount", order.TotalAmount))

	s.adjustCachedStock(ctx, items, -1)

	lines := make([]models.OrderLineData, len(items))
	for i, item := range items {
		lines[i] = models.OrderLineData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		Lines:       lines,
	}
	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return &CheckoutResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Subtotal:    order.Subtotal,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
	}, nil
}

// ProcessPayment moves a pending order to Paid and books the income into
// the cash flow ledger, in one transaction.
func (s *OrderService) ProcessPayment(ctx context.Context, orderID int64, req *ProcessPaymentRequest) (*ProcessPaymentResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ProcessPayment")
	defer span.End()

	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %s has already been processed", ErrInvalidState, order.OrderNumber)
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	notes := order.Notes
	if req.PaymentNotes != nil {
		notes = appendPaymentNote(order.Notes, *req.PaymentNotes)
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.MarkOrderPaid(ctx, orderID, paymentDate, req.PaymentMethod, notes); err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		cfNotes := fmt.Sprintf("Customer: %s, Payment Method: %s", order.CustomerName, req.PaymentMethod)
		cf := &models.CashFlow{
			TransactionDate: paymentDate,
			Type:            models.CashFlowTypeIncome,
			Category:        models.CashFlowCategorySales,
			Description:     fmt.Sprintf("Payment received for Order %s", order.OrderNumber),
			Amount:          order.TotalAmount,
			ReferenceNumber: &order.OrderNumber,
			OrderID:         &order.ID,
			Notes:           &cfNotes,
		}
		if err := tx.CreateCashFlow(ctx, cf); err != nil {
			return fmt.Errorf("failed to record sales income: %w", err)
		}
		util.CashFlowEntriesTotal.WithLabelValues(cf.Type, cf.Category).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.OrdersPaidTotal.Inc()
	s.logger.Info("Payment processed",
		zap.Int64("order_id", orderID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("amount", order.TotalAmount))

	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.TotalAmount,
		Method:      req.PaymentMethod,
	}
	if err := s.eventPublisher.PublishOrderPaid(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return &ProcessPaymentResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      models.OrderStatusPaid,
		TotalAmount: order.TotalAmount,
		Profit:      models.OrderProfit(order, items),
	}, nil
}

// UpdateStatus overwrites an order's status. Cancelling a pending order
// restores every line's quantity to inventory; any other transition has no
// side effect. The lifecycle does not police skips: the admin is trusted.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: unknown order status %q", ErrInvalidArgument, status)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	if status == models.OrderStatusCancelled && order.Status == models.OrderStatusPending {
		items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		err = s.store.WithTx(ctx, func(tx *store.Store) error {
			if err := s.restoreInventory(ctx, tx, items); err != nil {
				return err
			}
			return tx.UpdateOrderStatus(ctx, orderID, status)
		})
		if err != nil {
			return err
		}

		util.OrdersCancelledTotal.Inc()
		s.logger.Info("Order cancelled, inventory restored",
			zap.Int64("order_id", orderID),
			zap.String("order_number", order.OrderNumber))

		s.adjustCachedStock(ctx, items, 1)

		lines := make([]models.OrderLineData, len(items))
		for i, item := range items {
			lines[i] = models.OrderLineData{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
		}
		event := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Lines:       lines,
		}
		if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}

		return nil
	}

	return s.store.UpdateOrderStatus(ctx, orderID, status)
}

// Delete removes an order that is still Pending or already Cancelled. A
// pending order has its lines restored to inventory first, in the same
// transaction as the removal.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Delete")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusCancelled {
		return fmt.Errorf("%w: cannot delete orders that have been paid, shipped, or delivered", ErrInvalidState)
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	restoring := order.Status == models.OrderStatusPending
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if restoring {
			if err := s.restoreInventory(ctx, tx, items); err != nil {
				return err
			}
		}
		return tx.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		return err
	}

	util.OrdersDeletedTotal.Inc()
	if restoring {
		s.adjustCachedStock(ctx, items, 1)
	}

	s.logger.Info("Order deleted",
		zap.Int64("order_id", orderID),
		zap.String("order_number", order.OrderNumber))

	return nil
}

// restoreInventory puts every line's quantity back into stock.
func (s *OrderService) restoreInventory(ctx context.Context, tx *store.Store, items []models.OrderItem) error {
	for _, item := range items {
		if err := tx.AddStock(ctx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

// adjustCachedStock shifts the advisory stock cache by sign*quantity for
// every line. Failures are logged; the cache worker re-syncs later.
func (s *OrderService) adjustCachedStock(ctx context.Context, items []models.OrderItem, sign int) {
	for _, item := range items {
		if _, err := s.cache.AdjustStock(ctx, item.ProductID, sign*item.Quantity); err != nil {
			s.logger.Warn("Failed to adjust cached stock",
				zap.Int64("product_id", item.ProductID),
				zap.Error(err))
		}
	}
}

// Get retrieves an order with its snapshot lines
func (s *OrderService) Get(ctx context.Context, orderID int64) (*OrderDetail, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{
		Order:  *order,
		Items:  items,
		Profit: models.OrderProfit(order, items),
	}, nil
}

// TrackByNumber retrieves an order by its public order number
func (s *OrderService) TrackByNumber(ctx context.Context, orderNumber string) (*OrderDetail, error) {
	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderNumber)
	}

	return s.Get(ctx, order.ID)
}

// List retrieves a filtered page of orders
func (s *OrderService) List(ctx context.Context, filter store.OrderFilter, page int) (*OrderListView, error) {
	const pageSize = 10
	if page < 1 {
		page = 1
	}

	total, err := s.store.CountOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &OrderListView{
		Orders:      orders,
		TotalOrders: total,
		TotalPages:  totalPages,
		Page:        page,
		PageSize:    pageSize,
	}, nil
}
