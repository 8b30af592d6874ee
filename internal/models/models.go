package models

import "time"

// All monetary amounts are stored as int64 centavos.

// Product is the master catalog record. Products are soft-deleted
// (IsActive cleared) so historical order lines keep a valid reference.
type Product struct {
	ID           int64     `db:"id" json:"id"`
	ItemCode     string    `db:"item_code" json:"item_code"`
	Name         string    `db:"name" json:"name"`
	Brand        *string   `db:"brand" json:"brand,omitempty"`
	Category     *string   `db:"category" json:"category,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	CostPrice    int64     `db:"cost_price" json:"cost_price"`
	SellingPrice int64     `db:"selling_price" json:"selling_price"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	DateAdded    time.Time `db:"date_added" json:"date_added"`
}

// Inventory tracks stock for exactly one product.
type Inventory struct {
	ID              int64     `db:"id" json:"id"`
	ProductID       int64     `db:"product_id" json:"product_id"`
	QuantityInStock int       `db:"quantity_in_stock" json:"quantity_in_stock"`
	ReorderLevel    int       `db:"reorder_level" json:"reorder_level"`
	LastUpdated     time.Time `db:"last_updated" json:"last_updated"`
}

// Cart is the per-session shopping cart, created lazily on first add
// and removed on checkout.
type Cart struct {
	ID          int64     `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// CartItem is a single product line in a cart.
type CartItem struct {
	ID        int64     `db:"id" json:"id"`
	CartID    int64     `db:"cart_id" json:"cart_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	DateAdded time.Time `db:"date_added" json:"date_added"`
}

// Order is an immutable snapshot of a checked-out cart.
type Order struct {
	ID              int64      `db:"id" json:"id"`
	OrderNumber     string     `db:"order_number" json:"order_number"`
	OrderDate       time.Time  `db:"order_date" json:"order_date"`
	CustomerName    string     `db:"customer_name" json:"customer_name"`
	ShippingAddress string     `db:"shipping_address" json:"shipping_address"`
	ContactNumber   *string    `db:"contact_number" json:"contact_number,omitempty"`
	Subtotal        int64      `db:"subtotal" json:"subtotal"`
	ShippingFee     int64      `db:"shipping_fee" json:"shipping_fee"`
	TotalAmount     int64      `db:"total_amount" json:"total_amount"`
	Status          string     `db:"status" json:"status"`
	PaymentDate     *time.Time `db:"payment_date" json:"payment_date,omitempty"`
	PaymentMethod   *string    `db:"payment_method" json:"payment_method,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
}

// OrderItem captures product name, price and cost at order time, so later
// catalog edits never alter historical orders.
type OrderItem struct {
	ID          int64  `db:"id" json:"id"`
	OrderID     int64  `db:"order_id" json:"order_id"`
	ProductID   int64  `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int    `db:"quantity" json:"quantity"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
	UnitCost    int64  `db:"unit_cost" json:"unit_cost"`
}

// Shipment is an incoming supplier delivery batch.
type Shipment struct {
	ID               int64      `db:"id" json:"id"`
	ShipmentNumber   string     `db:"shipment_number" json:"shipment_number"`
	StoreSource      string     `db:"store_source" json:"store_source"`
	OrderDate        time.Time  `db:"order_date" json:"order_date"`
	ExpectedArrival  *time.Time `db:"expected_arrival" json:"expected_arrival,omitempty"`
	ReceivedDate     *time.Time `db:"received_date" json:"received_date,omitempty"`
	TotalShippingFee int64      `db:"total_shipping_fee" json:"total_shipping_fee"`
	Status           string     `db:"status" json:"status"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
}

// ShipmentItem is one delivery line. ProductID is nil until the item is
// resolved to a product at receipt time (or pre-linked at creation).
type ShipmentItem struct {
	ID           int64      `db:"id" json:"id"`
	ShipmentID   int64      `db:"shipment_id" json:"shipment_id"`
	ProductID    *int64     `db:"product_id" json:"product_id,omitempty"`
	ItemName     string     `db:"item_name" json:"item_name"`
	ItemCode     string     `db:"item_code" json:"item_code"`
	Category     *string    `db:"category" json:"category,omitempty"`
	Brand        *string    `db:"brand" json:"brand,omitempty"`
	UnitCost     int64      `db:"unit_cost" json:"unit_cost"`
	Quantity     int        `db:"quantity" json:"quantity"`
	IsReceived   bool       `db:"is_received" json:"is_received"`
	ReceivedDate *time.Time `db:"received_date" json:"received_date,omitempty"`
}

// CashFlow is an append-only ledger entry, optionally linked to the order
// or shipment that produced it.
type CashFlow struct {
	ID              int64     `db:"id" json:"id"`
	TransactionDate time.Time `db:"transaction_date" json:"transaction_date"`
	Type            string    `db:"type" json:"type"`
	Category        string    `db:"category" json:"category"`
	Description     string    `db:"description" json:"description"`
	Amount          int64     `db:"amount" json:"amount"`
	ReferenceNumber *string   `db:"reference_number" json:"reference_number,omitempty"`
	OrderID         *int64    `db:"order_id" json:"order_id,omitempty"`
	ShipmentID      *int64    `db:"shipment_id" json:"shipment_id,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPending   = "Pending"
	OrderStatusPaid      = "Paid"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// Shipment statuses
const (
	ShipmentStatusPending   = "Pending"
	ShipmentStatusInTransit = "In Transit"
	ShipmentStatusReceived  = "Received"
	ShipmentStatusCancelled = "Cancelled"
)

// Cash flow types
const (
	CashFlowTypeIncome  = "Income"
	CashFlowTypeExpense = "Expense"
)

// Cash flow categories
const (
	CashFlowCategorySales     = "Sales"
	CashFlowCategoryLogistics = "Logistics"
	CashFlowCategoryShipping  = "Shipping"
	CashFlowCategoryPurchase  = "Purchase"
	CashFlowCategoryOther     = "Other"
)

// Inventory adjustment types
const (
	AdjustmentAdd    = "Add"
	AdjustmentRemove = "Remove"
	AdjustmentSet    = "Set"
)

// Stock status labels
const (
	StockStatusInStock    = "In Stock"
	StockStatusLowStock   = "Low Stock"
	StockStatusOutOfStock = "Out of Stock"
)

// ValidOrderStatus reports whether s is a recognized order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidShipmentStatus reports whether s is a recognized shipment status.
func ValidShipmentStatus(s string) bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusInTransit,
		ShipmentStatusReceived, ShipmentStatusCancelled:
		return true
	}
	return false
}

// IsPaid reports whether payment has been recorded for the order, i.e. the
// order is at or past the Paid stage of the lifecycle.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusShipped || o.Status == OrderStatusDelivered
}

// LineTotal is quantity times the snapshotted unit price.
func (oi *OrderItem) LineTotal() int64 {
	return oi.UnitPrice * int64(oi.Quantity)
}

// LineCost is quantity times the snapshotted unit cost.
func (oi *OrderItem) LineCost() int64 {
	return oi.UnitCost * int64(oi.Quantity)
}

// LineProfit is the margin on this line.
func (oi *OrderItem) LineProfit() int64 {
	return (oi.UnitPrice - oi.UnitCost) * int64(oi.Quantity)
}

// OrderProfit computes profit for an order from its snapshotted items:
// subtotal minus item costs minus the shipping fee. Reported, never stored.
func OrderProfit(o *Order, items []OrderItem) int64 {
	var cost int64
	for i := range items {
		cost += items[i].LineCost()
	}
	return o.Subtotal - cost - o.ShippingFee
}

// IsOutOfStock reports whether a quantity counts as out of stock.
func IsOutOfStock(quantity int) bool {
	return quantity <= 0
}

// IsLowStock reports whether stock is positive but below half the reorder
// level. Integer division: an odd reorder level rounds the threshold down.
func IsLowStock(quantity, reorderLevel int) bool {
	return quantity > 0 && quantity < reorderLevel/2
}

// StockStatus derives the display status for a (quantity, reorder level)
// pair. Exactly one of the three states holds for any input. Every view
// goes through this derivation; do not inline the thresholds.
func StockStatus(quantity, reorderLevel int) string {
	if IsOutOfStock(quantity) {
		return StockStatusOutOfStock
	}
	if IsLowStock(quantity, reorderLevel) {
		return StockStatusLowStock
	}
	return StockStatusInStock
}

// StockStatus derives the status of this inventory row.
func (inv *Inventory) StockStatus() string {
	return StockStatus(inv.QuantityInStock, inv.ReorderLevel)
}

// NeedsReorder reports whether stock has fallen to or below the reorder
// level. This is the low-stock list filter and is deliberately wider than
// IsLowStock; the two views disagree for quantities between half the
// reorder level and the reorder level.
func NeedsReorder(quantity, reorderLevel int) bool {
	return quantity <= reorderLevel
}

// TotalQuantity sums the item quantities in a shipment.
func TotalQuantity(items []ShipmentItem) int {
	var n int
	for i := range items {
		n += items[i].Quantity
	}
	return n
}

// TotalItemCost sums unit cost times quantity over shipment items.
func TotalItemCost(items []ShipmentItem) int64 {
	var total int64
	for i := range items {
		total += items[i].UnitCost * int64(items[i].Quantity)
	}
	return total
}

// AllocatedShippingPerUnit spreads the batch shipping fee evenly over every
// unit in the shipment. Zero when the shipment has no units. Recomputed on
// demand, never stored.
func AllocatedShippingPerUnit(totalShippingFee int64, totalQuantity int) int64 {
	if totalQuantity <= 0 {
		return 0
	}
	return totalShippingFee / int64(totalQuantity)
}
