package models

import "time"

// Event types
const (
	EventTypeOrderPlaced      = "ORDER_PLACED"
	EventTypeOrderPaid        = "ORDER_PAID"
	EventTypeOrderCancelled   = "ORDER_CANCELLED"
	EventTypeShipmentCreated  = "SHIPMENT_CREATED"
	EventTypeShipmentReceived = "SHIPMENT_RECEIVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderLineData represents a line in order events
type OrderLineData struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// OrderPlacedEvent published when checkout converts a cart into an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount int64           `json:"total_amount"`
	Lines       []OrderLineData `json:"lines"`
}

// OrderPaidEvent published when payment is recorded for an order
type OrderPaidEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
}

// OrderCancelledEvent published when a pending order is cancelled and its
// stock restored
type OrderCancelledEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Lines       []OrderLineData `json:"lines"`
}

// ShipmentLineData represents a received line in shipment events. Lines only
// appear here once resolved, so the product ID is always set.
type ShipmentLineData struct {
	ProductID int64  `json:"product_id"`
	ItemCode  string `json:"item_code"`
	Quantity  int    `json:"quantity"`
	UnitCost  int64  `json:"unit_cost"`
}

// ShipmentCreatedEvent published when a supplier shipment is recorded
type ShipmentCreatedEvent struct {
	BaseEvent
	ShipmentID     int64  `json:"shipment_id"`
	ShipmentNumber string `json:"shipment_number"`
	StoreSource    string `json:"store_source"`
	TotalCost      int64  `json:"total_cost"`
}

// ShipmentReceivedEvent published after a receipt pass over shipment items
type ShipmentReceivedEvent struct {
	BaseEvent
	ShipmentID     int64              `json:"shipment_id"`
	ShipmentNumber string             `json:"shipment_number"`
	Complete       bool               `json:"complete"`
	Lines          []ShipmentLineData `json:"lines"`
}
