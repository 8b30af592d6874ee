package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockStatusBoundaries(t *testing.T) {
	// reorder level 10: low-stock threshold is 10/2 = 5
	assert.Equal(t, StockStatusOutOfStock, StockStatus(0, 10))
	assert.Equal(t, StockStatusOutOfStock, StockStatus(-3, 10))
	assert.Equal(t, StockStatusLowStock, StockStatus(1, 10))
	assert.Equal(t, StockStatusLowStock, StockStatus(4, 10))
	assert.Equal(t, StockStatusInStock, StockStatus(5, 10))
	assert.Equal(t, StockStatusInStock, StockStatus(100, 10))
}

func TestStockStatusOddReorderLevel(t *testing.T) {
	// integer division: threshold for reorder level 7 is 3
	assert.Equal(t, StockStatusLowStock, StockStatus(2, 7))
	assert.Equal(t, StockStatusInStock, StockStatus(3, 7))
}

func TestStockStatusMutuallyExclusive(t *testing.T) {
	for qty := -2; qty <= 15; qty++ {
		status := StockStatus(qty, 10)
		matches := 0
		if IsOutOfStock(qty) {
			matches++
			assert.Equal(t, StockStatusOutOfStock, status)
		}
		if IsLowStock(qty, 10) {
			matches++
			assert.Equal(t, StockStatusLowStock, status)
		}
		assert.LessOrEqual(t, matches, 1, "qty %d matched both states", qty)
	}
}

func TestNeedsReorderWiderThanLowStock(t *testing.T) {
	// quantity 7 with reorder level 10: on the worklist but not low stock
	assert.True(t, NeedsReorder(7, 10))
	assert.False(t, IsLowStock(7, 10))

	assert.True(t, NeedsReorder(10, 10))
	assert.False(t, NeedsReorder(11, 10))
}

func TestOrderProfit(t *testing.T) {
	order := &Order{Subtotal: 10000, ShippingFee: 500}
	items := []OrderItem{
		{Quantity: 2, UnitPrice: 3000, UnitCost: 2000},
		{Quantity: 1, UnitPrice: 4000, UnitCost: 2500},
	}

	// 10000 - (2*2000 + 2500) - 500
	assert.Equal(t, int64(3000), OrderProfit(order, items))
}

func TestOrderProfitNoItems(t *testing.T) {
	order := &Order{Subtotal: 0, ShippingFee: 500}
	assert.Equal(t, int64(-500), OrderProfit(order, nil))
}

func TestOrderItemLineMath(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: 1500, UnitCost: 1000}

	assert.Equal(t, int64(4500), item.LineTotal())
	assert.Equal(t, int64(3000), item.LineCost())
	assert.Equal(t, int64(1500), item.LineProfit())
}

func TestIsPaid(t *testing.T) {
	assert.False(t, (&Order{Status: OrderStatusPending}).IsPaid())
	assert.False(t, (&Order{Status: OrderStatusCancelled}).IsPaid())
	assert.True(t, (&Order{Status: OrderStatusPaid}).IsPaid())
	assert.True(t, (&Order{Status: OrderStatusShipped}).IsPaid())
	assert.True(t, (&Order{Status: OrderStatusDelivered}).IsPaid())
}

func TestAllocatedShippingPerUnit(t *testing.T) {
	// integer division truncates the remainder
	assert.Equal(t, int64(33), AllocatedShippingPerUnit(100, 3))
	assert.Equal(t, int64(50), AllocatedShippingPerUnit(500, 10))
	assert.Equal(t, int64(0), AllocatedShippingPerUnit(500, 0))
	assert.Equal(t, int64(0), AllocatedShippingPerUnit(0, 10))
}

func TestShipmentTotals(t *testing.T) {
	items := []ShipmentItem{
		{Quantity: 4, UnitCost: 250},
		{Quantity: 6, UnitCost: 100},
	}

	assert.Equal(t, 10, TotalQuantity(items))
	assert.Equal(t, int64(1600), TotalItemCost(items))
}

func TestValidStatuses(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusPending))
	assert.True(t, ValidOrderStatus(OrderStatusDelivered))
	assert.False(t, ValidOrderStatus("Refunded"))
	assert.False(t, ValidOrderStatus(""))

	assert.True(t, ValidShipmentStatus(ShipmentStatusInTransit))
	assert.False(t, ValidShipmentStatus("Lost"))
}
