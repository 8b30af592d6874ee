package service

import (
	"context"
	"testing"
	"time"

	"retail-service/internal/broker"
	"retail-service/internal/models"
	"retail-service/internal/redisclient"
	"retail-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumber(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "ORD-20250314-092653", generateOrderNumber(at))
}

func TestCalculateSubtotal(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 2, UnitPrice: 1000},
		{Quantity: 1, UnitPrice: 500},
	}

	assert.Equal(t, int64(2500), calculateSubtotal(items))
	assert.Equal(t, int64(0), calculateSubtotal(nil))
}

func TestAppendPaymentNote(t *testing.T) {
	existing := "please ship after 5pm"

	combined := appendPaymentNote(&existing, "paid via GCash")
	assert.Equal(t, "please ship after 5pm\nPayment: paid via GCash", *combined)

	fresh := appendPaymentNote(nil, "paid in cash")
	assert.Equal(t, "Payment: paid in cash", *fresh)

	unchanged := appendPaymentNote(&existing, "")
	assert.Equal(t, &existing, unchanged)
}

func TestCheckoutValidation(t *testing.T) {
	// Full checkout needs a database; see the store integration tests.
	t.Skip("Requires mocked store")
}

func TestCancelPendingOrderRestoresInventory(t *testing.T) {
	t.Skip("Integration test - requires database")

	db, err := store.NewStore("host=localhost port=5432 user=postgres password=postgres dbname=retail_test sslmode=disable")
	require.NoError(t, err)
	defer db.Close()

	cache, err := redisclient.NewClient("localhost:6379", "", 0)
	require.NoError(t, err)
	defer cache.Close()

	producer := broker.NewProducer([]string{"localhost:9092"}, "retail-events")
	defer producer.Close()

	publisher := broker.NewEventPublisher(producer)
	catalog := NewCatalogService(db, cache, 10)
	carts := NewCartService(db)
	orders := NewOrderService(db, cache, publisher, 0)
	ctx := context.Background()

	product, err := catalog.CreateProduct(ctx, &CreateProductRequest{
		ItemCode:     "MUG-001",
		Name:         "Ceramic Mug",
		CostPrice:    6000,
		SellingPrice: 10000,
		InitialStock: 10,
	})
	require.NoError(t, err)

	_, err = carts.Add(ctx, "session-cancel-test", product.ID, 3)
	require.NoError(t, err)

	resp, err := orders.Checkout(ctx, &CheckoutRequest{
		SessionID:       "session-cancel-test",
		CustomerName:    "Test Customer",
		ShippingAddress: "123 Main St",
	})
	require.NoError(t, err)

	inv, err := db.GetInventoryByProductID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, 7, inv.QuantityInStock)

	// Cancelling while still Pending hands the units back.
	err = orders.UpdateStatus(ctx, resp.OrderID, models.OrderStatusCancelled)
	require.NoError(t, err)

	inv, err = db.GetInventoryByProductID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, 10, inv.QuantityInStock)
}
