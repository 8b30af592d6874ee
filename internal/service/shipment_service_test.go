package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"retail-service/internal/broker"
	"retail-service/internal/models"
	"retail-service/internal/redisclient"
	"retail-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShipmentNumber(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	number := generateShipmentNumber(at)

	require.True(t, strings.HasPrefix(number, "SHP-20250314092653-"))
	assert.Len(t, number, len("SHP-20250314092653-")+4)
}

func TestDefaultSellingPrice(t *testing.T) {
	// 50% markup over landed cost, integer division
	assert.Equal(t, int64(150), defaultSellingPrice(100))
	assert.Equal(t, int64(151), defaultSellingPrice(101))
	assert.Equal(t, int64(0), defaultSellingPrice(0))
}

func TestClassifyLine(t *testing.T) {
	received := &models.ShipmentItem{IsReceived: true}
	assert.Equal(t, lineAlreadyReceived, classifyLine(received, true))
	assert.Equal(t, lineAlreadyReceived, classifyLine(received, false))

	open := &models.ShipmentItem{}
	assert.Equal(t, lineOutstanding, classifyLine(open, false))

	// A requested line completes the pass even if resolution finds no
	// product for it.
	assert.Equal(t, lineReceivable, classifyLine(open, true))
}

func TestShipmentLines(t *testing.T) {
	lines := shipmentLines([]CreateShipmentItemRequest{
		{ItemName: "Ceramic Mug", ItemCode: "MUG-001", UnitCost: 4000, Quantity: 5},
		{ItemName: "   ", Quantity: 3},
		{ItemName: "Dinner Plate", ItemCode: "PLT-002", UnitCost: 6000, Quantity: 0},
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "Ceramic Mug", lines[0].ItemName)
	assert.Equal(t, 5, lines[0].Quantity)
	// quantities persist as submitted, zero included
	assert.Equal(t, 0, lines[1].Quantity)
}

func TestReceiveUnresolvedItemCompletesShipment(t *testing.T) {
	t.Skip("Integration test - requires database")

	db, err := store.NewStore("host=localhost port=5432 user=postgres password=postgres dbname=retail_test sslmode=disable")
	require.NoError(t, err)
	defer db.Close()

	cache, err := redisclient.NewClient("localhost:6379", "", 0)
	require.NoError(t, err)
	defer cache.Close()

	producer := broker.NewProducer([]string{"localhost:9092"}, "retail-events")
	defer producer.Close()

	svc := NewShipmentService(db, cache, broker.NewEventPublisher(producer), 10)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateShipmentRequest{
		StoreSource: "Acme Wholesale",
		Items: []CreateShipmentItemRequest{
			{ItemName: "Mystery Widget", ItemCode: "NOPE-404", UnitCost: 4000, Quantity: 5},
		},
	})
	require.NoError(t, err)

	// No matching product, no create directive, no pre-link: the line still
	// completes and the shipment lands as Received.
	resp, err := svc.Receive(ctx, created.Shipment.ID, &ReceiveShipmentRequest{
		Items: []ReceiveItemRequest{{ShipmentItemID: created.Items[0].ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentStatusReceived, resp.Status)
	assert.Equal(t, 1, resp.SkippedCount)
	assert.Equal(t, 0, resp.ReceivedCount)

	items, err := db.GetShipmentItems(ctx, created.Shipment.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsReceived)
	assert.Nil(t, items[0].ProductID)
}

func TestReceiveAlreadyReceivedItemIsNoOp(t *testing.T) {
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
	svc := NewShipmentService(db, cache, publisher, 10)
	ctx := context.Background()

	product, err := catalog.CreateProduct(ctx, &CreateProductRequest{
		ItemCode:     "MUG-001",
		Name:         "Ceramic Mug",
		CostPrice:    4000,
		SellingPrice: 6000,
		InitialStock: 10,
	})
	require.NoError(t, err)

	created, err := svc.Create(ctx, &CreateShipmentRequest{
		StoreSource: "Acme Wholesale",
		Items: []CreateShipmentItemRequest{
			{ItemName: "Ceramic Mug", ItemCode: "MUG-001", UnitCost: 4000, Quantity: 5},
			{ItemName: "Dinner Plate", ItemCode: "PLT-002", UnitCost: 6000, Quantity: 3},
		},
	})
	require.NoError(t, err)

	// First pass lands only the mug line.
	resp, err := svc.Receive(ctx, created.Shipment.ID, &ReceiveShipmentRequest{
		Items: []ReceiveItemRequest{{ShipmentItemID: created.Items[0].ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentStatusInTransit, resp.Status)

	// Second pass names both lines; the mug was already received and must
	// not stock in again.
	resp, err = svc.Receive(ctx, created.Shipment.ID, &ReceiveShipmentRequest{
		Items: []ReceiveItemRequest{
			{ShipmentItemID: created.Items[0].ID},
			{ShipmentItemID: created.Items[1].ID, CreateNewProduct: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentStatusReceived, resp.Status)

	inv, err := db.GetInventoryByProductID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, 15, inv.QuantityInStock)
}
