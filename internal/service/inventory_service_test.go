package service

import (
	"testing"

	"retail-service/internal/models"
	"retail-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAdjustment(t *testing.T) {
	tests := []struct {
		name           string
		current        int
		adjustmentType string
		magnitude      int
		want           int
	}{
		{"add", 10, models.AdjustmentAdd, 5, 15},
		{"add to zero", 0, models.AdjustmentAdd, 3, 3},
		{"remove", 10, models.AdjustmentRemove, 4, 6},
		{"remove clamps at zero", 3, models.AdjustmentRemove, 10, 0},
		{"remove exact", 5, models.AdjustmentRemove, 5, 0},
		{"set", 10, models.AdjustmentSet, 2, 2},
		{"set to zero", 10, models.AdjustmentSet, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyAdjustment(tt.current, tt.adjustmentType, tt.magnitude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyAdjustmentUnknownType(t *testing.T) {
	_, err := applyAdjustment(10, "Increment", 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildInventoryView(t *testing.T) {
	rows := []store.InventoryDetail{
		{ProductID: 1, ProductName: "Ceramic Mug", SellingPrice: 10000, CostPrice: 6000, QuantityInStock: 20, ReorderLevel: 10},
		{ProductID: 2, ProductName: "Dinner Plate", SellingPrice: 5000, CostPrice: 3000, QuantityInStock: 3, ReorderLevel: 10},
		{ProductID: 3, ProductName: "Soup Bowl", SellingPrice: 8000, CostPrice: 4000, QuantityInStock: 0, ReorderLevel: 10},
	}

	all := buildInventoryView(rows, "")
	assert.Equal(t, 3, all.TotalProducts)
	assert.Equal(t, 1, all.InStockCount)
	assert.Equal(t, 1, all.LowStockCount)
	assert.Equal(t, 1, all.OutOfStockCount)
	assert.Equal(t, int64(10000*20+5000*3), all.TotalInventoryValue)
	assert.Equal(t, int64(6000*20+3000*3), all.TotalInventoryCost)
	assert.Len(t, all.Items, 3)
}

func TestBuildInventoryViewFilteredAggregates(t *testing.T) {
	rows := []store.InventoryDetail{
		{ProductID: 1, ProductName: "Ceramic Mug", SellingPrice: 10000, CostPrice: 6000, QuantityInStock: 20, ReorderLevel: 10},
		{ProductID: 2, ProductName: "Dinner Plate", SellingPrice: 5000, CostPrice: 3000, QuantityInStock: 3, ReorderLevel: 10},
		{ProductID: 3, ProductName: "Soup Bowl", SellingPrice: 8000, CostPrice: 4000, QuantityInStock: 0, ReorderLevel: 10},
	}

	// Filtering narrows the aggregates too; the counts describe the rows
	// shown, not the whole inventory.
	low := buildInventoryView(rows, models.StockStatusLowStock)
	require.Len(t, low.Items, 1)
	assert.Equal(t, "Dinner Plate", low.Items[0].ProductName)
	assert.Equal(t, 1, low.TotalProducts)
	assert.Equal(t, 0, low.InStockCount)
	assert.Equal(t, 1, low.LowStockCount)
	assert.Equal(t, 0, low.OutOfStockCount)
	assert.Equal(t, int64(15000), low.TotalInventoryValue)
	assert.Equal(t, int64(9000), low.TotalInventoryCost)
}

func TestIsPurchaseReason(t *testing.T) {
	assert.True(t, isPurchaseReason("Purchase from supplier"))
	assert.True(t, isPurchaseReason("restock purchase"))
	assert.True(t, isPurchaseReason("PURCHASED extra units"))
	assert.False(t, isPurchaseReason("found in storage"))
	assert.False(t, isPurchaseReason(""))
}
