package service

import (
	"testing"
	"time"

	"retail-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAccumulateSales(t *testing.T) {
	startOfDay := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	paidToday := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	paidLastMonth := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

	dash := &Dashboard{}

	// Ordered in February, paid today: the payment date governs the
	// windows, and the subtotal (not the fee-inclusive total) is revenue.
	accumulateSales(dash, &models.Order{
		Subtotal:    30000,
		TotalAmount: 35000,
		OrderDate:   time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC),
		PaymentDate: &paidToday,
	}, 9000, startOfDay, startOfMonth)

	accumulateSales(dash, &models.Order{
		Subtotal:    20000,
		TotalAmount: 22000,
		OrderDate:   paidLastMonth,
		PaymentDate: &paidLastMonth,
	}, 4000, startOfDay, startOfMonth)

	assert.Equal(t, int64(50000), dash.TotalSales.Sales)
	assert.Equal(t, int64(13000), dash.TotalSales.Profit)
	assert.Equal(t, 2, dash.TotalSales.Orders)

	assert.Equal(t, int64(30000), dash.MonthSales.Sales)
	assert.Equal(t, int64(9000), dash.MonthSales.Profit)
	assert.Equal(t, 1, dash.MonthSales.Orders)

	assert.Equal(t, int64(30000), dash.TodaySales.Sales)
	assert.Equal(t, 1, dash.TodaySales.Orders)
}

func TestAccumulateSalesNoPaymentDate(t *testing.T) {
	startOfDay := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	dash := &Dashboard{}
	accumulateSales(dash, &models.Order{
		Subtotal:  10000,
		OrderDate: time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC),
	}, 2000, startOfDay, startOfMonth)

	// Counts toward the lifetime figures but no dated window.
	assert.Equal(t, int64(10000), dash.TotalSales.Sales)
	assert.Equal(t, 0, dash.MonthSales.Orders)
	assert.Equal(t, 0, dash.TodaySales.Orders)
}

func TestInWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, inWindow(start, start))
	assert.True(t, inWindow(start.Add(time.Hour), start))
	assert.False(t, inWindow(start.Add(-time.Second), start))
}
