package service

import (
	"testing"

	"retail-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumByCategory(t *testing.T) {
	flows := []models.CashFlow{
		{Type: models.CashFlowTypeIncome, Category: models.CashFlowCategorySales, Amount: 1000},
		{Type: models.CashFlowTypeExpense, Category: models.CashFlowCategoryLogistics, Amount: 300},
		{Type: models.CashFlowTypeIncome, Category: models.CashFlowCategorySales, Amount: 2000},
		{Type: models.CashFlowTypeIncome, Category: models.CashFlowCategoryOther, Amount: 50},
	}

	income := sumByCategory(flows, models.CashFlowTypeIncome)
	require.Len(t, income, 2)
	assert.Equal(t, CategoryTotal{Category: models.CashFlowCategorySales, Total: 3000}, income[0])
	assert.Equal(t, CategoryTotal{Category: models.CashFlowCategoryOther, Total: 50}, income[1])

	expenses := sumByCategory(flows, models.CashFlowTypeExpense)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(300), expenses[0].Total)
}

func TestSumByCategoryEmpty(t *testing.T) {
	assert.Empty(t, sumByCategory(nil, models.CashFlowTypeIncome))
}
