package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retail-service/internal/models"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"go.uber.org/zap"
)

// CashFlowService manages the append-only money ledger and the finance
// summary built from it. Orders and shipments write their own entries; this
// service covers manual bookkeeping.
type CashFlowService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCashFlowService creates a new cash flow service
func NewCashFlowService(store *store.Store) *CashFlowService {
	return &CashFlowService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateCashFlowRequest represents a manual ledger entry
type CreateCashFlowRequest struct {
	TransactionDate time.Time `json:"transaction_date"`
	Type            string    `json:"type" binding:"required"`
	Category        string    `json:"category" binding:"required"`
	Description     string    `json:"description" binding:"required"`
	Amount          int64     `json:"amount"`
	ReferenceNumber *string   `json:"reference_number,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

// CategoryTotal is a ledger aggregate for one category
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// FinanceSummary is the finance screen: ledger totals plus the value of
// stock on hand and payments still outstanding.
type FinanceSummary struct {
	TotalMoneyIn        int64           `json:"total_money_in"`
	TotalMoneyOut       int64           `json:"total_money_out"`
	NetCashFlow         int64           `json:"net_cash_flow"`
	IncomeByCategory    []CategoryTotal `json:"income_by_category"`
	ExpensesByCategory  []CategoryTotal `json:"expenses_by_category"`
	TotalInventoryValue int64           `json:"total_inventory_value"`
	TotalInventoryCost  int64           `json:"total_inventory_cost"`
	PendingPayments     int64           `json:"pending_payments"`
	PendingOrderCount   int             `json:"pending_order_count"`
}

// sumByCategory folds ledger entries of one type into per-category totals,
// keeping first-seen category order.
func sumByCategory(flows []models.CashFlow, flowType string) []CategoryTotal {
	totals := make(map[string]int64)
	order := make([]string, 0)
	for i := range flows {
		if flows[i].Type != flowType {
			continue
		}
		if _, seen := totals[flows[i].Category]; !seen {
			order = append(order, flows[i].Category)
		}
		totals[flows[i].Category] += flows[i].Amount
	}

	result := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		result = append(result, CategoryTotal{Category: category, Total: totals[category]})
	}
	return result
}

// Create appends a manual ledger entry. The amount must be positive; the
// entry's type carries the direction.
func (s *CashFlowService) Create(ctx context.Context, req *CreateCashFlowRequest) (*models.CashFlow, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.Type != models.CashFlowTypeIncome && req.Type != models.CashFlowTypeExpense {
		return nil, fmt.Errorf("%w: unknown cash flow type %q", ErrInvalidArgument, req.Type)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	transactionDate := req.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = time.Now()
	}

	ref := req.ReferenceNumber
	if ref == nil || *ref == "" {
		generated := fmt.Sprintf("MAN-%s", time.Now().Format("20060102150405"))
		ref = &generated
	}

	cf := &models.CashFlow{
		TransactionDate: transactionDate,
		Type:            req.Type,
		Category:        req.Category,
		Description:     req.Description,
		Amount:          req.Amount,
		ReferenceNumber: ref,
		Notes:           req.Notes,
	}
	if err := s.store.CreateCashFlow(ctx, cf); err != nil {
		return nil, fmt.Errorf("failed to create cash flow entry: %w", err)
	}

	util.CashFlowEntriesTotal.WithLabelValues(cf.Type, cf.Category).Inc()
	s.logger.Info("Cash flow entry created",
		zap.Int64("cash_flow_id", cf.ID),
		zap.String("type", cf.Type),
		zap.String("category", cf.Category),
		zap.Int64("amount", cf.Amount))

	return cf, nil
}

// Delete removes a ledger entry. Entries written by orders and shipments can
// be deleted too; the summary then no longer reflects those events.
func (s *CashFlowService) Delete(ctx context.Context, id int64) error {
	cf, err := s.store.GetCashFlowByID(ctx, id)
	if err != nil {
		return err
	}
	if cf == nil {
		return fmt.Errorf("%w: cash flow entry %d", ErrNotFound, id)
	}

	if err := s.store.DeleteCashFlow(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Cash flow entry deleted",
		zap.Int64("cash_flow_id", id),
		zap.String("type", cf.Type),
		zap.Int64("amount", cf.Amount))
	return nil
}

// Get retrieves a ledger entry
func (s *CashFlowService) Get(ctx context.Context, id int64) (*models.CashFlow, error) {
	cf, err := s.store.GetCashFlowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cf == nil {
		return nil, fmt.Errorf("%w: cash flow entry %d", ErrNotFound, id)
	}
	return cf, nil
}

// List retrieves ledger entries matching the filter
func (s *CashFlowService) List(ctx context.Context, filter store.CashFlowFilter) ([]models.CashFlow, error) {
	return s.store.ListCashFlows(ctx, filter)
}

// Summary aggregates the ledger over the given window plus current stock
// value and outstanding order payments. Totals are recomputed from rows on
// every call, never cached.
func (s *CashFlowService) Summary(ctx context.Context, startDate, endDate *time.Time) (*FinanceSummary, error) {
	ctx, span := util.StartSpan(ctx, "CashFlowService.Summary")
	defer span.End()

	flows, err := s.store.ListCashFlows(ctx, store.CashFlowFilter{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return nil, err
	}

	summary := &FinanceSummary{
		IncomeByCategory:   sumByCategory(flows, models.CashFlowTypeIncome),
		ExpensesByCategory: sumByCategory(flows, models.CashFlowTypeExpense),
	}
	for i := range flows {
		switch flows[i].Type {
		case models.CashFlowTypeIncome:
			summary.TotalMoneyIn += flows[i].Amount
		case models.CashFlowTypeExpense:
			summary.TotalMoneyOut += flows[i].Amount
		}
	}
	summary.NetCashFlow = summary.TotalMoneyIn - summary.TotalMoneyOut

	rows, err := s.store.ListInventory(ctx, "", "")
	if err != nil {
		return nil, err
	}
	for i := range rows {
		summary.TotalInventoryValue += rows[i].SellingPrice * int64(rows[i].QuantityInStock)
		summary.TotalInventoryCost += rows[i].CostPrice * int64(rows[i].QuantityInStock)
	}

	pending, err := s.store.ListOrders(ctx, store.OrderFilter{Status: models.OrderStatusPending})
	if err != nil {
		return nil, err
	}
	for i := range pending {
		summary.PendingPayments += pending[i].TotalAmount
	}
	summary.PendingOrderCount = len(pending)

	return summary, nil
}
