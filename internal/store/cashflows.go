package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CashFlowFilter narrows ledger listings.
type CashFlowFilter struct {
	Type      string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// CreateCashFlow appends a ledger entry
func (s *Store) CreateCashFlow(ctx context.Context, cf *models.CashFlow) error {
	query := `
		INSERT INTO cash_flows (transaction_date, type, category, description, amount,
			reference_number, order_id, shipment_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return sqlx.GetContext(ctx, s.q, cf, query,
		cf.TransactionDate, cf.Type, cf.Category, cf.Description, cf.Amount,
		cf.ReferenceNumber, cf.OrderID, cf.ShipmentID, cf.Notes)
}

// GetCashFlowByID retrieves a ledger entry by ID; nil when missing
func (s *Store) GetCashFlowByID(ctx context.Context, id int64) (*models.CashFlow, error) {
	var cf models.CashFlow
	err := sqlx.GetContext(ctx, s.q, &cf, "SELECT * FROM cash_flows WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

// ListCashFlows retrieves ledger entries matching the filter, newest first
func (s *Store) ListCashFlows(ctx context.Context, filter CashFlowFilter) ([]models.CashFlow, error) {
	query := "SELECT * FROM cash_flows WHERE 1=1"
	args := []interface{}{}
	n := 0
	if filter.Type != "" {
		n++
		query += fmt.Sprintf(" AND type = $%d", n)
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		n++
		query += fmt.Sprintf(" AND category = $%d", n)
		args = append(args, filter.Category)
	}
	if filter.StartDate != nil {
		n++
		query += fmt.Sprintf(" AND transaction_date >= $%d", n)
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		n++
		query += fmt.Sprintf(" AND transaction_date < $%d", n)
		args = append(args, filter.EndDate.AddDate(0, 0, 1))
	}
	query += " ORDER BY transaction_date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var flows []models.CashFlow
	err := sqlx.SelectContext(ctx, s.q, &flows, query, args...)
	return flows, err
}

// DeleteCashFlow removes a ledger entry. Deletion is unrestricted: rows
// generated by orders or shipments can be removed too, which leaves the
// reported totals out of step with the events that produced them.
func (s *Store) DeleteCashFlow(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM cash_flows WHERE id = $1", id)
	return err
}
