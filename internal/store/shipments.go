package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// ShipmentFilter narrows shipment listings.
type ShipmentFilter struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// CreateShipment inserts a supplier delivery batch
func (s *Store) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	query := `
		INSERT INTO shipments (shipment_number, store_source, order_date, expected_arrival,
			total_shipping_fee, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return sqlx.GetContext(ctx, s.q, &shipment.ID, query,
		shipment.ShipmentNumber, shipment.StoreSource, shipment.OrderDate,
		shipment.ExpectedArrival, shipment.TotalShippingFee, shipment.Status,
		shipment.Notes)
}

// GetShipmentByID retrieves a shipment by ID; nil when missing
func (s *Store) GetShipmentByID(ctx context.Context, id int64) (*models.Shipment, error) {
	var shipment models.Shipment
	err := sqlx.GetContext(ctx, s.q, &shipment, "SELECT * FROM shipments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// ListShipments retrieves shipments matching the filter, newest first
func (s *Store) ListShipments(ctx context.Context, filter ShipmentFilter) ([]models.Shipment, error) {
	query := "SELECT * FROM shipments WHERE 1=1"
	args := []interface{}{}
	n := 0
	if filter.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, filter.Status)
	}
	if filter.StartDate != nil {
		n++
		query += fmt.Sprintf(" AND order_date >= $%d", n)
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		n++
		query += fmt.Sprintf(" AND order_date < $%d", n)
		args = append(args, filter.EndDate.AddDate(0, 0, 1))
	}
	if filter.Search != "" {
		n++
		query += fmt.Sprintf(" AND (shipment_number ILIKE $%d OR store_source ILIKE $%d)", n, n)
		args = append(args, "%"+filter.Search+"%")
	}
	query += " ORDER BY order_date DESC"

	var shipments []models.Shipment
	err := sqlx.SelectContext(ctx, s.q, &shipments, query, args...)
	return shipments, err
}

// UpdateShipmentStatus overwrites a shipment's status, stamping the received
// date when the new status is Received
func (s *Store) UpdateShipmentStatus(ctx context.Context, shipmentID int64, status string) error {
	if status == models.ShipmentStatusReceived {
		_, err := s.q.ExecContext(ctx,
			"UPDATE shipments SET status = $1, received_date = NOW() WHERE id = $2",
			status, shipmentID)
		return err
	}
	_, err := s.q.ExecContext(ctx,
		"UPDATE shipments SET status = $1 WHERE id = $2", status, shipmentID)
	return err
}

// DeleteShipment removes a shipment and its items
func (s *Store) DeleteShipment(ctx context.Context, shipmentID int64) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM shipment_items WHERE shipment_id = $1", shipmentID); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, "DELETE FROM shipments WHERE id = $1", shipmentID)
	return err
}

// CreateShipmentItem inserts a delivery line
func (s *Store) CreateShipmentItem(ctx context.Context, item *models.ShipmentItem) error {
	query := `
		INSERT INTO shipment_items (shipment_id, product_id, item_name, item_code,
			category, brand, unit_cost, quantity, is_received)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		RETURNING id`

	return sqlx.GetContext(ctx, s.q, &item.ID, query,
		item.ShipmentID, item.ProductID, item.ItemName, item.ItemCode,
		item.Category, item.Brand, item.UnitCost, item.Quantity)
}

// GetShipmentItems retrieves all lines of a shipment
func (s *Store) GetShipmentItems(ctx context.Context, shipmentID int64) ([]models.ShipmentItem, error) {
	var items []models.ShipmentItem
	err := sqlx.SelectContext(ctx, s.q, &items,
		"SELECT * FROM shipment_items WHERE shipment_id = $1 ORDER BY id", shipmentID)
	return items, err
}

// MarkShipmentItemReceived flags a line received at the given time
func (s *Store) MarkShipmentItemReceived(ctx context.Context, itemID int64, receivedAt time.Time) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE shipment_items SET is_received = TRUE, received_date = $1 WHERE id = $2",
		receivedAt, itemID)
	return err
}

// LinkShipmentItemProduct points a line at the product it resolved to
func (s *Store) LinkShipmentItemProduct(ctx context.Context, itemID, productID int64) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE shipment_items SET product_id = $1 WHERE id = $2", productID, itemID)
	return err
}
