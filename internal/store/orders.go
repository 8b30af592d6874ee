package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Limit     int
	Offset    int
}

func (f OrderFilter) where() (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}
	n := 0
	if f.Status != "" {
		n++
		clause += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, f.Status)
	}
	if f.StartDate != nil {
		n++
		clause += fmt.Sprintf(" AND order_date >= $%d", n)
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		// inclusive of the end day
		n++
		clause += fmt.Sprintf(" AND order_date < $%d", n)
		args = append(args, f.EndDate.AddDate(0, 0, 1))
	}
	if f.Search != "" {
		n++
		clause += fmt.Sprintf(" AND (order_number ILIKE $%d OR customer_name ILIKE $%d)", n, n)
		args = append(args, "%"+f.Search+"%")
	}
	return clause, args
}

// CreateOrder inserts a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, order_date, customer_name, shipping_address,
			contact_number, subtotal, shipping_fee, total_amount, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	return sqlx.GetContext(ctx, s.q, &order.ID, query,
		order.OrderNumber, order.OrderDate, order.CustomerName, order.ShippingAddress,
		order.ContactNumber, order.Subtotal, order.ShippingFee, order.TotalAmount,
		order.Status, order.Notes)
}

// GetOrderByID retrieves an order by ID; nil when missing
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := sqlx.GetContext(ctx, s.q, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByNumber retrieves an order by its order number; nil when missing
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := sqlx.GetContext(ctx, s.q, &order, "SELECT * FROM orders WHERE order_number = $1", orderNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves orders matching the filter, newest first
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	clause, args := filter.where()
	query := "SELECT * FROM orders" + clause + " ORDER BY order_date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	var orders []models.Order
	err := sqlx.SelectContext(ctx, s.q, &orders, query, args...)
	return orders, err
}

// CountOrders counts orders matching the filter
func (s *Store) CountOrders(ctx context.Context, filter OrderFilter) (int, error) {
	clause, args := filter.where()
	var count int
	err := sqlx.GetContext(ctx, s.q, &count, "SELECT COUNT(*) FROM orders"+clause, args...)
	return count, err
}

// ListPaidOrders retrieves every order at or past the Paid stage
func (s *Store) ListPaidOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := sqlx.SelectContext(ctx, s.q, &orders,
		"SELECT * FROM orders WHERE status IN ($1, $2, $3)",
		models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered)
	return orders, err
}

// UpdateOrderStatus overwrites an order's status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	return err
}

// MarkOrderPaid records payment details and moves the order to Paid
func (s *Store) MarkOrderPaid(ctx context.Context, orderID int64, paymentDate time.Time, method string, notes *string) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_date = $2, payment_method = $3, notes = $4
		WHERE id = $5`,
		models.OrderStatusPaid, paymentDate, method, notes, orderID)
	return err
}

// DeleteOrder removes an order and its items
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", orderID); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	return err
}

// CreateOrderItem inserts an order line snapshot
func (s *Store) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return sqlx.GetContext(ctx, s.q, &item.ID, query,
		item.OrderID, item.ProductID, item.ProductName, item.Quantity,
		item.UnitPrice, item.UnitCost)
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := sqlx.SelectContext(ctx, s.q, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetOrderItemsByOrderIDs retrieves items for a batch of orders
func (s *Store) GetOrderItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []models.OrderItem{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM order_items WHERE order_id IN (?)", orderIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	err = sqlx.SelectContext(ctx, s.q, &items, query, args...)
	return items, err
}
