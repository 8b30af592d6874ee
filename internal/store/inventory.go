package store

import (
	"context"
	"database/sql"
	"time"

	"retail-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// InventoryDetail is an inventory row joined with its product, as the
// inventory and low-stock views consume it.
type InventoryDetail struct {
	InventoryID     int64     `db:"inventory_id" json:"inventory_id"`
	ProductID       int64     `db:"product_id" json:"product_id"`
	ProductName     string    `db:"product_name" json:"product_name"`
	Brand           *string   `db:"brand" json:"brand,omitempty"`
	ItemCode        string    `db:"item_code" json:"item_code"`
	Category        *string   `db:"category" json:"category,omitempty"`
	ImageURL        *string   `db:"image_url" json:"image_url,omitempty"`
	CostPrice       int64     `db:"cost_price" json:"cost_price"`
	SellingPrice    int64     `db:"selling_price" json:"selling_price"`
	QuantityInStock int       `db:"quantity_in_stock" json:"quantity_in_stock"`
	ReorderLevel    int       `db:"reorder_level" json:"reorder_level"`
	LastUpdated     time.Time `db:"last_updated" json:"last_updated"`
}

const inventoryDetailColumns = `
	i.id AS inventory_id, i.product_id, p.name AS product_name, p.brand,
	p.item_code, p.category, p.image_url, p.cost_price, p.selling_price,
	i.quantity_in_stock, i.reorder_level, i.last_updated`

// CreateInventory inserts the stock row for a product
func (s *Store) CreateInventory(ctx context.Context, inv *models.Inventory) error {
	query := `
		INSERT INTO inventory (product_id, quantity_in_stock, reorder_level, last_updated)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, last_updated`

	return sqlx.GetContext(ctx, s.q, inv, query,
		inv.ProductID, inv.QuantityInStock, inv.ReorderLevel)
}

// GetInventoryByID retrieves an inventory row by its own ID; nil when missing
func (s *Store) GetInventoryByID(ctx context.Context, id int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := sqlx.GetContext(ctx, s.q, &inv, "SELECT * FROM inventory WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInventoryByProductID retrieves the stock row for a product; nil when missing
func (s *Store) GetInventoryByProductID(ctx context.Context, productID int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := sqlx.GetContext(ctx, s.q, &inv, "SELECT * FROM inventory WHERE product_id = $1", productID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// SetInventory overwrites quantity and reorder level, stamping last_updated
func (s *Store) SetInventory(ctx context.Context, inventoryID int64, quantity, reorderLevel int) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE inventory
		SET quantity_in_stock = $1, reorder_level = $2, last_updated = NOW()
		WHERE id = $3`,
		quantity, reorderLevel, inventoryID)
	return err
}

// AddStock increments a product's stock by delta (negative delta deducts)
// and stamps last_updated
func (s *Store) AddStock(ctx context.Context, productID int64, delta int) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE inventory
		SET quantity_in_stock = quantity_in_stock + $1, last_updated = NOW()
		WHERE product_id = $2`,
		delta, productID)
	return err
}

// ListInventory retrieves inventory rows for active products with their
// product details
func (s *Store) ListInventory(ctx context.Context, category, search string) ([]InventoryDetail, error) {
	query := `SELECT ` + inventoryDetailColumns + `
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE p.is_active = TRUE`

	args := []interface{}{}
	if category != "" {
		args = append(args, category)
		query += " AND p.category = $1"
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		if category != "" {
			query += " AND (p.name ILIKE $2 OR p.item_code ILIKE $2 OR p.brand ILIKE $2)"
		} else {
			query += " AND (p.name ILIKE $1 OR p.item_code ILIKE $1 OR p.brand ILIKE $1)"
		}
	}
	query += " ORDER BY p.name"

	var rows []InventoryDetail
	err := sqlx.SelectContext(ctx, s.q, &rows, query, args...)
	return rows, err
}

// ListBelowReorder retrieves rows where stock is at or below the reorder
// level, worst first
func (s *Store) ListBelowReorder(ctx context.Context) ([]InventoryDetail, error) {
	query := `SELECT ` + inventoryDetailColumns + `
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE p.is_active = TRUE AND i.quantity_in_stock <= i.reorder_level
		ORDER BY i.quantity_in_stock`

	var rows []InventoryDetail
	err := sqlx.SelectContext(ctx, s.q, &rows, query)
	return rows, err
}
