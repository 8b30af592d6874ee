package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so every store method
// works inside or outside a transaction.
type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type Store struct {
	db *sqlx.DB
	q  queryer
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, q: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// WithTx runs fn against a store bound to a single transaction. The
// transaction commits only if fn returns nil; any error rolls everything
// back, so multi-row operations are all-or-nothing. Nested calls reuse the
// ambient transaction.
func (s *Store) WithTx(ctx context.Context, fn func(*Store) error) error {
	if _, ok := s.q.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
	InStock    bool
}

// CreateProduct inserts a catalog record
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (item_code, name, brand, category, description, image_url, cost_price, selling_price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, date_added`

	return sqlx.GetContext(ctx, s.q, product, query,
		product.ItemCode, product.Name, product.Brand, product.Category,
		product.Description, product.ImageURL, product.CostPrice,
		product.SellingPrice, product.IsActive)
}

// UpdateProduct updates the mutable catalog fields of a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE products
		SET name = $1, brand = $2, category = $3, description = $4,
		    image_url = $5, cost_price = $6, selling_price = $7
		WHERE id = $8`,
		product.Name, product.Brand, product.Category, product.Description,
		product.ImageURL, product.CostPrice, product.SellingPrice, product.ID)
	return err
}

// DeactivateProduct soft-deletes a product by clearing its active flag
func (s *Store) DeactivateProduct(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE products SET is_active = FALSE WHERE id = $1", id)
	return err
}

// GetProductByID retrieves a product by ID; returns nil when missing
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := sqlx.GetContext(ctx, s.q, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveProductByItemCode retrieves an active product by item code;
// returns nil when missing
func (s *Store) GetActiveProductByItemCode(ctx context.Context, itemCode string) (*models.Product, error) {
	var product models.Product
	err := sqlx.GetContext(ctx, s.q, &product,
		"SELECT * FROM products WHERE item_code = $1 AND is_active = TRUE", itemCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ItemCodeExists reports whether any product, active or not, carries the code
func (s *Store) ItemCodeExists(ctx context.Context, itemCode string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, s.q, &exists,
		"SELECT EXISTS(SELECT 1 FROM products WHERE item_code = $1)", itemCode)
	return exists, err
}

// ListProducts retrieves products matching the filter
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := "SELECT p.* FROM products p"
	if filter.InStock {
		query += " JOIN inventory i ON i.product_id = p.id AND i.quantity_in_stock > 0"
	}
	query += " WHERE 1=1"

	args := []interface{}{}
	n := 0
	if filter.ActiveOnly {
		query += " AND p.is_active = TRUE"
	}
	if filter.Category != "" {
		n++
		query += fmt.Sprintf(" AND p.category = $%d", n)
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		n++
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.item_code ILIKE $%d OR p.brand ILIKE $%d)", n, n, n)
		args = append(args, "%"+filter.Search+"%")
	}
	query += " ORDER BY p.name"

	var products []models.Product
	err := sqlx.SelectContext(ctx, s.q, &products, query, args...)
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = sqlx.SelectContext(ctx, s.q, &products, query, args...)
	return products, err
}

// ListCategories returns the distinct categories of active products
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := sqlx.SelectContext(ctx, s.q, &categories, `
		SELECT DISTINCT category FROM products
		WHERE is_active = TRUE AND category IS NOT NULL
		ORDER BY category`)
	return categories, err
}
