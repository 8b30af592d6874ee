package store

import (
	"context"
	"database/sql"

	"retail-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateCart inserts a cart for a session
func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	query := `
		INSERT INTO carts (session_id)
		VALUES ($1)
		RETURNING id, created_at, last_updated`

	return sqlx.GetContext(ctx, s.q, cart, query, cart.SessionID)
}

// GetCartBySessionID retrieves the cart for a session; nil when missing
func (s *Store) GetCartBySessionID(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := sqlx.GetContext(ctx, s.q, &cart, "SELECT * FROM carts WHERE session_id = $1", sessionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// TouchCart stamps the cart's last_updated time
func (s *Store) TouchCart(ctx context.Context, cartID int64) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE carts SET last_updated = NOW() WHERE id = $1", cartID)
	return err
}

// DeleteCart removes a cart and its items
func (s *Store) DeleteCart(ctx context.Context, cartID int64) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, "DELETE FROM carts WHERE id = $1", cartID)
	return err
}

// CreateCartItem inserts a cart line
func (s *Store) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, date_added`

	return sqlx.GetContext(ctx, s.q, item, query,
		item.CartID, item.ProductID, item.Quantity)
}

// GetCartItemByID retrieves a cart line by ID; nil when missing
func (s *Store) GetCartItemByID(ctx context.Context, id int64) (*models.CartItem, error) {
	var item models.CartItem
	err := sqlx.GetContext(ctx, s.q, &item, "SELECT * FROM cart_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartItemByProduct retrieves the line for a product within a cart;
// nil when missing
func (s *Store) GetCartItemByProduct(ctx context.Context, cartID, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := sqlx.GetContext(ctx, s.q, &item,
		"SELECT * FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartItems retrieves all lines in a cart, oldest first
func (s *Store) GetCartItems(ctx context.Context, cartID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	err := sqlx.SelectContext(ctx, s.q, &items,
		"SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY date_added, id", cartID)
	return items, err
}

// UpdateCartItemQuantity overwrites a line's quantity
func (s *Store) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE id = $2", quantity, itemID)
	return err
}

// DeleteCartItem removes a single cart line
func (s *Store) DeleteCartItem(ctx context.Context, itemID int64) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", itemID)
	return err
}
