package service

import (
	"context"
	"fmt"

	"retail-service/internal/models"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"go.uber.org/zap"
)

// CartService manages the per-session shopping cart. The session key is an
// explicit parameter on every operation; there is no ambient session state.
type CartService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CartLine is a cart item joined with its product for display
type CartLine struct {
	CartItemID      int64  `json:"cart_item_id"`
	ProductID       int64  `json:"product_id"`
	ProductName     string `json:"product_name"`
	UnitPrice       int64  `json:"unit_price"`
	Quantity        int    `json:"quantity"`
	LineTotal       int64  `json:"line_total"`
	QuantityInStock int    `json:"quantity_in_stock"`
}

// CartView is the full cart for a session
type CartView struct {
	CartID   int64      `json:"cart_id"`
	Lines    []CartLine `json:"lines"`
	Subtotal int64      `json:"subtotal"`
}

// clampToStock limits a requested quantity to the stock on hand. A
// non-positive stock level leaves the request untouched; the storefront
// hides such products anyway.
func clampToStock(requested, stock int) int {
	if stock > 0 && requested > stock {
		return stock
	}
	return requested
}

// Get retrieves the cart for a session. A session without a cart yields an
// empty view rather than an error.
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartView, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}

	cart, err := s.store.GetCartBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &CartView{Lines: []CartLine{}}, nil
	}

	return s.buildView(ctx, cart)
}

func (s *CartService) buildView(ctx context.Context, cart *models.Cart) (*CartView, error) {
	items, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	view := &CartView{CartID: cart.ID, Lines: make([]CartLine, 0, len(items))}
	for _, item := range items {
		product, err := s.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			continue
		}

		line := CartLine{
			CartItemID:  item.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			UnitPrice:   product.SellingPrice,
			Quantity:    item.Quantity,
			LineTotal:   product.SellingPrice * int64(item.Quantity),
		}
		if inv, err := s.store.GetInventoryByProductID(ctx, item.ProductID); err != nil {
			return nil, err
		} else if inv != nil {
			line.QuantityInStock = inv.QuantityInStock
		}

		view.Subtotal += line.LineTotal
		view.Lines = append(view.Lines, line)
	}

	return view, nil
}

// Add puts a product into the session's cart, creating the cart lazily and
// merging quantities when the product is already in it.
func (s *CartService) Add(ctx context.Context, sessionID string, productID int64, quantity int) (*CartView, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	cart, err := s.store.GetCartBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{SessionID: sessionID}
		if err := s.store.CreateCart(ctx, cart); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
	}

	existing, err := s.store.GetCartItemByProduct(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.store.UpdateCartItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return nil, err
		}
	} else {
		item := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.store.CreateCartItem(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := s.store.TouchCart(ctx, cart.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Item added to cart",
		zap.Int64("cart_id", cart.ID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity))

	return s.buildView(ctx, cart)
}

// UpdateItem overwrites a line's quantity, clamped to current stock. A
// quantity of zero or less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, cartItemID int64, quantity int) error {
	item, err := s.store.GetCartItemByID(ctx, cartItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: cart item %d", ErrNotFound, cartItemID)
	}

	if quantity <= 0 {
		return s.store.DeleteCartItem(ctx, cartItemID)
	}

	stock := 0
	if inv, err := s.store.GetInventoryByProductID(ctx, item.ProductID); err != nil {
		return err
	} else if inv != nil {
		stock = inv.QuantityInStock
	}

	return s.store.UpdateCartItemQuantity(ctx, cartItemID, clampToStock(quantity, stock))
}

// RemoveItem deletes a single cart line
func (s *CartService) RemoveItem(ctx context.Context, cartItemID int64) error {
	item, err := s.store.GetCartItemByID(ctx, cartItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: cart item %d", ErrNotFound, cartItemID)
	}

	return s.store.DeleteCartItem(ctx, cartItemID)
}
