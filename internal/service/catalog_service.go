package service

import (
	"context"
	"fmt"

	"retail-service/internal/models"
	"retail-service/internal/redisclient"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService manages the product catalog. Products are soft-deleted so
// order history keeps valid references.
type CatalogService struct {
	store        *store.Store
	cache        *redisclient.Client
	reorderLevel int
	logger       *zap.Logger
}

// NewCatalogService creates a new catalog service. defaultReorderLevel seeds
// inventory rows created without an explicit threshold.
func NewCatalogService(store *store.Store, cache *redisclient.Client, defaultReorderLevel int) *CatalogService {
	if defaultReorderLevel <= 0 {
		defaultReorderLevel = DefaultReorderLevel
	}
	return &CatalogService{
		store:        store,
		cache:        cache,
		reorderLevel: defaultReorderLevel,
		logger:       util.GetLogger(),
	}
}

// CreateProductRequest represents a request to add a catalog product
type CreateProductRequest struct {
	ItemCode     string  `json:"item_code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Brand        *string `json:"brand,omitempty"`
	Category     *string `json:"category,omitempty"`
	Description  *string `json:"description,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	CostPrice    int64   `json:"cost_price"`
	SellingPrice int64   `json:"selling_price"`
	InitialStock int     `json:"initial_stock"`
	ReorderLevel int     `json:"reorder_level"`
}

// UpdateProductRequest represents a catalog edit. Price changes never touch
// historical order lines; those carry their own snapshots.
type UpdateProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Brand        *string `json:"brand,omitempty"`
	Category     *string `json:"category,omitempty"`
	Description  *string `json:"description,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	CostPrice    int64   `json:"cost_price"`
	SellingPrice int64   `json:"selling_price"`
}

// ProductView is a product with its derived stock state
type ProductView struct {
	models.Product
	QuantityInStock int    `json:"quantity_in_stock"`
	ReorderLevel    int    `json:"reorder_level"`
	StockStatus     string `json:"stock_status"`
}

// CreateProduct adds a product and its inventory row in one transaction
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	exists, err := s.store.ItemCodeExists(ctx, req.ItemCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check item code: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: item code %q already exists", ErrValidation, req.ItemCode)
	}

	product := &models.Product{
		ItemCode:     req.ItemCode,
		Name:         req.Name,
		Brand:        req.Brand,
		Category:     req.Category,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		IsActive:     true,
	}

	reorderLevel := req.ReorderLevel
	if reorderLevel <= 0 {
		reorderLevel = s.reorderLevel
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		inv := &models.Inventory{
			ProductID:       product.ID,
			QuantityInStock: req.InitialStock,
			ReorderLevel:    reorderLevel,
		}
		if err := tx.CreateInventory(ctx, inv); err != nil {
			return fmt.Errorf("failed to create inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetStock(ctx, product.ID, req.InitialStock, reorderLevel); err != nil {
		s.logger.Warn("Failed to cache stock for new product",
			zap.Int64("product_id", product.ID),
			zap.Error(err))
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("item_code", product.ItemCode))

	return product, nil
}

// UpdateProduct edits the mutable catalog fields of a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}

	product.Name = req.Name
	product.Brand = req.Brand
	product.Category = req.Category
	product.Description = req.Description
	product.ImageURL = req.ImageURL
	product.CostPrice = req.CostPrice
	product.SellingPrice = req.SellingPrice

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeactivateProduct soft-deletes a product. The row stays behind so order
// items and cash flow entries that reference it remain resolvable.
func (s *CatalogService) DeactivateProduct(ctx context.Context, id int64) error {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}

	if err := s.store.DeactivateProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	if err := s.cache.DeleteStock(ctx, id); err != nil {
		s.logger.Warn("Failed to drop cached stock",
			zap.Int64("product_id", id),
			zap.Error(err))
	}

	s.logger.Info("Product deactivated", zap.Int64("product_id", id))
	return nil
}

// GetProduct retrieves a product with its stock state
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductView, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}

	view := &ProductView{Product: *product, StockStatus: models.StockStatusOutOfStock}
	inv, err := s.store.GetInventoryByProductID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		view.QuantityInStock = inv.QuantityInStock
		view.ReorderLevel = inv.ReorderLevel
		view.StockStatus = inv.StockStatus()
	}

	return view, nil
}

// ListProducts retrieves active products with stock state, optionally
// narrowed by category, search term and stock status
func (s *CatalogService) ListProducts(ctx context.Context, category, search, stockFilter string) ([]ProductView, error) {
	products, err := s.store.ListProducts(ctx, store.ProductFilter{
		Category:   category,
		Search:     search,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		view := ProductView{Product: products[i], StockStatus: models.StockStatusOutOfStock}
		inv, err := s.store.GetInventoryByProductID(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			view.QuantityInStock = inv.QuantityInStock
			view.ReorderLevel = inv.ReorderLevel
			view.StockStatus = inv.StockStatus()
		}
		if stockFilter != "" && view.StockStatus != stockFilter {
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

// ListStorefront retrieves the customer-facing catalog: active products
// with stock on hand
func (s *CatalogService) ListStorefront(ctx context.Context, category, search string) ([]models.Product, error) {
	return s.store.ListProducts(ctx, store.ProductFilter{
		Category:   category,
		Search:     search,
		ActiveOnly: true,
		InStock:    true,
	})
}

// ListCategories returns the distinct categories of active products
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.store.ListCategories(ctx)
}
