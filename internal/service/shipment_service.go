package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"retail-service/internal/broker"
	"retail-service/internal/models"
	"retail-service/internal/redisclient"
	"retail-service/internal/store"
	"retail-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShipmentService manages supplier deliveries: creating the batch, booking
// its cost into the ledger, and folding received items into the catalog and
// inventory.
type ShipmentService struct {
	store          *store.Store
	cache          *redisclient.Client
	eventPublisher *broker.EventPublisher
	reorderLevel   int
	logger         *zap.Logger
}

// NewShipmentService creates a new shipment service. defaultReorderLevel
// seeds inventory rows created while receiving items.
func NewShipmentService(store *store.Store, cache *redisclient.Client, eventPublisher *broker.EventPublisher, defaultReorderLevel int) *ShipmentService {
	if defaultReorderLevel <= 0 {
		defaultReorderLevel = DefaultReorderLevel
	}
	return &ShipmentService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		reorderLevel:   defaultReorderLevel,
		logger:         util.GetLogger(),
	}
}

// CreateShipmentItemRequest is one expected delivery line
type CreateShipmentItemRequest struct {
	ItemName  string  `json:"item_name"`
	ItemCode  string  `json:"item_code"`
	Category  *string `json:"category,omitempty"`
	Brand     *string `json:"brand,omitempty"`
	UnitCost  int64   `json:"unit_cost"`
	Quantity  int     `json:"quantity"`
	ProductID *int64  `json:"product_id,omitempty"`
}

// CreateShipmentRequest registers an incoming supplier batch
type CreateShipmentRequest struct {
	StoreSource      string                      `json:"store_source" binding:"required"`
	OrderDate        time.Time                   `json:"order_date"`
	ExpectedArrival  *time.Time                  `json:"expected_arrival,omitempty"`
	TotalShippingFee int64                       `json:"total_shipping_fee"`
	Notes            *string                     `json:"notes,omitempty"`
	Items            []CreateShipmentItemRequest `json:"items" binding:"required"`
}

// ReceiveItemRequest directs how one shipment line is resolved at receipt.
// Lines absent from the receive request are skipped and stay outstanding.
type ReceiveItemRequest struct {
	ShipmentItemID   int64 `json:"shipment_item_id" binding:"required"`
	CreateNewProduct bool  `json:"create_new_product"`
	SellingPrice     int64 `json:"selling_price"`
}

// ReceiveShipmentRequest receives a subset of a shipment's lines
type ReceiveShipmentRequest struct {
	Items []ReceiveItemRequest `json:"items" binding:"required"`
}

// ReceiveLineResult reports what happened to one line during receiving
type ReceiveLineResult struct {
	ShipmentItemID int64  `json:"shipment_item_id"`
	ItemName       string `json:"item_name"`
	Outcome        string `json:"outcome"`
	ProductID      *int64 `json:"product_id,omitempty"`
}

// ReceiveShipmentResponse summarizes a receiving pass
type ReceiveShipmentResponse struct {
	ShipmentID     int64               `json:"shipment_id"`
	ShipmentNumber string              `json:"shipment_number"`
	Status         string              `json:"status"`
	ReceivedCount  int                 `json:"received_count"`
	SkippedCount   int                 `json:"skipped_count"`
	Lines          []ReceiveLineResult `json:"lines"`
}

// ShipmentDetail is a shipment with its lines and derived cost figures
type ShipmentDetail struct {
	Shipment                 models.Shipment       `json:"shipment"`
	Items                    []models.ShipmentItem `json:"items"`
	TotalQuantity            int                   `json:"total_quantity"`
	TotalItemCost            int64                 `json:"total_item_cost"`
	TotalCost                int64                 `json:"total_cost"`
	AllocatedShippingPerUnit int64                 `json:"allocated_shipping_per_unit"`
}

// Receive outcomes
const (
	receiveOutcomeMatched    = "matched_existing"
	receiveOutcomeCreated    = "created_product"
	receiveOutcomePreLinked  = "linked_product"
	receiveOutcomeSkipped    = "skipped_unresolved"
	receiveOutcomeAlreadyGot = "already_received"
)

// lineDisposition classifies a shipment line at the start of a receiving
// pass, before any catalog resolution.
type lineDisposition int

const (
	// lineAlreadyReceived lines landed in an earlier pass; receiving them
	// again is a no-op.
	lineAlreadyReceived lineDisposition = iota
	// lineOutstanding lines were not named by the request and stay open.
	lineOutstanding
	// lineReceivable lines complete this pass whether or not they resolve
	// to a product.
	lineReceivable
)

func classifyLine(item *models.ShipmentItem, requested bool) lineDisposition {
	if item.IsReceived {
		return lineAlreadyReceived
	}
	if !requested {
		return lineOutstanding
	}
	return lineReceivable
}

// shipmentLines converts request lines into items, dropping lines with blank
// names. Quantities persist as submitted.
func shipmentLines(reqs []CreateShipmentItemRequest) []models.ShipmentItem {
	items := make([]models.ShipmentItem, 0, len(reqs))
	for _, line := range reqs {
		if strings.TrimSpace(line.ItemName) == "" {
			continue
		}
		items = append(items, models.ShipmentItem{
			ProductID: line.ProductID,
			ItemName:  line.ItemName,
			ItemCode:  line.ItemCode,
			Category:  line.Category,
			Brand:     line.Brand,
			UnitCost:  line.UnitCost,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// generateShipmentNumber derives a shipment number from the current time
// plus a random suffix to keep same-second batches distinct.
func generateShipmentNumber(t time.Time) string {
	return fmt.Sprintf("SHP-%s-%04d", t.Format("20060102150405"), rand.Intn(10000))
}

// defaultSellingPrice marks a newly catalogued item up 50% over its landed
// cost when the receiver supplied no price.
func defaultSellingPrice(finalUnitCost int64) int64 {
	return finalUnitCost * 3 / 2
}

// Create registers a shipment, its expected lines, and the logistics expense
// (item cost plus shipping fee) in one transaction. Lines with blank names
// are dropped; a shipment with no usable lines is rejected.
func (s *ShipmentService) Create(ctx context.Context, req *CreateShipmentRequest) (*ShipmentDetail, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.Create")
	defer span.End()

	if strings.TrimSpace(req.StoreSource) == "" {
		return nil, fmt.Errorf("%w: store source is required", ErrValidation)
	}

	items := shipmentLines(req.Items)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: shipment has no items", ErrValidation)
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	shipment := &models.Shipment{
		ShipmentNumber:   generateShipmentNumber(time.Now()),
		StoreSource:      req.StoreSource,
		OrderDate:        orderDate,
		ExpectedArrival:  req.ExpectedArrival,
		TotalShippingFee: req.TotalShippingFee,
		Status:           models.ShipmentStatusPending,
		Notes:            req.Notes,
	}

	itemCost := models.TotalItemCost(items)
	totalCost := itemCost + shipment.TotalShippingFee

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateShipment(ctx, shipment); err != nil {
			return fmt.Errorf("failed to create shipment: %w", err)
		}
		for i := range items {
			items[i].ShipmentID = shipment.ID
			if err := tx.CreateShipmentItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("failed to create shipment item: %w", err)
			}
		}

		cf := &models.CashFlow{
			TransactionDate: shipment.OrderDate,
			Type:            models.CashFlowTypeExpense,
			Category:        models.CashFlowCategoryLogistics,
			Description: fmt.Sprintf("Shipment %s from %s (%d items)",
				shipment.ShipmentNumber, shipment.StoreSource, len(items)),
			Amount:          totalCost,
			ReferenceNumber: &shipment.ShipmentNumber,
			ShipmentID:      &shipment.ID,
			Notes:           shipment.Notes,
		}
		if err := tx.CreateCashFlow(ctx, cf); err != nil {
			return fmt.Errorf("failed to record logistics expense: %w", err)
		}
		util.CashFlowEntriesTotal.WithLabelValues(cf.Type, cf.Category).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.ShipmentsCreatedTotal.Inc()
	s.logger.Info("Shipment created",
		zap.Int64("shipment_id", shipment.ID),
		zap.String("shipment_number", shipment.ShipmentNumber),
		zap.Int64("total_cost", totalCost))

	event := &models.ShipmentCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeShipmentCreated,
			Timestamp: time.Now(),
		},
		ShipmentID:     shipment.ID,
		ShipmentNumber: shipment.ShipmentNumber,
		StoreSource:    shipment.StoreSource,
		TotalCost:      totalCost,
	}
	if err := s.eventPublisher.PublishShipmentCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ShipmentCreated event", zap.Error(err))
	}

	totalQty := models.TotalQuantity(items)
	return &ShipmentDetail{
		Shipment:                 *shipment,
		Items:                    items,
		TotalQuantity:            totalQty,
		TotalItemCost:            itemCost,
		TotalCost:                totalCost,
		AllocatedShippingPerUnit: models.AllocatedShippingPerUnit(shipment.TotalShippingFee, totalQty),
	}, nil
}

// Receive resolves the requested lines of a shipment into inventory. Each
// line tries, in order: an active catalog product with the same item code,
// creating a new product when the request asks for it, and the product the
// line was pre-linked to. A requested line that resolves to nothing still
// completes, unlinked and with no inventory effect. Only lines the request
// leaves out stay outstanding; the shipment becomes Received once no line
// is left outstanding.
func (s *ShipmentService) Receive(ctx context.Context, shipmentID int64, req *ReceiveShipmentRequest) (*ReceiveShipmentResponse, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.Receive")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ShipmentReceiveLatency.Observe(time.Since(start).Seconds())
	}()

	shipment, err := s.store.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, fmt.Errorf("%w: shipment %d", ErrNotFound, shipmentID)
	}
	if shipment.Status == models.ShipmentStatusReceived {
		return nil, fmt.Errorf("%w: shipment %s is already received", ErrInvalidState, shipment.ShipmentNumber)
	}

	items, err := s.store.GetShipmentItems(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	directives := make(map[int64]ReceiveItemRequest, len(req.Items))
	for _, d := range req.Items {
		directives[d.ShipmentItemID] = d
	}

	perUnitShipping := models.AllocatedShippingPerUnit(shipment.TotalShippingFee, models.TotalQuantity(items))
	receivedAt := time.Now()

	resp := &ReceiveShipmentResponse{
		ShipmentID:     shipment.ID,
		ShipmentNumber: shipment.ShipmentNumber,
		Lines:          make([]ReceiveLineResult, 0, len(items)),
	}

	// Stock cache deltas applied after commit.
	type cacheDelta struct {
		productID int64
		quantity  int
		created   bool
		reorder   int
	}
	var deltas []cacheDelta
	var receivedLines []models.ShipmentLineData

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		allReceived := true
		for i := range items {
			item := &items[i]
			directive, requested := directives[item.ID]
			switch classifyLine(item, requested) {
			case lineAlreadyReceived:
				resp.Lines = append(resp.Lines, ReceiveLineResult{
					ShipmentItemID: item.ID,
					ItemName:       item.ItemName,
					Outcome:        receiveOutcomeAlreadyGot,
					ProductID:      item.ProductID,
				})
				continue
			case lineOutstanding:
				allReceived = false
				resp.SkippedCount++
				resp.Lines = append(resp.Lines, ReceiveLineResult{
					ShipmentItemID: item.ID,
					ItemName:       item.ItemName,
					Outcome:        receiveOutcomeSkipped,
				})
				util.ShipmentItemsSkippedTotal.Inc()
				continue
			}

			finalUnitCost := item.UnitCost + perUnitShipping
			result := ReceiveLineResult{ShipmentItemID: item.ID, ItemName: item.ItemName}

			resolved := false

			// 1. An active catalog product with the same item code wins.
			if item.ItemCode != "" {
				product, err := tx.GetActiveProductByItemCode(ctx, item.ItemCode)
				if err != nil {
					return err
				}
				if product != nil {
					created, err := s.stockIntoProduct(ctx, tx, product.ID, item.Quantity)
					if err != nil {
						return err
					}
					if err := tx.LinkShipmentItemProduct(ctx, item.ID, product.ID); err != nil {
						return err
					}
					item.ProductID = &product.ID
					result.Outcome = receiveOutcomeMatched
					result.ProductID = &product.ID
					deltas = append(deltas, cacheDelta{productID: product.ID, quantity: item.Quantity, created: created, reorder: s.reorderLevel})
					resolved = true
				}
			}

			// 2. Catalogue the line as a brand-new product when asked to.
			if !resolved && directive.CreateNewProduct {
				sellingPrice := directive.SellingPrice
				if sellingPrice <= 0 {
					sellingPrice = defaultSellingPrice(finalUnitCost)
				}
				product := &models.Product{
					ItemCode:     item.ItemCode,
					Name:         item.ItemName,
					Brand:        item.Brand,
					Category:     item.Category,
					CostPrice:    finalUnitCost,
					SellingPrice: sellingPrice,
					IsActive:     true,
				}
				if err := tx.CreateProduct(ctx, product); err != nil {
					return fmt.Errorf("failed to create product from shipment line: %w", err)
				}
				inv := &models.Inventory{
					ProductID:       product.ID,
					QuantityInStock: item.Quantity,
					ReorderLevel:    s.reorderLevel,
				}
				if err := tx.CreateInventory(ctx, inv); err != nil {
					return fmt.Errorf("failed to seed inventory from shipment line: %w", err)
				}
				if err := tx.LinkShipmentItemProduct(ctx, item.ID, product.ID); err != nil {
					return err
				}
				item.ProductID = &product.ID
				result.Outcome = receiveOutcomeCreated
				result.ProductID = &product.ID
				deltas = append(deltas, cacheDelta{productID: product.ID, quantity: item.Quantity, created: true, reorder: s.reorderLevel})
				resolved = true
			}

			// 3. Fall back to the product the line was pre-linked to.
			if !resolved && item.ProductID != nil {
				created, err := s.stockIntoProduct(ctx, tx, *item.ProductID, item.Quantity)
				if err != nil {
					return err
				}
				result.Outcome = receiveOutcomePreLinked
				result.ProductID = item.ProductID
				deltas = append(deltas, cacheDelta{productID: *item.ProductID, quantity: item.Quantity, created: created, reorder: s.reorderLevel})
				resolved = true
			}

			// 4. Nothing matched; the line completes unlinked with no
			// inventory effect.
			if !resolved {
				resp.SkippedCount++
				result.Outcome = receiveOutcomeSkipped
				util.ShipmentItemsSkippedTotal.Inc()
			} else {
				resp.ReceivedCount++
				util.ShipmentItemsReceivedTotal.Inc()
			}

			if err := tx.MarkShipmentItemReceived(ctx, item.ID, receivedAt); err != nil {
				return err
			}
			resp.Lines = append(resp.Lines, result)
			if result.ProductID != nil {
				receivedLines = append(receivedLines, models.ShipmentLineData{
					ProductID: *result.ProductID,
					ItemCode:  item.ItemCode,
					Quantity:  item.Quantity,
					UnitCost:  finalUnitCost,
				})
			}
		}

		status := models.ShipmentStatusInTransit
		if allReceived {
			status = models.ShipmentStatusReceived
		}
		resp.Status = status
		return tx.UpdateShipmentStatus(ctx, shipmentID, status)
	})
	if err != nil {
		return nil, err
	}

	for _, d := range deltas {
		if d.created {
			if err := s.cache.SetStock(ctx, d.productID, d.quantity, d.reorder); err != nil {
				s.logger.Warn("Failed to seed cached stock", zap.Int64("product_id", d.productID), zap.Error(err))
			}
			continue
		}
		if _, err := s.cache.AdjustStock(ctx, d.productID, d.quantity); err != nil {
			s.logger.Warn("Failed to adjust cached stock", zap.Int64("product_id", d.productID), zap.Error(err))
		}
	}

	s.logger.Info("Shipment receiving pass complete",
		zap.Int64("shipment_id", shipmentID),
		zap.String("status", resp.Status),
		zap.Int("received", resp.ReceivedCount),
		zap.Int("skipped", resp.SkippedCount))

	event := &models.ShipmentReceivedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeShipmentReceived,
			Timestamp: time.Now(),
		},
		ShipmentID:     shipment.ID,
		ShipmentNumber: shipment.ShipmentNumber,
		Complete:       resp.Status == models.ShipmentStatusReceived,
		Lines:          receivedLines,
	}
	if err := s.eventPublisher.PublishShipmentReceived(ctx, event); err != nil {
		s.logger.Error("Failed to publish ShipmentReceived event", zap.Error(err))
	}

	return resp, nil
}

// stockIntoProduct increments the product's inventory, creating the row with
// the default reorder level when the product has none yet. Reports whether
// the row was created.
func (s *ShipmentService) stockIntoProduct(ctx context.Context, tx *store.Store, productID int64, quantity int) (bool, error) {
	inv, err := tx.GetInventoryByProductID(ctx, productID)
	if err != nil {
		return false, err
	}
	if inv == nil {
		inv = &models.Inventory{
			ProductID:       productID,
			QuantityInStock: quantity,
			ReorderLevel:    s.reorderLevel,
		}
		if err := tx.CreateInventory(ctx, inv); err != nil {
			return false, fmt.Errorf("failed to create inventory for product %d: %w", productID, err)
		}
		return true, nil
	}
	if err := tx.AddStock(ctx, productID, quantity); err != nil {
		return false, fmt.Errorf("failed to add stock for product %d: %w", productID, err)
	}
	return false, nil
}

// UpdateStatus overwrites a shipment's status without side effects. Use
// Receive to land items into inventory.
func (s *ShipmentService) UpdateStatus(ctx context.Context, shipmentID int64, status string) error {
	if !models.ValidShipmentStatus(status) {
		return fmt.Errorf("%w: unknown shipment status %q", ErrInvalidArgument, status)
	}

	shipment, err := s.store.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if shipment == nil {
		return fmt.Errorf("%w: shipment %d", ErrNotFound, shipmentID)
	}

	return s.store.UpdateShipmentStatus(ctx, shipmentID, status)
}

// Delete removes a shipment that has not been received. Received shipments
// are history; their items are already in inventory.
func (s *ShipmentService) Delete(ctx context.Context, shipmentID int64) error {
	shipment, err := s.store.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if shipment == nil {
		return fmt.Errorf("%w: shipment %d", ErrNotFound, shipmentID)
	}
	if shipment.Status == models.ShipmentStatusReceived {
		return fmt.Errorf("%w: received shipments cannot be deleted", ErrInvalidState)
	}

	if err := s.store.WithTx(ctx, func(tx *store.Store) error {
		return tx.DeleteShipment(ctx, shipmentID)
	}); err != nil {
		return err
	}

	s.logger.Info("Shipment deleted",
		zap.Int64("shipment_id", shipmentID),
		zap.String("shipment_number", shipment.ShipmentNumber))
	return nil
}

// Get retrieves a shipment with its lines and derived cost figures
func (s *ShipmentService) Get(ctx context.Context, shipmentID int64) (*ShipmentDetail, error) {
	shipment, err := s.store.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, fmt.Errorf("%w: shipment %d", ErrNotFound, shipmentID)
	}

	items, err := s.store.GetShipmentItems(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	totalQty := models.TotalQuantity(items)
	itemCost := models.TotalItemCost(items)
	return &ShipmentDetail{
		Shipment:                 *shipment,
		Items:                    items,
		TotalQuantity:            totalQty,
		TotalItemCost:            itemCost,
		TotalCost:                itemCost + shipment.TotalShippingFee,
		AllocatedShippingPerUnit: models.AllocatedShippingPerUnit(shipment.TotalShippingFee, totalQty),
	}, nil
}

// List retrieves shipments matching the filter
func (s *ShipmentService) List(ctx context.Context, filter store.ShipmentFilter) ([]models.Shipment, error) {
	return s.store.ListShipments(ctx, filter)
}
