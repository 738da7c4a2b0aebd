package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	otelx "github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/otel"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ws"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/messagequeue"
)

// StockService is the stock ledger: per-location quantities, bounds,
// atomic transfers, and the cross-location aggregate. Quantities are
// never cached; every decision reads persisted state.
type StockService struct {
	store    database.Store
	notifier *Notifier
	metrics  *otelx.Metrics
}

// NewStockService creates a new stock service. metrics may be nil.
func NewStockService(store database.Store, notifier *Notifier, metrics *otelx.Metrics) *StockService {
	return &StockService{store: store, notifier: notifier, metrics: metrics}
}

// CreateWarehouse adds a fixed stock location.
func (s *StockService) CreateWarehouse(ctx context.Context, req stock.WarehouseCreateRequest) (*stock.Warehouse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	w := &stock.Warehouse{ID: uuid.NewString(), Name: req.Name, Address: req.Address}
	if err := s.store.CreateWarehouse(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// GetWarehouse returns one warehouse.
func (s *StockService) GetWarehouse(ctx context.Context, id string) (*stock.Warehouse, error) {
	return s.store.GetWarehouse(ctx, id)
}

// ListWarehouses returns the tenant's warehouses.
func (s *StockService) ListWarehouses(ctx context.Context) ([]stock.Warehouse, error) {
	return s.store.ListWarehouses(ctx)
}

// DeleteWarehouse removes an empty warehouse. A warehouse still holding
// stock is refused; move or zero the stock first.
func (s *StockService) DeleteWarehouse(ctx context.Context, id string) error {
	return s.store.DeleteWarehouse(ctx, id)
}

// Get returns one stock row.
func (s *StockService) Get(ctx context.Context, loc stock.LocationRef, itemID string) (*stock.LocationItem, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return s.store.GetLocationItem(ctx, loc, itemID)
}

// List returns every stock row at a location.
func (s *StockService) List(ctx context.Context, loc stock.LocationRef) ([]stock.LocationItem, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return s.store.ListLocationItems(ctx, loc)
}

// SetQuantity is a manual count correction; it creates the row on first
// placement. Negative quantities never exist.
func (s *StockService) SetQuantity(ctx context.Context, loc stock.LocationRef, itemID string, quantity int64) (*stock.LocationItem, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", domain.ErrValidation)
	}
	if err := s.requireLocation(ctx, loc); err != nil {
		return nil, err
	}
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("item: %w", err)
	}

	li, err := s.store.SetQuantity(ctx, loc, itemID, quantity)
	if err != nil {
		return nil, err
	}
	s.warnBelowMinimum(ctx, li)
	return li, nil
}

// AdjustMinMax sets the replenishment bounds for one row. A contradictory
// pair applies nothing.
func (s *StockService) AdjustMinMax(ctx context.Context, loc stock.LocationRef, itemID string, min int64, max *int64) (*stock.LocationItem, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := stock.ValidateBounds(min, max); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidStockBounds, err)
	}
	if err := s.requireLocation(ctx, loc); err != nil {
		return nil, err
	}

	return s.store.AdjustMinMax(ctx, loc, itemID, min, max)
}

// Transfer atomically moves quantity between two locations. Either both
// sides change or neither does; insufficient source stock rolls the whole
// transfer back.
func (s *StockService) Transfer(ctx context.Context, req stock.TransferRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := s.requireLocation(ctx, req.From); err != nil {
		return err
	}
	if err := s.requireLocation(ctx, req.To); err != nil {
		return err
	}

	ctx, span := otelx.StartTransferSpan(ctx, req.From.String(), req.To.String(), req.ItemID, req.Quantity)
	defer span.End()

	if err := s.store.Transfer(ctx, req); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.StockTransfers.Add(ctx, 1)
	}
	s.notifier.Publish(ctx, messagequeue.SubjectStockTransferred, ws.EventStockTransferred,
		ws.StockTransferEvent{
			From:     req.From.String(),
			To:       req.To.String(),
			ItemID:   req.ItemID,
			Quantity: req.Quantity,
		})

	if li, err := s.store.GetLocationItem(ctx, req.From, req.ItemID); err == nil {
		s.warnBelowMinimum(ctx, li)
	}
	return nil
}

// BelowMinimum lists the rows at a location needing replenishment.
func (s *StockService) BelowMinimum(ctx context.Context, loc stock.LocationRef) ([]stock.LocationItem, error) {
	items, err := s.List(ctx, loc)
	if err != nil {
		return nil, err
	}

	low := make([]stock.LocationItem, 0, len(items))
	for _, li := range items {
		if li.BelowMinimum() {
			low = append(low, li)
		}
	}
	return low, nil
}

// Aggregate rolls one item up across all locations in a single snapshot.
func (s *StockService) Aggregate(ctx context.Context, itemID string) (*stock.Aggregate, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("item: %w", err)
	}
	return s.store.AggregateItem(ctx, itemID)
}

func (s *StockService) requireLocation(ctx context.Context, loc stock.LocationRef) error {
	ok, err := s.store.LocationExists(ctx, loc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("location %s: %w", loc, domain.ErrNotFound)
	}
	return nil
}

// warnBelowMinimum emits the replenishment event when a row has dropped
// under its minimum. Informational only.
func (s *StockService) warnBelowMinimum(ctx context.Context, li *stock.LocationItem) {
	if li == nil || !li.BelowMinimum() {
		return
	}
	s.notifier.Publish(ctx, messagequeue.SubjectStockBelowMin, ws.EventStockBelowMin,
		ws.StockBelowMinEvent{
			Location: li.Location.String(),
			ItemID:   li.InventoryItemID,
			Quantity: li.Quantity,
			Minimum:  li.MinimumStockLevel,
		})
}
