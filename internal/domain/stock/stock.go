// Package stock defines inventory locations, catalog items, and the
// per-location stock rows the Stock Ledger operates on.
package stock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LocationKind discriminates the two mutually exclusive places stock can
// reside.
type LocationKind string

const (
	KindWarehouse LocationKind = "warehouse"
	KindVehicle   LocationKind = "vehicle"
)

// LocationRef addresses exactly one warehouse or one vehicle. The zero
// value is invalid.
type LocationRef struct {
	Kind LocationKind `json:"kind"`
	ID   string       `json:"id"`
}

// WarehouseRef returns a LocationRef for a warehouse.
func WarehouseRef(id string) LocationRef { return LocationRef{Kind: KindWarehouse, ID: id} }

// VehicleRef returns a LocationRef for a vehicle.
func VehicleRef(id string) LocationRef { return LocationRef{Kind: KindVehicle, ID: id} }

// Validate checks that the ref addresses exactly one known location kind.
func (l LocationRef) Validate() error {
	if l.Kind != KindWarehouse && l.Kind != KindVehicle {
		return fmt.Errorf("unknown location kind %q", l.Kind)
	}
	if l.ID == "" {
		return errors.New("location id is required")
	}
	return nil
}

// String returns the canonical "kind:id" form used in URLs and as the
// lock-ordering key for transfers.
func (l LocationRef) String() string {
	return string(l.Kind) + ":" + l.ID
}

// ParseLocationRef parses the canonical "kind:id" form.
func ParseLocationRef(s string) (LocationRef, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return LocationRef{}, fmt.Errorf("invalid location ref %q: want kind:id", s)
	}
	ref := LocationRef{Kind: LocationKind(kind), ID: id}
	if err := ref.Validate(); err != nil {
		return LocationRef{}, err
	}
	return ref, nil
}

// Warehouse is a fixed stock location.
type Warehouse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseCreateRequest is the input for creating a warehouse.
type WarehouseCreateRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Validate checks required fields.
func (r *WarehouseCreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// Item is a catalog definition. Stock rows reference it; it is not owned
// by any one location.
type Item struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	Name           string    `json:"name"`
	Category       string    `json:"category,omitempty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Supplier       string    `json:"supplier,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ItemCreateRequest is the input for adding a catalog item.
type ItemCreateRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Supplier       string `json:"supplier,omitempty"`
}

// Validate checks required fields.
func (r *ItemCreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.UnitPriceCents < 0 {
		return errors.New("unit_price_cents must not be negative")
	}
	return nil
}

// LocationItem is the quantity of one catalog item held at one location.
// Quantity is never negative; MinimumStockLevel/MaxStockLevel are
// bookkeeping bounds for replenishment, with MaxStockLevel optional.
type LocationItem struct {
	ID                string      `json:"id"`
	TenantID          string      `json:"tenant_id"`
	Location          LocationRef `json:"location"`
	InventoryItemID   string      `json:"inventory_item_id"`
	Quantity          int64       `json:"quantity"`
	MinimumStockLevel int64       `json:"minimum_stock_level"`
	MaxStockLevel     *int64      `json:"max_stock_level,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// BelowMinimum reports whether the row needs replenishment.
func (li *LocationItem) BelowMinimum() bool {
	return li.Quantity < li.MinimumStockLevel
}

// ValidateBounds checks a min/max pair. max may be nil (unset).
func ValidateBounds(min int64, max *int64) error {
	if min < 0 {
		return errors.New("minimum_stock_level must not be negative")
	}
	if max != nil && *max < min {
		return errors.New("max_stock_level must be >= minimum_stock_level")
	}
	return nil
}

// TransferRequest moves quantity of one item between two locations
// atomically.
type TransferRequest struct {
	From     LocationRef `json:"from"`
	To       LocationRef `json:"to"`
	ItemID   string      `json:"item_id"`
	Quantity int64       `json:"quantity"`
}

// Validate checks the request shape; stock sufficiency is checked inside
// the transfer transaction.
func (r *TransferRequest) Validate() error {
	if err := r.From.Validate(); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := r.To.Validate(); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if r.From == r.To {
		return errors.New("from and to must differ")
	}
	if r.ItemID == "" {
		return errors.New("item_id is required")
	}
	if r.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

// Aggregate is the system-wide roll-up of one item across all locations.
type Aggregate struct {
	ItemID          string `json:"item_id"`
	TotalQuantity   int64  `json:"total_quantity"`
	TotalValueCents int64  `json:"total_value_cents"`
	Locations       int    `json:"locations"`
}
