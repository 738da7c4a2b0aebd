package service

import (
	"errors"
	"testing"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/vehicle"
)

func stockFixture() (*mockStore, *StockService) {
	store := &mockStore{
		warehouses: []stock.Warehouse{
			{ID: "wh-1", Name: "Main"},
			{ID: "wh-2", Name: "North"},
		},
		vehicles: []vehicle.Vehicle{{ID: "veh-1", VIN: "VIN1"}},
		items:    []stock.Item{{ID: "item-1", Name: "Brake pads", UnitPriceCents: 2500}},
	}
	return store, NewStockService(store, nil, nil)
}

func TestSetQuantity(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	li, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 10)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if li.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", li.Quantity)
	}

	// Corrections overwrite, not add.
	li, err = svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 4)
	if err != nil {
		t.Fatalf("set quantity again: %v", err)
	}
	if li.Quantity != 4 {
		t.Errorf("quantity = %d, want 4", li.Quantity)
	}
}

func TestSetQuantityValidation(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", -1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative quantity: got %v, want ErrValidation", err)
	}
	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-x"), "item-1", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown location: got %v, want ErrNotFound", err)
	}
	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-x", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown item: got %v, want ErrNotFound", err)
	}
	if _, err := svc.SetQuantity(ctx, stock.LocationRef{Kind: "garage", ID: "g1"}, "item-1", 1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown location kind: got %v, want ErrValidation", err)
	}
}

func TestTransfer(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 10); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	err := svc.Transfer(ctx, stock.TransferRequest{
		From: stock.WarehouseRef("wh-1"), To: stock.VehicleRef("veh-1"),
		ItemID: "item-1", Quantity: 6,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	src, _ := svc.Get(ctx, stock.WarehouseRef("wh-1"), "item-1")
	dst, _ := svc.Get(ctx, stock.VehicleRef("veh-1"), "item-1")
	if src.Quantity != 4 || dst.Quantity != 6 {
		t.Fatalf("quantities = %d/%d, want 4/6", src.Quantity, dst.Quantity)
	}
}

func TestTransferInsufficientStock(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 3); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	err := svc.Transfer(ctx, stock.TransferRequest{
		From: stock.WarehouseRef("wh-1"), To: stock.WarehouseRef("wh-2"),
		ItemID: "item-1", Quantity: 5,
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Nothing moved.
	src, _ := svc.Get(ctx, stock.WarehouseRef("wh-1"), "item-1")
	if src.Quantity != 3 {
		t.Errorf("source quantity = %d, want 3", src.Quantity)
	}
	if _, err := svc.Get(ctx, stock.WarehouseRef("wh-2"), "item-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected no destination row, got %v", err)
	}
}

func TestTransferValidation(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	cases := []struct {
		name string
		req  stock.TransferRequest
		want error
	}{
		{"same location", stock.TransferRequest{From: stock.WarehouseRef("wh-1"), To: stock.WarehouseRef("wh-1"), ItemID: "item-1", Quantity: 1}, domain.ErrValidation},
		{"zero quantity", stock.TransferRequest{From: stock.WarehouseRef("wh-1"), To: stock.WarehouseRef("wh-2"), ItemID: "item-1", Quantity: 0}, domain.ErrValidation},
		{"negative quantity", stock.TransferRequest{From: stock.WarehouseRef("wh-1"), To: stock.WarehouseRef("wh-2"), ItemID: "item-1", Quantity: -2}, domain.ErrValidation},
		{"missing item", stock.TransferRequest{From: stock.WarehouseRef("wh-1"), To: stock.WarehouseRef("wh-2"), Quantity: 1}, domain.ErrValidation},
		{"unknown source", stock.TransferRequest{From: stock.WarehouseRef("wh-x"), To: stock.WarehouseRef("wh-2"), ItemID: "item-1", Quantity: 1}, domain.ErrNotFound},
		{"unknown destination", stock.TransferRequest{From: stock.WarehouseRef("wh-1"), To: stock.VehicleRef("veh-x"), ItemID: "item-1", Quantity: 1}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Transfer(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAdjustMinMax(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	max := int64(20)
	li, err := svc.AdjustMinMax(ctx, stock.WarehouseRef("wh-1"), "item-1", 5, &max)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if li.MinimumStockLevel != 5 || li.MaxStockLevel == nil || *li.MaxStockLevel != 20 {
		t.Fatalf("bounds = %d/%v, want 5/20", li.MinimumStockLevel, li.MaxStockLevel)
	}

	bad := int64(2)
	if _, err := svc.AdjustMinMax(ctx, stock.WarehouseRef("wh-1"), "item-1", 5, &bad); !errors.Is(err, domain.ErrInvalidStockBounds) {
		t.Fatalf("expected ErrInvalidStockBounds for max < min, got %v", err)
	}
	if _, err := svc.AdjustMinMax(ctx, stock.WarehouseRef("wh-1"), "item-1", -1, nil); !errors.Is(err, domain.ErrInvalidStockBounds) {
		t.Fatalf("expected ErrInvalidStockBounds for negative min, got %v", err)
	}
}

func TestBelowMinimum(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	if _, err := svc.AdjustMinMax(ctx, stock.WarehouseRef("wh-1"), "item-1", 5, nil); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	low, err := svc.BelowMinimum(ctx, stock.WarehouseRef("wh-1"))
	if err != nil {
		t.Fatalf("below minimum: %v", err)
	}
	if len(low) != 1 || low[0].InventoryItemID != "item-1" {
		t.Fatalf("low rows = %+v, want the item-1 row", low)
	}

	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 8); err != nil {
		t.Fatalf("restock: %v", err)
	}
	low, err = svc.BelowMinimum(ctx, stock.WarehouseRef("wh-1"))
	if err != nil {
		t.Fatalf("below minimum after restock: %v", err)
	}
	if len(low) != 0 {
		t.Fatalf("expected no low rows after restock, got %+v", low)
	}
}

func TestAggregate(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 7); err != nil {
		t.Fatalf("seed wh-1: %v", err)
	}
	if _, err := svc.SetQuantity(ctx, stock.VehicleRef("veh-1"), "item-1", 3); err != nil {
		t.Fatalf("seed veh-1: %v", err)
	}

	agg, err := svc.Aggregate(ctx, "item-1")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalQuantity != 10 || agg.Locations != 2 {
		t.Errorf("aggregate = %+v, want total 10 over 2 locations", agg)
	}
	if agg.TotalValueCents != 25000 {
		t.Errorf("total value = %d, want 25000", agg.TotalValueCents)
	}

	if _, err := svc.Aggregate(ctx, "item-x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown item: got %v, want ErrNotFound", err)
	}
}

func TestDeleteWarehouse(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 2); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.DeleteWarehouse(ctx, "wh-1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for a non-empty warehouse, got %v", err)
	}

	if _, err := svc.SetQuantity(ctx, stock.WarehouseRef("wh-1"), "item-1", 0); err != nil {
		t.Fatalf("zero stock: %v", err)
	}
	if err := svc.DeleteWarehouse(ctx, "wh-1"); err != nil {
		t.Fatalf("delete empty warehouse: %v", err)
	}
	if _, err := svc.GetWarehouse(ctx, "wh-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected warehouse gone, got %v", err)
	}
}

func TestCreateWarehouseValidation(t *testing.T) {
	_, svc := stockFixture()
	ctx := testCtx("t1")

	if _, err := svc.CreateWarehouse(ctx, stock.WarehouseCreateRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing name, got %v", err)
	}
	w, err := svc.CreateWarehouse(ctx, stock.WarehouseCreateRequest{Name: "South", Address: "1 Depot Rd"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ID == "" {
		t.Error("expected a generated id")
	}
}
