package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
)

const stockColumns = `id, tenant_id, location_type, location_id, inventory_item_id,
	quantity, minimum_stock_level, max_stock_level, created_at, updated_at`

func scanLocationItem(row scannable) (stock.LocationItem, error) {
	var li stock.LocationItem
	err := row.Scan(&li.ID, &li.TenantID, &li.Location.Kind, &li.Location.ID,
		&li.InventoryItemID, &li.Quantity, &li.MinimumStockLevel,
		&li.MaxStockLevel, &li.CreatedAt, &li.UpdatedAt)
	return li, err
}

// --- Warehouses ---

const warehouseColumns = `id, tenant_id, name, COALESCE(address, ''), created_at, updated_at`

func scanWarehouse(row scannable) (stock.Warehouse, error) {
	var w stock.Warehouse
	err := row.Scan(&w.ID, &w.TenantID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func (s *Store) CreateWarehouse(ctx context.Context, w *stock.Warehouse) error {
	tid := tenantFromCtx(ctx)
	w.TenantID = tid

	row := s.pool.QueryRow(ctx,
		`INSERT INTO warehouses (id, tenant_id, name, address)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		w.ID, tid, w.Name, nullIfEmpty(w.Address))
	if err := row.Scan(&w.CreatedAt, &w.UpdatedAt); err != nil {
		return fmt.Errorf("create warehouse: %w", wrapStorage(err))
	}
	return nil
}

func (s *Store) GetWarehouse(ctx context.Context, id string) (*stock.Warehouse, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1 AND tenant_id = $2
		 ORDER BY created_at LIMIT 1`, id, tenantFromCtx(ctx))

	w, err := scanWarehouse(row)
	if err != nil {
		return nil, notFoundWrap(err, "get warehouse %s", id)
	}
	return &w, nil
}

func (s *Store) ListWarehouses(ctx context.Context) ([]stock.Warehouse, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+warehouseColumns+` FROM warehouses WHERE tenant_id = $1 ORDER BY created_at`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", wrapStorage(err))
	}
	defer rows.Close()

	var out []stock.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("list warehouses: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteWarehouse refuses to delete a warehouse that still holds stock.
func (s *Store) DeleteWarehouse(ctx context.Context, id string) error {
	tid := tenantFromCtx(ctx)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		var held int
		err := tx.QueryRow(ctx,
			`SELECT count(*) FROM stock_location_items
			 WHERE tenant_id = $1 AND location_type = $2 AND location_id = $3 AND quantity > 0`,
			tid, stock.KindWarehouse, id).Scan(&held)
		if err != nil {
			return fmt.Errorf("delete warehouse %s: %w", id, wrapStorage(err))
		}
		if held > 0 {
			return fmt.Errorf("delete warehouse %s: still holds stock: %w", id, domain.ErrConflict)
		}

		_, err = tx.Exec(ctx,
			`DELETE FROM stock_location_items
			 WHERE tenant_id = $1 AND location_type = $2 AND location_id = $3`,
			tid, stock.KindWarehouse, id)
		if err != nil {
			return fmt.Errorf("delete warehouse %s stock rows: %w", id, wrapStorage(err))
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM warehouses WHERE id = $1 AND tenant_id = $2`, id, tid)
		return execExpectOne(tag, err, "delete warehouse %s", id)
	})
}

// --- Catalog items ---

const itemColumns = `id, tenant_id, name, COALESCE(category, ''), unit_price_cents,
	COALESCE(supplier, ''), created_at, updated_at`

func scanItem(row scannable) (stock.Item, error) {
	var it stock.Item
	err := row.Scan(&it.ID, &it.TenantID, &it.Name, &it.Category,
		&it.UnitPriceCents, &it.Supplier, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (s *Store) CreateItem(ctx context.Context, it *stock.Item) error {
	tid := tenantFromCtx(ctx)
	it.TenantID = tid

	row := s.pool.QueryRow(ctx,
		`INSERT INTO inventory_items (id, tenant_id, name, category, unit_price_cents, supplier)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		it.ID, tid, it.Name, nullIfEmpty(it.Category), it.UnitPriceCents, nullIfEmpty(it.Supplier))
	if err := row.Scan(&it.CreatedAt, &it.UpdatedAt); err != nil {
		return fmt.Errorf("create item: %w", wrapStorage(err))
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*stock.Item, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 AND tenant_id = $2
		 ORDER BY created_at LIMIT 1`, id, tenantFromCtx(ctx))

	it, err := scanItem(row)
	if err != nil {
		return nil, notFoundWrap(err, "get item %s", id)
	}
	return &it, nil
}

func (s *Store) ListItems(ctx context.Context) ([]stock.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE tenant_id = $1 ORDER BY name`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", wrapStorage(err))
	}
	defer rows.Close()

	var out []stock.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) UpdateItem(ctx context.Context, it *stock.Item) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE inventory_items SET name = $2, category = $3, unit_price_cents = $4,
			supplier = $5, updated_at = now()
		 WHERE id = $1 AND tenant_id = $6`,
		it.ID, it.Name, nullIfEmpty(it.Category), it.UnitPriceCents,
		nullIfEmpty(it.Supplier), tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update item %s", it.ID)
}

// --- Stock ledger ---

func (s *Store) LocationExists(ctx context.Context, loc stock.LocationRef) (bool, error) {
	table := "warehouses"
	if loc.Kind == stock.KindVehicle {
		table = "vehicles"
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1 AND tenant_id = $2)`,
		loc.ID, tenantFromCtx(ctx)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("location exists %s: %w", loc, wrapStorage(err))
	}
	return exists, nil
}

func (s *Store) GetLocationItem(ctx context.Context, loc stock.LocationRef, itemID string) (*stock.LocationItem, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stock_location_items
		 WHERE tenant_id = $1 AND location_type = $2 AND location_id = $3 AND inventory_item_id = $4`,
		tenantFromCtx(ctx), loc.Kind, loc.ID, itemID)

	li, err := scanLocationItem(row)
	if err != nil {
		return nil, notFoundWrap(err, "get stock %s item %s", loc, itemID)
	}
	return &li, nil
}

func (s *Store) ListLocationItems(ctx context.Context, loc stock.LocationRef) ([]stock.LocationItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+stockColumns+` FROM stock_location_items
		 WHERE tenant_id = $1 AND location_type = $2 AND location_id = $3
		 ORDER BY inventory_item_id`,
		tenantFromCtx(ctx), loc.Kind, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("list stock at %s: %w", loc, wrapStorage(err))
	}
	defer rows.Close()

	var out []stock.LocationItem
	for rows.Next() {
		li, err := scanLocationItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list stock at %s: %w", loc, err)
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

// SetQuantity is a manual count correction. The row is created on first
// placement with default bounds.
func (s *Store) SetQuantity(ctx context.Context, loc stock.LocationRef, itemID string, quantity int64) (*stock.LocationItem, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO stock_location_items
			(id, tenant_id, location_type, location_id, inventory_item_id, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (tenant_id, location_type, location_id, inventory_item_id)
		 DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		 RETURNING `+stockColumns,
		uuid.NewString(), tenantFromCtx(ctx), loc.Kind, loc.ID, itemID, quantity)

	li, err := scanLocationItem(row)
	if err != nil {
		return nil, fmt.Errorf("set quantity %s item %s: %w", loc, itemID, wrapStorage(err))
	}
	return &li, nil
}

// AdjustMinMax sets the replenishment bounds. Bounds may be set before
// any stock arrives, so the row is upserted with quantity zero.
func (s *Store) AdjustMinMax(ctx context.Context, loc stock.LocationRef, itemID string, min int64, max *int64) (*stock.LocationItem, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO stock_location_items
			(id, tenant_id, location_type, location_id, inventory_item_id, quantity, minimum_stock_level, max_stock_level)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
		 ON CONFLICT (tenant_id, location_type, location_id, inventory_item_id)
		 DO UPDATE SET minimum_stock_level = EXCLUDED.minimum_stock_level,
			 max_stock_level = EXCLUDED.max_stock_level, updated_at = now()
		 RETURNING `+stockColumns,
		uuid.NewString(), tenantFromCtx(ctx), loc.Kind, loc.ID, itemID, min, max)

	li, err := scanLocationItem(row)
	if err != nil {
		return nil, fmt.Errorf("adjust bounds %s item %s: %w", loc, itemID, wrapStorage(err))
	}
	return &li, nil
}

// Transfer moves quantity atomically between two locations. Both sides
// are serialized by advisory locks taken in lexicographic order of the
// "kind:id|item" key, so two opposing transfers cannot deadlock. The
// conditional decrement is the sufficiency check: zero rows touched
// means not enough stock, and the transaction rolls back with nothing
// applied.
func (s *Store) Transfer(ctx context.Context, req stock.TransferRequest) error {
	tid := tenantFromCtx(ctx)

	keys := []string{
		req.From.String() + "|" + req.ItemID,
		req.To.String() + "|" + req.ItemID,
	}
	sort.Strings(keys)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, k := range keys {
			if err := advisoryLock(ctx, tx, "stock:"+tid+":"+k); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx,
			`UPDATE stock_location_items SET quantity = quantity - $5, updated_at = now()
			 WHERE tenant_id = $1 AND location_type = $2 AND location_id = $3
			   AND inventory_item_id = $4 AND quantity >= $5`,
			tid, req.From.Kind, req.From.ID, req.ItemID, req.Quantity)
		if err != nil {
			return fmt.Errorf("transfer %s -> %s: %w", req.From, req.To, wrapStorage(err))
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("transfer %s -> %s: need %d of item %s: %w",
				req.From, req.To, req.Quantity, req.ItemID, domain.ErrInsufficientStock)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO stock_location_items
				(id, tenant_id, location_type, location_id, inventory_item_id, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (tenant_id, location_type, location_id, inventory_item_id)
			 DO UPDATE SET quantity = stock_location_items.quantity + EXCLUDED.quantity,
				 updated_at = now()`,
			uuid.NewString(), tid, req.To.Kind, req.To.ID, req.ItemID, req.Quantity)
		if err != nil {
			return fmt.Errorf("transfer %s -> %s: %w", req.From, req.To, wrapStorage(err))
		}
		return nil
	})
}

// AggregateItem rolls one item up across every location in a single
// statement, so the totals are one consistent snapshot.
func (s *Store) AggregateItem(ctx context.Context, itemID string) (*stock.Aggregate, error) {
	agg := stock.Aggregate{ItemID: itemID}
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(sum(quantity), 0), count(*),
			COALESCE(sum(quantity), 0) * COALESCE(
				(SELECT unit_price_cents FROM inventory_items
				 WHERE id = $2 AND tenant_id = $1 ORDER BY created_at LIMIT 1), 0)
		 FROM stock_location_items
		 WHERE tenant_id = $1 AND inventory_item_id = $2`,
		tenantFromCtx(ctx), itemID).Scan(&agg.TotalQuantity, &agg.Locations, &agg.TotalValueCents)
	if err != nil {
		return nil, fmt.Errorf("aggregate item %s: %w", itemID, wrapStorage(err))
	}
	return &agg, nil
}
