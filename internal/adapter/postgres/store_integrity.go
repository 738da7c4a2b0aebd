package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/integrity"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
)

// auditedTables whitelists identifiers for the duplicate-id scan; table
// names are interpolated into SQL and must never come from user input.
var auditedTables = map[string]bool{
	"tenants":              true,
	"users":                true,
	"vehicles":             true,
	"warehouses":           true,
	"inventory_items":      true,
	"vehicle_assignments":  true,
	"stock_location_items": true,
}

// FindDuplicateIDs returns, for each id occurring more than once in the
// table, the number of rows carrying it. The scan is deliberately
// cross-tenant: ids are meant to be globally unique.
func (s *Store) FindDuplicateIDs(ctx context.Context, table string) (map[string]int, error) {
	if !auditedTables[table] {
		return nil, fmt.Errorf("find duplicates: unknown table %q", table)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, count(*) FROM `+table+` GROUP BY id HAVING count(*) > 1`)
	if err != nil {
		return nil, fmt.Errorf("find duplicates in %s: %w", table, wrapStorage(err))
	}
	defer rows.Close()

	dups := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("find duplicates in %s: %w", table, err)
		}
		dups[id] = n
	}
	return dups, rows.Err()
}

// RepairDuplicateIDs rewrites every surplus duplicate row with a fresh
// UUID. The row kept is the first in (created_at, ctid) order, so repeat
// runs over unchanged data pick the same survivor and the second run
// finds nothing.
func (s *Store) RepairDuplicateIDs(ctx context.Context, table string) (found, repaired int, err error) {
	if !auditedTables[table] {
		return 0, 0, fmt.Errorf("repair duplicates: unknown table %q", table)
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(sum(n - 1), 0) FROM
				(SELECT count(*) AS n FROM `+table+` GROUP BY id HAVING count(*) > 1) d`).
			Scan(&found)
		if err != nil {
			return fmt.Errorf("count duplicates in %s: %w", table, wrapStorage(err))
		}
		if found == 0 {
			return nil
		}

		tag, err := tx.Exec(ctx,
			`WITH ranked AS (
				SELECT ctid AS row_addr,
					row_number() OVER (PARTITION BY id ORDER BY created_at, ctid) AS rn
				FROM `+table+`
				WHERE id IN (SELECT id FROM `+table+` GROUP BY id HAVING count(*) > 1)
			)
			UPDATE `+table+` t SET id = gen_random_uuid()::text
			FROM ranked r WHERE t.ctid = r.row_addr AND r.rn > 1`)
		if err != nil {
			return fmt.Errorf("repair duplicates in %s: %w", table, wrapStorage(err))
		}
		repaired = int(tag.RowsAffected())
		return nil
	})
	return found, repaired, err
}

const orphanStockWhere = `
	s.tenant_id = $1 AND (
		(s.location_type = 'warehouse' AND NOT EXISTS
			(SELECT 1 FROM warehouses w WHERE w.id = s.location_id AND w.tenant_id = $1))
		OR
		(s.location_type = 'vehicle' AND NOT EXISTS
			(SELECT 1 FROM vehicles v WHERE v.id = s.location_id AND v.tenant_id = $1)))`

// FindOrphanStock lists the tenant's stock rows whose location no longer
// resolves to a live warehouse or vehicle.
func (s *Store) FindOrphanStock(ctx context.Context) ([]stock.LocationItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.id, s.tenant_id, s.location_type, s.location_id, s.inventory_item_id,
			s.quantity, s.minimum_stock_level, s.max_stock_level, s.created_at, s.updated_at
		 FROM stock_location_items s WHERE `+orphanStockWhere,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("find orphan stock: %w", wrapStorage(err))
	}
	defer rows.Close()

	var out []stock.LocationItem
	for rows.Next() {
		li, err := scanLocationItem(rows)
		if err != nil {
			return nil, fmt.Errorf("find orphan stock: %w", err)
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

// RepairOrphanStock repairs the tenant's orphaned stock rows according to
// policy: delete them, or merge their quantities into the fallback
// warehouse. Either way the orphan rows are removed, so a repeat run
// finds nothing.
func (s *Store) RepairOrphanStock(ctx context.Context, policy integrity.OrphanPolicy, fallbackWarehouseID string) (found, repaired int, err error) {
	tid := tenantFromCtx(ctx)

	if policy == integrity.OrphanReassign && fallbackWarehouseID == "" {
		return 0, 0, fmt.Errorf("repair orphan stock: reassign policy needs a fallback warehouse")
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT count(*) FROM stock_location_items s WHERE `+orphanStockWhere, tid).
			Scan(&found)
		if err != nil {
			return fmt.Errorf("count orphan stock: %w", wrapStorage(err))
		}
		if found == 0 {
			return nil
		}

		if policy == integrity.OrphanReassign {
			// Orphans from several dead locations may hold the same item,
			// so sum per item before the upsert.
			_, err = tx.Exec(ctx,
				`INSERT INTO stock_location_items
					(id, tenant_id, location_type, location_id, inventory_item_id, quantity)
				 SELECT gen_random_uuid()::text, $1, $2, $3, s.inventory_item_id, sum(s.quantity)
				 FROM stock_location_items s WHERE `+orphanStockWhere+`
				 GROUP BY s.inventory_item_id
				 ON CONFLICT (tenant_id, location_type, location_id, inventory_item_id)
				 DO UPDATE SET quantity = stock_location_items.quantity + EXCLUDED.quantity,
					 updated_at = now()`,
				tid, stock.KindWarehouse, fallbackWarehouseID)
			if err != nil {
				return fmt.Errorf("reassign orphan stock: %w", wrapStorage(err))
			}
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM stock_location_items s WHERE `+orphanStockWhere, tid)
		if err != nil {
			return fmt.Errorf("delete orphan stock: %w", wrapStorage(err))
		}
		repaired = int(tag.RowsAffected())
		return nil
	})
	return found, repaired, err
}

// CloseOrphanAssignments ends open assignments whose vehicle or user no
// longer exists. Closed history rows are left alone.
func (s *Store) CloseOrphanAssignments(ctx context.Context, closeDate time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE vehicle_assignments a SET end_date = $2
		 WHERE a.tenant_id = $1 AND a.end_date IS NULL AND (
			NOT EXISTS (SELECT 1 FROM vehicles v WHERE v.id = a.vehicle_id AND v.tenant_id = $1)
			OR NOT EXISTS (SELECT 1 FROM users u WHERE u.id = a.user_id AND u.tenant_id = $1))`,
		tenantFromCtx(ctx), closeDate)
	if err != nil {
		return 0, fmt.Errorf("close orphan assignments: %w", wrapStorage(err))
	}
	return int(tag.RowsAffected()), nil
}
