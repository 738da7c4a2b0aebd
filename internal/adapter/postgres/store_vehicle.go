package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/vehicle"
)

const vehicleColumns = `id, tenant_id, vin, COALESCE(license_plate, ''), make, model,
	year, mileage, tracking_enabled, COALESCE(last_location, ''), created_at, updated_at`

func scanVehicle(row scannable) (vehicle.Vehicle, error) {
	var v vehicle.Vehicle
	err := row.Scan(&v.ID, &v.TenantID, &v.VIN, &v.LicensePlate, &v.Make,
		&v.Model, &v.Year, &v.Mileage, &v.TrackingEnabled, &v.LastLocation,
		&v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// CreateVehicle inserts the vehicle. When limit >= 0 the tenant's vehicle
// count is re-taken inside the insert transaction under an advisory lock,
// the same pattern as CreateUser.
func (s *Store) CreateVehicle(ctx context.Context, v *vehicle.Vehicle, limit int) error {
	tid := tenantFromCtx(ctx)
	v.TenantID = tid

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if limit >= 0 {
			if err := advisoryLock(ctx, tx, "quota:"+tid+":vehicle"); err != nil {
				return err
			}
			var count int
			err := tx.QueryRow(ctx,
				`SELECT count(*) FROM vehicles WHERE tenant_id = $1`, tid).Scan(&count)
			if err != nil {
				return fmt.Errorf("count vehicles: %w", wrapStorage(err))
			}
			if count >= limit {
				return fmt.Errorf("create vehicle: %d of %d used: %w",
					count, limit, domain.ErrQuotaExceeded)
			}
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO vehicles (id, tenant_id, vin, license_plate, make, model, year, mileage, tracking_enabled)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING created_at, updated_at`,
			v.ID, tid, v.VIN, nullIfEmpty(v.LicensePlate), v.Make, v.Model,
			v.Year, v.Mileage, v.TrackingEnabled)
		if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
			return fmt.Errorf("create vehicle: %w", wrapStorage(err))
		}
		return nil
	})
}

func (s *Store) GetVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 AND tenant_id = $2
		 ORDER BY created_at LIMIT 1`, id, tenantFromCtx(ctx))

	v, err := scanVehicle(row)
	if err != nil {
		return nil, notFoundWrap(err, "get vehicle %s", id)
	}
	return &v, nil
}

func (s *Store) ListVehicles(ctx context.Context) ([]vehicle.Vehicle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE tenant_id = $1 ORDER BY created_at`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", wrapStorage(err))
	}
	defer rows.Close()

	var vehicles []vehicle.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("list vehicles: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *Store) UpdateVehicle(ctx context.Context, v *vehicle.Vehicle) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE vehicles SET vin = $2, license_plate = $3, make = $4, model = $5,
			year = $6, tracking_enabled = $7, updated_at = now()
		 WHERE id = $1 AND tenant_id = $8`,
		v.ID, v.VIN, nullIfEmpty(v.LicensePlate), v.Make, v.Model, v.Year,
		v.TrackingEnabled, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update vehicle %s", v.ID)
}

func (s *Store) CountVehicles(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM vehicles WHERE tenant_id = $1`,
		tenantFromCtx(ctx)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count vehicles: %w", wrapStorage(err))
	}
	return count, nil
}

// RecordTelemetry applies a location/mileage sample. The odometer never
// moves backwards: a stale or out-of-order reading leaves mileage alone
// but still updates the location.
func (s *Store) RecordTelemetry(ctx context.Context, id string, mileage int64, location string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE vehicles SET mileage = GREATEST(mileage, $3),
			last_location = COALESCE(NULLIF($4, ''), last_location),
			updated_at = now()
		 WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx), mileage, location)
	return execExpectOne(tag, err, "record telemetry for vehicle %s", id)
}

// DeleteVehicle runs the cascade in one transaction: close the open
// assignment, dispose of every stock row on the vehicle per the
// disposition, then delete the vehicle row.
func (s *Store) DeleteVehicle(ctx context.Context, id string, disposition vehicle.StockDisposition, closeDate time.Time) error {
	tid := tenantFromCtx(ctx)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE vehicle_assignments SET end_date = $3
			 WHERE tenant_id = $1 AND vehicle_id = $2 AND end_date IS NULL`,
			tid, id, closeDate)
		if err != nil {
			return fmt.Errorf("close assignment for vehicle %s: %w", id, wrapStorage(err))
		}

		if disposition.TransferTo != "" {
			target, err := stock.ParseLocationRef(disposition.TransferTo)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			if err := mergeLocationStock(ctx, tx, tid, stock.VehicleRef(id), target); err != nil {
				return err
			}
		}

		// Any rows left (disposition.Delete, or zero-quantity leftovers
		// from the merge) go away with the vehicle.
		_, err = tx.Exec(ctx,
			`DELETE FROM stock_location_items
			 WHERE tenant_id = $1 AND location_type = $2 AND location_id = $3`,
			tid, stock.KindVehicle, id)
		if err != nil {
			return fmt.Errorf("delete stock for vehicle %s: %w", id, wrapStorage(err))
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM vehicles WHERE id = $1 AND tenant_id = $2`, id, tid)
		return execExpectOne(tag, err, "delete vehicle %s", id)
	})
}

// mergeLocationStock moves the full quantity of every stock row at src
// into dst, summing into existing rows there. Min/max bounds on existing
// destination rows are preserved; newly created rows inherit the source's.
func mergeLocationStock(ctx context.Context, tx pgx.Tx, tid string, src, dst stock.LocationRef) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO stock_location_items
			(id, tenant_id, location_type, location_id, inventory_item_id,
			 quantity, minimum_stock_level, max_stock_level)
		 SELECT gen_random_uuid()::text, tenant_id, $4, $5, inventory_item_id,
			 quantity, minimum_stock_level, max_stock_level
		 FROM stock_location_items
		 WHERE tenant_id = $1 AND location_type = $2 AND location_id = $3
		 ON CONFLICT (tenant_id, location_type, location_id, inventory_item_id)
		 DO UPDATE SET quantity = stock_location_items.quantity + EXCLUDED.quantity,
			 updated_at = now()`,
		tid, src.Kind, src.ID, dst.Kind, dst.ID)
	if err != nil {
		return fmt.Errorf("merge stock %s -> %s: %w", src, dst, wrapStorage(err))
	}
	return nil
}
