package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/tenant"
)

const tenantColumns = `id, name, slug, tier, enabled, single_vehicle_per_tech,
	COALESCE(fallback_warehouse_id, ''), settings, created_at, updated_at`

func scanTenant(row scannable) (tenant.Tenant, error) {
	var t tenant.Tenant
	var settingsJSON []byte
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Tier, &t.Enabled,
		&t.SingleVehiclePerTech, &t.FallbackWarehouseID, &settingsJSON,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return tenant.Tenant{}, err
	}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &t.Settings); err != nil {
			return tenant.Tenant{}, fmt.Errorf("unmarshal tenant settings: %w", err)
		}
	}
	return t, nil
}

// CreateTenant inserts a new tenant. Tenants are the scoping root and are
// not themselves tenant-scoped.
func (s *Store) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	if t.Tier == "" {
		t.Tier = quota.TierTrial
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (id, name, slug, tier, enabled, single_vehicle_per_tech, fallback_warehouse_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Slug, t.Tier, t.Enabled, t.SingleVehiclePerTech,
		nullIfEmpty(t.FallbackWarehouseID))

	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if isUniqueViolation(err, "uq_tenants_slug") {
			return fmt.Errorf("create tenant: slug %s taken: %w", t.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("create tenant: %w", wrapStorage(err))
	}
	return nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1
		 ORDER BY created_at LIMIT 1`, id)

	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return &t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", wrapStorage(err))
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *Store) UpdateTenant(ctx context.Context, t *tenant.Tenant) error {
	settingsJSON, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("marshal tenant settings: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET name = $2, tier = $3, enabled = $4,
			single_vehicle_per_tech = $5, fallback_warehouse_id = $6,
			settings = $7, updated_at = now()
		 WHERE id = $1`,
		t.ID, t.Name, t.Tier, t.Enabled, t.SingleVehiclePerTech,
		nullIfEmpty(t.FallbackWarehouseID), settingsJSON)
	return execExpectOne(tag, err, "update tenant %s", t.ID)
}
