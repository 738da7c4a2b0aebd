package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/tenant"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
)

// TenantService manages tenant accounts and their subscription tiers.
type TenantService struct {
	store database.Store
}

// NewTenantService creates a new tenant service.
func NewTenantService(store database.Store) *TenantService {
	return &TenantService{store: store}
}

// Create provisions a new tenant, defaulting to the trial tier.
func (s *TenantService) Create(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	t := &tenant.Tenant{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Slug:    req.Slug,
		Tier:    req.Tier,
		Enabled: true,
	}
	if err := s.store.CreateTenant(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns one tenant.
func (s *TenantService) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

// List returns all tenants. Operator-only.
func (s *TenantService) List(ctx context.Context) ([]tenant.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// Update applies the patch. A tier change takes effect on the next quota
// check; existing resources above a lowered limit are kept but block new
// creations.
func (s *TenantService) Update(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	t, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Tier != "" {
		if !quota.ValidTiers[req.Tier] {
			return nil, fmt.Errorf("invalid tier %q: %w", req.Tier, domain.ErrValidation)
		}
		t.Tier = req.Tier
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}
	if req.SingleVehiclePerTech != nil {
		t.SingleVehiclePerTech = *req.SingleVehiclePerTech
	}
	if req.FallbackWarehouseID != nil {
		if *req.FallbackWarehouseID != "" {
			if _, err := s.store.GetWarehouse(ctx, *req.FallbackWarehouseID); err != nil {
				return nil, fmt.Errorf("fallback warehouse: %w", err)
			}
		}
		t.FallbackWarehouseID = *req.FallbackWarehouseID
	}

	if err := s.store.UpdateTenant(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// EnsureDefault creates the default single-tenant row used when auth is
// disabled. Idempotent.
func (s *TenantService) EnsureDefault(ctx context.Context, id string) error {
	if _, err := s.store.GetTenant(ctx, id); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	t := &tenant.Tenant{
		ID:      id,
		Name:    "Default",
		Slug:    "default",
		Tier:    quota.TierEnterprise,
		Enabled: true,
	}
	if err := s.store.CreateTenant(ctx, t); err != nil {
		return fmt.Errorf("create default tenant: %w", err)
	}
	return nil
}

// FallbackWarehouse resolves the tenant's orphan-repair target, if set.
func (s *TenantService) FallbackWarehouse(ctx context.Context, t *tenant.Tenant) (*stock.Warehouse, error) {
	if t.FallbackWarehouseID == "" {
		return nil, nil
	}
	return s.store.GetWarehouse(ctx, t.FallbackWarehouseID)
}
