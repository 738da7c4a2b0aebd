package service

import (
	"context"
	"fmt"

	otelx "github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/otel"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/tenant"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
)

// QuotaService answers tier-limit questions for the tenant in ctx.
// Decisions here are advisory reads; the binding check happens inside the
// insert transaction (see store.CreateVehicle / store.CreateUser).
type QuotaService struct {
	store   database.Store
	metrics *otelx.Metrics
}

// NewQuotaService creates a new quota service. metrics may be nil.
func NewQuotaService(store database.Store, metrics *otelx.Metrics) *QuotaService {
	return &QuotaService{store: store, metrics: metrics}
}

// Status reports the tenant's live usage against its tier limit for one
// resource class. Deny is a value, not an error.
func (s *QuotaService) Status(ctx context.Context, class quota.ResourceClass) (*quota.Decision, error) {
	if !quota.ValidClasses[class] {
		return nil, fmt.Errorf("unknown resource class %q", class)
	}

	tn, err := s.tenant(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.store.CountResource(ctx, class)
	if err != nil {
		return nil, err
	}

	d := quota.Check(tn.Tier, class, current)
	if !d.Allowed && s.metrics != nil {
		s.metrics.QuotaDenials.Add(ctx, 1)
	}
	return &d, nil
}

// Limits returns the full limit set of the tenant's tier, plus the
// enterprise per-vehicle billing rate for caller display.
func (s *QuotaService) Limits(ctx context.Context) (quota.Limits, int64, error) {
	tn, err := s.tenant(ctx)
	if err != nil {
		return quota.Limits{}, 0, err
	}

	var perVehicleCents int64
	if tn.Tier == quota.TierEnterprise {
		perVehicleCents = quota.EnterprisePerVehicleCents
	}
	return quota.ForTier(tn.Tier), perVehicleCents, nil
}

func (s *QuotaService) tenant(ctx context.Context) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, middleware.TenantIDFromContext(ctx))
}

// limitForClass resolves the tenant's numeric limit for a class; used by
// create paths to hand the in-tx re-check its bound.
func limitForClass(ctx context.Context, store database.Store, class quota.ResourceClass) (int, error) {
	tn, err := store.GetTenant(ctx, middleware.TenantIDFromContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("get tenant: %w", err)
	}
	return quota.Limit(tn.Tier, class), nil
}
