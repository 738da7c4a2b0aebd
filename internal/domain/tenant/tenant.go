// Package tenant defines the tenant domain model for multi-tenancy.
package tenant

import (
	"errors"
	"time"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
)

// Tenant represents one business account, the unit of subscription-tier
// quota enforcement.
type Tenant struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Slug    string     `json:"slug"`
	Tier    quota.Tier `json:"tier"`
	Enabled bool       `json:"enabled"`

	// SingleVehiclePerTech, when set, forbids a technician from holding
	// open assignments to more than one vehicle at a time.
	SingleVehiclePerTech bool `json:"single_vehicle_per_tech"`

	// FallbackWarehouseID is where the Integrity Auditor reassigns orphaned
	// stock rows. Empty means orphans are deleted instead.
	FallbackWarehouseID string `json:"fallback_warehouse_id,omitempty"`

	Settings  map[string]string `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CreateRequest holds the fields required to create a new tenant.
type CreateRequest struct {
	Name string     `json:"name"`
	Slug string     `json:"slug"`
	Tier quota.Tier `json:"tier"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Tier != "" && !quota.ValidTiers[r.Tier] {
		return errors.New("invalid tier: must be trial, basic, pro, or enterprise")
	}
	return nil
}

// UpdateRequest holds the fields that can be updated on a tenant.
type UpdateRequest struct {
	Name                 string     `json:"name,omitempty"`
	Tier                 quota.Tier `json:"tier,omitempty"`
	Enabled              *bool      `json:"enabled,omitempty"`
	SingleVehiclePerTech *bool      `json:"single_vehicle_per_tech,omitempty"`
	FallbackWarehouseID  *string    `json:"fallback_warehouse_id,omitempty"`
}
