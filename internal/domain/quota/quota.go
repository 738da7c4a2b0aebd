// Package quota defines subscription tiers and the pure tier→limit mapping.
//
// The quota is derived, never stored: a function of the tenant's current
// plan tier. Counts against it are always recomputed from the live tables
// at decision time.
package quota

// Tier is a subscription plan level.
type Tier string

const (
	TierTrial      Tier = "trial"
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// ValidTiers is the set of all valid subscription tiers.
var ValidTiers = map[Tier]bool{
	TierTrial:      true,
	TierBasic:      true,
	TierPro:        true,
	TierEnterprise: true,
}

// ResourceClass is a category of tenant-owned resource subject to quota.
type ResourceClass string

const (
	ClassVehicle    ResourceClass = "vehicle"
	ClassManager    ResourceClass = "manager"
	ClassTechnician ResourceClass = "technician"
)

// ValidClasses is the set of all quota-enforced resource classes.
var ValidClasses = map[ResourceClass]bool{
	ClassVehicle:    true,
	ClassManager:    true,
	ClassTechnician: true,
}

// Unlimited marks a resource class with no cap on the enterprise tier.
const Unlimited = -1

// EnterprisePerVehicleCents is the per-vehicle billing increment the caller
// applies when adding vehicles on the enterprise tier. The core only exposes
// the number; billing itself is external.
const EnterprisePerVehicleCents = 500

// Limits holds the per-class maximum counts for one tier.
type Limits struct {
	Vehicles    int `json:"vehicles"`
	Managers    int `json:"managers"`
	Technicians int `json:"technicians"`
}

var tierLimits = map[Tier]Limits{
	TierTrial:      {Vehicles: 1, Managers: 1, Technicians: 2},
	TierBasic:      {Vehicles: 5, Managers: 2, Technicians: 5},
	TierPro:        {Vehicles: 15, Managers: 6, Technicians: 15},
	TierEnterprise: {Vehicles: Unlimited, Managers: 10, Technicians: Unlimited},
}

// ForTier returns the limits for the given tier. Unknown tiers get the
// trial limits, the most restrictive set.
func ForTier(t Tier) Limits {
	if l, ok := tierLimits[t]; ok {
		return l
	}
	return tierLimits[TierTrial]
}

// Limit returns the cap for a single resource class under the given tier.
func Limit(t Tier, class ResourceClass) int {
	l := ForTier(t)
	switch class {
	case ClassVehicle:
		return l.Vehicles
	case ClassManager:
		return l.Managers
	case ClassTechnician:
		return l.Technicians
	}
	return 0
}

// Decision is the outcome of a quota check. Deny is a value, not an error:
// the presentation layer turns it into an upgrade prompt.
type Decision struct {
	Allowed bool `json:"allowed"`
	Current int  `json:"current"`
	Limit   int  `json:"limit"`
}

// Check decides whether a tenant at currentCount existing resources of the
// class may add one more. currentCount excludes the resource about to be
// created, so the comparison is strict.
func Check(t Tier, class ResourceClass, currentCount int) Decision {
	limit := Limit(t, class)
	d := Decision{Current: currentCount, Limit: limit}
	d.Allowed = limit == Unlimited || currentCount < limit
	return d
}
