// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/assignment"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/integrity"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/tenant"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/vehicle"
)

// AssignmentFilter narrows a history query. Exactly one of VehicleID or
// UserID is normally set; both empty lists the tenant's full history.
type AssignmentFilter struct {
	VehicleID string
	UserID    string
	OpenOnly  bool
}

// Store is the port interface for database operations. All methods are
// tenant-scoped through the request context unless noted otherwise.
type Store interface {
	// Tenants
	CreateTenant(ctx context.Context, t *tenant.Tenant) error
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)
	UpdateTenant(ctx context.Context, t *tenant.Tenant) error

	// Users
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	// CreateUser inserts the user and re-counts the tenant's users of the
	// same class inside the insert transaction; the insert aborts with
	// ErrQuotaExceeded when the post-check fails.
	CreateUser(ctx context.Context, u *user.User, limit int) error
	UpdateUser(ctx context.Context, u *user.User) error
	SetUserPassword(ctx context.Context, id, passwordHash string) error
	CountUsersByRole(ctx context.Context, roles ...user.Role) (int, error)
	// DeleteUser closes all of the user's open assignments and deletes the
	// row in one transaction.
	DeleteUser(ctx context.Context, id string, closeDate time.Time) error

	// Vehicles
	CreateVehicle(ctx context.Context, v *vehicle.Vehicle, limit int) error
	GetVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error)
	ListVehicles(ctx context.Context) ([]vehicle.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *vehicle.Vehicle) error
	CountVehicles(ctx context.Context) (int, error)
	RecordTelemetry(ctx context.Context, id string, mileage int64, location string) error
	// DeleteVehicle runs the full cascade in one transaction: close the
	// open assignment, delete or transfer every stock row on the vehicle,
	// delete the vehicle row.
	DeleteVehicle(ctx context.Context, id string, disposition vehicle.StockDisposition, closeDate time.Time) error

	// Assignments
	// OpenAssignment inserts an open row. The partial unique index makes a
	// concurrent second open fail with ErrAlreadyAssigned. When
	// singlePerTech is set the same transaction also rejects a second open
	// row for the user.
	OpenAssignment(ctx context.Context, a *assignment.Assignment, singlePerTech bool) error
	GetAssignment(ctx context.Context, id string) (*assignment.Assignment, error)
	GetOpenAssignmentForVehicle(ctx context.Context, vehicleID string) (*assignment.Assignment, error)
	CloseAssignment(ctx context.Context, id string, endDate time.Time) error
	// Reassign closes the vehicle's open assignment (if any) and opens a
	// new one in a single transaction.
	Reassign(ctx context.Context, vehicleID string, next *assignment.Assignment, effective time.Time, singlePerTech bool) (closedID string, err error)
	ListAssignments(ctx context.Context, f AssignmentFilter) ([]assignment.Assignment, error)

	// Warehouses
	CreateWarehouse(ctx context.Context, w *stock.Warehouse) error
	GetWarehouse(ctx context.Context, id string) (*stock.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]stock.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error

	// Catalog items
	CreateItem(ctx context.Context, it *stock.Item) error
	GetItem(ctx context.Context, id string) (*stock.Item, error)
	ListItems(ctx context.Context) ([]stock.Item, error)
	UpdateItem(ctx context.Context, it *stock.Item) error

	// Stock ledger
	LocationExists(ctx context.Context, loc stock.LocationRef) (bool, error)
	GetLocationItem(ctx context.Context, loc stock.LocationRef, itemID string) (*stock.LocationItem, error)
	ListLocationItems(ctx context.Context, loc stock.LocationRef) ([]stock.LocationItem, error)
	SetQuantity(ctx context.Context, loc stock.LocationRef, itemID string, quantity int64) (*stock.LocationItem, error)
	AdjustMinMax(ctx context.Context, loc stock.LocationRef, itemID string, min int64, max *int64) (*stock.LocationItem, error)
	Transfer(ctx context.Context, req stock.TransferRequest) error
	AggregateItem(ctx context.Context, itemID string) (*stock.Aggregate, error)

	// Quota
	CountResource(ctx context.Context, class quota.ResourceClass) (int, error)

	// Integrity auditor
	FindDuplicateIDs(ctx context.Context, table string) (map[string]int, error)
	RepairDuplicateIDs(ctx context.Context, table string) (found, repaired int, err error)
	FindOrphanStock(ctx context.Context) ([]stock.LocationItem, error)
	RepairOrphanStock(ctx context.Context, policy integrity.OrphanPolicy, fallbackWarehouseID string) (found, repaired int, err error)
	CloseOrphanAssignments(ctx context.Context, closeDate time.Time) (int, error)

	// Ping reports storage reachability for health checks.
	Ping(ctx context.Context) error
}
