package service

import (
	"context"
	"fmt"
	"time"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/assignment"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/integrity"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/tenant"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/vehicle"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
)

// testCtx returns a context scoped to the given tenant, the same way the
// TenantID middleware does for a real request.
func testCtx(tenantID string) context.Context {
	return middleware.WithTenantID(context.Background(), tenantID)
}

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is an in-memory implementation of database.Store for testing.
// It mirrors the semantics the services rely on: in-insert quota checks,
// the one-open-assignment rule, and the conditional transfer decrement.
type mockStore struct {
	tenants     []tenant.Tenant
	users       []user.User
	vehicles    []vehicle.Vehicle
	warehouses  []stock.Warehouse
	items       []stock.Item
	assignments []assignment.Assignment
	stockRows   []stock.LocationItem

	// Error hooks — set these to inject failures.
	getTenantErr error
	createErr    error
	transferErr  error
	listErr      error
}

// --- Tenants ---

func (m *mockStore) CreateTenant(_ context.Context, t *tenant.Tenant) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.tenants = append(m.tenants, *t)
	return nil
}

func (m *mockStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	if m.getTenantErr != nil {
		return nil, m.getTenantErr
	}
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			return &m.tenants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	return m.tenants, m.listErr
}

func (m *mockStore) UpdateTenant(_ context.Context, t *tenant.Tenant) error {
	for i := range m.tenants {
		if m.tenants[i].ID == t.ID {
			m.tenants[i] = *t
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Users ---

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	return m.users, m.listErr
}

func (m *mockStore) CreateUser(_ context.Context, u *user.User, limit int) error {
	if m.createErr != nil {
		return m.createErr
	}
	if limit >= 0 {
		count := 0
		for _, existing := range m.users {
			if existing.Role == u.Role {
				count++
			}
		}
		if count >= limit {
			return fmt.Errorf("create user: %w", domain.ErrQuotaExceeded)
		}
	}
	m.users = append(m.users, *u)
	return nil
}

func (m *mockStore) UpdateUser(_ context.Context, u *user.User) error {
	for i := range m.users {
		if m.users[i].ID == u.ID {
			m.users[i] = *u
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SetUserPassword(_ context.Context, id, hash string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = hash
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CountUsersByRole(_ context.Context, roles ...user.Role) (int, error) {
	count := 0
	for _, u := range m.users {
		for _, r := range roles {
			if u.Role == r {
				count++
			}
		}
	}
	return count, nil
}

func (m *mockStore) DeleteUser(_ context.Context, id string, closeDate time.Time) error {
	for i := range m.assignments {
		if m.assignments[i].UserID == id && m.assignments[i].EndDate == nil {
			end := closeDate
			m.assignments[i].EndDate = &end
		}
	}
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Vehicles ---

func (m *mockStore) CreateVehicle(_ context.Context, v *vehicle.Vehicle, limit int) error {
	if m.createErr != nil {
		return m.createErr
	}
	if limit >= 0 && len(m.vehicles) >= limit {
		return fmt.Errorf("create vehicle: %w", domain.ErrQuotaExceeded)
	}
	m.vehicles = append(m.vehicles, *v)
	return nil
}

func (m *mockStore) GetVehicle(_ context.Context, id string) (*vehicle.Vehicle, error) {
	for i := range m.vehicles {
		if m.vehicles[i].ID == id {
			return &m.vehicles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListVehicles(_ context.Context) ([]vehicle.Vehicle, error) {
	return m.vehicles, m.listErr
}

func (m *mockStore) UpdateVehicle(_ context.Context, v *vehicle.Vehicle) error {
	for i := range m.vehicles {
		if m.vehicles[i].ID == v.ID {
			m.vehicles[i] = *v
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CountVehicles(_ context.Context) (int, error) {
	return len(m.vehicles), nil
}

func (m *mockStore) RecordTelemetry(_ context.Context, id string, mileage int64, location string) error {
	for i := range m.vehicles {
		if m.vehicles[i].ID == id {
			if mileage > m.vehicles[i].Mileage {
				m.vehicles[i].Mileage = mileage
			}
			if location != "" {
				m.vehicles[i].LastLocation = location
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteVehicle(_ context.Context, id string, disposition vehicle.StockDisposition, closeDate time.Time) error {
	for i := range m.assignments {
		if m.assignments[i].VehicleID == id && m.assignments[i].EndDate == nil {
			end := closeDate
			m.assignments[i].EndDate = &end
		}
	}

	src := stock.VehicleRef(id)
	kept := m.stockRows[:0]
	for _, row := range m.stockRows {
		if row.Location != src {
			kept = append(kept, row)
			continue
		}
		if disposition.TransferTo != "" {
			target, err := stock.ParseLocationRef(disposition.TransferTo)
			if err != nil {
				return err
			}
			m.addStock(target, row.InventoryItemID, row.Quantity)
		}
	}
	m.stockRows = kept

	for i := range m.vehicles {
		if m.vehicles[i].ID == id {
			m.vehicles = append(m.vehicles[:i], m.vehicles[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Assignments ---

func (m *mockStore) OpenAssignment(_ context.Context, a *assignment.Assignment, singlePerTech bool) error {
	for _, existing := range m.assignments {
		if existing.EndDate != nil {
			continue
		}
		if existing.VehicleID == a.VehicleID {
			return fmt.Errorf("vehicle %s: %w", a.VehicleID, domain.ErrAlreadyAssigned)
		}
		if singlePerTech && existing.UserID == a.UserID {
			return fmt.Errorf("user %s: %w", a.UserID, domain.ErrAlreadyAssigned)
		}
	}
	a.CreatedAt = time.Now()
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *mockStore) GetAssignment(_ context.Context, id string) (*assignment.Assignment, error) {
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			return &m.assignments[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetOpenAssignmentForVehicle(_ context.Context, vehicleID string) (*assignment.Assignment, error) {
	for i := range m.assignments {
		if m.assignments[i].VehicleID == vehicleID && m.assignments[i].EndDate == nil {
			return &m.assignments[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CloseAssignment(_ context.Context, id string, endDate time.Time) error {
	for i := range m.assignments {
		if m.assignments[i].ID != id {
			continue
		}
		if m.assignments[i].EndDate != nil {
			return fmt.Errorf("close assignment %s: %w", id, domain.ErrAssignmentClosed)
		}
		if endDate.Before(m.assignments[i].StartDate) {
			return fmt.Errorf("close assignment %s: %w", id, domain.ErrValidation)
		}
		end := endDate
		m.assignments[i].EndDate = &end
		return nil
	}
	return domain.ErrNotFound
}

func (m *mockStore) Reassign(ctx context.Context, vehicleID string, next *assignment.Assignment, effective time.Time, singlePerTech bool) (string, error) {
	closedID := ""
	for i := range m.assignments {
		if m.assignments[i].VehicleID == vehicleID && m.assignments[i].EndDate == nil {
			end := effective
			m.assignments[i].EndDate = &end
			closedID = m.assignments[i].ID
			break
		}
	}
	if err := m.OpenAssignment(ctx, next, singlePerTech); err != nil {
		return "", err
	}
	return closedID, nil
}

func (m *mockStore) ListAssignments(_ context.Context, f database.AssignmentFilter) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	for _, a := range m.assignments {
		if f.VehicleID != "" && a.VehicleID != f.VehicleID {
			continue
		}
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if f.OpenOnly && a.EndDate != nil {
			continue
		}
		out = append(out, a)
	}
	return out, m.listErr
}

// --- Warehouses ---

func (m *mockStore) CreateWarehouse(_ context.Context, w *stock.Warehouse) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.warehouses = append(m.warehouses, *w)
	return nil
}

func (m *mockStore) GetWarehouse(_ context.Context, id string) (*stock.Warehouse, error) {
	for i := range m.warehouses {
		if m.warehouses[i].ID == id {
			return &m.warehouses[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListWarehouses(_ context.Context) ([]stock.Warehouse, error) {
	return m.warehouses, m.listErr
}

func (m *mockStore) DeleteWarehouse(_ context.Context, id string) error {
	loc := stock.WarehouseRef(id)
	for _, row := range m.stockRows {
		if row.Location == loc && row.Quantity > 0 {
			return fmt.Errorf("delete warehouse %s: %w", id, domain.ErrConflict)
		}
	}
	for i := range m.warehouses {
		if m.warehouses[i].ID == id {
			m.warehouses = append(m.warehouses[:i], m.warehouses[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Catalog items ---

func (m *mockStore) CreateItem(_ context.Context, it *stock.Item) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, *it)
	return nil
}

func (m *mockStore) GetItem(_ context.Context, id string) (*stock.Item, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListItems(_ context.Context) ([]stock.Item, error) {
	return m.items, m.listErr
}

func (m *mockStore) UpdateItem(_ context.Context, it *stock.Item) error {
	for i := range m.items {
		if m.items[i].ID == it.ID {
			m.items[i] = *it
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Stock ledger ---

func (m *mockStore) LocationExists(_ context.Context, loc stock.LocationRef) (bool, error) {
	switch loc.Kind {
	case stock.KindWarehouse:
		for _, w := range m.warehouses {
			if w.ID == loc.ID {
				return true, nil
			}
		}
	case stock.KindVehicle:
		for _, v := range m.vehicles {
			if v.ID == loc.ID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockStore) GetLocationItem(_ context.Context, loc stock.LocationRef, itemID string) (*stock.LocationItem, error) {
	for i := range m.stockRows {
		if m.stockRows[i].Location == loc && m.stockRows[i].InventoryItemID == itemID {
			return &m.stockRows[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListLocationItems(_ context.Context, loc stock.LocationRef) ([]stock.LocationItem, error) {
	var out []stock.LocationItem
	for _, row := range m.stockRows {
		if row.Location == loc {
			out = append(out, row)
		}
	}
	return out, m.listErr
}

func (m *mockStore) SetQuantity(_ context.Context, loc stock.LocationRef, itemID string, quantity int64) (*stock.LocationItem, error) {
	row := m.addStock(loc, itemID, 0)
	row.Quantity = quantity
	return row, nil
}

func (m *mockStore) AdjustMinMax(_ context.Context, loc stock.LocationRef, itemID string, min int64, max *int64) (*stock.LocationItem, error) {
	row := m.addStock(loc, itemID, 0)
	row.MinimumStockLevel = min
	row.MaxStockLevel = max
	return row, nil
}

func (m *mockStore) Transfer(_ context.Context, req stock.TransferRequest) error {
	if m.transferErr != nil {
		return m.transferErr
	}
	var src *stock.LocationItem
	for i := range m.stockRows {
		if m.stockRows[i].Location == req.From && m.stockRows[i].InventoryItemID == req.ItemID {
			src = &m.stockRows[i]
			break
		}
	}
	if src == nil || src.Quantity < req.Quantity {
		return fmt.Errorf("transfer: %w", domain.ErrInsufficientStock)
	}
	src.Quantity -= req.Quantity
	m.addStock(req.To, req.ItemID, req.Quantity)
	return nil
}

func (m *mockStore) AggregateItem(_ context.Context, itemID string) (*stock.Aggregate, error) {
	agg := stock.Aggregate{ItemID: itemID}
	var unitPrice int64
	for _, it := range m.items {
		if it.ID == itemID {
			unitPrice = it.UnitPriceCents
			break
		}
	}
	for _, row := range m.stockRows {
		if row.InventoryItemID == itemID {
			agg.TotalQuantity += row.Quantity
			agg.Locations++
		}
	}
	agg.TotalValueCents = agg.TotalQuantity * unitPrice
	return &agg, nil
}

// addStock finds or creates the row and adds delta to its quantity.
func (m *mockStore) addStock(loc stock.LocationRef, itemID string, delta int64) *stock.LocationItem {
	for i := range m.stockRows {
		if m.stockRows[i].Location == loc && m.stockRows[i].InventoryItemID == itemID {
			m.stockRows[i].Quantity += delta
			return &m.stockRows[i]
		}
	}
	m.stockRows = append(m.stockRows, stock.LocationItem{
		ID:              fmt.Sprintf("row-%d", len(m.stockRows)+1),
		Location:        loc,
		InventoryItemID: itemID,
		Quantity:        delta,
	})
	return &m.stockRows[len(m.stockRows)-1]
}

// --- Quota ---

func (m *mockStore) CountResource(ctx context.Context, class quota.ResourceClass) (int, error) {
	switch class {
	case quota.ClassVehicle:
		return len(m.vehicles), nil
	case quota.ClassManager:
		return m.CountUsersByRole(ctx, user.RoleManager)
	case quota.ClassTechnician:
		return m.CountUsersByRole(ctx, user.RoleTechnician)
	}
	return 0, fmt.Errorf("unknown class %q", class)
}

// --- Integrity ---

func (m *mockStore) FindDuplicateIDs(_ context.Context, _ string) (map[string]int, error) {
	return nil, nil
}

func (m *mockStore) RepairDuplicateIDs(_ context.Context, _ string) (int, int, error) {
	return 0, 0, nil
}

func (m *mockStore) FindOrphanStock(ctx context.Context) ([]stock.LocationItem, error) {
	var out []stock.LocationItem
	for _, row := range m.stockRows {
		if ok, _ := m.LocationExists(ctx, row.Location); !ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockStore) RepairOrphanStock(ctx context.Context, policy integrity.OrphanPolicy, fallbackWarehouseID string) (int, int, error) {
	orphans, _ := m.FindOrphanStock(ctx)
	for _, row := range orphans {
		if policy == integrity.OrphanReassign {
			m.addStock(stock.WarehouseRef(fallbackWarehouseID), row.InventoryItemID, row.Quantity)
		}
	}
	kept := m.stockRows[:0]
	for _, row := range m.stockRows {
		if ok, _ := m.LocationExists(ctx, row.Location); ok {
			kept = append(kept, row)
		}
	}
	m.stockRows = kept
	return len(orphans), len(orphans), nil
}

func (m *mockStore) CloseOrphanAssignments(ctx context.Context, closeDate time.Time) (int, error) {
	closed := 0
	for i := range m.assignments {
		if m.assignments[i].EndDate != nil {
			continue
		}
		_, vErr := m.GetVehicle(ctx, m.assignments[i].VehicleID)
		_, uErr := m.GetUser(ctx, m.assignments[i].UserID)
		if vErr != nil || uErr != nil {
			end := closeDate
			m.assignments[i].EndDate = &end
			closed++
		}
	}
	return closed, nil
}

func (m *mockStore) Ping(_ context.Context) error { return nil }
