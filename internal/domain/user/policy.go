package user

// Operation names a core action subject to role checks. Every mutation
// consults Can exactly once; per-screen checks do not exist.
type Operation string

const (
	OpManageTenant    Operation = "tenant.manage"
	OpManageUsers     Operation = "users.manage"
	OpManageVehicles  Operation = "vehicles.manage"
	OpAssign          Operation = "assignments.manage"
	OpReadAssignments Operation = "assignments.read"
	OpManageStock     Operation = "stock.manage"
	OpReadStock       Operation = "stock.read"
	OpManageCatalog   Operation = "catalog.manage"
	OpRunAudit        Operation = "integrity.audit"
)

var rolePermissions = map[Role]map[Operation]bool{
	RoleOwner: {
		OpManageTenant: true, OpManageUsers: true, OpManageVehicles: true,
		OpAssign: true, OpReadAssignments: true,
		OpManageStock: true, OpReadStock: true, OpManageCatalog: true,
		OpRunAudit: true,
	},
	RoleAdmin: {
		OpManageUsers: true, OpManageVehicles: true,
		OpAssign: true, OpReadAssignments: true,
		OpManageStock: true, OpReadStock: true, OpManageCatalog: true,
		OpRunAudit: true,
	},
	RoleManager: {
		OpManageVehicles: true,
		OpAssign:         true, OpReadAssignments: true,
		OpManageStock: true, OpReadStock: true, OpManageCatalog: true,
	},
	RoleTechnician: {
		// Technicians read their own assignments and the stock on their
		// vehicle; the service layer narrows "own" further.
		OpReadAssignments: true, OpReadStock: true,
	},
}

// Can reports whether the role permits the operation.
func Can(r Role, op Operation) bool {
	return rolePermissions[r][op]
}

// Assignable reports whether a user with this role can be the responsible
// side of a vehicle assignment.
func Assignable(r Role) bool {
	return r == RoleTechnician
}
