package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. The Auth
// and TenantID middleware are expected to already be on the router; the
// per-route RBAC checks live here.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)
	if h.Hub != nil {
		r.Get("/ws", h.Hub.HandleWS)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/login", h.Login)
		r.Get("/auth/me", h.Me)
		r.Post("/auth/change-password", h.ChangePassword)

		// Tenants (operator surface)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpManageTenant))
			r.Post("/tenants", h.CreateTenant)
			r.Get("/tenants", h.ListTenants)
			r.Get("/tenants/{id}", h.GetTenant)
			r.Put("/tenants/{id}", h.UpdateTenant)
		})

		// Quota
		r.Get("/quota", h.QuotaLimits)
		r.Get("/quota/{resourceClass}", h.QuotaStatus)

		// Users
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpManageUsers))
			r.Post("/users", h.CreateUser)
			r.Get("/users", h.ListUsers)
			r.Get("/users/{id}", h.GetUser)
			r.Put("/users/{id}", h.UpdateUser)
			r.Delete("/users/{id}", h.DeleteUser)
		})

		// Vehicles
		r.Get("/vehicles", h.ListVehicles)
		r.Get("/vehicles/{id}", h.GetVehicle)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpManageVehicles))
			r.Post("/vehicles", h.CreateVehicle)
			r.Put("/vehicles/{id}", h.UpdateVehicle)
			r.Post("/vehicles/{id}/telemetry", h.RecordTelemetry)
			r.Delete("/vehicles/{id}", h.DeleteVehicle)
		})

		// Assignments
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpAssign))
			r.Post("/assignments", h.OpenAssignment)
			r.Post("/assignments/{id}/close", h.CloseAssignment)
			r.Post("/vehicles/{id}/reassign", h.Reassign)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpReadAssignments))
			r.Get("/assignments", h.ListAssignments)
			r.Get("/assignments/{id}", h.GetAssignment)
			r.Get("/vehicles/{id}/assignment", h.CurrentAssignment)
		})

		// Warehouses
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpManageStock))
			r.Post("/warehouses", h.CreateWarehouse)
			r.Delete("/warehouses/{id}", h.DeleteWarehouse)
		})
		r.Get("/warehouses", h.ListWarehouses)
		r.Get("/warehouses/{id}", h.GetWarehouse)

		// Item catalog
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpManageCatalog))
			r.Post("/items", h.CreateItem)
			r.Put("/items/{id}", h.UpdateItem)
		})
		r.Get("/items", h.ListItems)
		r.Get("/items/{id}", h.GetItem)
		r.With(middleware.RequireOperation(user.OpReadStock)).
			Get("/items/{id}/aggregate", h.AggregateItem)

		// Stock ledger. Location refs use the canonical "kind:id" form.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpReadStock))
			r.Get("/stock/{locationRef}", h.ListStock)
			r.Get("/stock/{locationRef}/below-minimum", h.BelowMinimum)
			r.Get("/stock/{locationRef}/{itemID}", h.GetStock)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpManageStock))
			r.Put("/stock/{locationRef}/{itemID}", h.SetQuantity)
			r.Put("/stock/{locationRef}/{itemID}/bounds", h.AdjustMinMax)
			r.Post("/stock/transfer", h.Transfer)
		})

		// Integrity auditor
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(user.OpRunAudit))
			r.Post("/integrity/audit", h.RunAudit)
			r.Get("/integrity/report", h.LastAuditReport)
		})
	})
}
