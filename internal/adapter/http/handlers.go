// Package http wires the chi router and request handlers for the fleet
// core API.
package http

import (
	"net/http"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ws"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Auth        *service.AuthService
	Tenants     *service.TenantService
	Users       *service.UserService
	Vehicles    *service.VehicleService
	Assignments *service.AssignmentService
	Stock       *service.StockService
	Catalog     *service.CatalogService
	Quota       *service.QuotaService
	Integrity   *service.IntegrityService
	Notifier    *service.Notifier
	Hub         *ws.Hub
	Store       database.Store
}

// Health handles GET /health. Degraded dependencies report status
// "degraded" with a 200: the process itself is up.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := map[string]string{}

	if h.Store != nil {
		if err := h.Store.Ping(r.Context()); err != nil {
			status = "degraded"
			checks["postgres"] = err.Error()
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.Notifier != nil {
		if h.Notifier.Healthy() {
			checks["nats"] = "ok"
		} else {
			status = "degraded"
			checks["nats"] = "circuit open"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"checks": checks,
	})
}
