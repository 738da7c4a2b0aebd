package http

import (
	"net/http"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/tenant"
)

// CreateTenant handles POST /api/v1/tenants
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.CreateRequest](w, r)
	if !ok {
		return
	}
	tn, err := h.Tenants.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, tn)
}

// ListTenants handles GET /api/v1/tenants
func (h *Handlers) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Tenants.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "tenants not found")
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

// GetTenant handles GET /api/v1/tenants/{id}
func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	tn, err := h.Tenants.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, tn)
}

// UpdateTenant handles PUT /api/v1/tenants/{id}
func (h *Handlers) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.UpdateRequest](w, r)
	if !ok {
		return
	}
	tn, err := h.Tenants.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, tn)
}

// QuotaStatus handles GET /api/v1/quota/{resourceClass}
func (h *Handlers) QuotaStatus(w http.ResponseWriter, r *http.Request) {
	class := quota.ResourceClass(urlParam(r, "resourceClass"))
	if !quota.ValidClasses[class] {
		writeError(w, http.StatusBadRequest, "unknown resource class")
		return
	}
	d, err := h.Quota.Status(r.Context(), class)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// QuotaLimits handles GET /api/v1/quota
func (h *Handlers) QuotaLimits(w http.ResponseWriter, r *http.Request) {
	limits, perVehicleCents, err := h.Quota.Limits(r.Context())
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"limits":            limits,
		"per_vehicle_cents": perVehicleCents,
	})
}
