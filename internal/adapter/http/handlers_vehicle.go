package http

import (
	"net/http"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/vehicle"
)

// CreateVehicle handles POST /api/v1/vehicles
func (h *Handlers) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[vehicle.CreateRequest](w, r)
	if !ok {
		return
	}
	v, err := h.Vehicles.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// ListVehicles handles GET /api/v1/vehicles
func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Vehicles.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "vehicles not found")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// GetVehicle handles GET /api/v1/vehicles/{id}
func (h *Handlers) GetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.Vehicles.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// UpdateVehicle handles PUT /api/v1/vehicles/{id}
func (h *Handlers) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[vehicle.UpdateRequest](w, r)
	if !ok {
		return
	}
	v, err := h.Vehicles.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// RecordTelemetry handles POST /api/v1/vehicles/{id}/telemetry
func (h *Handlers) RecordTelemetry(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[vehicle.TelemetryReading](w, r)
	if !ok {
		return
	}
	v, err := h.Vehicles.RecordTelemetry(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteVehicle handles DELETE /api/v1/vehicles/{id}. The body carries
// the stock disposition; the whole cascade is atomic.
func (h *Handlers) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[vehicle.StockDisposition](w, r)
	if !ok {
		return
	}
	if err := h.Vehicles.Delete(r.Context(), urlParam(r, "id"), req); err != nil {
		writeDomainError(w, err, "vehicle not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
