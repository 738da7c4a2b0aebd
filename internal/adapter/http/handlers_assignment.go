package http

import (
	"net/http"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/assignment"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
)

// OpenAssignment handles POST /api/v1/assignments
func (h *Handlers) OpenAssignment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[assignment.OpenRequest](w, r)
	if !ok {
		return
	}
	a, err := h.Assignments.Open(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "vehicle or user not found")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// CloseAssignment handles POST /api/v1/assignments/{id}/close
func (h *Handlers) CloseAssignment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[assignment.CloseRequest](w, r)
	if !ok {
		return
	}
	a, err := h.Assignments.Close(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "assignment not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Reassign handles POST /api/v1/vehicles/{id}/reassign
func (h *Handlers) Reassign(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[assignment.ReassignRequest](w, r)
	if !ok {
		return
	}
	res, err := h.Assignments.Reassign(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "vehicle or user not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetAssignment handles GET /api/v1/assignments/{id}
func (h *Handlers) GetAssignment(w http.ResponseWriter, r *http.Request) {
	a, err := h.Assignments.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "assignment not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CurrentAssignment handles GET /api/v1/vehicles/{id}/assignment
func (h *Handlers) CurrentAssignment(w http.ResponseWriter, r *http.Request) {
	a, err := h.Assignments.Current(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "vehicle has no open assignment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListAssignments handles GET /api/v1/assignments?vehicle_id=&user_id=&open=
func (h *Handlers) ListAssignments(w http.ResponseWriter, r *http.Request) {
	f := database.AssignmentFilter{
		VehicleID: r.URL.Query().Get("vehicle_id"),
		UserID:    r.URL.Query().Get("user_id"),
		OpenOnly:  r.URL.Query().Get("open") == "true",
	}
	rows, err := h.Assignments.History(r.Context(), f)
	if err != nil {
		writeDomainError(w, err, "assignments not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
