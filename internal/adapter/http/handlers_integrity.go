package http

import "net/http"

// RunAudit handles POST /api/v1/integrity/audit. The audit runs
// synchronously and returns the full report.
func (h *Handlers) RunAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.Integrity.Run(r.Context())
	if err != nil {
		writeDomainError(w, err, "audit failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// LastAuditReport handles GET /api/v1/integrity/report
func (h *Handlers) LastAuditReport(w http.ResponseWriter, _ *http.Request) {
	report := h.Integrity.LastReport()
	if report == nil {
		writeError(w, http.StatusNotFound, "no audit has run yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
