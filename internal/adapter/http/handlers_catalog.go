package http

import (
	"net/http"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
)

// CreateItem handles POST /api/v1/items
func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[stock.ItemCreateRequest](w, r)
	if !ok {
		return
	}
	it, err := h.Catalog.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "item not found")
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// ListItems handles GET /api/v1/items
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "items not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /api/v1/items/{id}
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.Catalog.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// UpdateItem handles PUT /api/v1/items/{id}
func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[stock.ItemCreateRequest](w, r)
	if !ok {
		return
	}
	it, err := h.Catalog.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// AggregateItem handles GET /api/v1/items/{id}/aggregate
func (h *Handlers) AggregateItem(w http.ResponseWriter, r *http.Request) {
	agg, err := h.Stock.Aggregate(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, agg)
}
