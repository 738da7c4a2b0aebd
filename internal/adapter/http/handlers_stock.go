package http

import (
	"net/http"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
)

// CreateWarehouse handles POST /api/v1/warehouses
func (h *Handlers) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[stock.WarehouseCreateRequest](w, r)
	if !ok {
		return
	}
	wh, err := h.Stock.CreateWarehouse(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "warehouse not found")
		return
	}
	writeJSON(w, http.StatusCreated, wh)
}

// ListWarehouses handles GET /api/v1/warehouses
func (h *Handlers) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.Stock.ListWarehouses(r.Context())
	if err != nil {
		writeDomainError(w, err, "warehouses not found")
		return
	}
	writeJSON(w, http.StatusOK, warehouses)
}

// GetWarehouse handles GET /api/v1/warehouses/{id}
func (h *Handlers) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	wh, err := h.Stock.GetWarehouse(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "warehouse not found")
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

// DeleteWarehouse handles DELETE /api/v1/warehouses/{id}. Refused while
// the warehouse still holds stock.
func (h *Handlers) DeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	if err := h.Stock.DeleteWarehouse(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "warehouse not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStock handles GET /api/v1/stock/{locationRef}
func (h *Handlers) ListStock(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(w, r)
	if !ok {
		return
	}
	rows, err := h.Stock.List(r.Context(), loc)
	if err != nil {
		writeDomainError(w, err, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetStock handles GET /api/v1/stock/{locationRef}/{itemID}
func (h *Handlers) GetStock(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(w, r)
	if !ok {
		return
	}
	row, err := h.Stock.Get(r.Context(), loc, urlParam(r, "itemID"))
	if err != nil {
		writeDomainError(w, err, "no stock of this item at this location")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// SetQuantity handles PUT /api/v1/stock/{locationRef}/{itemID}
func (h *Handlers) SetQuantity(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[setQuantityRequest](w, r)
	if !ok {
		return
	}
	row, err := h.Stock.SetQuantity(r.Context(), loc, urlParam(r, "itemID"), req.Quantity)
	if err != nil {
		writeDomainError(w, err, "location or item not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

type boundsRequest struct {
	MinimumStockLevel int64  `json:"minimum_stock_level"`
	MaxStockLevel     *int64 `json:"max_stock_level,omitempty"`
}

// AdjustMinMax handles PUT /api/v1/stock/{locationRef}/{itemID}/bounds
func (h *Handlers) AdjustMinMax(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[boundsRequest](w, r)
	if !ok {
		return
	}
	row, err := h.Stock.AdjustMinMax(r.Context(), loc, urlParam(r, "itemID"), req.MinimumStockLevel, req.MaxStockLevel)
	if err != nil {
		writeDomainError(w, err, "location or item not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// Transfer handles POST /api/v1/stock/transfer
func (h *Handlers) Transfer(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[stock.TransferRequest](w, r)
	if !ok {
		return
	}
	if err := h.Stock.Transfer(r.Context(), req); err != nil {
		writeDomainError(w, err, "location or item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BelowMinimum handles GET /api/v1/stock/{locationRef}/below-minimum
func (h *Handlers) BelowMinimum(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(w, r)
	if !ok {
		return
	}
	rows, err := h.Stock.BelowMinimum(r.Context(), loc)
	if err != nil {
		writeDomainError(w, err, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
