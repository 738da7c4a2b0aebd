package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Event type constants for WebSocket messages.
const (
	EventAssignmentOpened = "assignment.opened"
	EventAssignmentClosed = "assignment.closed"
	EventStockTransferred = "stock.transferred"
	EventStockBelowMin    = "stock.below_minimum"
	EventVehicleDeleted   = "vehicle.deleted"
	EventIntegrityReport  = "integrity.report"
)

// AssignmentEvent is broadcast when an assignment opens or closes.
type AssignmentEvent struct {
	AssignmentID string     `json:"assignment_id"`
	VehicleID    string     `json:"vehicle_id"`
	UserID       string     `json:"user_id"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// StockTransferEvent is broadcast after a completed transfer.
type StockTransferEvent struct {
	From     string `json:"from"`
	To       string `json:"to"`
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// StockBelowMinEvent is broadcast when a row drops under its minimum.
type StockBelowMinEvent struct {
	Location string `json:"location"`
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
	Minimum  int64  `json:"minimum"`
}

// VehicleDeletedEvent is broadcast after a cascade delete completes.
type VehicleDeletedEvent struct {
	VehicleID    string `json:"vehicle_id"`
	StockDeleted bool   `json:"stock_deleted"`
	TransferTo   string `json:"transfer_to,omitempty"`
}

// BroadcastEvent marshals a typed event and broadcasts it to the tenant's
// clients; empty tenantID goes hub-wide.
func (h *Hub) BroadcastEvent(ctx context.Context, tenantID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	msg := Message{Type: eventType, Payload: json.RawMessage(data)}
	if tenantID == "" {
		h.Broadcast(ctx, msg)
		return
	}
	h.BroadcastToTenant(ctx, tenantID, msg)
}
