// Package assignment defines the vehicle-technician assignment timeline.
//
// An assignment is one interval during which a vehicle is under a
// technician's responsibility. The history is append-only: rows are
// created by open, mutated exactly once by close (setting EndDate), and
// never edited afterwards. A row with a nil EndDate is the open, currently
// active pairing; at most one such row exists per vehicle at any time.
package assignment

import (
	"errors"
	"time"
)

// Assignment is one row of the assignment timeline.
type Assignment struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	VehicleID string     `json:"vehicle_id"`
	UserID    string     `json:"user_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"` // nil = open
	CreatedAt time.Time  `json:"created_at"`
}

// Open reports whether the assignment is the vehicle's current one.
func (a *Assignment) Open() bool {
	return a.EndDate == nil
}

// OpenRequest is the input for opening an assignment.
type OpenRequest struct {
	VehicleID string    `json:"vehicle_id"`
	UserID    string    `json:"user_id"`
	StartDate time.Time `json:"start_date"`
}

// Validate checks required fields and rejects clearly-invalid start dates.
// maxFutureStart bounds administrative forward-dating; zero disables the
// check.
func (r *OpenRequest) Validate(maxFutureStart time.Duration) error {
	if r.VehicleID == "" {
		return errors.New("vehicle_id is required")
	}
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	if r.StartDate.IsZero() {
		return errors.New("start_date is required")
	}
	if maxFutureStart > 0 && r.StartDate.After(time.Now().Add(maxFutureStart)) {
		return errors.New("start_date is too far in the future")
	}
	return nil
}

// CloseRequest is the input for closing an open assignment.
type CloseRequest struct {
	EndDate time.Time `json:"end_date"`
}

// ReassignRequest atomically closes the vehicle's open assignment (if any)
// and opens a new one for NewUserID, both effective at EffectiveDate.
type ReassignRequest struct {
	NewUserID     string    `json:"new_user_id"`
	EffectiveDate time.Time `json:"effective_date"`
}

// ReassignResult reports the row pair a reassign produced. ClosedID is
// empty when the vehicle had no open assignment and the operation degraded
// to a plain open.
type ReassignResult struct {
	ClosedID string `json:"closed_id,omitempty"`
	OpenedID string `json:"opened_id"`
}
