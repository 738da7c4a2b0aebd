// Package vehicle defines the vehicle domain model.
package vehicle

import (
	"errors"
	"time"
)

// Vehicle represents one fleet vehicle owned by a tenant. Mileage and
// LastLocation are derived fields updated from telemetry readings.
type Vehicle struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	VIN             string    `json:"vin"`
	LicensePlate    string    `json:"license_plate,omitempty"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	Mileage         int64     `json:"mileage"`
	TrackingEnabled bool      `json:"tracking_enabled"`
	LastLocation    string    `json:"last_location,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateRequest is the input for adding a vehicle to the fleet.
type CreateRequest struct {
	VIN             string `json:"vin"`
	LicensePlate    string `json:"license_plate,omitempty"`
	Make            string `json:"make"`
	Model           string `json:"model"`
	Year            int    `json:"year"`
	Mileage         int64  `json:"mileage"`
	TrackingEnabled bool   `json:"tracking_enabled"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.VIN == "" {
		return errors.New("vin is required")
	}
	if r.Make == "" || r.Model == "" {
		return errors.New("make and model are required")
	}
	if r.Year != 0 && (r.Year < 1900 || r.Year > time.Now().Year()+1) {
		return errors.New("year is out of range")
	}
	if r.Mileage < 0 {
		return errors.New("mileage must not be negative")
	}
	return nil
}

// UpdateRequest is the input for editing a vehicle.
type UpdateRequest struct {
	LicensePlate    *string `json:"license_plate,omitempty"`
	Make            string  `json:"make,omitempty"`
	Model           string  `json:"model,omitempty"`
	Year            int     `json:"year,omitempty"`
	TrackingEnabled *bool   `json:"tracking_enabled,omitempty"`
}

// TelemetryReading is one location/mileage sample from an external
// tracking provider. The core stores it; transport is out of scope.
type TelemetryReading struct {
	Mileage  int64  `json:"mileage"`
	Location string `json:"location,omitempty"`
}

// Validate rejects readings that would move the odometer backwards.
func (r *TelemetryReading) Validate(current int64) error {
	if r.Mileage < 0 {
		return errors.New("mileage must not be negative")
	}
	if r.Mileage != 0 && r.Mileage < current {
		return errors.New("mileage must not decrease")
	}
	return nil
}

// StockDisposition says what happens to stock located on a vehicle when
// the vehicle is deleted.
type StockDisposition struct {
	// Delete removes the stock rows outright.
	Delete bool `json:"delete"`
	// TransferTo moves full quantities to this location instead.
	// Canonical "kind:id" form; empty when Delete is set.
	TransferTo string `json:"transfer_to,omitempty"`
}

// Validate checks that exactly one disposition is chosen.
func (d *StockDisposition) Validate() error {
	if d.Delete == (d.TransferTo != "") {
		return errors.New("choose either delete or transfer_to, not both")
	}
	return nil
}
