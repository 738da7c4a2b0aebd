package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ws"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/vehicle"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/messagequeue"
)

// VehicleService manages the fleet: vehicle CRUD under quota, telemetry
// ingestion, and the cascade delete.
type VehicleService struct {
	store    database.Store
	notifier *Notifier
}

// NewVehicleService creates a new vehicle service.
func NewVehicleService(store database.Store, notifier *Notifier) *VehicleService {
	return &VehicleService{store: store, notifier: notifier}
}

// Create adds a vehicle to the fleet. The tier limit is re-checked inside
// the insert transaction, so a concurrent create cannot overshoot it.
func (s *VehicleService) Create(ctx context.Context, req vehicle.CreateRequest) (*vehicle.Vehicle, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	limit, err := limitForClass(ctx, s.store, quota.ClassVehicle)
	if err != nil {
		return nil, err
	}

	v := &vehicle.Vehicle{
		ID:              uuid.NewString(),
		VIN:             req.VIN,
		LicensePlate:    req.LicensePlate,
		Make:            req.Make,
		Model:           req.Model,
		Year:            req.Year,
		Mileage:         req.Mileage,
		TrackingEnabled: req.TrackingEnabled,
	}
	if err := s.store.CreateVehicle(ctx, v, limit); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns one vehicle.
func (s *VehicleService) Get(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

// List returns the tenant's fleet.
func (s *VehicleService) List(ctx context.Context) ([]vehicle.Vehicle, error) {
	return s.store.ListVehicles(ctx)
}

// Update applies the patch.
func (s *VehicleService) Update(ctx context.Context, id string, req vehicle.UpdateRequest) (*vehicle.Vehicle, error) {
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.LicensePlate != nil {
		v.LicensePlate = *req.LicensePlate
	}
	if req.Make != "" {
		v.Make = req.Make
	}
	if req.Model != "" {
		v.Model = req.Model
	}
	if req.Year != 0 {
		v.Year = req.Year
	}
	if req.TrackingEnabled != nil {
		v.TrackingEnabled = *req.TrackingEnabled
	}

	if err := s.store.UpdateVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// RecordTelemetry ingests one tracking-provider sample. Stale readings
// never move the odometer backwards.
func (s *VehicleService) RecordTelemetry(ctx context.Context, id string, reading vehicle.TelemetryReading) (*vehicle.Vehicle, error) {
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := reading.Validate(v.Mileage); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.store.RecordTelemetry(ctx, id, reading.Mileage, reading.Location); err != nil {
		return nil, err
	}
	return s.store.GetVehicle(ctx, id)
}

// Delete removes a vehicle with the full cascade: the open assignment is
// closed and its stock is deleted or transferred per the disposition. Any
// failure rolls the whole cascade back.
func (s *VehicleService) Delete(ctx context.Context, id string, disposition vehicle.StockDisposition) error {
	if err := disposition.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if _, err := s.store.GetVehicle(ctx, id); err != nil {
		return err
	}

	if disposition.TransferTo != "" {
		target, err := stock.ParseLocationRef(disposition.TransferTo)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if target == stock.VehicleRef(id) {
			return fmt.Errorf("cannot transfer stock to the vehicle being deleted: %w", domain.ErrValidation)
		}
		ok, err := s.store.LocationExists(ctx, target)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transfer target %s: %w", target, domain.ErrNotFound)
		}
	}

	if err := s.store.DeleteVehicle(ctx, id, disposition, time.Now().UTC()); err != nil {
		return err
	}

	s.notifier.Publish(ctx, messagequeue.SubjectVehicleDeleted, ws.EventVehicleDeleted,
		ws.VehicleDeletedEvent{
			VehicleID:    id,
			StockDeleted: disposition.Delete,
			TransferTo:   disposition.TransferTo,
		})
	return nil
}
