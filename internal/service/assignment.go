package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	otelx "github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/otel"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ws"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/config"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/assignment"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/messagequeue"
)

// AssignmentService owns the vehicle-technician timeline: open, close,
// atomic reassign, and history queries.
type AssignmentService struct {
	store    database.Store
	cfg      *config.Assignment
	notifier *Notifier
	metrics  *otelx.Metrics
}

// NewAssignmentService creates a new assignment service. metrics may be nil.
func NewAssignmentService(store database.Store, cfg *config.Assignment, notifier *Notifier, metrics *otelx.Metrics) *AssignmentService {
	return &AssignmentService{store: store, cfg: cfg, notifier: notifier, metrics: metrics}
}

// Open starts an assignment. Both referents must exist, the user must
// hold an assignable role, and the vehicle must currently be free.
func (s *AssignmentService) Open(ctx context.Context, req assignment.OpenRequest) (*assignment.Assignment, error) {
	if err := req.Validate(s.cfg.MaxFutureStart); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if _, err := s.store.GetVehicle(ctx, req.VehicleID); err != nil {
		return nil, fmt.Errorf("vehicle: %w", err)
	}
	u, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	if !user.Assignable(u.Role) {
		return nil, fmt.Errorf("role %s cannot hold a vehicle: %w", u.Role, domain.ErrValidation)
	}

	singlePerTech, err := s.singleVehiclePolicy(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := otelx.StartAssignmentSpan(ctx, "open", req.VehicleID, req.UserID)
	defer span.End()

	a := &assignment.Assignment{
		ID:        uuid.NewString(),
		VehicleID: req.VehicleID,
		UserID:    req.UserID,
		StartDate: req.StartDate,
	}
	if err := s.store.OpenAssignment(ctx, a, singlePerTech); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssignmentsOpened.Add(ctx, 1)
	}
	s.notifier.Publish(ctx, messagequeue.SubjectAssignmentOpened, ws.EventAssignmentOpened,
		ws.AssignmentEvent{
			AssignmentID: a.ID,
			VehicleID:    a.VehicleID,
			UserID:       a.UserID,
			StartDate:    a.StartDate,
		})
	return a, nil
}

// Close ends an open assignment. Closed rows are immutable.
func (s *AssignmentService) Close(ctx context.Context, id string, req assignment.CloseRequest) (*assignment.Assignment, error) {
	endDate := req.EndDate
	if endDate.IsZero() {
		endDate = time.Now().UTC()
	}

	if err := s.store.CloseAssignment(ctx, id, endDate); err != nil {
		return nil, err
	}

	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssignmentsClosed.Add(ctx, 1)
	}
	s.notifier.Publish(ctx, messagequeue.SubjectAssignmentClosed, ws.EventAssignmentClosed,
		ws.AssignmentEvent{
			AssignmentID: a.ID,
			VehicleID:    a.VehicleID,
			UserID:       a.UserID,
			StartDate:    a.StartDate,
			EndDate:      a.EndDate,
		})
	return a, nil
}

// Reassign atomically hands the vehicle to a new technician: close the
// open assignment (if any) and open the next one, both effective at the
// same instant. Degrades to a plain open on a free vehicle.
func (s *AssignmentService) Reassign(ctx context.Context, vehicleID string, req assignment.ReassignRequest) (*assignment.ReassignResult, error) {
	effective := req.EffectiveDate
	if effective.IsZero() {
		effective = time.Now().UTC()
	}
	if req.NewUserID == "" {
		return nil, fmt.Errorf("new_user_id is required: %w", domain.ErrValidation)
	}

	if _, err := s.store.GetVehicle(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("vehicle: %w", err)
	}
	u, err := s.store.GetUser(ctx, req.NewUserID)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	if !user.Assignable(u.Role) {
		return nil, fmt.Errorf("role %s cannot hold a vehicle: %w", u.Role, domain.ErrValidation)
	}

	singlePerTech, err := s.singleVehiclePolicy(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := otelx.StartAssignmentSpan(ctx, "reassign", vehicleID, req.NewUserID)
	defer span.End()

	next := &assignment.Assignment{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		UserID:    req.NewUserID,
		StartDate: effective,
	}
	closedID, err := s.store.Reassign(ctx, vehicleID, next, effective, singlePerTech)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssignmentsOpened.Add(ctx, 1)
		if closedID != "" {
			s.metrics.AssignmentsClosed.Add(ctx, 1)
		}
	}
	s.notifier.Publish(ctx, messagequeue.SubjectAssignmentOpened, ws.EventAssignmentOpened,
		ws.AssignmentEvent{
			AssignmentID: next.ID,
			VehicleID:    vehicleID,
			UserID:       next.UserID,
			StartDate:    effective,
		})
	return &assignment.ReassignResult{ClosedID: closedID, OpenedID: next.ID}, nil
}

// Get returns one assignment row. Technicians see only their own rows;
// anything else reads as not found.
func (s *AssignmentService) Get(ctx context.Context, id string) (*assignment.Assignment, error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c := middleware.UserFromContext(ctx); c != nil && c.Role == user.RoleTechnician && a.UserID != c.ID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// Current returns the vehicle's open assignment, if any. For technicians
// the row is visible only when it is theirs.
func (s *AssignmentService) Current(ctx context.Context, vehicleID string) (*assignment.Assignment, error) {
	a, err := s.store.GetOpenAssignmentForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if c := middleware.UserFromContext(ctx); c != nil && c.Role == user.RoleTechnician && a.UserID != c.ID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// History lists assignment rows most-recent-first, filtered by vehicle
// and/or user. A technician caller is pinned to their own rows regardless
// of the requested filter.
func (s *AssignmentService) History(ctx context.Context, f database.AssignmentFilter) ([]assignment.Assignment, error) {
	if c := middleware.UserFromContext(ctx); c != nil && c.Role == user.RoleTechnician {
		f.UserID = c.ID
	}
	return s.store.ListAssignments(ctx, f)
}

func (s *AssignmentService) singleVehiclePolicy(ctx context.Context) (bool, error) {
	tn, err := s.store.GetTenant(ctx, middleware.TenantIDFromContext(ctx))
	if err != nil {
		return false, fmt.Errorf("get tenant: %w", err)
	}
	return tn.SingleVehiclePerTech, nil
}
