package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/assignment"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
)

const assignmentColumns = `id, tenant_id, vehicle_id, user_id, start_date, end_date, created_at`

func scanAssignment(row scannable) (assignment.Assignment, error) {
	var a assignment.Assignment
	err := row.Scan(&a.ID, &a.TenantID, &a.VehicleID, &a.UserID,
		&a.StartDate, &a.EndDate, &a.CreatedAt)
	return a, err
}

// OpenAssignment inserts an open timeline row. Concurrency is settled by
// the partial unique index: of two racing opens for one vehicle, the
// second insert fails with 23505 and surfaces as ErrAlreadyAssigned.
func (s *Store) OpenAssignment(ctx context.Context, a *assignment.Assignment, singlePerTech bool) error {
	tid := tenantFromCtx(ctx)
	a.TenantID = tid

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if singlePerTech {
			if err := rejectSecondVehicle(ctx, tx, tid, a.UserID); err != nil {
				return err
			}
		}
		return insertAssignment(ctx, tx, a)
	})
}

// rejectSecondVehicle enforces the per-tenant single_vehicle_per_tech
// option. The user-keyed advisory lock serializes racing opens for the
// same technician; without it two concurrent opens on different vehicles
// would both see zero open rows.
func rejectSecondVehicle(ctx context.Context, tx pgx.Tx, tid, userID string) error {
	if err := advisoryLock(ctx, tx, "assign:tech:"+tid+":"+userID); err != nil {
		return err
	}
	var open int
	err := tx.QueryRow(ctx,
		`SELECT count(*) FROM vehicle_assignments
		 WHERE tenant_id = $1 AND user_id = $2 AND end_date IS NULL`,
		tid, userID).Scan(&open)
	if err != nil {
		return fmt.Errorf("count open assignments: %w", wrapStorage(err))
	}
	if open > 0 {
		return fmt.Errorf("user %s already holds a vehicle: %w", userID, domain.ErrAlreadyAssigned)
	}
	return nil
}

func insertAssignment(ctx context.Context, tx pgx.Tx, a *assignment.Assignment) error {
	row := tx.QueryRow(ctx,
		`INSERT INTO vehicle_assignments (id, tenant_id, vehicle_id, user_id, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, NULL)
		 RETURNING created_at`,
		a.ID, a.TenantID, a.VehicleID, a.UserID, a.StartDate)
	if err := row.Scan(&a.CreatedAt); err != nil {
		if isUniqueViolation(err, "uq_assignments_open_vehicle") {
			return fmt.Errorf("vehicle %s: %w", a.VehicleID, domain.ErrAlreadyAssigned)
		}
		return fmt.Errorf("open assignment: %w", wrapStorage(err))
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, id string) (*assignment.Assignment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM vehicle_assignments
		 WHERE id = $1 AND tenant_id = $2
		 ORDER BY created_at LIMIT 1`, id, tenantFromCtx(ctx))

	a, err := scanAssignment(row)
	if err != nil {
		return nil, notFoundWrap(err, "get assignment %s", id)
	}
	return &a, nil
}

func (s *Store) GetOpenAssignmentForVehicle(ctx context.Context, vehicleID string) (*assignment.Assignment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM vehicle_assignments
		 WHERE vehicle_id = $1 AND tenant_id = $2 AND end_date IS NULL
		 LIMIT 1`, vehicleID, tenantFromCtx(ctx))

	a, err := scanAssignment(row)
	if err != nil {
		return nil, notFoundWrap(err, "open assignment for vehicle %s", vehicleID)
	}
	return &a, nil
}

// CloseAssignment sets the end date on an open row. Closed rows are
// immutable; closing one again is ErrAssignmentClosed, not idempotent
// success, so callers notice double-submits.
func (s *Store) CloseAssignment(ctx context.Context, id string, endDate time.Time) error {
	tid := tenantFromCtx(ctx)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT start_date, end_date FROM vehicle_assignments
			 WHERE id = $1 AND tenant_id = $2
			 ORDER BY created_at LIMIT 1
			 FOR UPDATE`, id, tid)

		var startDate time.Time
		var closed *time.Time
		if err := row.Scan(&startDate, &closed); err != nil {
			return notFoundWrap(err, "close assignment %s", id)
		}
		if closed != nil {
			return fmt.Errorf("close assignment %s: %w", id, domain.ErrAssignmentClosed)
		}
		if endDate.Before(startDate) {
			return fmt.Errorf("close assignment %s: end before start: %w", id, domain.ErrValidation)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE vehicle_assignments SET end_date = $3
			 WHERE id = $1 AND tenant_id = $2 AND end_date IS NULL`,
			id, tid, endDate)
		return execExpectOne(tag, err, "close assignment %s", id)
	})
}

// Reassign closes the vehicle's open assignment (if any) and opens next
// in one transaction. When nothing is open it degrades to a plain open
// and closedID comes back empty.
func (s *Store) Reassign(ctx context.Context, vehicleID string, next *assignment.Assignment, effective time.Time, singlePerTech bool) (string, error) {
	tid := tenantFromCtx(ctx)
	next.TenantID = tid

	var closedID string
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE vehicle_assignments SET end_date = $3
			 WHERE tenant_id = $1 AND vehicle_id = $2 AND end_date IS NULL
			 RETURNING id`, tid, vehicleID, effective)
		if err := row.Scan(&closedID); err != nil && !isNoRows(err) {
			return fmt.Errorf("reassign vehicle %s: %w", vehicleID, wrapStorage(err))
		}

		if singlePerTech {
			if err := rejectSecondVehicle(ctx, tx, tid, next.UserID); err != nil {
				return err
			}
		}
		return insertAssignment(ctx, tx, next)
	})
	if err != nil {
		return "", err
	}
	return closedID, nil
}

func (s *Store) ListAssignments(ctx context.Context, f database.AssignmentFilter) ([]assignment.Assignment, error) {
	q := `SELECT ` + assignmentColumns + ` FROM vehicle_assignments WHERE tenant_id = $1`
	args := []any{tenantFromCtx(ctx)}

	if f.VehicleID != "" {
		args = append(args, f.VehicleID)
		q += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		q += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if f.OpenOnly {
		q += " AND end_date IS NULL"
	}
	q += " ORDER BY start_date DESC, created_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", wrapStorage(err))
	}
	defer rows.Close()

	var out []assignment.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("list assignments: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
