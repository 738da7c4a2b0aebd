package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
)

const userColumns = `id, tenant_id, email, name, password_hash, role, enabled, created_at, updated_at`

func scanUser(row scannable) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.PasswordHash,
		&u.Role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts the user. When limit >= 0 the count of same-role
// users is re-taken inside the insert transaction under a tenant+role
// advisory lock, so two concurrent invites cannot both pass the quota
// check.
func (s *Store) CreateUser(ctx context.Context, u *user.User, limit int) error {
	tid := tenantFromCtx(ctx)
	u.TenantID = tid

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if limit >= 0 {
			if err := advisoryLock(ctx, tx, "quota:"+tid+":"+string(u.Role)); err != nil {
				return err
			}
			var count int
			err := tx.QueryRow(ctx,
				`SELECT count(*) FROM users WHERE tenant_id = $1 AND role = $2`,
				tid, u.Role).Scan(&count)
			if err != nil {
				return fmt.Errorf("count users: %w", wrapStorage(err))
			}
			if count >= limit {
				return fmt.Errorf("create user: %d of %d %s seats used: %w",
					count, limit, u.Role, domain.ErrQuotaExceeded)
			}
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO users (id, tenant_id, email, name, password_hash, role, enabled)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING created_at, updated_at`,
			u.ID, tid, u.Email, u.Name, u.PasswordHash, u.Role, u.Enabled)
		if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
			if isUniqueViolation(err, "uq_users_tenant_email") {
				return fmt.Errorf("create user: email %s taken: %w", u.Email, domain.ErrConflict)
			}
			return fmt.Errorf("create user: %w", wrapStorage(err))
		}
		return nil
	})
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND tenant_id = $2
		 ORDER BY created_at LIMIT 1`, id, tenantFromCtx(ctx))

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND tenant_id = $2
		 LIMIT 1`, email, tenantFromCtx(ctx))

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user by email")
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 ORDER BY created_at`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", wrapStorage(err))
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $2, role = $3, enabled = $4, updated_at = now()
		 WHERE id = $1 AND tenant_id = $5`,
		u.ID, u.Name, u.Role, u.Enabled, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update user %s", u.ID)
}

func (s *Store) SetUserPassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now()
		 WHERE id = $1 AND tenant_id = $3`,
		id, passwordHash, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "set password for user %s", id)
}

func (s *Store) CountUsersByRole(ctx context.Context, roles ...user.Role) (int, error) {
	roleStrs := make([]string, len(roles))
	for i, r := range roles {
		roleStrs[i] = string(r)
	}

	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE tenant_id = $1 AND role = ANY($2)`,
		tenantFromCtx(ctx), roleStrs).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", wrapStorage(err))
	}
	return count, nil
}

// DeleteUser closes every open assignment held by the user and removes
// the user row, all in one transaction. Closed history rows survive.
func (s *Store) DeleteUser(ctx context.Context, id string, closeDate time.Time) error {
	tid := tenantFromCtx(ctx)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE vehicle_assignments SET end_date = $3
			 WHERE tenant_id = $1 AND user_id = $2 AND end_date IS NULL`,
			tid, id, closeDate)
		if err != nil {
			return fmt.Errorf("close assignments for user %s: %w", id, wrapStorage(err))
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM users WHERE id = $1 AND tenant_id = $2`, id, tid)
		return execExpectOne(tag, err, "delete user %s", id)
	})
}
