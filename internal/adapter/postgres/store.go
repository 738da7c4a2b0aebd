package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping reports storage reachability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", wrapStorage(err))
	}
	return nil
}

// CountResource returns the tenant's live count for a quota resource
// class. Counts are always recomputed from the tables, never cached.
func (s *Store) CountResource(ctx context.Context, class quota.ResourceClass) (int, error) {
	switch class {
	case quota.ClassVehicle:
		return s.CountVehicles(ctx)
	case quota.ClassManager:
		return s.CountUsersByRole(ctx, user.RoleManager)
	case quota.ClassTechnician:
		return s.CountUsersByRole(ctx, user.RoleTechnician)
	default:
		return 0, fmt.Errorf("count resource: unknown class %q", class)
	}
}
