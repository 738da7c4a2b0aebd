package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/config"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
)

// UserService manages the tenant's people: invite-style creation under
// the tier's seat limits, updates, and the technician cascade delete.
type UserService struct {
	store database.Store
	cfg   *config.Auth
}

// NewUserService creates a new user service.
func NewUserService(store database.Store, cfg *config.Auth) *UserService {
	return &UserService{store: store, cfg: cfg}
}

// Create invites a user. Manager and technician seats are quota-checked
// inside the insert transaction; owner and admin seats are not metered.
func (s *UserService) Create(ctx context.Context, req user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	limit := quota.Unlimited
	if class, metered := seatClass(req.Role); metered {
		var err error
		limit, err = limitForClass(ctx, s.store, class)
		if err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		Enabled:      true,
	}
	if err := s.store.CreateUser(ctx, u, limit); err != nil {
		return nil, err
	}
	return u, nil
}

// seatClass maps a role to its metered quota class.
func seatClass(r user.Role) (quota.ResourceClass, bool) {
	switch r {
	case user.RoleManager:
		return quota.ClassManager, true
	case user.RoleTechnician:
		return quota.ClassTechnician, true
	default:
		return "", false
	}
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns the tenant's users.
func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// Update applies the patch. Role changes re-check the destination seat
// class at the next quota read; existing overage is tolerated.
func (s *UserService) Update(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Role != "" {
		if !user.ValidRoles[req.Role] {
			return nil, fmt.Errorf("invalid role %q: %w", req.Role, domain.ErrValidation)
		}
		u.Role = req.Role
	}
	if req.Enabled != nil {
		u.Enabled = *req.Enabled
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user; any assignments they hold are closed in the same
// transaction. History rows referencing the user are kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, id, time.Now().UTC())
}
