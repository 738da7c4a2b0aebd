package service

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/config"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/assignment"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/quota"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/tenant"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
)

func userFixture(tier quota.Tier) (*mockStore, *UserService) {
	store := &mockStore{
		tenants: []tenant.Tenant{{ID: "t1", Name: "Acme", Tier: tier, Enabled: true}},
	}
	return store, NewUserService(store, &config.Auth{BcryptCost: bcrypt.MinCost})
}

func TestCreateUserSeatQuota(t *testing.T) {
	_, svc := userFixture(quota.TierTrial) // 2 technician seats
	ctx := testCtx("t1")

	for i, email := range []string{"t1@acme.test", "t2@acme.test"} {
		_, err := svc.Create(ctx, user.CreateRequest{
			Email: email, Name: "Tech", Password: "password123", Role: user.RoleTechnician,
		})
		if err != nil {
			t.Fatalf("technician %d: %v", i+1, err)
		}
	}

	_, err := svc.Create(ctx, user.CreateRequest{
		Email: "t3@acme.test", Name: "Tech", Password: "password123", Role: user.RoleTechnician,
	})
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded on the third technician, got %v", err)
	}

	// Owner and admin seats are never metered.
	if _, err := svc.Create(ctx, user.CreateRequest{
		Email: "boss@acme.test", Name: "Boss", Password: "password123", Role: user.RoleOwner,
	}); err != nil {
		t.Fatalf("owner seat: %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	_, svc := userFixture(quota.TierPro)
	ctx := testCtx("t1")

	cases := []struct {
		name string
		req  user.CreateRequest
	}{
		{"missing email", user.CreateRequest{Name: "N", Password: "password123", Role: user.RoleTechnician}},
		{"bad email", user.CreateRequest{Email: "not-an-email", Name: "N", Password: "password123", Role: user.RoleTechnician}},
		{"short password", user.CreateRequest{Email: "a@b.test", Name: "N", Password: "short", Role: user.RoleTechnician}},
		{"bad role", user.CreateRequest{Email: "a@b.test", Name: "N", Password: "password123", Role: "janitor"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateUser(t *testing.T) {
	store, svc := userFixture(quota.TierPro)
	store.users = append(store.users, user.User{ID: "u1", Email: "a@b.test", Name: "Old", Role: user.RoleTechnician, Enabled: true})
	ctx := testCtx("t1")

	off := false
	u, err := svc.Update(ctx, "u1", user.UpdateRequest{Name: "New", Role: user.RoleManager, Enabled: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "New" || u.Role != user.RoleManager || u.Enabled {
		t.Fatalf("unexpected user after update: %+v", u)
	}

	if _, err := svc.Update(ctx, "u1", user.UpdateRequest{Role: "janitor"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad role, got %v", err)
	}
	if _, err := svc.Update(ctx, "nobody", user.UpdateRequest{Name: "X"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserClosesAssignments(t *testing.T) {
	store, svc := userFixture(quota.TierPro)
	store.users = append(store.users, user.User{ID: "tech-1", Email: "t@acme.test", Role: user.RoleTechnician, Enabled: true})
	store.assignments = append(store.assignments, assignment.Assignment{
		ID: "a1", VehicleID: "veh-1", UserID: "tech-1", StartDate: time.Now().Add(-time.Hour),
	})
	ctx := testCtx("t1")

	if err := svc.Delete(ctx, "tech-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "tech-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	// The history row survives, closed.
	if store.assignments[0].EndDate == nil {
		t.Fatal("expected the open assignment to be closed by the delete")
	}

	if err := svc.Delete(ctx, "tech-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
