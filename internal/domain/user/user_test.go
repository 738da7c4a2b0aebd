package user

import "testing"

func TestCreateRequestValidate(t *testing.T) {
	valid := CreateRequest{
		Email:    "tech@fleet.test",
		Name:     "Tech One",
		Password: "longenough",
		Role:     RoleTechnician,
		TenantID: "t1",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(r *CreateRequest)
	}{
		{"missing email", func(r *CreateRequest) { r.Email = "" }},
		{"bad email", func(r *CreateRequest) { r.Email = "not-an-email" }},
		{"missing name", func(r *CreateRequest) { r.Name = "" }},
		{"short password", func(r *CreateRequest) { r.Password = "short" }},
		{"bad role", func(r *CreateRequest) { r.Role = "driver" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestCanPolicy(t *testing.T) {
	if !Can(RoleManager, OpAssign) {
		t.Error("manager should be able to manage assignments")
	}
	if Can(RoleTechnician, OpAssign) {
		t.Error("technician must not manage assignments")
	}
	if !Can(RoleTechnician, OpReadAssignments) {
		t.Error("technician should read assignments")
	}
	if Can(RoleManager, OpManageUsers) {
		t.Error("manager must not manage users")
	}
	if !Can(RoleOwner, OpManageTenant) {
		t.Error("owner should manage the tenant")
	}
}

func TestAssignable(t *testing.T) {
	if !Assignable(RoleTechnician) {
		t.Error("technician should be assignable")
	}
	if Assignable(RoleManager) {
		t.Error("manager should not be assignable")
	}
}
