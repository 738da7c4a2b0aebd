package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
)

type stubValidator struct {
	claims *user.TokenClaims
	err    error
}

func (s *stubValidator) ValidateAccessToken(string) (*user.TokenClaims, error) {
	return s.claims, s.err
}

func okHandler(t *testing.T, gotUser **user.User) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthValidToken(t *testing.T) {
	v := &stubValidator{claims: &user.TokenClaims{
		UserID: "u1", Email: "m@fleet.test", Role: user.RoleManager, TenantID: "t1",
	}}

	var got *user.User
	h := Auth(v, true)(okHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.ID != "u1" || got.Role != user.RoleManager {
		t.Fatalf("caller not resolved: %+v", got)
	}
	if TenantIDFromContext(req.Context()) == "t1" {
		t.Error("original request context must not be mutated")
	}
}

func TestAuthMissingToken(t *testing.T) {
	v := &stubValidator{err: errors.New("unused")}
	var got *user.User
	h := Auth(v, true)(okHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	v := &stubValidator{err: errors.New("expired")}
	var got *user.User
	h := Auth(v, true)(okHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthPublicPath(t *testing.T) {
	v := &stubValidator{err: errors.New("unused")}
	var got *user.User
	h := Auth(v, true)(okHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for public path, got %d", rec.Code)
	}
}

func TestAuthDisabledInjectsOwner(t *testing.T) {
	var got *user.User
	h := Auth(nil, false)(okHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got == nil || got.Role != user.RoleOwner {
		t.Fatalf("expected injected owner, got %+v", got)
	}
}

func TestRequireOperation(t *testing.T) {
	handler := RequireOperation(user.OpAssign)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Manager may assign.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", nil)
	req = req.WithContext(WithUser(req.Context(), &user.User{ID: "u1", Role: user.RoleManager}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("manager: expected 200, got %d", rec.Code)
	}

	// Technician may not.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/assignments", nil)
	req = req.WithContext(WithUser(req.Context(), &user.User{ID: "u2", Role: user.RoleTechnician}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("technician: expected 403, got %d", rec.Code)
	}

	// No caller at all.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/assignments", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
}

func TestTenantIDMiddleware(t *testing.T) {
	var got string
	h := TenantID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = TenantIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", "tenant-42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "tenant-42" {
		t.Errorf("expected tenant-42, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != DefaultTenantID {
		t.Errorf("expected default tenant, got %q", got)
	}
}

func TestTenantIDFromBareContext(t *testing.T) {
	if got := TenantIDFromContext(context.Background()); got != DefaultTenantID {
		t.Errorf("expected default tenant, got %q", got)
	}
}

func TestRequestID(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id on response")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "fixed-id" {
		t.Error("expected propagated request id")
	}
}
