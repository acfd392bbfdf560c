package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrpay/internal/auth"
)

const testSecret = "middleware-test-secret"

func bearerRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthInjectsUser(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u1", EmployeeID: "e1", Role: auth.RoleHR}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got auth.UserContext
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUser(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), bearerRequest(t, token))

	if got.UserID != "u1" || got.EmployeeID != "e1" || got.Role != auth.RoleHR {
		t.Fatalf("unexpected user context: %+v", got)
	}
}

func TestAuthInvalidTokenStaysAnonymous(t *testing.T) {
	var ok bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetUser(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), bearerRequest(t, "not-a-token"))
	if ok {
		t.Fatalf("invalid token must not authenticate")
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoleForbidsMismatch(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u1", EmployeeID: "e1", Role: auth.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := Auth(testSecret)(RequireRole(auth.RoleHR)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bearerRequest(t, token))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
