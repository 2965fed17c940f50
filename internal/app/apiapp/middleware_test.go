package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "github.com/bidaclub/backend/internal/services/auth"
)

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewJWTManager("test-secret", time.Hour), nil)
	handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/membership", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewarePassesIdentity(t *testing.T) {
	manager := authsvc.NewJWTManager("test-secret", time.Hour)
	token, _, err := manager.GenerateAccessToken("u1", "member")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	var gotIdentity authsvc.Identity
	mw := AuthMiddleware(manager, nil)
	handler := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing from context")
		}
		gotIdentity = identity
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/membership", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotIdentity.UserID != "u1" || gotIdentity.Role != "member" {
		t.Fatalf("identity = %+v, want u1/member", gotIdentity)
	}
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewJWTManager("test-secret", time.Hour), nil)
	handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run with a malformed header")
	}))

	for _, header := range []string{"Bearer", "Token abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/v1/membership", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	if token, ok := extractBearerToken("Bearer abc.def.ghi"); !ok || token != "abc.def.ghi" {
		t.Fatalf("extractBearerToken() = %q, %v", token, ok)
	}
	if _, ok := extractBearerToken(""); ok {
		t.Fatalf("extractBearerToken() accepted an empty header")
	}
	if token, ok := extractBearerToken("bearer lower.case.ok"); !ok || token != "lower.case.ok" {
		t.Fatalf("extractBearerToken() = %q, %v, scheme match should be case-insensitive", token, ok)
	}
}
