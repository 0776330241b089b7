package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dates-app-go/internal/config"
)

func testAuth() *JWTAuth {
	return NewJWTAuth(config.AuthConfig{
		JWTSecret: "test-secret",
		JWTIssuer: "dates-app",
		JWTTTL:    time.Minute,
	})
}

func TestMiddlewarePassesUser(t *testing.T) {
	auth := testAuth()
	token, err := auth.Issue(User{ID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var got User
	var ok bool
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/get-relationship", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ok || got.ID != 42 || got.Username != "alice" {
		t.Fatalf("expected user in context, got %+v (ok=%v)", got, ok)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	auth := testAuth()
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/get-relationship", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareRejectsForeignToken(t *testing.T) {
	auth := testAuth()
	other := NewJWTAuth(config.AuthConfig{
		JWTSecret: "different-secret",
		JWTIssuer: "dates-app",
		JWTTTL:    time.Minute,
	})
	token, err := other.Issue(User{ID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run with a forged token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/get-relationship", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	if _, ok := bearerToken(""); ok {
		t.Fatalf("expected empty header rejected")
	}
	if _, ok := bearerToken("Basic abc"); ok {
		t.Fatalf("expected non-bearer scheme rejected")
	}
	token, ok := bearerToken("Bearer abc.def.ghi")
	if !ok || token != "abc.def.ghi" {
		t.Fatalf("expected token extracted, got %q (ok=%v)", token, ok)
	}
}
