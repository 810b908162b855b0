package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukaanlabs/dukaan/pkg/auth"
	"github.com/dukaanlabs/dukaan/pkg/cache"
	"github.com/dukaanlabs/dukaan/pkg/middleware"
)

func protected(c *cache.Cache) http.Handler {
	gate := middleware.Auth(c)
	return gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromCtx(r.Context())
		if claims == nil {
			http.Error(w, "no claims", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthRejectsMissingToken(t *testing.T) {
	h := protected(cache.New(cache.NewMemoryStore()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d", rec.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	h := protected(cache.New(cache.NewMemoryStore()))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d", rec.Code)
	}
}

func TestAuthAdmitsValidToken(t *testing.T) {
	h := protected(cache.New(cache.NewMemoryStore()))

	token, err := auth.GenerateToken(1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	c := cache.New(cache.NewMemoryStore())
	h := protected(c)

	token, err := auth.GenerateToken(1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := c.Put(middleware.DenylistKey(claims.ID), true, time.Minute); err != nil {
		t.Fatalf("park: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token admitted: got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429", rec.Code)
	}
}

func TestRecoveryReturnsStructured500(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Something went wrong") {
		t.Errorf("expected the generic body, got: %q", body)
	}
	if strings.Contains(body, "boom") {
		t.Error("panic message must not reach the client")
	}
}
