package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 3)
	defer rl.Stop()
	ownerID := uuid.New()

	for i := 0; i < 3; i++ {
		if !rl.Allow(ownerID) {
			t.Fatalf("Expected request %d within the burst to be allowed", i+1)
		}
	}
	if rl.Allow(ownerID) {
		t.Error("Expected request beyond the burst to be denied")
	}
}

func TestRateLimiter_IndependentOwners(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()
	first := uuid.New()
	second := uuid.New()

	if !rl.Allow(first) {
		t.Fatal("Expected first owner's request to be allowed")
	}
	if rl.Allow(first) {
		t.Error("Expected first owner to be exhausted")
	}
	if !rl.Allow(second) {
		t.Error("Expected second owner to have an independent bucket")
	}
}

func TestRateLimitMiddleware_SkipsUnauthenticated(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !called {
		t.Error("Expected an unauthenticated request to pass through unlimited")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "" {
		t.Error("Expected no rate limit headers without an owner")
	}
}

func TestRateLimitMiddleware_LimitsOwner(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 2)
	defer rl.Stop()
	ownerID := uuid.New()

	e := echo.New()
	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	var lastRec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		lastRec = httptest.NewRecorder()
		c := e.NewContext(req, lastRec)
		SetOwnerID(c, ownerID)
		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	if lastRec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429 after the burst, got %d", lastRec.Code)
	}
	if lastRec.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header on the limited response")
	}
	if lastRec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected remaining 0, got %s", lastRec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimitMiddleware_SetsHeaders(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 5)
	defer rl.Stop()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetOwnerID(c, uuid.New())

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("Expected X-RateLimit-Limit header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected X-RateLimit-Remaining header")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("Expected X-RateLimit-Reset header")
	}
}
