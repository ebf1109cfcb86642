package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func runJWTAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec, c, called
}

func TestJWTAuth_ValidToken(t *testing.T) {
	ownerID := uuid.New()
	token := signedToken(t, ownerID.String(), time.Now().Add(time.Hour))

	rec, c, called := runJWTAuth(t, "Bearer "+token)

	if !called {
		t.Fatal("Expected the handler to be reached")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	got, ok := OwnerIDFromContext(c)
	if !ok || got != ownerID {
		t.Errorf("Expected owner %s in context, got %v (ok=%v)", ownerID, got, ok)
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec, _, called := runJWTAuth(t, "")

	if called {
		t.Error("Expected the handler not to be reached")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	rec, _, called := runJWTAuth(t, "Basic abc123")

	if called {
		t.Error("Expected the handler not to be reached")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	token := signedToken(t, uuid.New().String(), time.Now().Add(-time.Hour))

	rec, _, called := runJWTAuth(t, "Bearer "+token)

	if called {
		t.Error("Expected the handler not to be reached")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.New().String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	rec, _, called := runJWTAuth(t, "Bearer "+signed)

	if called {
		t.Error("Expected the handler not to be reached")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuth_NonUUIDSubject(t *testing.T) {
	token := signedToken(t, "user-42", time.Now().Add(time.Hour))

	rec, _, called := runJWTAuth(t, "Bearer "+token)

	if called {
		t.Error("Expected the handler not to be reached")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestOwnerIDFromContext_Empty(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if _, ok := OwnerIDFromContext(c); ok {
		t.Error("Expected no owner in a fresh context")
	}
}
