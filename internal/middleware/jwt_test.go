package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/utils"
)

func runWithAuth(t *testing.T, secret, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := JWTAuth(secret)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := chain(c); err != nil {
		t.Fatalf("chain error: %v", err)
	}
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken("s3cret", 9, "admin", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, c := runWithAuth(t, "s3cret", "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if uid, _ := c.Get("user_id").(uint64); uid != 9 {
		t.Fatalf("user_id not stored, got %v", c.Get("user_id"))
	}
	if role, _ := c.Get("role").(string); role != "admin" {
		t.Fatalf("role not stored, got %v", c.Get("role"))
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runWithAuth(t, "s3cret", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthRejectsForgedToken(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 9, "admin", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, _ := runWithAuth(t, "s3cret", "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", "user")

	handler := RequireRole("admin")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", "user")

	handler := RequireRole("user", "admin")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIdentityKeyFallsBackToGuest(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if k := identityKey(c); k != "guest" {
		t.Fatalf("expected guest, got %q", k)
	}
	c.Set("user_id", uint64(42))
	if k := identityKey(c); k != "42" {
		t.Fatalf("expected 42, got %q", k)
	}
}
