package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eonhq/eon-backend/internal/config"
	"github.com/eonhq/eon-backend/internal/model"
)

func newCtx(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events?search=gala", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events")
	return c, rec
}

func TestCacheKeyIsolatesUsers(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}

	a, _ := newCtx(t)
	a.Set(CtxUserID, uint64(1))
	b, _ := newCtx(t)
	b.Set(CtxUserID, uint64(2))

	if cacheKeyFrom(cfg, a) == cacheKeyFrom(cfg, b) {
		t.Error("two users must not share a cache key for the same route")
	}
}

func TestCacheKeyStableForSameUser(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}

	a, _ := newCtx(t)
	a.Set(CtxUserID, uint64(1))
	b, _ := newCtx(t)
	b.Set(CtxUserID, uint64(1))

	if cacheKeyFrom(cfg, a) != cacheKeyFrom(cfg, b) {
		t.Error("identical requests from one user should hit the same key")
	}
}

func TestRequireRoleMissingRoleIsUnauthorized(t *testing.T) {
	c, rec := newCtx(t)
	h := RequireRole(model.RoleOrganizer)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for missing role", rec.Code)
	}
}

func TestRequireRoleWrongRoleIsForbidden(t *testing.T) {
	c, rec := newCtx(t)
	c.Set(CtxRole, model.RoleSubscriber)
	h := RequireRole(model.RoleOrganizer)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for wrong role", rec.Code)
	}
}

func TestRequireRoleAllowsMatch(t *testing.T) {
	c, rec := newCtx(t)
	c.Set(CtxRole, model.RoleOrganizer)
	h := RequireRole(model.RoleOrganizer)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
