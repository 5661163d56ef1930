package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eonhq/eon-backend/internal/config"
)

func newCachedServer(t *testing.T, maxBody int, body string) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route",
		Prefix:       "cache",
		MaxBodyBytes: maxBody,
	}

	e := echo.New()
	e.GET("/v1/events", func(c echo.Context) error {
		return c.String(http.StatusOK, body)
	}, NewRedisCache(cfg, rdb))
	return e, mr
}

func getEvents(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCacheReplaysStoredResponse(t *testing.T) {
	e, _ := newCachedServer(t, 1024, `{"message":"ok"}`)

	first := getEvents(e)
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("first X-Cache = %q, want MISS", got)
	}
	second := getEvents(e)
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Fatalf("second X-Cache = %q, want HIT", got)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
}

func TestCacheSkipsOversizedBody(t *testing.T) {
	body := `{"message":"ok","data":"` + strings.Repeat("x", 200) + `"}`
	e, mr := newCachedServer(t, 64, body)

	first := getEvents(e)
	if first.Body.String() != body {
		t.Fatalf("client must always receive the full body, got %d of %d bytes", first.Body.Len(), len(body))
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("oversized response was stored under %v, want nothing cached", keys)
	}

	second := getEvents(e)
	if got := second.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("second X-Cache = %q, want MISS since nothing was stored", got)
	}
	if second.Body.String() != body {
		t.Errorf("second body %q, want the handler's full output", second.Body.String())
	}
}
