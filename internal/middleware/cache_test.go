package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	body := []byte(`{"success":true}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatalf("decode failed")
	}
	if status != http.StatusOK {
		t.Fatalf("status mismatch: got %d", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Fatalf("header lost: %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Fatalf("body mismatch: %q", gotBody)
	}
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	if _, _, _, ok := decodePayload([]byte{0, 0}); ok {
		t.Fatalf("expected decode to fail on short input")
	}
	// Header length claims more bytes than present.
	bs := []byte{0, 0, 0, 200, 0, 0, 1, 0}
	if _, _, _, ok := decodePayload(bs); ok {
		t.Fatalf("expected decode to fail on bogus header length")
	}
}

func TestCacheKeyDistinguishesPathParams(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	e := echo.New()

	ctxFor := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/api/booking/seats/:showId")
		return c
	}

	k12 := cacheKeyFrom(cfg, ctxFor("/api/booking/seats/12"))
	k13 := cacheKeyFrom(cfg, ctxFor("/api/booking/seats/13"))
	if k12 == k13 {
		t.Fatalf("seat maps for different shows share a cache key: %s", k12)
	}
	if again := cacheKeyFrom(cfg, ctxFor("/api/booking/seats/12")); again != k12 {
		t.Fatalf("cache key not stable: %s vs %s", k12, again)
	}
}

func TestRedisCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/show/all", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not reached")
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Fatalf("disabled cache must not set X-Cache")
	}
}
