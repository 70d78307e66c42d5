package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-inventory/internal/config"
)

func TestTokenBucketNoopWithoutClient(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       10,
		RefillTokens:   10,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		Prefix:         "rl",
	}

	for _, mw := range []echo.MiddlewareFunc{
		NewTokenBucket(cfg, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil),
	} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		called := false
		h := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateKeyScoping(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl"}
	e := echo.New()

	mkCtx := func(method, path string) echo.Context {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("X-Real-IP", "203.0.113.7")
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return c
	}

	// Installed server-wide the limiter runs before auth, so the user
	// component stays "anon" and buckets split on ip + route only.
	c := mkCtx(http.MethodGet, "/v1/books")
	assert.Equal(t, "rl:ip:203.0.113.7:user:anon:route:GET /v1/books", buildRateKey(cfg, c))

	other := mkCtx(http.MethodPost, "/v1/books")
	assert.NotEqual(t, buildRateKey(cfg, c), buildRateKey(cfg, other))

	// Behind JWTAuth the claim splits buckets per caller.
	c.Set("user_id", float64(42))
	assert.Equal(t, "rl:ip:203.0.113.7:user:42:route:GET /v1/books", buildRateKey(cfg, c))
}

func TestAsInt64Shapes(t *testing.T) {
	assert.Equal(t, int64(7), asInt64(int64(7)))
	assert.Equal(t, int64(7), asInt64(7))
	assert.Equal(t, int64(7), asInt64(7.9))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}
