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

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", echo.MIMEApplicationJSON)
	hdr.Add("X-Custom", "a")
	hdr.Add("X-Custom", "b")
	body := []byte(`{"books":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, gotHdr.Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, gotHdr["X-Custom"])
	assert.Equal(t, body, gotBody)
}

func TestCachePayloadRejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {}, {0, 0}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok)
	}
}

func TestCacheKeyVariesByRouteAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}
	e := echo.New()

	key := func(path, query string) string {
		req := httptest.NewRequest(http.MethodGet, path+"?"+query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return cacheKeyFrom(cfg, c)
	}

	assert.Equal(t, key("/v1/books", "page=1"), key("/v1/books", "page=1"))
	assert.NotEqual(t, key("/v1/books", "page=1"), key("/v1/books", "page=2"))
	assert.NotEqual(t, key("/v1/books", "page=1"), key("/v1/categories", "page=1"))
}

func TestRedisCacheNoopWithoutClient(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled: true,
		Methods: map[string]bool{http.MethodGet: true},
		TTL:     time.Minute,
		Prefix:  "cache",
	}

	for _, mw := range []echo.MiddlewareFunc{
		NewRedisCache(cfg, nil),
		NewRedisCache(config.CacheConfig{Enabled: false}, nil),
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
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
}
