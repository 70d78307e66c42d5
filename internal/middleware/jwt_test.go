package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my-books", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleMember, 5)
	require.NoError(t, err)

	rec, c := runProtected(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	// Numeric JWT claims decode as float64.
	assert.Equal(t, float64(42), c.Get("user_id"))
	assert.Equal(t, model.RoleMember, c.Get("role"))
}

func TestJWTAuthRejectsMissingOrBadToken(t *testing.T) {
	rec, _ := runProtected(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runProtected(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with a different secret.
	other, err := utils.NewAccessToken("other-secret", 42, model.RoleMember, 5)
	require.NoError(t, err)
	rec, _ = runProtected(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  42,
		"role": model.RoleMember,
		"exp":  time.Now().UTC().Add(-time.Minute).Unix(),
		"iat":  time.Now().UTC().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec, _ := runProtected(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	member, err := utils.NewAccessToken(testSecret, 1, model.RoleMember, 5)
	require.NoError(t, err)
	admin, err := utils.NewAccessToken(testSecret, 2, model.RoleAdmin, 5)
	require.NoError(t, err)

	adminOnly := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(model.RoleAdmin)}

	rec, _ := runProtected(t, adminOnly, "Bearer "+member.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = runProtected(t, adminOnly, "Bearer "+admin.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	both := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(model.RoleMember, model.RoleAdmin)}
	rec, _ = runProtected(t, both, "Bearer "+member.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
