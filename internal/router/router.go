// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/handler"
	"github.com/iliyamo/library-inventory/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the session endpoints.  Register, login and refresh
// live under /v1/auth and need no token; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one), so no JWT middleware here.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic wires the unauthenticated browse endpoints.  Guests can
// inspect the catalogue and availability before registering.  Responses
// are cacheable, so the Redis cache middleware wraps the group.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, cats *handler.CategoryHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/books", cat.ListBooks)
	g.GET("/books/:id", cat.GetBook)
	g.GET("/categories", cats.List)
}
