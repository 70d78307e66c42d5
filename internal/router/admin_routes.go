package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/handler"
	"github.com/iliyamo/library-inventory/internal/middleware"
	"github.com/iliyamo/library-inventory/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, books *handler.BookHandler, cats *handler.CategoryHandler, users *handler.UserHandler, loans *handler.LoanHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Inventory ----
	g.POST("/books", books.Create)
	g.PUT("/books/:id", books.Update)
	g.PATCH("/books/:id", books.Update)
	g.DELETE("/books/:id", books.Delete)

	// ---- Categories ----
	g.POST("/categories", cats.Create)
	g.PUT("/categories/:id", cats.Update)
	g.PATCH("/categories/:id", cats.Update)
	g.DELETE("/categories/:id", cats.Delete)

	// ---- Accounts ----
	g.GET("/users", users.List)
	g.PATCH("/users/:id/active", users.SetActive)

	// ---- Ledger ----
	g.GET("/history", loans.History)
}
