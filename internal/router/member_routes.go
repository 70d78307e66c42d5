package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/handler"
	"github.com/iliyamo/library-inventory/internal/middleware"
	"github.com/iliyamo/library-inventory/internal/model"
)

// RegisterMember registers the endpoints members use to borrow, return
// and rate books.  All routes require a valid JWT; admins are allowed
// too since library staff borrow books like anyone else.
func RegisterMember(e *echo.Echo, loans *handler.LoanHandler, ratings *handler.RatingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember, model.RoleAdmin),
	)

	g.POST("/books/:id/borrow", loans.Borrow)
	g.POST("/books/:id/return", loans.Return)
	g.GET("/my-books", loans.MyBooks)
	g.POST("/books/:id/rating", ratings.Rate)
}
