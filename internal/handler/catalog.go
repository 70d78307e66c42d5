package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/repository"
)

// CatalogHandler serves the public, unauthenticated browse endpoints.
type CatalogHandler struct {
	Books   *repository.BookRepo
	Ratings *repository.RatingRepo
}

func NewCatalogHandler(b *repository.BookRepo, r *repository.RatingRepo) *CatalogHandler {
	return &CatalogHandler{Books: b, Ratings: r}
}

type bookDetailResp struct {
	bookView
	Categories    []categoryView `json:"categories"`
	AverageRating float64        `json:"average_rating"`
	RatingsCount  int            `json:"ratings_count"`
}

// ListBooks returns a page of the catalogue. Availability (count) is
// included so clients can show what can be borrowed right now.
func (h *CatalogHandler) ListBooks(c echo.Context) error {
	page, pageSize := pageParams(c, 20)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	books, err := h.Books.List(ctx, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list books failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"books":     toBookViews(books),
		"page":      page,
		"page_size": pageSize,
	})
}

// GetBook returns one book with its categories and rating summary.
func (h *CatalogHandler) GetBook(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load book failed"})
	}

	cats, err := h.Books.CategoriesByBook(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load categories failed"})
	}

	avg, count, err := h.Ratings.AverageByBook(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}

	return c.JSON(http.StatusOK, bookDetailResp{
		bookView:      toBookView(book),
		Categories:    toCategoryViews(cats),
		AverageRating: avg,
		RatingsCount:  count,
	})
}
