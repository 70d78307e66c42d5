package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/repository"
	"github.com/iliyamo/library-inventory/internal/service"
)

// RatingHandler lets members rate books they currently hold.
type RatingHandler struct {
	Ledger *service.Ledger
}

func NewRatingHandler(l *service.Ledger) *RatingHandler {
	return &RatingHandler{Ledger: l}
}

type rateReq struct {
	Value int `json:"value"`
}

type ratingView struct {
	ID     uint64 `json:"id"`
	BookID uint64 `json:"book_id"`
	Value  int    `json:"value"`
}

// Rate records a 1-5 rating. Only a member holding the book may rate it;
// returning the book forfeits the chance.
func (h *RatingHandler) Rate(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rating, err := h.Ledger.Rate(ctx, bookID, userID, req.Value)
	if err != nil {
		switch err {
		case service.ErrInvalidRating:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
		case repository.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case service.ErrNotBorrowed:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only borrowed books can be rated"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rate failed"})
		}
	}
	return c.JSON(http.StatusCreated, ratingView{ID: rating.ID, BookID: rating.BookID, Value: rating.Value})
}
