package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/repository"
)

// BookHandler serves the admin-only inventory management endpoints.
type BookHandler struct {
	Books      *repository.BookRepo
	Categories *repository.CategoryRepo
}

func NewBookHandler(b *repository.BookRepo, cats *repository.CategoryRepo) *BookHandler {
	return &BookHandler{Books: b, Categories: cats}
}

// Pointer fields distinguish "absent" from "zero" so Update can apply
// partial bodies.
type bookReq struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Author      *string   `json:"author"`
	Count       *int      `json:"count"`
	CategoryIDs *[]uint64 `json:"category_ids"`
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// apply copies the supplied fields onto the book and validates the
// result.  A non-empty message plus status means rejection.
func (h *BookHandler) apply(ctx context.Context, req *bookReq, book *model.Book) (string, int) {
	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.Count != nil {
		book.Count = *req.Count
	}
	if book.Title == "" {
		return "title required", http.StatusBadRequest
	}
	if book.Count < 0 {
		return "count must be zero or positive", http.StatusBadRequest
	}
	if req.CategoryIDs != nil {
		*req.CategoryIDs = dedupeIDs(*req.CategoryIDs)
		if len(*req.CategoryIDs) > 0 {
			ok, err := h.Categories.ExistAll(ctx, *req.CategoryIDs)
			if err != nil {
				return "verify categories failed", http.StatusInternalServerError
			}
			if !ok {
				return "unknown category id", http.StatusBadRequest
			}
		}
	}
	return "", 0
}

// Create adds a book to the inventory with its initial available count.
func (h *BookHandler) Create(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Count == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "count required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var book model.Book
	if msg, code := h.apply(ctx, &req, &book); msg != "" {
		return c.JSON(code, echo.Map{"error": msg})
	}

	if err := h.Books.Create(ctx, &book); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create book failed"})
	}
	if req.CategoryIDs != nil && len(*req.CategoryIDs) > 0 {
		if err := h.Books.ReplaceCategories(ctx, book.ID, *req.CategoryIDs); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attach categories failed"})
		}
	}
	return c.JSON(http.StatusCreated, toBookView(book))
}

// Update applies a partial update: only the supplied fields change, and
// the category set is replaced only when category_ids is present.
func (h *BookHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
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

	if msg, code := h.apply(ctx, &req, &book); msg != "" {
		return c.JSON(code, echo.Map{"error": msg})
	}

	if err := h.Books.Update(ctx, &book); err != nil {
		if err == repository.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update book failed"})
	}
	if req.CategoryIDs != nil {
		if err := h.Books.ReplaceCategories(ctx, id, *req.CategoryIDs); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attach categories failed"})
		}
	}
	return c.JSON(http.StatusOK, toBookView(book))
}

// Delete removes a book. Books with borrow history or ratings cannot be
// deleted; they come back as a conflict.
func (h *BookHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Books.Delete(ctx, id); err != nil {
		if err == repository.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "book has borrow history"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete book failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
