package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/repository"
)

// Wire shapes shared by the catalogue, inventory and loan endpoints.
// The persistence models stay untagged; handlers decide what leaves
// the API.

type bookView struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Count       int    `json:"count"`
}

type categoryView struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func toBookView(b model.Book) bookView {
	return bookView{ID: b.ID, Title: b.Title, Description: b.Description, Author: b.Author, Count: b.Count}
}

func toBookViews(books []model.Book) []bookView {
	out := make([]bookView, 0, len(books))
	for _, b := range books {
		out = append(out, toBookView(b))
	}
	return out
}

func toCategoryViews(cats []model.Category) []categoryView {
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{ID: c.ID, Title: c.Title, Description: c.Description})
	}
	return out
}

// getUserID extracts the authenticated user's id set by the JWT middleware.
// JWT numeric claims decode as float64, so several shapes are handled.
func getUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return v, true
	case float64:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// pageParams reads page/page_size query parameters.  page_size is clamped
// into [1, repository.MaxPageSize] so the values echoed back in the
// response match what the list query actually used.
func pageParams(c echo.Context, defSize int) (page, size int) {
	page = queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size = queryInt(c, "page_size", defSize)
	if size < 1 {
		size = defSize
	}
	if size > repository.MaxPageSize {
		size = repository.MaxPageSize
	}
	return page, size
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
