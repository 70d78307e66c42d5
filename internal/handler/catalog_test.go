package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/repository"
	"github.com/iliyamo/library-inventory/internal/testutil"
)

func newCatalogFixture(t *testing.T) (*CatalogHandler, *repository.BookRepo, *echo.Echo) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	books := repository.NewBookRepo(db)
	return NewCatalogHandler(books, repository.NewRatingRepo(db)), books, echo.New()
}

func browse(t *testing.T, e *echo.Echo, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestListBooksPageSizeClamped(t *testing.T) {
	h, books, e := newCatalogFixture(t)

	for i := 0; i < 120; i++ {
		b := model.Book{Title: "Volume", Count: 1}
		require.NoError(t, books.Create(context.Background(), &b))
	}

	var resp struct {
		Books    []json.RawMessage `json:"books"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
	}

	// The echoed page_size reflects the clamp, not the raw parameter.
	rec := browse(t, e, h.ListBooks, "/v1/books?page_size=1000000")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, repository.MaxPageSize, resp.PageSize)
	assert.Len(t, resp.Books, repository.MaxPageSize)

	rec = browse(t, e, h.ListBooks, "/v1/books?page_size=-5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.PageSize)
	assert.Len(t, resp.Books, 20)
}
