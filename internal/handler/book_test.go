package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-inventory/internal/repository"
	"github.com/iliyamo/library-inventory/internal/testutil"
)

func newBookFixture(t *testing.T) (*BookHandler, *echo.Echo) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	return NewBookHandler(repository.NewBookRepo(db), repository.NewCategoryRepo(db)), echo.New()
}

func adminCall(t *testing.T, e *echo.Echo, h echo.HandlerFunc, method, body string, id uint64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != 0 {
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(id, 10))
	}
	require.NoError(t, h(c))
	return rec
}

func TestAdminBookCreateValidation(t *testing.T) {
	h, e := newBookFixture(t)

	rec := adminCall(t, e, h.Create, http.MethodPost, `{"title":"No Count"}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = adminCall(t, e, h.Create, http.MethodPost, `{"count":3}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = adminCall(t, e, h.Create, http.MethodPost, `{"title":"Bad Count","count":-1}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = adminCall(t, e, h.Create, http.MethodPost, `{"title":"Bad Cats","count":1,"category_ids":[42]}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = adminCall(t, e, h.Create, http.MethodPost, `{"title":"Good","author":"A. Writer","count":2}`, 0)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAdminBookPartialUpdate(t *testing.T) {
	h, e := newBookFixture(t)

	rec := adminCall(t, e, h.Create, http.MethodPost, `{"title":"Original Title","author":"A. Writer","count":2}`, 0)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Only count supplied: title and author must survive.
	rec = adminCall(t, e, h.Update, http.MethodPatch, `{"count":7}`, created.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		Count  int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Original Title", updated.Title)
	assert.Equal(t, "A. Writer", updated.Author)
	assert.Equal(t, 7, updated.Count)

	// Blanking the title is rejected even on partial update.
	rec = adminCall(t, e, h.Update, http.MethodPatch, `{"title":""}`, created.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = adminCall(t, e, h.Update, http.MethodPatch, `{"count":1}`, 9999)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
