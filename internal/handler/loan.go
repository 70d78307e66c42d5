package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/queue"
	"github.com/iliyamo/library-inventory/internal/repository"
	"github.com/iliyamo/library-inventory/internal/service"
)

// LoanHandler serves borrow/return for members and the loan history view
// for admins.  All ledger mutations go through the service layer; the
// handler only translates errors to HTTP and emits activity events.
type LoanHandler struct {
	Ledger *service.Ledger
	Books  *repository.BookRepo
	Users  *repository.UserRepo
}

func NewLoanHandler(l *service.Ledger, b *repository.BookRepo, u *repository.UserRepo) *LoanHandler {
	return &LoanHandler{Ledger: l, Books: b, Users: u}
}

// Borrow takes one available copy of the book for the calling member.
func (h *LoanHandler) Borrow(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Ledger.Borrow(ctx, bookID, userID)
	if err != nil {
		switch err {
		case repository.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case service.ErrBookUnavailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no copies available"})
		case service.ErrAlreadyBorrowed:
			return c.JSON(http.StatusConflict, echo.Map{"error": "book already borrowed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "borrow failed"})
		}
	}

	h.publishActivity(rec)
	return c.NoContent(http.StatusNoContent)
}

// Return gives the member's copy back and closes the oldest open record.
func (h *LoanHandler) Return(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Ledger.Return(ctx, bookID, userID)
	if err != nil {
		switch err {
		case repository.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case service.ErrNotBorrowed:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "book not borrowed by you"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "return failed"})
		}
	}

	h.publishActivity(rec)
	return c.NoContent(http.StatusNoContent)
}

// MyBooks lists the books the caller currently holds.
func (h *LoanHandler) MyBooks(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	books, err := h.Ledger.BorrowedBooks(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list borrowed books failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"books": toBookViews(books)})
}

// History serves the admin ledger view with optional filters.  Filters
// combine with AND; date filters match the whole calendar day (UTC).
func (h *LoanHandler) History(c echo.Context) error {
	page, pageSize := pageParams(c, 50)
	f := repository.HistoryFilter{
		Email:     strings.TrimSpace(c.QueryParam("email")),
		BookTitle: strings.TrimSpace(c.QueryParam("book_title")),
		Action:    strings.ToUpper(strings.TrimSpace(c.QueryParam("action"))),
		Page:      page,
		PageSize:  pageSize,
	}
	if f.Action != "" && f.Action != model.ActionBorrow && f.Action != model.ActionReturn {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be BORROW or RETURN"})
	}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"borrowed_date", &f.BorrowedDate},
		{"returned_date", &f.ReturnedDate},
	} {
		raw := strings.TrimSpace(c.QueryParam(p.name))
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": p.name + " must be YYYY-MM-DD"})
		}
		*p.dst = day
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Ledger.History(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query history failed"})
	}
	if entries == nil {
		entries = []repository.HistoryEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"records":   entries,
		"page":      f.Page,
		"page_size": f.PageSize,
	})
}

// publishActivity emits a loan event to the activity queue.  Delivery is
// best effort: the loan already committed, so a broker outage must not
// fail the request.
func (h *LoanHandler) publishActivity(rec model.BorrowRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ev := queue.LoanEvent{
			RecordID:   rec.ID,
			UserID:     rec.UserID,
			BookID:     rec.BookID,
			Action:     rec.Action,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		}
		if u, err := h.Users.GetByID(ctx, rec.UserID); err == nil {
			ev.UserEmail = u.Email
		}
		if b, err := h.Books.GetByID(ctx, rec.BookID); err == nil {
			ev.BookTitle = b.Title
		}
		_ = service.PublishLoanActivity(ctx, ev)
	}()
}
