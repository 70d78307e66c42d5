// Package service holds the inventory ledger, the one component of the
// system with real state-transition semantics.  The ledger owns the
// borrow/return lifecycle and the per-book availability counter; every
// transition mutates both atomically inside a single transaction.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/repository"
)

var (
	// ErrBookUnavailable is returned when a borrow finds no copies on
	// the shelf.
	ErrBookUnavailable = errors.New("book is not available for borrowing")

	// ErrAlreadyBorrowed is returned when the caller already holds an
	// open borrow record for the book.  At most one open record per
	// (user, book) pair may exist.
	ErrAlreadyBorrowed = errors.New("book is already borrowed by the user")

	// ErrNotBorrowed is returned when a return or rating finds no open
	// borrow record for the (user, book) pair.
	ErrNotBorrowed = errors.New("book is not borrowed by the user")

	// ErrInvalidRating is returned when a rating value falls outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Ledger coordinates the book counter and the borrow history.  All
// borrow/return work runs in an explicit transaction on the shared
// database handle; the guarded counter update inside that transaction
// serializes concurrent borrows of the same book, so the counter can
// never go negative and the last copy is handed out exactly once.
type Ledger struct {
	db      *sql.DB
	books   *repository.BookRepo
	records *repository.BorrowRecordRepo
	ratings *repository.RatingRepo
}

// NewLedger constructs a Ledger.  All dependencies must be non-nil.
func NewLedger(db *sql.DB, books *repository.BookRepo, records *repository.BorrowRecordRepo, ratings *repository.RatingRepo) *Ledger {
	if db == nil || books == nil || records == nil || ratings == nil {
		panic("nil dependency passed to NewLedger")
	}
	return &Ledger{db: db, books: books, records: records, ratings: ratings}
}

// Borrow checks one copy of the book out to the user.  It fails with
// repository.ErrBookNotFound when the book does not exist,
// ErrBookUnavailable when no copies are left and ErrAlreadyBorrowed
// when the user already has the title out.  On success the counter is
// one lower and exactly one new open record exists for the pair.
func (l *Ledger) Borrow(ctx context.Context, bookID, userID uint64) (model.BorrowRecord, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// The guarded decrement comes first: it both reserves the copy and
	// takes the row lock that serializes everything below per book.
	ok, err := l.books.DecrementAvailableTx(ctx, tx, bookID)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if !ok {
		// Nothing was reserved; find out why.
		if _, err := l.books.AvailableCountTx(ctx, tx, bookID); err != nil {
			return model.BorrowRecord{}, err // ErrBookNotFound or driver error
		}
		return model.BorrowRecord{}, ErrBookUnavailable
	}

	open, err := l.records.HasOpenTx(ctx, tx, userID, bookID)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if open {
		// Rollback puts the reserved copy back.
		return model.BorrowRecord{}, ErrAlreadyBorrowed
	}

	rec := model.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: time.Now().UTC(),
		Action:     model.ActionBorrow,
	}
	if err := l.records.InsertTx(ctx, tx, &rec); err != nil {
		return model.BorrowRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.BorrowRecord{}, err
	}
	committed = true
	return rec, nil
}

// Return closes the user's oldest open record for the book and puts
// the copy back on the shelf.  It fails with repository.ErrBookNotFound
// when the book does not exist and ErrNotBorrowed when the user has no
// open record for it.
func (l *Ledger) Return(ctx context.Context, bookID, userID uint64) (model.BorrowRecord, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Increment first for the same reason Borrow decrements first: the
	// update locks the book row.  Rollback undoes it when no open
	// record turns up.
	if err := l.books.IncrementAvailableTx(ctx, tx, bookID); err != nil {
		return model.BorrowRecord{}, err
	}

	rec, err := l.records.FindOpenTx(ctx, tx, userID, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, ErrNotBorrowed
		}
		return model.BorrowRecord{}, err
	}

	now := time.Now().UTC()
	if err := l.records.CloseTx(ctx, tx, rec.ID, now); err != nil {
		return model.BorrowRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.BorrowRecord{}, err
	}
	committed = true
	rec.ReturnedAt = &now
	rec.Action = model.ActionReturn
	return rec, nil
}

// BorrowedBooks returns the books the user currently has out.
func (l *Ledger) BorrowedBooks(ctx context.Context, userID uint64) ([]model.Book, error) {
	ids, err := l.records.OpenBookIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.books.ListByIDs(ctx, ids)
}

// History returns one page of borrow history matching the filter.
// The admin gate lives in the handler; the ledger trusts its caller.
func (l *Ledger) History(ctx context.Context, f repository.HistoryFilter) ([]repository.HistoryEntry, error) {
	return l.records.QueryHistory(ctx, f)
}

// Rate records a 1-5 score for a book the user currently has out.
// The eligibility check is deliberately "holds an open record right
// now": once the book is returned the chance to rate it is gone.
func (l *Ledger) Rate(ctx context.Context, bookID, userID uint64, value int) (model.Rating, error) {
	if value < 1 || value > 5 {
		return model.Rating{}, ErrInvalidRating
	}
	if _, err := l.books.GetByID(ctx, bookID); err != nil {
		return model.Rating{}, err
	}
	open, err := l.records.HasOpen(ctx, userID, bookID)
	if err != nil {
		return model.Rating{}, err
	}
	if !open {
		return model.Rating{}, ErrNotBorrowed
	}
	rating := model.Rating{UserID: userID, BookID: bookID, Value: value}
	if err := l.ratings.Insert(ctx, &rating); err != nil {
		return model.Rating{}, err
	}
	return rating, nil
}
