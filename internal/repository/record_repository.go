package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/library-inventory/internal/model"
)

// BorrowRecordRepo provides data access to the borrow_records table.
// The Tx variants participate in the ledger's borrow/return critical
// section; the caller owns the transaction and must commit or roll
// back.  All timestamps are handled in UTC.
type BorrowRecordRepo struct {
	db *sql.DB
}

// NewBorrowRecordRepo returns a new BorrowRecordRepo bound to the
// provided database.
func NewBorrowRecordRepo(db *sql.DB) *BorrowRecordRepo { return &BorrowRecordRepo{db: db} }

// InsertTx appends a new open record within the provided transaction
// and populates its generated ID.
func (r *BorrowRecordRepo) InsertTx(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO borrow_records (user_id, book_id, borrowed_at, returned_at, action) VALUES (?,?,?,NULL,?)",
		rec.UserID, rec.BookID, rec.BorrowedAt, rec.Action)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// HasOpenTx reports whether the user currently holds an open record
// for the book.
func (r *BorrowRecordRepo) HasOpenTx(ctx context.Context, tx *sql.Tx, userID, bookID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM borrow_records WHERE user_id=? AND book_id=? AND returned_at IS NULL LIMIT 1",
		userID, bookID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasOpen is the non-transactional form of HasOpenTx, used by the
// rating eligibility check.
func (r *BorrowRecordRepo) HasOpen(ctx context.Context, userID, bookID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM borrow_records WHERE user_id=? AND book_id=? AND returned_at IS NULL LIMIT 1",
		userID, bookID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindOpenTx returns the OLDEST open record for the (user, book) pair.
// Ordering by borrowed_at makes the choice deterministic when several
// open records exist for historical reasons.  sql.ErrNoRows is
// returned when the user has nothing out for this book.
func (r *BorrowRecordRepo) FindOpenTx(ctx context.Context, tx *sql.Tx, userID, bookID uint64) (model.BorrowRecord, error) {
	var (
		rec      model.BorrowRecord
		returned sql.NullTime
	)
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, borrowed_at, returned_at, action
		 FROM borrow_records
		 WHERE user_id=? AND book_id=? AND returned_at IS NULL
		 ORDER BY borrowed_at ASC, id ASC
		 LIMIT 1`,
		userID, bookID).Scan(&rec.ID, &rec.UserID, &rec.BookID, &rec.BorrowedAt, &returned, &rec.Action)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if returned.Valid {
		t := returned.Time
		rec.ReturnedAt = &t
	}
	return rec, nil
}

// CloseTx stamps a record as returned within the provided transaction.
func (r *BorrowRecordRepo) CloseTx(ctx context.Context, tx *sql.Tx, id uint64, returnedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE borrow_records SET returned_at=?, action=? WHERE id=?",
		returnedAt, model.ActionReturn, id)
	return err
}

// OpenBookIDs returns the ids of all books the user currently has out.
func (r *BorrowRecordRepo) OpenBookIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT book_id FROM borrow_records WHERE user_id=? AND returned_at IS NULL",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HistoryFilter narrows an admin history query.  Zero values impose no
// constraint; the supplied filters combine with AND.  The date filters
// match the calendar day of the timestamp.
type HistoryFilter struct {
	Email        string
	BookTitle    string
	Action       string // BORROW | RETURN
	BorrowedDate time.Time
	ReturnedDate time.Time
	Page         int
	PageSize     int
}

// HistoryEntry is a borrow record joined with the user's email and the
// book's title for display in the admin history view.
type HistoryEntry struct {
	ID         uint64     `json:"id"`
	UserID     uint64     `json:"user_id"`
	UserEmail  string     `json:"user_email"`
	BookID     uint64     `json:"book_id"`
	BookTitle  string     `json:"book_title"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Action     string     `json:"action"`
}

// QueryHistory returns one page of borrow history matching the filter,
// newest first.  Day filters are expressed as [day, day+1) ranges so
// the same SQL runs on MySQL and SQLite.
func (r *BorrowRecordRepo) QueryHistory(ctx context.Context, f HistoryFilter) ([]HistoryEntry, error) {
	query := `SELECT br.id, br.user_id, u.email, br.book_id, b.title, br.borrowed_at, br.returned_at, br.action
	          FROM borrow_records br
	          JOIN users u ON u.id = br.user_id
	          JOIN books b ON b.id = br.book_id
	          WHERE 1=1`
	args := make([]interface{}, 0, 8)
	if f.Email != "" {
		query += " AND u.email = ?"
		args = append(args, f.Email)
	}
	if f.BookTitle != "" {
		query += " AND b.title = ?"
		args = append(args, f.BookTitle)
	}
	if f.Action != "" {
		query += " AND br.action = ?"
		args = append(args, f.Action)
	}
	if !f.BorrowedDate.IsZero() {
		day := f.BorrowedDate.UTC().Truncate(24 * time.Hour)
		query += " AND br.borrowed_at >= ? AND br.borrowed_at < ?"
		args = append(args, day, day.Add(24*time.Hour))
	}
	if !f.ReturnedDate.IsZero() {
		day := f.ReturnedDate.UTC().Truncate(24 * time.Hour)
		query += " AND br.returned_at >= ? AND br.returned_at < ?"
		args = append(args, day, day.Add(24*time.Hour))
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	query += " ORDER BY br.borrowed_at DESC, br.id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			e        HistoryEntry
			returned sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.BookID, &e.BookTitle, &e.BorrowedAt, &returned, &e.Action); err != nil {
			return nil, err
		}
		if returned.Valid {
			t := returned.Time
			e.ReturnedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
