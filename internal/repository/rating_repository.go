package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/library-inventory/internal/model"
)

// RatingRepo provides data access to the ratings table.  Ratings are
// append-only; there is deliberately no uniqueness constraint on
// (user, book), so a user may rate the same title again and readers
// aggregate.
type RatingRepo struct {
	db *sql.DB
}

// NewRatingRepo returns a new RatingRepo bound to the given database.
func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Insert appends a rating and populates its generated ID.
func (r *RatingRepo) Insert(ctx context.Context, rec *model.Rating) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ratings (user_id, book_id, value, created_at) VALUES (?,?,?,?)",
		rec.UserID, rec.BookID, rec.Value, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	rec.CreatedAt = now
	return nil
}

// ListByBook returns all ratings for a book, newest first.
func (r *RatingRepo) ListByBook(ctx context.Context, bookID uint64) ([]model.Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, book_id, value, created_at FROM ratings WHERE book_id=? ORDER BY created_at DESC, id DESC",
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := make([]model.Rating, 0)
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.BookID, &rt.Value, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// AverageByBook returns the mean rating and the number of ratings for
// a book.  A book with no ratings yields (0, 0, nil).
func (r *RatingRepo) AverageByBook(ctx context.Context, bookID uint64) (float64, int, error) {
	var (
		avg sql.NullFloat64
		n   int
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT AVG(value), COUNT(*) FROM ratings WHERE book_id=?",
		bookID).Scan(&avg, &n)
	if err != nil {
		return 0, 0, err
	}
	if !avg.Valid {
		return 0, 0, nil
	}
	return avg.Float64, n, nil
}
