package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/library-inventory/internal/model"
)

// ErrBookNotFound is returned when a book id does not resolve to a row.
var ErrBookNotFound = errors.New("book not found")

// BookRepo provides CRUD operations for books and their category
// assignments.  The available-copy counter lives on the books row and
// is only ever mutated through the guarded Tx helpers below so that
// concurrent borrows cannot drive it negative.
type BookRepo struct {
	db *sql.DB
}

// NewBookRepo returns a new BookRepo bound to the given database.
func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning several repositories.
func (r *BookRepo) DB() *sql.DB { return r.db }

const bookColumns = "id, title, description, author, count, created_at, updated_at"

// Create inserts a new book and populates the generated ID on the
// provided record.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO books (title, description, author, count, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		b.Title, b.Description, b.Author, b.Count, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// GetByID fetches a single book.  It returns ErrBookNotFound when the
// id does not exist.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	var b model.Book
	err := r.db.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.Title, &b.Description, &b.Author, &b.Count, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, ErrBookNotFound
	}
	return b, err
}

// MaxPageSize bounds every list query.  A single request never returns
// more rows than this, regardless of what the client asks for.
const MaxPageSize = 100

// List returns one page of the catalogue ordered by id.  Page numbers
// start at 1; pageSize is clamped into [1, MaxPageSize].
func (r *BookRepo) List(ctx context.Context, page, pageSize int) ([]model.Book, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books ORDER BY id LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

// ListByIDs returns the books whose ids appear in the given set.  An
// empty input yields an empty slice without touching the database.
func (r *BookRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Book, error) {
	if len(ids) == 0 {
		return []model.Book{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id IN ("+strings.Join(placeholders, ",")+") ORDER BY id",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

// Update rewrites the mutable columns of a book.  It returns
// ErrBookNotFound when the id does not exist.
func (r *BookRepo) Update(ctx context.Context, b *model.Book) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE books SET title=?, description=?, author=?, count=?, updated_at=? WHERE id=?",
		b.Title, b.Description, b.Author, b.Count, time.Now().UTC(), b.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// Delete removes a book.  The book_categories rows cascade away with
// it.  A book with borrow records or ratings is protected by foreign
// keys and reported as ErrConflict so history stays intact.  Returns
// ErrBookNotFound when the id does not exist.
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "1451") || strings.Contains(strings.ToUpper(msg), "FOREIGN KEY") {
			return ErrConflict
		}
		return err
	}
	return mustAffect(res)
}

// DecrementAvailableTx atomically takes one copy off the shelf.  The
// count guard in the WHERE clause is what makes concurrent borrows of
// the last copy safe: only one of them can match the row.  It returns
// false when the book had no available copies (or does not exist;
// callers distinguish the two with a follow-up read).
func (r *BookRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE books SET count = count - 1, updated_at=? WHERE id=? AND count > 0",
		time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// IncrementAvailableTx puts one copy back on the shelf.  It returns
// ErrBookNotFound when the id does not exist.
func (r *BookRepo) IncrementAvailableTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE books SET count = count + 1, updated_at=? WHERE id=?",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// AvailableCountTx reads the counter inside the transaction.  Used to
// tell "book missing" apart from "no copies left" after a failed
// decrement.
func (r *BookRepo) AvailableCountTx(ctx context.Context, tx *sql.Tx, id uint64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, "SELECT count FROM books WHERE id=? LIMIT 1", id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBookNotFound
	}
	return count, err
}

// ReplaceCategories rewrites the category set of a book.  The previous
// assignments are dropped and the provided ids inserted in a single
// statement.
func (r *BookRepo) ReplaceCategories(ctx context.Context, bookID uint64, categoryIDs []uint64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM book_categories WHERE book_id=?", bookID); err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	query := "INSERT INTO book_categories (book_id, category_id) VALUES "
	args := make([]interface{}, 0, len(categoryIDs)*2)
	for i, cid := range categoryIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookID, cid)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// CategoriesByBook returns the categories attached to one book.
func (r *BookRepo) CategoriesByBook(ctx context.Context, bookID uint64) ([]model.Category, error) {
	const q = `SELECT c.id, c.title, c.description, c.created_at, c.updated_at
	           FROM book_categories bc
	           JOIN categories c ON c.id = bc.category_id
	           WHERE bc.book_id = ?
	           ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func scanBooks(rows *sql.Rows) ([]model.Book, error) {
	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.Author, &b.Count, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}
