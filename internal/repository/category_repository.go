package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/library-inventory/internal/model"
)

// ErrCategoryNotFound is returned when a category id does not resolve
// to a row.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepo provides CRUD operations for categories.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo returns a new CategoryRepo bound to the given database.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category and populates the generated ID.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (title, description, created_at, updated_at) VALUES (?,?,?,?)",
		c.Title, c.Description, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetByID fetches a single category.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, description, created_at, updated_at FROM categories WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrCategoryNotFound
	}
	return c, err
}

// List returns all categories ordered by id.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, description, created_at, updated_at FROM categories ORDER BY id")
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

// Update rewrites title and description.  Returns ErrCategoryNotFound
// when the id does not exist.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET title=?, description=?, updated_at=? WHERE id=?",
		c.Title, c.Description, time.Now().UTC(), c.ID)
	if err != nil {
		return err
	}
	return categoryAffect(res)
}

// Delete removes a category; its book assignments cascade away.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return err
	}
	return categoryAffect(res)
}

// ExistAll reports whether every id in the set resolves to a category.
// Used to validate category assignments before writing them.
func (r *CategoryRepo) ExistAll(ctx context.Context, ids []uint64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	query := "SELECT COUNT(*) FROM categories WHERE id IN ("
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n == len(ids), nil
}

func categoryAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
