package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/testutil"
)

func TestBookCRUD(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBookRepo(db)
	ctx := context.Background()

	b := model.Book{Title: "Clean Architecture", Author: "Robert Martin", Count: 2}
	require.NoError(t, repo.Create(ctx, &b))
	require.NotZero(t, b.ID)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean Architecture", got.Title)
	assert.Equal(t, 2, got.Count)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrBookNotFound)

	b.Title = "Clean Architecture (2nd printing)"
	b.Count = 5
	require.NoError(t, repo.Update(ctx, &b))
	got, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean Architecture (2nd printing)", got.Title)
	assert.Equal(t, 5, got.Count)

	missing := model.Book{ID: 9999, Title: "Ghost"}
	assert.ErrorIs(t, repo.Update(ctx, &missing), ErrBookNotFound)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrBookNotFound)
}

func TestBookListPagination(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBookRepo(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		b := model.Book{Title: "Volume", Count: 1}
		require.NoError(t, repo.Create(ctx, &b))
	}

	page1, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page3, err := repo.List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	ids := []uint64{page1[0].ID, page3[0].ID}
	subset, err := repo.ListByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, subset, 2)

	empty, err := repo.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBookListPageSizeClamped(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBookRepo(db)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		b := model.Book{Title: "Volume", Count: 1}
		require.NoError(t, repo.Create(ctx, &b))
	}

	// A nonsense page size falls back to the default instead of an
	// unbounded (or invalid) LIMIT.
	books, err := repo.List(ctx, 1, -1)
	require.NoError(t, err)
	assert.Len(t, books, 20)

	// An oversized page size is capped; the whole table never comes
	// back in one request.
	books, err = repo.List(ctx, 1, 1000000)
	require.NoError(t, err)
	assert.Len(t, books, MaxPageSize)

	books, err = repo.List(ctx, 2, 1000000)
	require.NoError(t, err)
	assert.Len(t, books, 20)
}

func TestBookCategoryAssignments(t *testing.T) {
	db := testutil.OpenTestDB(t)
	books := NewBookRepo(db)
	cats := NewCategoryRepo(db)
	ctx := context.Background()

	b := model.Book{Title: "Sorted Tales", Count: 1}
	require.NoError(t, books.Create(ctx, &b))

	fiction := model.Category{Title: "Fiction"}
	classics := model.Category{Title: "Classics"}
	require.NoError(t, cats.Create(ctx, &fiction))
	require.NoError(t, cats.Create(ctx, &classics))

	ok, err := cats.ExistAll(ctx, []uint64{fiction.ID, classics.ID})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = cats.ExistAll(ctx, []uint64{fiction.ID, 9999})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, books.ReplaceCategories(ctx, b.ID, []uint64{fiction.ID, classics.ID}))
	assigned, err := books.CategoriesByBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)

	require.NoError(t, books.ReplaceCategories(ctx, b.ID, []uint64{classics.ID}))
	assigned, err = books.CategoriesByBook(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Classics", assigned[0].Title)

	require.NoError(t, books.ReplaceCategories(ctx, b.ID, nil))
	assigned, err = books.CategoriesByBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, assigned)
}

func TestBookDeleteWithHistoryConflicts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	books := NewBookRepo(db)
	users := NewUserRepo(db)
	records := NewBorrowRecordRepo(db)
	ctx := context.Background()

	uid, err := users.Create(ctx, "Dana", "dana@example.com", "pw", model.RoleMember, bcrypt.MinCost)
	require.NoError(t, err)
	b := model.Book{Title: "Archived Title", Count: 1}
	require.NoError(t, books.Create(ctx, &b))

	tx, err := db.Begin()
	require.NoError(t, err)
	rec := model.BorrowRecord{UserID: uid, BookID: b.ID, BorrowedAt: time.Now().UTC(), Action: model.ActionBorrow}
	require.NoError(t, records.InsertTx(ctx, tx, &rec))
	require.NoError(t, tx.Commit())

	assert.ErrorIs(t, books.Delete(ctx, b.ID), ErrConflict)
}

func TestGuardedCounterUpdates(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBookRepo(db)
	ctx := context.Background()

	b := model.Book{Title: "Counted", Count: 1}
	require.NoError(t, repo.Create(ctx, &b))

	tx, err := db.Begin()
	require.NoError(t, err)
	ok, err := repo.DecrementAvailableTx(ctx, tx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	// Second decrement in the same tx sees count 0 and must refuse.
	ok, err = repo.DecrementAvailableTx(ctx, tx, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := repo.AvailableCountTx(ctx, tx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, err = repo.AvailableCountTx(ctx, tx, 9999)
	assert.ErrorIs(t, err, ErrBookNotFound)
	require.NoError(t, repo.IncrementAvailableTx(ctx, tx, b.ID))
	assert.ErrorIs(t, repo.IncrementAvailableTx(ctx, tx, 9999), ErrBookNotFound)
	require.NoError(t, tx.Commit())

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
}
