package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/testutil"
)

func TestCategoryCRUD(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewCategoryRepo(db)
	ctx := context.Background()

	c := model.Category{Title: "Science", Description: "Non-fiction science titles"}
	require.NoError(t, repo.Create(ctx, &c))
	require.NotZero(t, c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Science", got.Title)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	c.Title = "Popular Science"
	require.NoError(t, repo.Update(ctx, &c))
	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Popular Science", got.Title)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrCategoryNotFound)
}
