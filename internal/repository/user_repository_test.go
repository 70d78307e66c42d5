package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/testutil"
	"github.com/iliyamo/library-inventory/internal/utils"
)

func TestUserCreateAndFetch(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Alice", "Alice@Example.com", "hunter22", model.RoleMember, bcrypt.MinCost)
	require.NoError(t, err)
	require.NotZero(t, id)

	// Email is normalized on write and on read.
	u, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, model.RoleMember, u.Role)
	assert.True(t, u.IsActive)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "hunter22"))
	assert.False(t, utils.VerifyPassword(u.PasswordHash, "wrong"))
}

func TestUserDuplicateEmail(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "Alice", "alice@example.com", "pw", model.RoleMember, bcrypt.MinCost)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "Impostor", "alice@example.com", "pw2", model.RoleMember, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserSetActive(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Bob", "bob@example.com", "pw", model.RoleMember, bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, repo.SetActive(ctx, id, false))
	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	// Setting the same state again is not an error.
	require.NoError(t, repo.SetActive(ctx, id, false))

	require.NoError(t, repo.SetActive(ctx, id, true))
	u, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	assert.ErrorIs(t, repo.SetActive(ctx, 9999, false), ErrUserNotFound)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := NewUserRepo(db)
	tokens := NewTokenRepo(db)
	ctx := context.Background()

	uid, err := users.Create(ctx, "Carol", "carol@example.com", "pw", model.RoleMember, bcrypt.MinCost)
	require.NoError(t, err)

	exp := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, tokens.StoreRefresh(ctx, uid, "hash-1", exp))

	got, err := tokens.ValidateRefresh(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	_, err = tokens.ValidateRefresh(ctx, "no-such-hash")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, tokens.RevokeByHash(ctx, "hash-1"))
	_, err = tokens.ValidateRefresh(ctx, "hash-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Expired tokens fail validation even when present and unrevoked.
	require.NoError(t, tokens.StoreRefresh(ctx, uid, "hash-2", time.Now().UTC().Add(-time.Minute)))
	_, err = tokens.ValidateRefresh(ctx, "hash-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// RevokeAllForUser kills every live session.
	require.NoError(t, tokens.StoreRefresh(ctx, uid, "hash-3", exp))
	require.NoError(t, tokens.StoreRefresh(ctx, uid, "hash-4", exp))
	require.NoError(t, tokens.RevokeAllForUser(ctx, uid))
	_, err = tokens.ValidateRefresh(ctx, "hash-3")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = tokens.ValidateRefresh(ctx, "hash-4")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
