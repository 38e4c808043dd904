package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.AccessToken{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func TestFindAccessToken(t *testing.T) {
	store := New(initTestDB(t))
	ctx := context.Background()

	_, err := store.FindAccessToken(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	row := models.AccessToken{
		Token:     "tok-1",
		UserID:    7,
		Scope:     "regular",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.InsertAccessToken(ctx, &row))

	found, err := store.FindAccessToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, uint(7), found.UserID)
	require.Equal(t, "regular", found.Scope)
}

func TestInsertDuplicateAccessToken(t *testing.T) {
	store := New(initTestDB(t))
	ctx := context.Background()

	first := models.AccessToken{Token: "dup", UserID: 1, Scope: "regular", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.InsertAccessToken(ctx, &first))

	second := models.AccessToken{Token: "dup", UserID: 2, Scope: "regular", ExpiresAt: time.Now().Add(time.Hour)}
	err := store.InsertAccessToken(ctx, &second)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestRevokeAccessTokenCount(t *testing.T) {
	store := New(initTestDB(t))
	ctx := context.Background()

	row := models.AccessToken{Token: "tok-1", UserID: 1, Scope: "regular", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.InsertAccessToken(ctx, &row))

	count, err := store.RevokeAccessToken(ctx, "tok-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	count, err = store.RevokeAccessToken(ctx, "tok-1")
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestRevokeRefreshTokensByAccessToken(t *testing.T) {
	store := New(initTestDB(t))
	ctx := context.Background()

	for _, token := range []string{"r-1", "r-2"} {
		row := models.RefreshToken{
			Token:       token,
			AccessToken: "parent",
			UserID:      1,
			ExpiresAt:   time.Now().Add(time.Hour),
		}
		require.NoError(t, store.InsertRefreshToken(ctx, &row))
	}
	other := models.RefreshToken{
		Token:       "r-other",
		AccessToken: "unrelated",
		UserID:      1,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, store.InsertRefreshToken(ctx, &other))

	count, err := store.RevokeRefreshTokensByAccessToken(ctx, "parent")
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// zero matches is not an error
	count, err = store.RevokeRefreshTokensByAccessToken(ctx, "parent")
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	_, err = store.FindRefreshToken(ctx, "r-other")
	require.NoError(t, err)
}
