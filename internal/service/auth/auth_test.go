package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/hash"
	"github.com/openshelf/catalog/internal/models"
	"github.com/openshelf/catalog/internal/tokenstore"
	"github.com/openshelf/catalog/internal/userdir"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Account{}, &models.AccessToken{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	db := initTestDB(t)
	return &Service{
		Store:             tokenstore.New(db),
		Directory:         userdir.New(db),
		IssueRefreshToken: true,
	}, db
}

func createAccount(t *testing.T, db *gorm.DB, username, password, scope string, active bool) *models.Account {
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	account := models.Account{
		Username:     username,
		PasswordHash: pwHash,
		Active:       active,
		Scope:        scope,
	}
	require.NoError(t, db.Create(&account).Error)
	return &account
}

func TestAuthenticate(t *testing.T) {
	svc, db := newService(t)
	account := createAccount(t, db, "reader", "correct horse", "regular", true)

	principal, err := svc.Authenticate(context.Background(), "reader", "correct horse")
	require.NoError(t, err)
	require.Equal(t, account.ID, principal.UserID)
	require.Equal(t, "regular", principal.Scope)
}

// Unknown username, wrong password and inactive account must be completely
// indistinguishable to the caller.
func TestAuthenticateFailureOpacity(t *testing.T) {
	svc, db := newService(t)
	createAccount(t, db, "reader", "correct horse", "regular", true)
	createAccount(t, db, "ghost", "correct horse", "regular", false)

	_, errWrongPassword := svc.Authenticate(context.Background(), "reader", "wrong")
	_, errUnknownUser := svc.Authenticate(context.Background(), "nobody", "correct horse")
	_, errInactive := svc.Authenticate(context.Background(), "ghost", "correct horse")

	require.ErrorIs(t, errWrongPassword, ErrAuthenticationFailed)
	require.ErrorIs(t, errUnknownUser, ErrAuthenticationFailed)
	require.ErrorIs(t, errInactive, ErrAuthenticationFailed)

	require.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
	require.Equal(t, errUnknownUser.Error(), errInactive.Error())
}

func TestIssueAndValidateRoundtrip(t *testing.T) {
	svc, db := newService(t)
	account := createAccount(t, db, "reader", "pw", "regular admin", true)

	principal := &Principal{UserID: account.ID, Scope: account.Scope}
	pair, err := svc.IssueTokenPair(context.Background(), principal, time.Hour, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := svc.ValidateAccessToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, access.UserID)
	require.Equal(t, "regular admin", access.Scope)

	refresh, err := svc.ValidateRefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, refresh.UserID)
	require.Equal(t, pair.AccessToken, refresh.AccessToken)
}

func TestIssueWithoutRefreshToken(t *testing.T) {
	svc, db := newService(t)
	svc.IssueRefreshToken = false
	account := createAccount(t, db, "reader", "pw", "regular", true)

	pair, err := svc.IssueTokenPair(context.Background(), &Principal{UserID: account.ID, Scope: account.Scope}, time.Hour, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.Empty(t, pair.RefreshToken)

	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestValidateNeverIssuedToken(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ValidateAccessToken(context.Background(), "was-never-issued")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(context.Background(), "was-never-issued")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// Expiry is strict: a token whose expiry is not after the current instant is
// rejected.
func TestExpiryBoundary(t *testing.T) {
	svc, db := newService(t)

	expired := models.AccessToken{
		Token:     "boundary-token",
		UserID:    1,
		Scope:     "regular",
		ExpiresAt: time.Now(),
	}
	require.NoError(t, db.Create(&expired).Error)

	_, err := svc.ValidateAccessToken(context.Background(), "boundary-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	live := models.AccessToken{
		Token:     "live-token",
		UserID:    1,
		Scope:     "regular",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&live).Error)

	row, err := svc.ValidateAccessToken(context.Background(), "live-token")
	require.NoError(t, err)
	require.Equal(t, uint(1), row.UserID)
}

func TestAccessTokenExpiresAfterLifetime(t *testing.T) {
	svc, db := newService(t)
	account := createAccount(t, db, "reader", "pw", "regular", true)

	pair, err := svc.IssueTokenPair(context.Background(), &Principal{UserID: account.ID, Scope: account.Scope}, time.Second, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)

	time.Sleep(2 * time.Second)

	_, err = svc.ValidateAccessToken(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeCascades(t *testing.T) {
	svc, db := newService(t)
	account := createAccount(t, db, "reader", "pw", "regular", true)

	pair, err := svc.IssueTokenPair(context.Background(), &Principal{UserID: account.ID, Scope: account.Scope}, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAccessToken(context.Background(), pair.AccessToken))

	_, err = svc.ValidateAccessToken(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	err = svc.RevokeAccessToken(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeUnknownToken(t *testing.T) {
	svc, _ := newService(t)

	err := svc.RevokeAccessToken(context.Background(), "was-never-issued")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// A refresh token is validated on its own expiry only; it does not need a
// live parent access token.
func TestRefreshTokenSurvivesMissingParentRow(t *testing.T) {
	svc, db := newService(t)

	refresh := models.RefreshToken{
		Token:       "orphan-refresh",
		AccessToken: "parent-gone",
		UserID:      1,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&refresh).Error)

	row, err := svc.ValidateRefreshToken(context.Background(), "orphan-refresh")
	require.NoError(t, err)
	require.Equal(t, "parent-gone", row.AccessToken)
}

func TestConcurrentRevoke(t *testing.T) {
	svc, db := newService(t)
	account := createAccount(t, db, "reader", "pw", "regular", true)

	pair, err := svc.IssueTokenPair(context.Background(), &Principal{UserID: account.ID, Scope: account.Scope}, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.RevokeAccessToken(context.Background(), pair.AccessToken)
		}(i)
	}
	wg.Wait()

	var successes, invalid int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidToken):
			invalid++
		default:
			t.Fatalf("unexpected revoke error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, invalid)

	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&count).Error)
	require.Zero(t, count)
}
