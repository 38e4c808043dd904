package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/catalog/internal/hash"
	"github.com/openshelf/catalog/internal/logging"
	"github.com/openshelf/catalog/internal/models"
	"github.com/openshelf/catalog/internal/tokenstore"
	"github.com/openshelf/catalog/internal/userdir"
)

// ErrAuthenticationFailed covers unknown username, wrong password and
// inactive account alike, so a caller can never tell which one it hit.
var ErrAuthenticationFailed = errors.New("invalid username or password")

// ErrInvalidToken covers not-found and expired tokens for both token kinds,
// and revocation of a token that no longer exists.
var ErrInvalidToken = errors.New("invalid token")

type Principal struct {
	UserID uint
	Scope  string
}

type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	UserID           uint
	Scope            string
}

type Service struct {
	Store             *tokenstore.Store
	Directory         *userdir.Directory
	IssueRefreshToken bool
}

// Authenticate resolves the account and verifies the password. Every failure
// path returns the same ErrAuthenticationFailed: which check failed must not
// leak to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	account, err := s.Directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userdir.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		l.Error("authenticate_error", "op", "find_account", "error", err)
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !account.Active {
		return nil, ErrAuthenticationFailed
	}

	if !hash.CheckPassword(account.PasswordHash, password) {
		return nil, ErrAuthenticationFailed
	}

	return &Principal{UserID: account.ID, Scope: account.Scope}, nil
}

// IssueTokenPair mints the access token first, then the refresh token. A
// refresh-insert failure leaves the already stored access token in place;
// the caller gets the error and the access token stays usable.
func (s *Service) IssueTokenPair(ctx context.Context, principal *Principal, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue")

	accessValue, err := hash.GenerateToken()
	if err != nil {
		l.Error("issue_error", "op", "generate_access_token", "error", err)
		return nil, fmt.Errorf("issue token pair: %w", err)
	}
	accessExp := time.Now().Add(accessTTL)

	access := models.AccessToken{
		Token:     accessValue,
		UserID:    principal.UserID,
		Scope:     principal.Scope,
		ExpiresAt: accessExp,
	}
	if err := s.Store.InsertAccessToken(ctx, &access); err != nil {
		l.Error("issue_error", "op", "insert_access_token", "error", err)
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	pair := &TokenPair{
		AccessToken:     accessValue,
		AccessExpiresAt: accessExp,
		UserID:          principal.UserID,
		Scope:           principal.Scope,
	}

	if !s.IssueRefreshToken {
		return pair, nil
	}

	refreshValue, err := hash.GenerateToken()
	if err != nil {
		l.Error("issue_error", "op", "generate_refresh_token", "error", err)
		return nil, fmt.Errorf("issue token pair: %w", err)
	}
	refreshExp := time.Now().Add(refreshTTL)

	refresh := models.RefreshToken{
		Token:       refreshValue,
		AccessToken: accessValue,
		UserID:      principal.UserID,
		ExpiresAt:   refreshExp,
	}
	if err := s.Store.InsertRefreshToken(ctx, &refresh); err != nil {
		l.Error("issue_error", "op", "insert_refresh_token", "error", err)
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	pair.RefreshToken = refreshValue
	pair.RefreshExpiresAt = refreshExp
	return pair, nil
}

// ValidateAccessToken looks the token up and enforces expiry strictly: a row
// whose expiry equals the current instant is already expired.
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (*models.AccessToken, error) {
	l := logging.FromContext(ctx).With("svc", "auth.validate_access")

	row, err := s.Store.FindAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		l.Error("validate_error", "op", "find_access_token", "error", err)
		return nil, fmt.Errorf("validate access token: %w", err)
	}

	if !time.Now().Before(row.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	return row, nil
}

// ValidateRefreshToken checks the refresh token on its own expiry only; it
// never looks at whether the parent access token still exists.
func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	l := logging.FromContext(ctx).With("svc", "auth.validate_refresh")

	row, err := s.Store.FindRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		l.Error("validate_error", "op", "find_refresh_token", "error", err)
		return nil, fmt.Errorf("validate refresh token: %w", err)
	}

	if !time.Now().Before(row.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	return row, nil
}

// RevokeAccessToken deletes the access token and then cascades to every
// refresh token that references it. Revoking a token that does not exist is a
// client error, not a silent success. The cascade count is not checked: zero
// dependent refresh tokens is normal. When two revocations race, the delete
// count decides which one wins.
func (s *Service) RevokeAccessToken(ctx context.Context, token string) error {
	l := logging.FromContext(ctx).With("svc", "auth.revoke")

	count, err := s.Store.RevokeAccessToken(ctx, token)
	if err != nil {
		l.Error("revoke_error", "op", "revoke_access_token", "error", err)
		return fmt.Errorf("revoke access token: %w", err)
	}
	if count == 0 {
		return ErrInvalidToken
	}

	if _, err := s.Store.RevokeRefreshTokensByAccessToken(ctx, token); err != nil {
		l.Error("revoke_error", "op", "revoke_refresh_tokens", "error", err)
		return fmt.Errorf("revoke access token: %w", err)
	}

	return nil
}
