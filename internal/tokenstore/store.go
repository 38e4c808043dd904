package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/models"
)

// ErrNotFound distinguishes a missing row from a failing database; callers
// decide whether a miss is an error.
var ErrNotFound = errors.New("token not found")

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) FindAccessToken(ctx context.Context, token string) (*models.AccessToken, error) {
	var row models.AccessToken
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find access token: %w", err)
	}
	return &row, nil
}

func (s *Store) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &row, nil
}

// InsertAccessToken reports duplicate-token violations as plain errors: with
// 256 bits of token entropy a duplicate means something is wrong, and retry
// policy belongs to the caller.
func (s *Store) InsertAccessToken(ctx context.Context, row *models.AccessToken) error {
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert access token: %w", err)
	}
	return nil
}

func (s *Store) InsertRefreshToken(ctx context.Context, row *models.RefreshToken) error {
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// RevokeAccessToken deletes by token value and returns the rows affected.
// Zero is not an error here; the orchestrator decides what a miss means.
func (s *Store) RevokeAccessToken(ctx context.Context, token string) (int64, error) {
	result := s.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.AccessToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("revoke access token: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RevokeRefreshTokensByAccessToken deletes every refresh token spawned by the
// given access token value. Idempotent: zero matches is a normal outcome.
func (s *Store) RevokeRefreshTokensByAccessToken(ctx context.Context, accessToken string) (int64, error) {
	result := s.DB.WithContext(ctx).Where("access_token = ?", accessToken).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
