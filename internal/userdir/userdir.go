package userdir

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/models"
)

var ErrNotFound = errors.New("account not found")

// Directory resolves usernames to accounts. The auth core only reads from it;
// account creation goes through the users handler.
type Directory struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

func (d *Directory) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := d.DB.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (d *Directory) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := d.DB.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (d *Directory) Create(ctx context.Context, account *models.Account) error {
	if err := d.DB.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}
