package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/shopsplit/services/auth/internal/models"
	"gorm.io/gorm"
)

// Each method below is a single SQL statement, so a delete and a concurrent
// lookup of the same row are ordered by the database.

func (r *GormRepo) StoreRefresh(ctx context.Context, username, token string, expiresAt time.Time) error {
	row := models.RefreshToken{
		Username:  username,
		TokenHash: Sha256Hex(token),
		ExpiresAt: expiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

func (r *GormRepo) FindRefresh(ctx context.Context, username, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("username = ? AND token_hash = ?", username, Sha256Hex(token)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// DeleteRefresh removes the row for token. Deleting an absent token is not an error.
func (r *GormRepo) DeleteRefresh(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).
		Where("token_hash = ?", Sha256Hex(token)).
		Delete(&models.RefreshToken{}).Error
}
