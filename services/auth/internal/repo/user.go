package repo

import (
	"context"
	"errors"
	"fmt"

	pkg_hash "github.com/Skotchmaster/shopsplit/pkg/hash"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/models"
	"gorm.io/gorm"
)

// AddUser hashes password and inserts the user. The unique index on
// username is the final arbiter when two registrations race.
func (r *GormRepo) AddUser(ctx context.Context, username, password string) error {
	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := models.User{Username: username, PasswordHash: pwHash}

	tx := r.DB.WithContext(ctx).Where("username = ?", username).FirstOrCreate(&u)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExist
		}
		// lost the race to a concurrent insert on a driver that does not translate errors
		if _, ferr := r.FindUser(ctx, username); ferr == nil {
			return ErrUserAlreadyExist
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *GormRepo) FindUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CheckPassword compares against the stored bcrypt hash. A nil user still
// costs one bcrypt comparison.
func (r *GormRepo) CheckPassword(user *models.User, password string) bool {
	if user == nil {
		return pkg_hash.CheckMissing(password)
	}
	return pkg_hash.CheckPassword(user.PasswordHash, password)
}
