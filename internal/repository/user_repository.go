package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"iga-community/internal/model"
)

// ErrDuplicateEmail is returned by Create when the lowercased email is taken.
var ErrDuplicateEmail = errors.New("duplicate email")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

// GetByEmail returns nil, nil when no user matches.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

// UpdatePassword replaces hash and salt for email and reports whether a row
// was changed.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, hash, salt string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"password_salt": salt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update password failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListLocations returns every member's location, used by the statistics
// summary.
func (r *UserRepository) ListLocations(ctx context.Context) ([]string, error) {
	var locations []string
	if err := r.db.WithContext(ctx).Model(&model.User{}).Pluck("location", &locations).Error; err != nil {
		return nil, fmt.Errorf("list user locations failed: %w", err)
	}
	return locations, nil
}
