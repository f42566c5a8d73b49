package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/webservicios/backoffice/internal/models"
)

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Roles.Permissions").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Roles.Permissions").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserTaken reports whether either the username or the email is already
// registered. Both are checked in one query to keep the duplicate answer
// uniform regardless of which half collides.
func (r *GormRepo) UserTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var users []models.User
	err := r.DB.WithContext(ctx).Preload("Roles.Permissions").
		Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

// UpdateUser saves the scalar fields and replaces the role set when roles
// is non-nil.
func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User, roles []models.Role) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Save(u).Error; err != nil {
			return err
		}
		if roles != nil {
			if err := tx.Model(u).Association("Roles").Replace(roles); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Select("Roles").Delete(&models.User{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
