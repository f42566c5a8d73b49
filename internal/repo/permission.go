package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/webservicios/backoffice/internal/models"
)

func (r *GormRepo) GetPermissionByID(ctx context.Context, id uint) (*models.Permission, error) {
	var perm models.Permission
	err := r.DB.WithContext(ctx).First(&perm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &perm, nil
}

func (r *GormRepo) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// CreatePermission inserts the permission, reporting ErrDuplicate on a name
// collision.
func (r *GormRepo) CreatePermission(ctx context.Context, perm *models.Permission) error {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Permission{}).Where("name = ?", perm.Name).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return r.DB.WithContext(ctx).Create(perm).Error
}

func (r *GormRepo) UpdatePermission(ctx context.Context, perm *models.Permission) error {
	return r.DB.WithContext(ctx).Save(perm).Error
}

func (r *GormRepo) DeletePermission(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Permission{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
