package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/webservicios/backoffice/internal/models"
)

// FindRolesByNames returns the roles matching names, preserving the order
// of the input. Names with no matching role are simply absent from the
// result; callers decide whether that is tolerable.
func (r *GormRepo) FindRolesByNames(ctx context.Context, names []string) ([]models.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var found []models.Role
	err := r.DB.WithContext(ctx).Preload("Permissions").Where("name IN ?", names).Find(&found).Error
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.Role, len(found))
	for _, role := range found {
		byName[role.Name] = role
	}

	ordered := make([]models.Role, 0, len(found))
	for _, name := range names {
		if role, ok := byName[name]; ok {
			ordered = append(ordered, role)
		}
	}
	return ordered, nil
}

func (r *GormRepo) GetRoleByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	err := r.DB.WithContext(ctx).Preload("Permissions").First(&role, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.DB.WithContext(ctx).Preload("Permissions").Order("id ASC").Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole inserts the role, reporting ErrDuplicate on a name collision.
func (r *GormRepo) CreateRole(ctx context.Context, role *models.Role) error {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return r.DB.WithContext(ctx).Create(role).Error
}

// UpdateRole saves the role and replaces its permission set when perms is
// non-nil.
func (r *GormRepo) UpdateRole(ctx context.Context, role *models.Role, perms []models.Permission) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Save(role).Error; err != nil {
			return err
		}
		if perms != nil {
			if err := tx.Model(role).Association("Permissions").Replace(perms); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRole removes the role and its join rows. Users referencing the role
// keep working: resolution tolerates the missing reference.
func (r *GormRepo) DeleteRole(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Select("Permissions").Delete(&models.Role{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) FindPermissionsByIDs(ctx context.Context, ids []uint) ([]models.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var perms []models.Permission
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}
