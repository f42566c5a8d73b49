package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/webservicios/backoffice/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("name already taken")
)

type GormRepo struct {
	DB *gorm.DB
}

// DefaultRoles is the seeded role→permission map. super_admin owns every
// permission and is the only role allowed on the user/role/permission routes.
var DefaultRoles = map[string][]string{
	"super_admin":       {"users:manage", "roles:manage", "permissions:manage", "assets:manage", "assets:publish", "services:manage", "services:publish", "catalog:read"},
	"asset_admin":       {"assets:manage", "assets:publish", "catalog:read"},
	"asset_publisher":   {"assets:publish", "catalog:read"},
	"service_admin":     {"services:manage", "services:publish", "catalog:read"},
	"service_publisher": {"services:publish", "catalog:read"},
	"viewer":            {"catalog:read"},
}

// SeedDefaultRoles creates the default roles and their permissions if they
// are missing. Safe to run on every start; existing rows are left alone.
func (r *GormRepo) SeedDefaultRoles(ctx context.Context) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, permNames := range DefaultRoles {
			perms := make([]models.Permission, 0, len(permNames))
			for _, pn := range permNames {
				var perm models.Permission
				if err := tx.Where(models.Permission{Name: pn}).FirstOrCreate(&perm).Error; err != nil {
					return err
				}
				perms = append(perms, perm)
			}

			var role models.Role
			res := tx.Where(models.Role{Name: name}).FirstOrCreate(&role)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return err
			}
		}
		return nil
	})
}
