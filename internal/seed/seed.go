// Package seed converges the permission catalog and role grants at startup.
// Running it any number of times yields the same rows.
package seed

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/auth"
	"onboard/internal/models"
)

// Run inserts missing permissions, then creates or converges every role in
// the catalog against its grant table. Existing permission rows are never
// updated or deleted; a role's permission set is replaced only when its size
// drifts from the grant set.
func Run(db *gorm.DB, lg *zap.SugaredLogger) error {
	for _, name := range auth.AllPermissions {
		var existing models.Permission
		err := db.First(&existing, "name = ?", name).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed: lookup permission %s: %w", name, err)
		}
		desc := "Permission to " + strings.ToLower(strings.ReplaceAll(name, "_", " "))
		p := models.Permission{Name: name, Description: &desc}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("seed: create permission %s: %w", name, err)
		}
		lg.Infow("created permission", "name", name)
	}

	for _, roleName := range auth.AllRoles {
		granted, err := permissionsByName(db, auth.RoleGrants[roleName])
		if err != nil {
			return err
		}

		var role models.Role
		err = db.Preload("Permissions").First(&role, "name = ?", roleName).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			desc := strings.ReplaceAll(roleName, "_", " ") + " role"
			role = models.Role{Name: roleName, Description: &desc, Permissions: granted}
			if err := db.Create(&role).Error; err != nil {
				return fmt.Errorf("seed: create role %s: %w", roleName, err)
			}
			lg.Infow("created role", "name", roleName, "permissions", len(granted))
		case err != nil:
			return fmt.Errorf("seed: lookup role %s: %w", roleName, err)
		case len(role.Permissions) != len(granted):
			if err := db.Model(&role).Association("Permissions").Replace(granted); err != nil {
				return fmt.Errorf("seed: update role %s: %w", roleName, err)
			}
			lg.Infow("updated role grants", "name", roleName, "permissions", len(granted))
		}
	}
	return nil
}

func permissionsByName(db *gorm.DB, names []string) ([]models.Permission, error) {
	var perms []models.Permission
	if len(names) == 0 {
		return perms, nil
	}
	if err := db.Where("name IN ?", names).Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("seed: load permissions: %w", err)
	}
	return perms, nil
}
