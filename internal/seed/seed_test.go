package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/auth"
	"onboard/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestRunCreatesCatalog(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Run(db, zap.NewNop().Sugar()))

	var permCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	assert.EqualValues(t, len(auth.AllPermissions), permCount)

	var roleCount int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	assert.EqualValues(t, len(auth.AllRoles), roleCount)

	var role models.Role
	require.NoError(t, db.Preload("Permissions").First(&role, "name = ?", auth.RoleSuperAdmin).Error)
	assert.Len(t, role.Permissions, len(auth.RoleGrants[auth.RoleSuperAdmin]))
}

func TestRunIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Run(db, zap.NewNop().Sugar()))
	require.NoError(t, Run(db, zap.NewNop().Sugar()))

	var permCount, roleCount, grantCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	require.NoError(t, db.Table("role_permissions").Count(&grantCount).Error)

	assert.EqualValues(t, len(auth.AllPermissions), permCount)
	assert.EqualValues(t, len(auth.AllRoles), roleCount)

	var want int
	for _, role := range auth.AllRoles {
		want += len(auth.RoleGrants[role])
	}
	assert.EqualValues(t, want, grantCount)
}
