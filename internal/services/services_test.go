package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/auth"
	"onboard/internal/config"
	"onboard/internal/models"
	"onboard/internal/seed"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// In-memory sqlite is per-connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, seed.Run(db, zap.NewNop().Sugar()))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SessionSecret: []byte("session-secret"),
		SessionTTL:    time.Hour,
		ResetSecret:   []byte("reset-secret"),
	}
}

func testRC() *auth.RequestContext {
	return &auth.RequestContext{
		Method:    "POST",
		Path:      "/test",
		RequestID: "test-request",
		Timestamp: time.Now(),
	}
}

func strPtr(s string) *string { return &s }
