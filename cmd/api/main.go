package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"onboard/internal/audit"
	"onboard/internal/config"
	"onboard/internal/httpserver"
	"onboard/internal/logger"
	"onboard/internal/models"
	"onboard/internal/scheduler"
	"onboard/internal/seed"
	"onboard/internal/storage"
)

func main() {
	_ = godotenv.Load()

	lg := logger.New()
	defer lg.Sync()

	cfg, err := config.Load()
	if err != nil {
		lg.Fatalw("invalid configuration", "error", err)
	}
	if cfg.DatabaseURL == "" {
		lg.Fatal("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("failed to connect to database", "error", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		lg.Fatalw("auto-migration failed", "error", err)
	}

	if !cfg.DisableSeed {
		if err := seed.Run(db, lg); err != nil {
			lg.Fatalw("seeding failed", "error", err)
		}
	}

	store, err := storage.New(cfg.UploadDir)
	if err != nil {
		lg.Fatalw("failed to prepare upload storage", "error", err)
	}

	auditSvc := audit.NewService(db, lg)
	defer auditSvc.Flush()

	refresher := scheduler.New(db, lg)
	if err := refresher.Start(); err != nil {
		lg.Fatalw("failed to start refresh scheduler", "error", err)
	}
	defer refresher.Stop()

	router := httpserver.NewRouter(cfg, db, lg, store, auditSvc)

	lg.Infow("server listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}
