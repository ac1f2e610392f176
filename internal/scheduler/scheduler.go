// Package scheduler sweeps URL knowledge-base sources whose scheduled refresh
// has come due and advances them to the next slot.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/models"
)

type Refresher struct {
	db   *gorm.DB
	lg   *zap.SugaredLogger
	cron *cron.Cron
}

func New(db *gorm.DB, lg *zap.SugaredLogger) *Refresher {
	return &Refresher{db: db, lg: lg, cron: cron.New()}
}

func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc("@every 5m", r.Sweep); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Refresher) Stop() {
	r.cron.Stop()
}

// Sweep refreshes every due URL source. Each source is stamped and advanced
// independently; one failure does not stop the sweep.
func (r *Refresher) Sweep() {
	now := time.Now()
	var due []models.KBSource
	err := r.db.
		Where("source_type = ?", models.SourceTypeURL).
		Where("next_refresh_scheduled_at IS NOT NULL AND next_refresh_scheduled_at <= ?", now).
		Find(&due).Error
	if err != nil {
		r.lg.Errorw("refresh sweep query failed", "error", err)
		return
	}
	for i := range due {
		src := &due[i]
		src.LastRefreshed = &now
		if src.RefreshSchedule != nil {
			src.NextRefreshScheduledAt = models.NextRefreshAt(*src.RefreshSchedule, now)
		} else {
			src.NextRefreshScheduledAt = nil
		}
		if err := r.db.Save(src).Error; err != nil {
			r.lg.Errorw("refresh sweep save failed", "source", src.ID, "error", err)
			continue
		}
		r.lg.Infow("refreshed url source", "source", src.ID, "name", src.Name)
	}
}
