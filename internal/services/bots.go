package services

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/apperr"
	"onboard/internal/auth"
	"onboard/internal/models"
	"onboard/internal/pagination"
)

type Bots struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewBots(db *gorm.DB, lg *zap.SugaredLogger) *Bots {
	return &Bots{db: db, lg: lg}
}

type CreateBotInput struct {
	BotType            models.BotType             `json:"bot_type" validate:"required,oneof=GENERAL URL_SPECIFIC"`
	Name               string                     `json:"name" validate:"required,max=200"`
	Description        *string                    `json:"description" validate:"omitempty,max=5000"`
	Domains            []string                   `json:"domains" validate:"required,dive,hostname_rfc1123"`
	TargetURLs         []string                   `json:"target_urls" validate:"omitempty,dive,startswith=/"`
	VisibilityDuration *models.VisibilityDuration `json:"visibility_duration" validate:"omitempty,oneof=1d 2d 7d 30d"`
	OncePerSession     *bool                      `json:"once_per_session"`
}

type UpdateBotInput struct {
	Name               *string                    `json:"name" validate:"omitempty,max=200"`
	Description        *string                    `json:"description" validate:"omitempty,max=5000"`
	Domains            []string                   `json:"domains" validate:"omitempty,dive,hostname_rfc1123"`
	TargetURLs         []string                   `json:"target_urls" validate:"omitempty,dive,startswith=/"`
	VisibilityDuration *models.VisibilityDuration `json:"visibility_duration" validate:"omitempty,oneof=1d 2d 7d 30d"`
	OncePerSession     *bool                      `json:"once_per_session"`
}

type BotFilters struct {
	BotType string
	Search  string
}

func validateBotShape(botType models.BotType, domains, targetURLs []string) error {
	switch botType {
	case models.BotTypeGeneral:
		if domains != nil && len(domains) < 1 {
			return apperr.BadRequest("General bot must have at least one domain")
		}
	case models.BotTypeURLSpecific:
		if domains != nil && len(domains) != 1 {
			return apperr.BadRequest("URL-specific bot must have exactly one domain")
		}
		if targetURLs != nil && len(targetURLs) < 1 {
			return apperr.BadRequest("URL-specific bot must have at least one target URL")
		}
	}
	return nil
}

func (s *Bots) Create(rc *auth.RequestContext, in CreateBotInput) (*models.Bot, error) {
	if err := validateBotShape(in.BotType, in.Domains, in.TargetURLs); err != nil {
		return nil, err
	}
	bot := models.Bot{
		BotType:     in.BotType,
		State:       models.BotStateActive,
		Name:        in.Name,
		Description: in.Description,
		Domains:     models.StringList(in.Domains),
		TargetURLs:  models.StringList{},
	}
	// URL-specific presentation fields are meaningless on general bots.
	if in.BotType == models.BotTypeURLSpecific {
		if in.TargetURLs != nil {
			bot.TargetURLs = models.StringList(in.TargetURLs)
		}
		bot.VisibilityDuration = in.VisibilityDuration
		if in.OncePerSession != nil {
			bot.OncePerSession = *in.OncePerSession
		}
	}
	if err := s.db.Create(&bot).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &bot, nil
}

func (s *Bots) FindAll(rc *auth.RequestContext, f BotFilters, p pagination.Params) (pagination.Result[models.Bot], error) {
	q := s.db.Model(&models.Bot{})
	if f.BotType != "" {
		q = q.Where("bot_type = ?", f.BotType)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Result[models.Bot]{}, apperr.Internal(err.Error())
	}
	var bots []models.Bot
	if err := q.Order("created_at desc").Limit(p.Limit).Offset(p.Offset()).Find(&bots).Error; err != nil {
		return pagination.Result[models.Bot]{}, apperr.Internal(err.Error())
	}
	return pagination.NewResult(bots, total, p), nil
}

func (s *Bots) FindByID(rc *auth.RequestContext, id string) (*models.Bot, error) {
	var bot models.Bot
	err := s.db.First(&bot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Bot with ID " + id + " not found")
	}
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &bot, nil
}

// Update applies a partial update scoped to the bot's type: URL-specific
// fields on a general bot are ignored rather than rejected.
func (s *Bots) Update(rc *auth.RequestContext, id string, in UpdateBotInput) (*models.Bot, error) {
	bot, err := s.FindByID(rc, id)
	if err != nil {
		return nil, err
	}
	domains := []string(bot.Domains)
	if in.Domains != nil {
		domains = in.Domains
	}
	targets := []string(bot.TargetURLs)
	if in.TargetURLs != nil {
		targets = in.TargetURLs
	}
	if err := validateBotShape(bot.BotType, domains, targets); err != nil {
		return nil, err
	}

	if in.Name != nil {
		bot.Name = *in.Name
	}
	if in.Description != nil {
		bot.Description = in.Description
	}
	if in.Domains != nil {
		bot.Domains = models.StringList(in.Domains)
	}
	if bot.BotType == models.BotTypeURLSpecific {
		if in.TargetURLs != nil {
			bot.TargetURLs = models.StringList(in.TargetURLs)
		}
		if in.VisibilityDuration != nil {
			bot.VisibilityDuration = in.VisibilityDuration
		}
		if in.OncePerSession != nil {
			bot.OncePerSession = *in.OncePerSession
		}
	}
	if err := s.db.Save(bot).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return bot, nil
}

func (s *Bots) Archive(rc *auth.RequestContext, id string) (*models.Bot, error) {
	return s.setState(rc, id, models.BotStateArchived)
}

func (s *Bots) Disable(rc *auth.RequestContext, id string) (*models.Bot, error) {
	return s.setState(rc, id, models.BotStateDisabled)
}

func (s *Bots) setState(rc *auth.RequestContext, id string, state models.BotState) (*models.Bot, error) {
	bot, err := s.FindByID(rc, id)
	if err != nil {
		return nil, err
	}
	bot.State = state
	if err := s.db.Save(bot).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return bot, nil
}

func (s *Bots) Remove(rc *auth.RequestContext, id string) error {
	bot, err := s.FindByID(rc, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(bot).Error; err != nil {
		return apperr.Internal(err.Error())
	}
	return nil
}
