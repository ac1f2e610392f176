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

type Collections struct {
	db      *gorm.DB
	lg      *zap.SugaredLogger
	sources *Sources
}

func NewCollections(db *gorm.DB, lg *zap.SugaredLogger, sources *Sources) *Collections {
	return &Collections{db: db, lg: lg, sources: sources}
}

type CreateCollectionInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type UpdateCollectionInput struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

func (s *Collections) Create(rc *auth.RequestContext, in CreateCollectionInput) (*models.Collection, error) {
	c := models.Collection{Name: strings.TrimSpace(in.Name)}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		c.Description = &desc
	}
	if err := s.db.Create(&c).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &c, nil
}

func (s *Collections) FindAll(rc *auth.RequestContext, p pagination.Params) (pagination.Result[models.Collection], error) {
	var total int64
	if err := s.db.Model(&models.Collection{}).Count(&total).Error; err != nil {
		return pagination.Result[models.Collection]{}, apperr.Internal(err.Error())
	}
	var cols []models.Collection
	err := s.db.Preload("Sources").Order("created_at desc").
		Limit(p.Limit).Offset(p.Offset()).Find(&cols).Error
	if err != nil {
		return pagination.Result[models.Collection]{}, apperr.Internal(err.Error())
	}
	return pagination.NewResult(cols, total, p), nil
}

func (s *Collections) FindByID(rc *auth.RequestContext, id string) (*models.Collection, error) {
	var c models.Collection
	err := s.db.Preload("Sources").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Collection with ID " + id + " not found")
	}
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &c, nil
}

func (s *Collections) Update(rc *auth.RequestContext, id string, in UpdateCollectionInput) (*models.Collection, error) {
	c, err := s.FindByID(rc, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		c.Description = &desc
	}
	if err := s.db.Save(c).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return c, nil
}

func (s *Collections) AddSource(rc *auth.RequestContext, collectionID, sourceID string) (*models.Collection, error) {
	if _, err := s.FindByID(rc, collectionID); err != nil {
		return nil, err
	}
	if _, err := s.sources.SetCollection(rc, sourceID, &collectionID); err != nil {
		return nil, err
	}
	return s.FindByID(rc, collectionID)
}

func (s *Collections) RemoveSource(rc *auth.RequestContext, collectionID, sourceID string) (*models.Collection, error) {
	if _, err := s.FindByID(rc, collectionID); err != nil {
		return nil, err
	}
	source, err := s.sources.FindByID(rc, sourceID)
	if err != nil {
		return nil, err
	}
	if source.CollectionID == nil || *source.CollectionID != collectionID {
		return nil, apperr.NotFound("Source " + sourceID + " is not in this collection")
	}
	if _, err := s.sources.SetCollection(rc, sourceID, nil); err != nil {
		return nil, err
	}
	return s.FindByID(rc, collectionID)
}

// Remove unlinks every member source before deleting the collection, so no
// source row ever points at a missing collection.
func (s *Collections) Remove(rc *auth.RequestContext, id string) error {
	c, err := s.FindByID(rc, id)
	if err != nil {
		return err
	}
	sources, err := s.sources.FindByCollection(rc, id)
	if err != nil {
		return err
	}
	for _, src := range sources {
		if _, err := s.sources.SetCollection(rc, src.ID, nil); err != nil {
			return err
		}
	}
	if err := s.db.Delete(c).Error; err != nil {
		return apperr.Internal(err.Error())
	}
	return nil
}
