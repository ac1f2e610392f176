package services

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/apperr"
	"onboard/internal/auth"
	"onboard/internal/models"
	"onboard/internal/pagination"
	"onboard/internal/storage"
)

// MaxUploadBytes caps knowledge-base file uploads.
const MaxUploadBytes = 20 << 20

type Sources struct {
	db    *gorm.DB
	lg    *zap.SugaredLogger
	store *storage.Store
	bots  *Bots
}

func NewSources(db *gorm.DB, lg *zap.SugaredLogger, store *storage.Store, bots *Bots) *Sources {
	return &Sources{db: db, lg: lg, store: store, bots: bots}
}

type CreateSourceInput struct {
	Name            string                  `json:"name" validate:"required,max=200"`
	SourceType      models.SourceType       `json:"source_type" validate:"required,oneof=URL PDF DOCX TXT"`
	URL             *string                 `json:"url" validate:"omitempty,url"`
	FileKey         *string                 `json:"file_key"`
	Content         *string                 `json:"content"`
	RefreshSchedule *models.RefreshSchedule `json:"refresh_schedule" validate:"omitempty,oneof=MANUAL DAILY WEEKLY MONTHLY"`
}

type UpdateSourceInput struct {
	Name            *string                 `json:"name" validate:"omitempty,max=200"`
	URL             *string                 `json:"url" validate:"omitempty,url"`
	FileKey         *string                 `json:"file_key"`
	Content         *string                 `json:"content"`
	RefreshSchedule *models.RefreshSchedule `json:"refresh_schedule" validate:"omitempty,oneof=MANUAL DAILY WEEKLY MONTHLY"`
}

type SourceFilters struct {
	Search     string
	SourceType string
}

func (s *Sources) Create(rc *auth.RequestContext, in CreateSourceInput) (*models.KBSource, error) {
	var value string
	var schedule *models.RefreshSchedule
	switch in.SourceType {
	case models.SourceTypeURL:
		if in.URL == nil || strings.TrimSpace(*in.URL) == "" {
			return nil, apperr.BadRequest("URL is required for URL source type")
		}
		if in.RefreshSchedule == nil {
			return nil, apperr.BadRequest("refresh_schedule is required for URL source type")
		}
		value = *in.URL
		schedule = in.RefreshSchedule
	case models.SourceTypePDF, models.SourceTypeDOCX:
		if in.FileKey == nil || strings.TrimSpace(*in.FileKey) == "" {
			return nil, apperr.BadRequest("file_key is required for file source type")
		}
		value = *in.FileKey
	case models.SourceTypeTXT:
		if in.Content == nil {
			return nil, apperr.BadRequest("content is required for TXT source type")
		}
		value = *in.Content
	default:
		return nil, apperr.BadRequest("unsupported source type")
	}

	source := models.KBSource{
		Name:            in.Name,
		SourceType:      in.SourceType,
		SourceValue:     strings.TrimSpace(value),
		Status:          models.SourceStatusReady,
		RefreshSchedule: schedule,
	}
	if schedule != nil {
		source.NextRefreshScheduledAt = models.NextRefreshAt(*schedule, time.Now())
	}
	if err := s.db.Create(&source).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return s.FindByID(rc, source.ID)
}

// CreateFromUpload stores the file under the upload root and records a
// PDF/DOCX source pointing at the generated key.
func (s *Sources) CreateFromUpload(rc *auth.RequestContext, name string, sourceType models.SourceType, ext string, file io.Reader) (*models.KBSource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if sourceType != models.SourceTypePDF && sourceType != models.SourceTypeDOCX {
		return nil, apperr.BadRequest("source_type must be PDF or DOCX for file upload")
	}
	key, size, err := s.store.Save(ext, file)
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	source := models.KBSource{
		Name:          strings.TrimSpace(name),
		SourceType:    sourceType,
		SourceValue:   key,
		FileSizeBytes: &size,
		Status:        models.SourceStatusReady,
	}
	if err := s.db.Create(&source).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return s.FindByID(rc, source.ID)
}

func (s *Sources) FindAll(rc *auth.RequestContext, f SourceFilters, p pagination.Params) (pagination.Result[models.KBSource], error) {
	if f.SourceType != "" {
		switch models.SourceType(f.SourceType) {
		case models.SourceTypeURL, models.SourceTypePDF, models.SourceTypeDOCX, models.SourceTypeTXT:
		default:
			return pagination.Result[models.KBSource]{}, apperr.BadRequest("sourceType must be one of: URL, PDF, DOCX, TXT")
		}
	}
	q := s.db.Model(&models.KBSource{})
	if f.SourceType != "" {
		q = q.Where("source_type = ?", f.SourceType)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Result[models.KBSource]{}, apperr.Internal(err.Error())
	}
	var sources []models.KBSource
	err := q.Preload("Bots").Preload("Collection").Order("created_at desc").
		Limit(p.Limit).Offset(p.Offset()).Find(&sources).Error
	if err != nil {
		return pagination.Result[models.KBSource]{}, apperr.Internal(err.Error())
	}
	return pagination.NewResult(sources, total, p), nil
}

func (s *Sources) FindByID(rc *auth.RequestContext, id string) (*models.KBSource, error) {
	var source models.KBSource
	err := s.db.Preload("Bots").Preload("Collection").First(&source, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Knowledge base source with ID " + id + " not found")
	}
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &source, nil
}

type DownloadInfo struct {
	AbsPath  string
	Filename string
	MimeType string
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\s.-]`)

// Download resolves the stored file for a PDF/DOCX source. The path is
// validated against the upload root before any read.
func (s *Sources) Download(rc *auth.RequestContext, id string) (*DownloadInfo, error) {
	source, err := s.FindByID(rc, id)
	if err != nil {
		return nil, err
	}
	if source.SourceType != models.SourceTypePDF && source.SourceType != models.SourceTypeDOCX {
		return nil, apperr.BadRequest("Only PDF and DOCX sources can be downloaded")
	}
	abs, err := s.store.Resolve(source.SourceValue)
	if err != nil || !s.store.Exists(source.SourceValue) {
		return nil, apperr.NotFound("File not found or not available for download")
	}
	ext, mime := ".pdf", "application/pdf"
	if source.SourceType == models.SourceTypeDOCX {
		ext = ".docx"
		mime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	name := unsafeFilenameChars.ReplaceAllString(source.Name, "_") + ext
	return &DownloadInfo{AbsPath: abs, Filename: name, MimeType: mime}, nil
}

// Update applies a partial update scoped to the source's type.
func (s *Sources) Update(rc *auth.RequestContext, id string, in UpdateSourceInput) (*models.KBSource, error) {
	source, err := s.FindByID(rc, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		source.Name = *in.Name
	}
	switch source.SourceType {
	case models.SourceTypeURL:
		if in.URL != nil {
			source.SourceValue = strings.TrimSpace(*in.URL)
		}
		if in.RefreshSchedule != nil {
			source.RefreshSchedule = in.RefreshSchedule
			from := time.Now()
			if source.LastRefreshed != nil {
				from = *source.LastRefreshed
			}
			source.NextRefreshScheduledAt = models.NextRefreshAt(*in.RefreshSchedule, from)
		}
	case models.SourceTypePDF, models.SourceTypeDOCX:
		if in.FileKey != nil {
			source.SourceValue = strings.TrimSpace(*in.FileKey)
		}
	case models.SourceTypeTXT:
		if in.Content != nil {
			source.SourceValue = *in.Content
		}
	}
	if err := s.db.Save(source).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return source, nil
}

// Refresh stamps a URL source as refreshed now and schedules the next slot.
func (s *Sources) Refresh(rc *auth.RequestContext, id string) (*models.KBSource, error) {
	source, err := s.FindByID(rc, id)
	if err != nil {
		return nil, err
	}
	if source.SourceType != models.SourceTypeURL {
		return nil, apperr.BadRequest("Refresh is only supported for URL sources")
	}
	now := time.Now()
	source.LastRefreshed = &now
	if source.RefreshSchedule != nil {
		source.NextRefreshScheduledAt = models.NextRefreshAt(*source.RefreshSchedule, now)
	}
	if err := s.db.Save(source).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return source, nil
}

func (s *Sources) LinkBot(rc *auth.RequestContext, sourceID, botID string) (*models.KBSource, error) {
	source, err := s.FindByID(rc, sourceID)
	if err != nil {
		return nil, err
	}
	bot, err := s.bots.FindByID(rc, botID)
	if err != nil {
		return nil, err
	}
	for _, b := range source.Bots {
		if b.ID == bot.ID {
			return source, nil
		}
	}
	if err := s.db.Model(source).Association("Bots").Append(bot); err != nil {
		return nil, apperr.Internal(err.Error())
	}
	source.LinkedBots = len(source.Bots) + 1
	if err := s.db.Save(source).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return s.FindByID(rc, sourceID)
}

func (s *Sources) UnlinkBot(rc *auth.RequestContext, sourceID, botID string) (*models.KBSource, error) {
	source, err := s.FindByID(rc, sourceID)
	if err != nil {
		return nil, err
	}
	for _, b := range source.Bots {
		if b.ID == botID {
			if err := s.db.Model(source).Association("Bots").Delete(&b); err != nil {
				return nil, apperr.Internal(err.Error())
			}
			source.LinkedBots = len(source.Bots) - 1
			if err := s.db.Save(source).Error; err != nil {
				return nil, apperr.Internal(err.Error())
			}
			break
		}
	}
	return s.FindByID(rc, sourceID)
}

// SetCollection moves the source into a collection, or out of any collection
// when collectionID is nil.
func (s *Sources) SetCollection(rc *auth.RequestContext, sourceID string, collectionID *string) (*models.KBSource, error) {
	source, err := s.FindByID(rc, sourceID)
	if err != nil {
		return nil, err
	}
	source.CollectionID = collectionID
	if err := s.db.Model(source).Update("collection_id", collectionID).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return source, nil
}

func (s *Sources) FindByCollection(rc *auth.RequestContext, collectionID string) ([]models.KBSource, error) {
	var sources []models.KBSource
	err := s.db.Preload("Bots").Preload("Collection").
		Where("collection_id = ?", collectionID).Find(&sources).Error
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return sources, nil
}

// Remove detaches the source from its collection, then soft-deletes it.
func (s *Sources) Remove(rc *auth.RequestContext, id string) error {
	source, err := s.FindByID(rc, id)
	if err != nil {
		return err
	}
	if source.CollectionID != nil {
		if _, err := s.SetCollection(rc, id, nil); err != nil {
			return err
		}
	}
	if err := s.db.Delete(source).Error; err != nil {
		return apperr.Internal(err.Error())
	}
	return nil
}
