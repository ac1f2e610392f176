package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BotType string

const (
	BotTypeGeneral     BotType = "GENERAL"
	BotTypeURLSpecific BotType = "URL_SPECIFIC"
)

type BotState string

const (
	BotStateActive   BotState = "ACTIVE"
	BotStateDisabled BotState = "DISABLED"
	BotStateArchived BotState = "ARCHIVED"
)

type VisibilityDuration string

const (
	VisibilityOneDay     VisibilityDuration = "1d"
	VisibilityTwoDays    VisibilityDuration = "2d"
	VisibilitySevenDays  VisibilityDuration = "7d"
	VisibilityThirtyDays VisibilityDuration = "30d"
)

type SourceType string

const (
	SourceTypeURL  SourceType = "URL"
	SourceTypePDF  SourceType = "PDF"
	SourceTypeDOCX SourceType = "DOCX"
	SourceTypeTXT  SourceType = "TXT"
)

type SourceStatus string

const (
	SourceStatusReady      SourceStatus = "READY"
	SourceStatusProcessing SourceStatus = "PROCESSING"
	SourceStatusFailed     SourceStatus = "FAILED"
)

type RefreshSchedule string

const (
	RefreshManual  RefreshSchedule = "MANUAL"
	RefreshDaily   RefreshSchedule = "DAILY"
	RefreshWeekly  RefreshSchedule = "WEEKLY"
	RefreshMonthly RefreshSchedule = "MONTHLY"
)

// Base carries the shared identity and bookkeeping columns. IDs are generated
// in-process so the schema works the same on any backing store.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type Permission struct {
	Base
	Name        string  `gorm:"uniqueIndex;not null" json:"name"`
	Description *string `json:"description,omitempty"`
	Roles       []Role  `gorm:"many2many:role_permissions" json:"-"`
}

type Role struct {
	Base
	Name        string       `gorm:"uniqueIndex;not null" json:"name"`
	Description *string      `json:"description,omitempty"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	Users       []User       `json:"-"`
}

type User struct {
	Base
	Email                  string     `gorm:"uniqueIndex;not null" json:"email"`
	Password               string     `gorm:"not null" json:"-"`
	FullName               *string    `json:"full_name,omitempty"`
	IsActive               bool       `gorm:"not null;default:true" json:"is_active"`
	PasswordChangeRequired bool       `gorm:"not null;default:false" json:"password_change_required"`
	EmailVerifiedAt        *time.Time `json:"email_verified_at,omitempty"`
	RoleID                 *string    `gorm:"type:uuid" json:"role_id,omitempty"`
	Role                   *Role      `json:"role,omitempty"`
}

// UsedToken marks a password-reset token as redeemed. Insert-only; the unique
// index on the token string is what resolves concurrent redemption races.
type UsedToken struct {
	Base
	Token string `gorm:"uniqueIndex;not null" json:"token"`
}

type AuditLog struct {
	Base
	TenantID   *string `gorm:"type:uuid;index:idx_audit_tenant_created" json:"tenant_id,omitempty"`
	UserID     *string `gorm:"type:uuid" json:"user_id,omitempty"`
	Action     string  `gorm:"size:64;not null" json:"action"`
	Resource   string  `gorm:"size:128;not null" json:"resource"`
	ResourceID *string `gorm:"type:uuid" json:"resource_id,omitempty"`
	Details    JSONB   `gorm:"type:jsonb" json:"details,omitempty"`
	IP         *string `gorm:"size:45" json:"ip,omitempty"`
	UserAgent  *string `json:"user_agent,omitempty"`
}

type Bot struct {
	Base
	DeletedAt          gorm.DeletedAt      `gorm:"index" json:"-"`
	BotType            BotType             `gorm:"not null" json:"bot_type"`
	State              BotState            `gorm:"not null;default:ACTIVE" json:"state"`
	Name               string              `gorm:"not null" json:"name"`
	Description        *string             `json:"description,omitempty"`
	Domains            StringList          `gorm:"type:jsonb" json:"domains"`
	TargetURLs         StringList          `gorm:"type:jsonb" json:"target_urls"`
	VisibilityDuration *VisibilityDuration `json:"visibility_duration,omitempty"`
	OncePerSession     bool                `gorm:"not null;default:false" json:"once_per_session"`
	Sources            []KBSource          `gorm:"many2many:bot_sources" json:"-"`
}

type KBSource struct {
	Base
	DeletedAt              gorm.DeletedAt   `gorm:"index" json:"-"`
	Name                   string           `gorm:"not null" json:"name"`
	SourceType             SourceType       `gorm:"not null" json:"source_type"`
	SourceValue            string           `gorm:"not null" json:"source_value"`
	FileSizeBytes          *int64           `json:"file_size_bytes,omitempty"`
	Status                 SourceStatus     `gorm:"not null;default:READY" json:"status"`
	RefreshSchedule        *RefreshSchedule `json:"refresh_schedule,omitempty"`
	LinkedBots             int              `gorm:"not null;default:0" json:"linked_bots"`
	LastRefreshed          *time.Time       `json:"last_refreshed,omitempty"`
	NextRefreshScheduledAt *time.Time       `json:"next_refresh_scheduled_at,omitempty"`
	CollectionID           *string          `gorm:"type:uuid" json:"collection_id,omitempty"`
	Collection             *Collection      `json:"collection,omitempty"`
	Bots                   []Bot            `gorm:"many2many:bot_sources" json:"bots,omitempty"`
}

type Collection struct {
	Base
	Name        string     `gorm:"not null" json:"name"`
	Description *string    `json:"description,omitempty"`
	Sources     []KBSource `gorm:"constraint:OnDelete:SET NULL" json:"sources,omitempty"`
}

// All lists every entity for migration, referenced tables first.
func All() []any {
	return []any{
		&Permission{}, &Role{}, &User{}, &UsedToken{},
		&Collection{}, &KBSource{}, &Bot{}, &AuditLog{},
	}
}

// NextRefreshAt computes the next refresh slot for a URL source. MANUAL (or an
// unknown schedule) yields nil.
func NextRefreshAt(schedule RefreshSchedule, from time.Time) *time.Time {
	var next time.Time
	switch schedule {
	case RefreshDaily:
		next = from.AddDate(0, 0, 1)
	case RefreshWeekly:
		next = from.AddDate(0, 0, 7)
	case RefreshMonthly:
		next = from.AddDate(0, 1, 0)
	default:
		return nil
	}
	return &next
}
