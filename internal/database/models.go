package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account in the parent identity system mirrored locally.
// IsPaid gates pro-tier templates.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:255"`
	IsPaid       bool
}

// ResumeProject is a single resume document owned by a user.
// At most one project per owner carries IsDefault, enforced by a partial
// unique index (see EnsureIndexes).
type ResumeProject struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"index"`
	Title          string `gorm:"size:60"`
	TemplateKey    string `gorm:"size:32;index"`
	IsDefault      bool
	PhotoKey       string `gorm:"size:512"`
	PhotoURL       string `gorm:"size:2048"`
	PhotoUpdatedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ResumeSection is a named, orderable region of a project. The (project, key)
// pair is unique; writes go through upsert semantics.
type ResumeSection struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID uint   `gorm:"uniqueIndex:idx_sections_project_key"`
	Key       string `gorm:"size:32;uniqueIndex:idx_sections_project_key"`
	Order     int    `gorm:"column:sort_order"`
	IsEnabled bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResumeItem is one entry within a section. Data carries the canonical
// JSON payload whose shape depends on the parent section's key.
type ResumeItem struct {
	ID        uint `gorm:"primaryKey"`
	SectionID uint `gorm:"index"`
	Order     int  `gorm:"column:sort_order"`
	Data      datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResumeTemplate is a presentation style with a free/pro tier.
type ResumeTemplate struct {
	ID              uint   `gorm:"primaryKey"`
	Key             string `gorm:"uniqueIndex;size:32"`
	Name            string `gorm:"size:64"`
	Description     string `gorm:"size:255"`
	Tier            string `gorm:"size:16;default:free"`
	PreviewImageURL string `gorm:"size:512"`
	IsActive        bool
	IsDefault       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Bookmark marks an entity as a favorite of a user. Only the "resume"
// entity type is used today, the triple stays generic on purpose.
type Bookmark struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"uniqueIndex:idx_bookmarks_user_entity"`
	EntityType string `gorm:"size:32;uniqueIndex:idx_bookmarks_user_entity"`
	EntityID   uint   `gorm:"uniqueIndex:idx_bookmarks_user_entity"`
	Label      string `gorm:"size:120"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Faq is static knowledge-base content, written only by the seeder.
type Faq struct {
	ID          uint   `gorm:"primaryKey"`
	Audience    string `gorm:"size:32;index"`
	Category    string `gorm:"size:64;index"`
	Question    string `gorm:"size:255"`
	Answer      string `gorm:"type:text"`
	IsPublished bool
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExampleItem backs the CRUD demo module.
type ExampleItem struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index"`
	Title      string `gorm:"size:120"`
	Content    string `gorm:"type:text"`
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
