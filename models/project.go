package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// AllowedCategories is the fixed enumeration a project's categories are
// constrained to. It is static and not derived from the store.
var AllowedCategories = []string{
	"AI Assistant",
	"Data Analysis",
	"Content Generation",
	"Automation",
	"Customer Service",
	"Marketing",
	"Development",
	"Design",
	"Research",
	"Other",
}

func IsAllowedCategory(category string) bool {
	return slices.Contains(AllowedCategories, category)
}

// BackgroundImage holds the metadata of the single uploaded image a project
// may carry. Path is the storage-relative location, URL the public one.
type BackgroundImage struct {
	Filename     string `json:"filename,omitempty" db:"bg_filename" gorm:"column:bg_filename;type:text"`
	OriginalName string `json:"originalName,omitempty" db:"bg_original_name" gorm:"column:bg_original_name;type:text"`
	MimeType     string `json:"mimetype,omitempty" db:"bg_mime_type" gorm:"column:bg_mime_type;type:text"`
	Size         int64  `json:"size,omitempty" db:"bg_size" gorm:"column:bg_size"`
	Path         string `json:"path,omitempty" db:"bg_path" gorm:"column:bg_path;type:text"`
	URL          string `json:"url,omitempty" db:"bg_url" gorm:"column:bg_url;type:text"`
}

// Project represents a single AI-agent listing with its descriptive
// metadata, resource links, optional image, categories, tools and rating.
type Project struct {
	ID                      uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name                    string                      `json:"name" db:"name" gorm:"type:text;not null"`
	ProjectName             string                      `json:"projectName" db:"project_name" gorm:"type:text;not null"`
	ProjectDescription      string                      `json:"projectDescription" db:"project_description" gorm:"type:text;not null"`
	LinkedProfile           string                      `json:"linkedProfile,omitempty" db:"linked_profile" gorm:"type:text"`
	VideoLink               string                      `json:"videoLink,omitempty" db:"video_link" gorm:"type:text"`
	FlowFileLink            string                      `json:"flowFileLink,omitempty" db:"flow_file_link" gorm:"type:text"`
	DeployedLink            string                      `json:"deployedLink,omitempty" db:"deployed_link" gorm:"type:text"`
	InstructionDocumentLink string                      `json:"instructionDocumentLink,omitempty" db:"instruction_document_link" gorm:"type:text"`
	BackgroundImage         *BackgroundImage            `json:"backgroundImage,omitempty" gorm:"embedded"`
	Categories              datatypes.JSONSlice[string] `json:"categories" db:"categories" gorm:"type:jsonb"`
	Tools                   datatypes.JSONSlice[string] `json:"tools" db:"tools" gorm:"type:jsonb"`
	Rating                  int                         `json:"rating" db:"rating" gorm:"not null"`
	CreatedByID             uuid.UUID                   `json:"-" db:"created_by" gorm:"column:created_by;type:uuid;not null;index"`
	CreatedBy               *User                       `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;references:ID"`
	Status                  string                      `json:"status" db:"status" gorm:"type:text;not null;index"`
	PublishedAt             time.Time                   `json:"publishedAt" db:"published_at" gorm:"index"`
	CreatedAt               time.Time                   `json:"createdAt" db:"created_at"`
	UpdatedAt               time.Time                   `json:"updatedAt" db:"updated_at"`
}

// AfterFind drops the image struct when every column was empty, so a
// project without an upload serializes with no backgroundImage at all.
func (p *Project) AfterFind(tx *gorm.DB) error {
	if p.BackgroundImage != nil && *p.BackgroundImage == (BackgroundImage{}) {
		p.BackgroundImage = nil
	}
	return nil
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusPublished
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now()
	}
	return nil
}
