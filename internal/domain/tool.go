package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tool is one catalog entry
type Tool struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null"`
	URL         string    `gorm:"column:url;type:text;not null"`
	ImageURL    string    `gorm:"column:image_url;type:text"`
	Tags        []string  `gorm:"type:jsonb;serializer:json"`
	Author      string    `gorm:"type:varchar(255)"`
	CreatedAt   time.Time `gorm:"not null;index:idx_tools_created_at,sort:desc"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName pins the table name used by the migrations
func (Tool) TableName() string {
	return "tools"
}

// BeforeCreate assigns the identity when the caller did not
func (t *Tool) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ToolInput carries every editable field of a tool
type ToolInput struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Tags        []string
	Author      string
}

// Patch converts a full input into an update that replaces every editable field
func (in ToolInput) Patch() ToolPatch {
	tags := append([]string(nil), in.Tags...)
	return ToolPatch{
		Title:       &in.Title,
		Description: &in.Description,
		URL:         &in.URL,
		ImageURL:    &in.ImageURL,
		Tags:        &tags,
		Author:      &in.Author,
	}
}

// ToolPatch is a partial update; nil fields are left untouched
type ToolPatch struct {
	Title       *string
	Description *string
	URL         *string
	ImageURL    *string
	Tags        *[]string
	Author      *string
}

// IsEmpty reports whether the patch changes nothing
func (p ToolPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.URL == nil &&
		p.ImageURL == nil && p.Tags == nil && p.Author == nil
}

// Apply writes the patch onto t. ID and CreatedAt are never touched.
func (p ToolPatch) Apply(t *Tool) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.URL != nil {
		t.URL = strings.TrimSpace(*p.URL)
	}
	if p.ImageURL != nil {
		t.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
	if p.Tags != nil {
		t.Tags = NormalizeTags(*p.Tags)
	}
	if p.Author != nil {
		t.Author = strings.TrimSpace(*p.Author)
	}
}

// ParseTags splits a comma-separated string into trimmed, non-empty tags,
// preserving their order.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims every tag and drops the empty ones
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// JoinTags renders tags back into the comma-separated form used for editing
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// Matches reports whether the tool matches a search query. The query is
// case-folded and matched as a substring of the title, the description or
// any tag. An empty query matches everything.
func (t *Tool) Matches(query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if t.Description != "" && strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
