package models

import (
	"time"
)

type ContentType string

const (
	TypePost ContentType = "post"
	TypePage ContentType = "page"
)

type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusScheduled ContentStatus = "scheduled"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

// ContentItem is the live copy of a post or page. Posts and pages share one
// table, so an id is never shared between the two variants.
type ContentItem struct {
	ID            uint          `json:"id" gorm:"primarykey"`
	Type          ContentType   `json:"type" gorm:"type:varchar(10);not null;default:'post'"`
	AuthorID      uint          `json:"author_id" gorm:"not null;index"`
	Title         string        `json:"title" gorm:"not null"`
	Slug          string        `json:"slug" gorm:"uniqueIndex;not null"`
	Body          string        `json:"body" gorm:"type:text"`
	Excerpt       string        `json:"excerpt" gorm:"type:text"`
	FeaturedImage string        `json:"featured_image"`
	Tags          []string      `json:"tags" gorm:"serializer:json"`
	IsFeatured    bool          `json:"is_featured" gorm:"default:false"`
	Status        ContentStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index:idx_contents_due,priority:1"`
	ScheduledAt   *time.Time    `json:"scheduled_at" gorm:"index:idx_contents_due,priority:2"`
	PublishedAt   *time.Time    `json:"published_at"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (ContentItem) TableName() string {
	return "contents"
}

// IsPublic reports whether the item may be served to anonymous readers.
func (c *ContentItem) IsPublic() bool {
	return c.Status == StatusPublished
}

// ContentPatch carries the optional fields of a partial edit. A nil field
// leaves the current value untouched.
type ContentPatch struct {
	Title         *string
	Slug          *string
	Body          *string
	Excerpt       *string
	FeaturedImage *string
	Tags          *[]string
	IsFeatured    *bool
}

// ApplyTo merges the patch over item. It is the only place where content
// fields are written, shared by update, autosave and revert.
func (p ContentPatch) ApplyTo(item *ContentItem) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Slug != nil {
		item.Slug = *p.Slug
	}
	if p.Body != nil {
		item.Body = *p.Body
	}
	if p.Excerpt != nil {
		item.Excerpt = *p.Excerpt
	}
	if p.FeaturedImage != nil {
		item.FeaturedImage = *p.FeaturedImage
	}
	if p.Tags != nil {
		tags := make([]string, len(*p.Tags))
		copy(tags, *p.Tags)
		item.Tags = tags
	}
	if p.IsFeatured != nil {
		item.IsFeatured = *p.IsFeatured
	}
}

// CreateContentInput holds the fields accepted when a content item is created.
type CreateContentInput struct {
	Type          ContentType
	Title         string
	Slug          string
	Body          string
	Excerpt       string
	FeaturedImage string
	Tags          []string
	IsFeatured    bool

	// Publish makes the item live in the same commit that creates it.
	Publish bool
}

// Patch converts the input into the equivalent patch over an empty item.
func (in CreateContentInput) Patch() ContentPatch {
	tags := in.Tags
	return ContentPatch{
		Title:         &in.Title,
		Body:          &in.Body,
		Excerpt:       &in.Excerpt,
		FeaturedImage: &in.FeaturedImage,
		Tags:          &tags,
		IsFeatured:    &in.IsFeatured,
	}
}
