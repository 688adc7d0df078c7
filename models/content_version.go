package models

import (
	"time"
)

// SystemEditorID marks snapshots committed by the scheduler.
const SystemEditorID uint = 0

// ContentVersion is an immutable snapshot of a content item as it was right
// after a committed operation. Rows are only ever inserted.
type ContentVersion struct {
	ID                uint          `json:"id" gorm:"primarykey"`
	ContentID         uint          `json:"content_id" gorm:"not null;uniqueIndex:idx_content_version_number,priority:1"`
	VersionNumber     int           `json:"version_number" gorm:"not null;uniqueIndex:idx_content_version_number,priority:2"`
	Title             string        `json:"title" gorm:"not null"`
	Slug              string        `json:"slug"`
	Body              string        `json:"body" gorm:"type:text"`
	Excerpt           string        `json:"excerpt" gorm:"type:text"`
	FeaturedImage     string        `json:"featured_image"`
	Tags              []string      `json:"tags" gorm:"serializer:json"`
	IsFeatured        bool          `json:"is_featured"`
	Status            ContentStatus `json:"status" gorm:"type:varchar(20)"`
	EditorID          uint          `json:"editor_id"`
	ChangeDescription string        `json:"change_description"`
	CreatedAt         time.Time     `json:"created_at" gorm:"autoCreateTime:false"`
}

func (ContentVersion) TableName() string {
	return "content_versions"
}

// NewContentVersion copies the mutable fields of item into a snapshot.
func NewContentVersion(item *ContentItem, number int, editorID uint, description string, at time.Time) *ContentVersion {
	tags := make([]string, len(item.Tags))
	copy(tags, item.Tags)

	return &ContentVersion{
		ContentID:         item.ID,
		VersionNumber:     number,
		Title:             item.Title,
		Slug:              item.Slug,
		Body:              item.Body,
		Excerpt:           item.Excerpt,
		FeaturedImage:     item.FeaturedImage,
		Tags:              tags,
		IsFeatured:        item.IsFeatured,
		Status:            item.Status,
		EditorID:          editorID,
		ChangeDescription: description,
		CreatedAt:         at,
	}
}

// ContentPatch returns the content fields of the snapshot as a patch. Status,
// schedule and slug are not part of it.
func (v *ContentVersion) ContentPatch() ContentPatch {
	title := v.Title
	body := v.Body
	excerpt := v.Excerpt
	image := v.FeaturedImage
	tags := make([]string, len(v.Tags))
	copy(tags, v.Tags)
	featured := v.IsFeatured

	return ContentPatch{
		Title:         &title,
		Body:          &body,
		Excerpt:       &excerpt,
		FeaturedImage: &image,
		Tags:          &tags,
		IsFeatured:    &featured,
	}
}
