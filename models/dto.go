package models

import "time"

type CreateContentRequest struct {
	Type          ContentType   `json:"type" validate:"omitempty,oneof=post page"`
	Title         string        `json:"title" validate:"required,min=1,max=255"`
	Slug          string        `json:"slug" validate:"omitempty,max=255"`
	Body          string        `json:"body" validate:"required"`
	Excerpt       string        `json:"excerpt"`
	FeaturedImage string        `json:"featured_image" validate:"omitempty,max=2048"`
	Tags          []string      `json:"tags" validate:"omitempty,dive,min=1,max=100"`
	IsFeatured    bool          `json:"is_featured"`
	Status        ContentStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

func (r CreateContentRequest) Input() CreateContentInput {
	return CreateContentInput{
		Type:          r.Type,
		Title:         r.Title,
		Slug:          r.Slug,
		Body:          r.Body,
		Excerpt:       r.Excerpt,
		FeaturedImage: r.FeaturedImage,
		Tags:          r.Tags,
		IsFeatured:    r.IsFeatured,
		Publish:       r.Status == StatusPublished,
	}
}

type UpdateContentRequest struct {
	Title             *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Slug              *string   `json:"slug" validate:"omitempty,max=255"`
	Body              *string   `json:"body"`
	Excerpt           *string   `json:"excerpt"`
	FeaturedImage     *string   `json:"featured_image" validate:"omitempty,max=2048"`
	Tags              *[]string `json:"tags"`
	IsFeatured        *bool     `json:"is_featured"`
	ChangeDescription string    `json:"change_description" validate:"max=255"`
}

func (r UpdateContentRequest) Patch() ContentPatch {
	return ContentPatch{
		Title:         r.Title,
		Slug:          r.Slug,
		Body:          r.Body,
		Excerpt:       r.Excerpt,
		FeaturedImage: r.FeaturedImage,
		Tags:          r.Tags,
		IsFeatured:    r.IsFeatured,
	}
}

type ScheduleContentRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at" validate:"required"`
}

type RevertContentRequest struct {
	SnapshotID uint `json:"snapshot_id" validate:"required,min=1"`
}

// AutosaveRequest is the buffer an editor client pushes while typing.
type AutosaveRequest struct {
	DraftKey      string      `json:"draft_key" validate:"required,max=64"`
	ContentID     *uint       `json:"content_id"`
	Type          ContentType `json:"type" validate:"omitempty,oneof=post page"`
	Title         string      `json:"title" validate:"max=255"`
	Body          string      `json:"body"`
	Excerpt       string      `json:"excerpt"`
	FeaturedImage string      `json:"featured_image" validate:"omitempty,max=2048"`
	Tags          []string    `json:"tags"`
	SavedAt       time.Time   `json:"saved_at"`
}

// Patch maps the buffer onto a content patch. Tags are only touched when the
// request carries them; an explicit empty list clears them.
func (r AutosaveRequest) Patch() ContentPatch {
	title := r.Title
	body := r.Body
	excerpt := r.Excerpt
	image := r.FeaturedImage
	patch := ContentPatch{
		Title:         &title,
		Body:          &body,
		Excerpt:       &excerpt,
		FeaturedImage: &image,
	}
	if r.Tags != nil {
		tags := r.Tags
		patch.Tags = &tags
	}
	return patch
}

// AutosaveResult never carries an error; a failed save is reported through Notice.
type AutosaveResult struct {
	DraftKey  string `json:"draft_key"`
	Saved     bool   `json:"saved"`
	ContentID *uint  `json:"content_id,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

type ContentListParams struct {
	Status    string `form:"status"`
	Type      string `form:"type"`
	AuthorID  uint   `form:"author_id"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	SortBy    string `form:"sort_by,default=updated_at"`
	SortOrder string `form:"sort_order,default=desc"`
}
