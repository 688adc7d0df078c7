package cache

import (
	"context"
	"errors"
	"time"

	"portal-cms/models"
)

// DefaultDraftTTL keeps an abandoned draft around for a week.
const DefaultDraftTTL = 7 * 24 * time.Hour

const prefixDraft = "draft:"

var ErrDraftNotFound = errors.New("draft not found")

// Draft is the local-only copy of an edit buffer, kept for crash recovery
// whether or not the buffer reached the content store.
// CommittedAt is the item's UpdatedAt as written by the last committed save.
type Draft struct {
	Request     models.AutosaveRequest `json:"request"`
	ContentID   *uint                  `json:"content_id,omitempty"`
	Committed   bool                   `json:"committed"`
	CommittedAt *time.Time             `json:"committed_at,omitempty"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// DraftCache stores drafts by key. Get returns ErrDraftNotFound for unknown
// or expired keys.
type DraftCache interface {
	Get(ctx context.Context, key string) (*Draft, error)
	Put(ctx context.Context, key string, draft *Draft) error
	Delete(ctx context.Context, key string) error
}

func draftKey(key string) string {
	return prefixDraft + key
}
