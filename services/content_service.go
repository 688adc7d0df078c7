package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portal-cms/logger"
	"portal-cms/models"
	"portal-cms/repositories"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	descCreated         = "created"
	descCreatedLive     = "created and published"
	descUpdated         = "updated"
	descPublished       = "published"
	descScheduled       = "scheduled for %s"
	descScheduleCancel  = "schedule cancelled"
	descAutoPublished   = "published automatically"
	descArchived        = "archived"
	descReverted        = "reverted to version #%d"
	descAutosavedDraft  = "autosaved draft"
	maxDescriptionRunes = 255
)

// ContentService is the lifecycle manager: the only writer of content items
// and of their history. Every successful mutation commits the item and
// exactly one snapshot in a single transaction.
type ContentService interface {
	Create(ctx context.Context, input models.CreateContentInput, actor models.Actor) (*models.ContentItem, error)
	Get(ctx context.Context, id uint) (*models.ContentItem, error)
	GetPublished(ctx context.Context, slug string) (*models.ContentItem, error)
	List(ctx context.Context, params models.ContentListParams) ([]models.ContentItem, int64, error)
	Update(ctx context.Context, id uint, patch models.ContentPatch, actor models.Actor, description string) (*models.ContentItem, error)
	Publish(ctx context.Context, id uint, actor models.Actor) (*models.ContentItem, error)
	Schedule(ctx context.Context, id uint, when time.Time, actor models.Actor) (*models.ContentItem, error)
	CancelSchedule(ctx context.Context, id uint, actor models.Actor) (*models.ContentItem, error)
	AutoPublish(ctx context.Context, id uint) (*models.ContentItem, error)
	Archive(ctx context.Context, id uint, actor models.Actor) (*models.ContentItem, error)
	Revert(ctx context.Context, id, snapshotID uint, actor models.Actor) (*models.ContentItem, error)
	SaveDraft(ctx context.Context, id *uint, contentType models.ContentType, patch models.ContentPatch, actor models.Actor) (*models.ContentItem, error)
	Delete(ctx context.Context, id uint, actor models.Actor) error
	DueContentIDs(ctx context.Context, now time.Time) ([]uint, error)
}

type ContentServiceOption func(*contentService)

// WithClock replaces time.Now, mainly so tests can move time forward.
func WithClock(clock func() time.Time) ContentServiceOption {
	return func(s *contentService) {
		s.clock = clock
	}
}

type contentService struct {
	contentRepo repositories.ContentRepository
	versionRepo repositories.ContentVersionRepository
	locks       *itemLocks
	clock       func() time.Time
	log         zerolog.Logger
}

// mutation changes item in place and returns the snapshot description.
type mutation func(ctx context.Context, repo repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error)

func NewContentService(contentRepo repositories.ContentRepository, versionRepo repositories.ContentVersionRepository, opts ...ContentServiceOption) ContentService {
	s := &contentService{
		contentRepo: contentRepo,
		versionRepo: versionRepo,
		locks:       newItemLocks(),
		clock:       time.Now,
		log:         logger.WithComponent("lifecycle"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// now is truncated to what PostgreSQL stores, so a timestamp read back from
// the store equals the one that was written.
func (s *contentService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

// canMutate is the single ownership rule: the author or an administrator.
func canMutate(actor models.Actor, item *models.ContentItem) bool {
	return actor.IsAdmin() || (actor.ID != models.SystemEditorID && actor.ID == item.AuthorID)
}

func authorize(actor models.Actor, item *models.ContentItem) error {
	if !canMutate(actor, item) {
		return models.NewForbiddenError("user %d may not modify content %d", actor.ID, item.ID)
	}
	return nil
}

// storeError maps repository errors onto the error taxonomy.
func storeError(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(format, args...)
	}
	if models.IsValidation(err) || models.IsNotFound(err) || models.IsForbidden(err) ||
		models.IsConflict(err) || models.IsStoreUnavailable(err) {
		return err
	}
	return models.NewStoreUnavailableError(err)
}

func (s *contentService) Create(ctx context.Context, input models.CreateContentInput, actor models.Actor) (*models.ContentItem, error) {
	return s.create(ctx, input, actor, descCreated)
}

func (s *contentService) create(ctx context.Context, input models.CreateContentInput, actor models.Actor, description string) (*models.ContentItem, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, models.NewValidationError("title is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, models.NewValidationError("body is required")
	}

	contentType := input.Type
	if contentType == "" {
		contentType = models.TypePost
	}
	if contentType != models.TypePost && contentType != models.TypePage {
		return nil, models.NewValidationError("unknown content type %q", contentType)
	}

	source := input.Slug
	if strings.TrimSpace(source) == "" {
		source = input.Title
	}
	slug := Slugify(source)
	if slug == "" {
		return nil, models.NewValidationError("a slug cannot be derived from %q", source)
	}

	now := s.now()
	item := &models.ContentItem{
		Type:      contentType,
		AuthorID:  actor.ID,
		Slug:      slug,
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.Patch().ApplyTo(item)

	if input.Publish {
		status, err := transition(ctx, item.Status, eventPublish)
		if err != nil {
			return nil, err
		}
		item.Status = status
		item.PublishedAt = &now
		description = descCreatedLive
	}

	err := s.contentRepo.Transaction(ctx, func(repo repositories.ContentRepository) error {
		if err := ensureSlugFree(ctx, repo, slug, 0); err != nil {
			return err
		}
		if err := repo.Create(ctx, item); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewValidationError("slug %q is already in use", slug)
			}
			return models.NewStoreUnavailableError(err)
		}
		return appendVersion(ctx, repo, item, actor.ID, description, now)
	})
	if err != nil {
		return nil, storeError(err, "content not found")
	}

	s.log.Info().Uint("content_id", item.ID).Str("slug", item.Slug).Uint("author_id", actor.ID).Msg("content created")
	return item, nil
}

func (s *contentService) Get(ctx context.Context, id uint) (*models.ContentItem, error) {
	item, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "content %d not found", id)
	}
	return item, nil
}

func (s *contentService) GetPublished(ctx context.Context, slug string) (*models.ContentItem, error) {
	item, err := s.contentRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, "content %q not found", slug)
	}
	if !item.IsPublic() {
		return nil, models.NewNotFoundError("content %q not found", slug)
	}
	return item, nil
}

func (s *contentService) List(ctx context.Context, params models.ContentListParams) ([]models.ContentItem, int64, error) {
	items, total, err := s.contentRepo.GetList(ctx, params)
	if err != nil {
		return nil, 0, models.NewStoreUnavailableError(err)
	}
	return items, total, nil
}

func (s *contentService) Update(ctx context.Context, id uint, patch models.ContentPatch, actor models.Actor, description string) (*models.ContentItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		description = descUpdated
	}
	if r := []rune(description); len(r) > maxDescriptionRunes {
		description = string(r[:maxDescriptionRunes])
	}

	return s.commit(ctx, id, actor.ID, func(ctx context.Context, repo repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if err := authorize(actor, item); err != nil {
			return "", err
		}
		status, err := transition(ctx, item.Status, eventUpdate)
		if err != nil {
			return "", err
		}
		if err := mergePatch(ctx, repo, item, patch); err != nil {
			return "", err
		}
		if err := requireContent(item); err != nil {
			return "", err
		}
		item.Status = status
		return description, nil
	})
}

func (s *contentService) Publish(ctx context.Context, id uint, actor models.Actor) (*models.ContentItem, error) {
	return s.commit(ctx, id, actor.ID, func(ctx context.Context, _ repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if err := authorize(actor, item); err != nil {
			return "", err
		}
		status, err := transition(ctx, item.Status, eventPublish)
		if err != nil {
			return "", err
		}
		if err := requireContent(item); err != nil {
			return "", err
		}
		item.Status = status
		item.ScheduledAt = nil
		item.PublishedAt = &now
		return descPublished, nil
	})
}

func (s *contentService) Schedule(ctx context.Context, id uint, when time.Time, actor models.Actor) (*models.ContentItem, error) {
	when = when.UTC()
	if !when.After(s.now()) {
		return nil, models.NewValidationError("scheduled time %s is not in the future", when.Format(time.RFC3339))
	}

	return s.commit(ctx, id, actor.ID, func(ctx context.Context, _ repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if err := authorize(actor, item); err != nil {
			return "", err
		}
		if !when.After(now) {
			return "", models.NewValidationError("scheduled time %s is not in the future", when.Format(time.RFC3339))
		}
		status, err := transition(ctx, item.Status, eventSchedule)
		if err != nil {
			return "", err
		}
		if err := requireContent(item); err != nil {
			return "", err
		}
		item.Status = status
		item.ScheduledAt = &when
		return fmt.Sprintf(descScheduled, when.Format(time.RFC3339)), nil
	})
}

func (s *contentService) CancelSchedule(ctx context.Context, id uint, actor models.Actor) (*models.ContentItem, error) {
	return s.commit(ctx, id, actor.ID, func(ctx context.Context, _ repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if err := authorize(actor, item); err != nil {
			return "", err
		}
		status, err := transition(ctx, item.Status, eventCancelSchedule)
		if err != nil {
			return "", err
		}
		item.Status = status
		item.ScheduledAt = nil
		return descScheduleCancel, nil
	})
}

// AutoPublish is invoked by the scheduler only. It re-checks the state under
// the item lock, so a concurrent CancelSchedule or a second call turns into
// a Conflict without side effects.
func (s *contentService) AutoPublish(ctx context.Context, id uint) (*models.ContentItem, error) {
	return s.commit(ctx, id, models.SystemEditorID, func(ctx context.Context, _ repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if item.Status != models.StatusScheduled {
			return "", models.NewConflictError("content %d is %s, not scheduled", item.ID, item.Status)
		}
		if item.ScheduledAt == nil || item.ScheduledAt.After(now) {
			return "", models.NewConflictError("content %d is not due yet", item.ID)
		}
		status, err := transition(ctx, item.Status, eventAutoPublish)
		if err != nil {
			return "", err
		}
		item.Status = status
		item.ScheduledAt = nil
		item.PublishedAt = &now
		return descAutoPublished, nil
	})
}

func (s *contentService) Archive(ctx context.Context, id uint, actor models.Actor) (*models.ContentItem, error) {
	return s.commit(ctx, id, actor.ID, func(ctx context.Context, _ repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if err := authorize(actor, item); err != nil {
			return "", err
		}
		status, err := transition(ctx, item.Status, eventArchive)
		if err != nil {
			return "", err
		}
		item.Status = status
		return descArchived, nil
	})
}

func (s *contentService) Revert(ctx context.Context, id, snapshotID uint, actor models.Actor) (*models.ContentItem, error) {
	snapshot, err := s.versionRepo.GetVersionByID(ctx, snapshotID)
	if err != nil {
		return nil, storeError(err, "version %d not found", snapshotID)
	}
	if snapshot.ContentID != id {
		return nil, models.NewNotFoundError("version %d does not belong to content %d", snapshotID, id)
	}

	return s.commit(ctx, id, actor.ID, func(ctx context.Context, repo repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if err := authorize(actor, item); err != nil {
			return "", err
		}
		status, err := transition(ctx, item.Status, eventRevert)
		if err != nil {
			return "", err
		}
		if err := mergePatch(ctx, repo, item, snapshot.ContentPatch()); err != nil {
			return "", err
		}
		item.Status = status
		return fmt.Sprintf(descReverted, snapshot.VersionNumber), nil
	})
}

// SaveDraft is the autosave path. Without an id it creates a draft; with one
// it merges the patch and forces the item back to draft.
func (s *contentService) SaveDraft(ctx context.Context, id *uint, contentType models.ContentType, patch models.ContentPatch, actor models.Actor) (*models.ContentItem, error) {
	if id == nil {
		input := models.CreateContentInput{Type: contentType}
		if patch.Title != nil {
			input.Title = *patch.Title
		}
		if patch.Body != nil {
			input.Body = *patch.Body
		}
		if patch.Excerpt != nil {
			input.Excerpt = *patch.Excerpt
		}
		if patch.FeaturedImage != nil {
			input.FeaturedImage = *patch.FeaturedImage
		}
		if patch.Tags != nil {
			input.Tags = *patch.Tags
		}
		if patch.IsFeatured != nil {
			input.IsFeatured = *patch.IsFeatured
		}
		if patch.Slug != nil {
			input.Slug = *patch.Slug
		}
		return s.create(ctx, input, actor, descAutosavedDraft)
	}

	return s.commit(ctx, *id, actor.ID, func(ctx context.Context, repo repositories.ContentRepository, item *models.ContentItem, now time.Time) (string, error) {
		if err := authorize(actor, item); err != nil {
			return "", err
		}
		status, err := transition(ctx, item.Status, eventSaveDraft)
		if err != nil {
			return "", err
		}
		if err := mergePatch(ctx, repo, item, patch); err != nil {
			return "", err
		}
		if err := requireContent(item); err != nil {
			return "", err
		}
		item.Status = status
		item.ScheduledAt = nil
		item.PublishedAt = nil
		return descAutosavedDraft, nil
	})
}

// Delete is an administrative hard delete; the item's history goes with it.
func (s *contentService) Delete(ctx context.Context, id uint, actor models.Actor) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("only administrators may delete content")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.contentRepo.Delete(ctx, id); err != nil {
		return storeError(err, "content %d not found", id)
	}

	s.log.Warn().Uint("content_id", id).Uint("actor_id", actor.ID).Msg("content deleted with its history")
	return nil
}

func (s *contentService) DueContentIDs(ctx context.Context, now time.Time) ([]uint, error) {
	ids, err := s.contentRepo.ListDueIDs(ctx, now.UTC())
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return ids, nil
}

// commit is the per-item read-modify-write. The in-process lock orders
// concurrent callers, the row lock covers other processes, and the item
// update plus its snapshot share one transaction. Last commit wins.
func (s *contentService) commit(ctx context.Context, id uint, editorID uint, mutate mutation) (*models.ContentItem, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var committed *models.ContentItem
	var description string

	err := s.contentRepo.Transaction(ctx, func(repo repositories.ContentRepository) error {
		item, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		description, err = mutate(ctx, repo, item, now)
		if err != nil {
			return err
		}

		item.UpdatedAt = now
		if err := repo.Update(ctx, item); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewValidationError("slug %q is already in use", item.Slug)
			}
			return models.NewStoreUnavailableError(err)
		}
		if err := appendVersion(ctx, repo, item, editorID, description, now); err != nil {
			return err
		}

		committed = item
		return nil
	})
	if err != nil {
		return nil, storeError(err, "content %d not found", id)
	}

	s.log.Info().
		Uint("content_id", committed.ID).
		Uint("editor_id", editorID).
		Str("status", string(committed.Status)).
		Str("change", description).
		Msg("content committed")
	return committed, nil
}

func appendVersion(ctx context.Context, repo repositories.ContentRepository, item *models.ContentItem, editorID uint, description string, now time.Time) error {
	number, err := repo.NextVersionNumber(ctx, item.ID)
	if err != nil {
		return models.NewStoreUnavailableError(err)
	}
	version := models.NewContentVersion(item, number, editorID, description, now)
	if err := repo.CreateVersion(ctx, version); err != nil {
		return models.NewStoreUnavailableError(err)
	}
	return nil
}

// mergePatch normalizes and checks a supplied slug, then applies the patch.
func mergePatch(ctx context.Context, repo repositories.ContentRepository, item *models.ContentItem, patch models.ContentPatch) error {
	if patch.Slug != nil {
		slug := Slugify(*patch.Slug)
		if slug == "" {
			return models.NewValidationError("slug %q is empty once normalized", *patch.Slug)
		}
		if slug != item.Slug {
			if err := ensureSlugFree(ctx, repo, slug, item.ID); err != nil {
				return err
			}
		}
		patch.Slug = &slug
	}
	patch.ApplyTo(item)
	return nil
}

func ensureSlugFree(ctx context.Context, repo repositories.ContentRepository, slug string, excludeID uint) error {
	exists, err := repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return models.NewStoreUnavailableError(err)
	}
	if exists {
		return models.NewValidationError("slug %q is already in use", slug)
	}
	return nil
}

func requireContent(item *models.ContentItem) error {
	if strings.TrimSpace(item.Title) == "" {
		return models.NewValidationError("title is required")
	}
	if strings.TrimSpace(item.Body) == "" {
		return models.NewValidationError("body is required")
	}
	return nil
}
