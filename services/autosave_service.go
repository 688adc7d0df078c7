package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"portal-cms/cache"
	"portal-cms/logger"
	"portal-cms/models"

	"github.com/rs/zerolog"
)

// AutosaveService is the server side of autosave. The buffer is cached
// before the store is touched, and a failed save is reported as a notice
// instead of an error.
type AutosaveService interface {
	Save(ctx context.Context, req models.AutosaveRequest, actor models.Actor) models.AutosaveResult
	Load(ctx context.Context, draftKey string, actor models.Actor) (*cache.Draft, error)
	Clear(ctx context.Context, draftKey string, actor models.Actor) error
}

type autosaveService struct {
	contents ContentService
	drafts   cache.DraftCache
	log      zerolog.Logger
}

func NewAutosaveService(contents ContentService, drafts cache.DraftCache) AutosaveService {
	return &autosaveService{
		contents: contents,
		drafts:   drafts,
		log:      logger.WithComponent("autosave"),
	}
}

// Draft keys are chosen by the client, so they are scoped per user.
func scopedDraftKey(actor models.Actor, draftKey string) string {
	return fmt.Sprintf("%d:%s", actor.ID, draftKey)
}

func (s *autosaveService) Save(ctx context.Context, req models.AutosaveRequest, actor models.Actor) models.AutosaveResult {
	key := scopedDraftKey(actor, req.DraftKey)
	result := models.AutosaveResult{DraftKey: req.DraftKey, ContentID: req.ContentID}

	previous, err := s.drafts.Get(ctx, key)
	if err != nil && !errors.Is(err, cache.ErrDraftNotFound) {
		s.log.Warn().Err(err).Str("draft_key", key).Msg("draft cache read failed")
	}
	if previous != nil {
		if result.ContentID == nil {
			result.ContentID = previous.ContentID
		}
		if previous.Committed && sameBuffer(previous, req, result.ContentID) && s.unchangedSince(ctx, previous) {
			result.Saved = true
			return result
		}
	}

	if req.SavedAt.IsZero() {
		req.SavedAt = time.Now().UTC()
	}
	draft := &cache.Draft{Request: req, ContentID: result.ContentID, UpdatedAt: time.Now().UTC()}
	if err := s.drafts.Put(ctx, key, draft); err != nil {
		s.log.Warn().Err(err).Str("draft_key", key).Msg("draft cache write failed")
	}

	item, err := s.contents.SaveDraft(ctx, result.ContentID, req.Type, req.Patch(), actor)
	if err != nil {
		s.log.Info().Err(err).Str("draft_key", key).Uint("user_id", actor.ID).Msg("autosave not committed")
		result.Notice = autosaveNotice(err)
		return result
	}

	result.Saved = true
	result.ContentID = &item.ID

	committedAt := item.UpdatedAt
	draft.ContentID = &item.ID
	draft.Committed = true
	draft.CommittedAt = &committedAt
	if err := s.drafts.Put(ctx, key, draft); err != nil {
		s.log.Warn().Err(err).Str("draft_key", key).Msg("draft cache write failed")
	}
	return result
}

func (s *autosaveService) Load(ctx context.Context, draftKey string, actor models.Actor) (*cache.Draft, error) {
	draft, err := s.drafts.Get(ctx, scopedDraftKey(actor, draftKey))
	if errors.Is(err, cache.ErrDraftNotFound) {
		return nil, models.NewNotFoundError("draft %q not found", draftKey)
	}
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return draft, nil
}

func (s *autosaveService) Clear(ctx context.Context, draftKey string, actor models.Actor) error {
	if err := s.drafts.Delete(ctx, scopedDraftKey(actor, draftKey)); err != nil {
		return models.NewStoreUnavailableError(err)
	}
	return nil
}

// unchangedSince reports whether the live item is still the one this draft
// committed. Edits made outside autosave move UpdatedAt.
func (s *autosaveService) unchangedSince(ctx context.Context, draft *cache.Draft) bool {
	if draft.ContentID == nil || draft.CommittedAt == nil {
		return false
	}
	item, err := s.contents.Get(ctx, *draft.ContentID)
	if err != nil {
		return false
	}
	return item.UpdatedAt.Equal(*draft.CommittedAt)
}

func sameBuffer(previous *cache.Draft, req models.AutosaveRequest, contentID *uint) bool {
	if previous.ContentID == nil || contentID == nil || *previous.ContentID != *contentID {
		return false
	}
	p := previous.Request
	return p.Type == req.Type &&
		p.Title == req.Title &&
		p.Body == req.Body &&
		p.Excerpt == req.Excerpt &&
		p.FeaturedImage == req.FeaturedImage &&
		slices.Equal(p.Tags, req.Tags)
}

func autosaveNotice(err error) string {
	switch {
	case models.IsValidation(err):
		return "Draft kept on this device: " + err.Error()
	case models.IsForbidden(err):
		return "Draft kept on this device: you cannot save changes to this content"
	case models.IsNotFound(err):
		return "Draft kept on this device: the content no longer exists"
	default:
		return "Draft kept on this device: autosave will try again shortly"
	}
}
