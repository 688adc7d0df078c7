package services

import (
	"context"

	"portal-cms/models"
	"portal-cms/repositories"
)

// HistoryService is a read-only view over content snapshots. Snapshots are
// written by ContentService only.
type HistoryService interface {
	ListVersions(ctx context.Context, contentID uint, actor models.Actor) ([]models.ContentVersion, error)
	GetVersion(ctx context.Context, contentID, versionID uint, actor models.Actor) (*models.ContentVersion, error)
}

type historyService struct {
	contentRepo repositories.ContentRepository
	versionRepo repositories.ContentVersionRepository
}

func NewHistoryService(contentRepo repositories.ContentRepository, versionRepo repositories.ContentVersionRepository) HistoryService {
	return &historyService{
		contentRepo: contentRepo,
		versionRepo: versionRepo,
	}
}

func (s *historyService) ListVersions(ctx context.Context, contentID uint, actor models.Actor) ([]models.ContentVersion, error) {
	if err := s.checkAccess(ctx, contentID, actor); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.GetVersions(ctx, contentID)
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return versions, nil
}

func (s *historyService) GetVersion(ctx context.Context, contentID, versionID uint, actor models.Actor) (*models.ContentVersion, error) {
	if err := s.checkAccess(ctx, contentID, actor); err != nil {
		return nil, err
	}

	version, err := s.versionRepo.GetVersion(ctx, contentID, versionID)
	if err != nil {
		return nil, storeError(err, "version %d of content %d not found", versionID, contentID)
	}
	return version, nil
}

func (s *historyService) checkAccess(ctx context.Context, contentID uint, actor models.Actor) error {
	item, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return storeError(err, "content %d not found", contentID)
	}
	if !canMutate(actor, item) {
		return models.NewForbiddenError("user %d may not view the history of content %d", actor.ID, contentID)
	}
	return nil
}
