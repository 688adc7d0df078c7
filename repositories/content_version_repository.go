package repositories

import (
	"context"

	"portal-cms/models"

	"gorm.io/gorm"
)

// ContentVersionRepository reads the history store. Snapshots are written
// only by ContentRepository.CreateVersion inside a lifecycle commit.
type ContentVersionRepository interface {
	GetVersions(ctx context.Context, contentID uint) ([]models.ContentVersion, error)
	GetVersion(ctx context.Context, contentID, versionID uint) (*models.ContentVersion, error)
	GetVersionByID(ctx context.Context, versionID uint) (*models.ContentVersion, error)
	CountByContentID(ctx context.Context, contentID uint) (int64, error)
	DeleteVersionsByContentID(ctx context.Context, contentID uint) error
}

type contentVersionRepository struct {
	db *gorm.DB
}

func NewContentVersionRepository(db *gorm.DB) ContentVersionRepository {
	return &contentVersionRepository{db: db}
}

// GetVersions returns the snapshots of an item, newest first.
func (r *contentVersionRepository) GetVersions(ctx context.Context, contentID uint) ([]models.ContentVersion, error) {
	var versions []models.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("id desc").
		Find(&versions).Error
	return versions, err
}

func (r *contentVersionRepository) GetVersion(ctx context.Context, contentID, versionID uint) (*models.ContentVersion, error) {
	var version models.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND id = ?", contentID, versionID).
		First(&version).Error
	return &version, err
}

func (r *contentVersionRepository) GetVersionByID(ctx context.Context, versionID uint) (*models.ContentVersion, error) {
	var version models.ContentVersion
	err := r.db.WithContext(ctx).First(&version, versionID).Error
	return &version, err
}

func (r *contentVersionRepository) CountByContentID(ctx context.Context, contentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContentVersion{}).
		Where("content_id = ?", contentID).
		Count(&count).Error
	return count, err
}

func (r *contentVersionRepository) DeleteVersionsByContentID(ctx context.Context, contentID uint) error {
	return r.db.WithContext(ctx).Where("content_id = ?", contentID).Delete(&models.ContentVersion{}).Error
}
