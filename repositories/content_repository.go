package repositories

import (
	"context"
	"fmt"
	"time"

	"portal-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentRepository interface {
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(repo ContentRepository) error) error
	Create(ctx context.Context, item *models.ContentItem) error
	GetByID(ctx context.Context, id uint) (*models.ContentItem, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.ContentItem, error)
	GetBySlug(ctx context.Context, slug string) (*models.ContentItem, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	GetList(ctx context.Context, params models.ContentListParams) ([]models.ContentItem, int64, error)
	ListDueIDs(ctx context.Context, now time.Time) ([]uint, error)
	Update(ctx context.Context, item *models.ContentItem) error
	// Delete removes the item together with its history.
	Delete(ctx context.Context, id uint) error
	CreateVersion(ctx context.Context, version *models.ContentVersion) error
	NextVersionNumber(ctx context.Context, contentID uint) (int, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

var sortableColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"published_at": true,
	"scheduled_at": true,
	"title":        true,
	"id":           true,
}

func (r *contentRepository) Transaction(ctx context.Context, fn func(repo ContentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&contentRepository{db: tx})
	})
}

func (r *contentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	return &item, err
}

func (r *contentRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	query := r.db.WithContext(ctx)
	// SQLite has no row locks; its single writer already serializes commits.
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(&item, id).Error
	return &item, err
}

func (r *contentRepository) GetBySlug(ctx context.Context, slug string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error
	return &item, err
}

func (r *contentRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ContentItem{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *contentRepository) GetList(ctx context.Context, params models.ContentListParams) ([]models.ContentItem, int64, error) {
	var items []models.ContentItem
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ContentItem{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.AuthorID > 0 {
		query = query.Where("author_id = ?", params.AuthorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := params.SortBy
	if !sortableColumns[sortBy] {
		sortBy = "updated_at"
	}
	sortOrder := "desc"
	if params.SortOrder == "asc" {
		sortOrder = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).Order("id desc")

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	err := query.Offset((page - 1) * limit).Limit(limit).Find(&items).Error
	return items, total, err
}

func (r *contentRepository) ListDueIDs(ctx context.Context, now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.StatusScheduled, now).
		Order("scheduled_at asc").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *contentRepository) Update(ctx context.Context, item *models.ContentItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewContentVersionRepository(tx).DeleteVersionsByContentID(ctx, id); err != nil {
			return err
		}
		result := tx.Delete(&models.ContentItem{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *contentRepository) CreateVersion(ctx context.Context, version *models.ContentVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *contentRepository) NextVersionNumber(ctx context.Context, contentID uint) (int, error) {
	var maxVersion *int
	err := r.db.WithContext(ctx).Model(&models.ContentVersion{}).
		Where("content_id = ?", contentID).
		Select("MAX(version_number)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}
