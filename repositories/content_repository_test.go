package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"portal-cms/models"
	"portal-cms/testutil"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ContentRepositoryTestSuite struct {
	suite.Suite
	ctx      context.Context
	repo     ContentRepository
	versions ContentVersionRepository
	now      time.Time
}

func TestContentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ContentRepositoryTestSuite))
}

func (s *ContentRepositoryTestSuite) SetupTest() {
	db := testutil.NewDB(s.T())
	s.ctx = context.Background()
	s.repo = NewContentRepository(db)
	s.versions = NewContentVersionRepository(db)
	s.now = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ContentRepositoryTestSuite) insert(slug string, status models.ContentStatus, scheduledAt *time.Time) *models.ContentItem {
	item := &models.ContentItem{
		Type:        models.TypePost,
		AuthorID:    1,
		Title:       slug,
		Slug:        slug,
		Body:        "body",
		Tags:        []string{"a", "b"},
		Status:      status,
		ScheduledAt: scheduledAt,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	s.Require().NoError(s.repo.Create(s.ctx, item))
	return item
}

func (s *ContentRepositoryTestSuite) TestCreateAndRead() {
	item := s.insert("first", models.StatusDraft, nil)
	s.NotZero(item.ID)

	got, err := s.repo.GetByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, got.Tags)
	s.True(got.CreatedAt.Equal(s.now))

	bySlug, err := s.repo.GetBySlug(s.ctx, "first")
	s.Require().NoError(err)
	s.Equal(item.ID, bySlug.ID)

	_, err = s.repo.GetByID(s.ctx, 404)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *ContentRepositoryTestSuite) TestSlugIsUnique() {
	s.insert("same", models.StatusDraft, nil)

	err := s.repo.Create(s.ctx, &models.ContentItem{Title: "x", Slug: "same", Status: models.StatusDraft})
	s.True(errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	exists, err := s.repo.SlugExists(s.ctx, "same", 0)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *ContentRepositoryTestSuite) TestSlugExistsExcludesItself() {
	item := s.insert("mine", models.StatusDraft, nil)

	exists, err := s.repo.SlugExists(s.ctx, "mine", item.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ContentRepositoryTestSuite) TestListDueIDs() {
	past := s.now.Add(-time.Minute)
	exact := s.now
	future := s.now.Add(time.Minute)

	due1 := s.insert("due-1", models.StatusScheduled, &past)
	due2 := s.insert("due-2", models.StatusScheduled, &exact)
	s.insert("later", models.StatusScheduled, &future)
	s.insert("draft", models.StatusDraft, nil)

	ids, err := s.repo.ListDueIDs(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal([]uint{due1.ID, due2.ID}, ids)
}

func (s *ContentRepositoryTestSuite) TestGetListFiltersAndPages() {
	for _, slug := range []string{"a", "b", "c"} {
		s.insert(slug, models.StatusDraft, nil)
	}
	s.insert("p", models.StatusPublished, nil)

	items, total, err := s.repo.GetList(s.ctx, models.ContentListParams{Status: "draft", Page: 2, Limit: 2, SortBy: "title", SortOrder: "asc"})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Require().Len(items, 1)
	s.Equal("c", items[0].Title)

	_, _, err = s.repo.GetList(s.ctx, models.ContentListParams{SortBy: "title; DROP TABLE contents"})
	s.NoError(err)
}

func (s *ContentRepositoryTestSuite) TestVersionNumbersAndDelete() {
	item := s.insert("versioned", models.StatusDraft, nil)

	for i := 0; i < 3; i++ {
		err := s.repo.Transaction(s.ctx, func(repo ContentRepository) error {
			n, err := repo.NextVersionNumber(s.ctx, item.ID)
			if err != nil {
				return err
			}
			return repo.CreateVersion(s.ctx, models.NewContentVersion(item, n, 1, "change", s.now))
		})
		s.Require().NoError(err)
	}

	versions, err := s.versions.GetVersions(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Require().Len(versions, 3)
	s.Equal(3, versions[0].VersionNumber)
	s.Equal(1, versions[2].VersionNumber)

	_, err = s.versions.GetVersion(s.ctx, item.ID+1, versions[0].ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))

	s.Require().NoError(s.repo.Delete(s.ctx, item.ID))
	count, err := s.versions.CountByContentID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Zero(count)

	s.True(errors.Is(s.repo.Delete(s.ctx, item.ID), gorm.ErrRecordNotFound))
}

func (s *ContentRepositoryTestSuite) TestTransactionRollsBack() {
	item := s.insert("rollback", models.StatusDraft, nil)
	boom := errors.New("boom")

	err := s.repo.Transaction(s.ctx, func(repo ContentRepository) error {
		locked, err := repo.GetByIDForUpdate(s.ctx, item.ID)
		if err != nil {
			return err
		}
		locked.Title = "changed"
		if err := repo.Update(s.ctx, locked); err != nil {
			return err
		}
		if err := repo.CreateVersion(s.ctx, models.NewContentVersion(locked, 1, 1, "x", s.now)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.repo.GetByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("rollback", got.Title)

	count, err := s.versions.CountByContentID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Zero(count)
}
