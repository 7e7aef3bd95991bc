package article

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	apperrors "inkpress-ai-api/pkg/errors"
)

// mockArticleRepo 在内存中完整实现部分更新语义
type mockArticleRepo struct {
	articles map[string]*entity.Article
}

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{articles: map[string]*entity.Article{}}
}

func (m *mockArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	m.articles[a.ID] = a
	return nil
}

func (m *mockArticleRepo) GetByID(ctx context.Context, profileID, id string) (*entity.Article, error) {
	a, ok := m.articles[id]
	if !ok || a.ProfileID != profileID {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (m *mockArticleRepo) ApplyUpdate(ctx context.Context, profileID, id string, update *repository.ArticleUpdate) error {
	a, ok := m.articles[id]
	if !ok || a.ProfileID != profileID {
		return errors.New("article not found")
	}
	if update.Title != nil {
		a.Title = *update.Title
	}
	if update.Slug != nil {
		a.Slug = *update.Slug
	}
	if update.Keywords != nil {
		a.Keywords = *update.Keywords
	}
	if update.Description != nil {
		a.Description = *update.Description
	}
	if update.Content != nil {
		a.Content = *update.Content
	}
	if update.StyleGuideID != nil {
		a.StyleGuideID = update.StyleGuideID
	}
	if update.Tone != nil {
		a.Tone = *update.Tone
	}
	if update.ContentLength != nil {
		a.ContentLength = *update.ContentLength
	}
	if update.ReadingLevel != nil {
		a.ReadingLevel = *update.ReadingLevel
	}
	if update.MetaTitle != nil {
		a.MetaTitle = *update.MetaTitle
	}
	if update.MetaDescription != nil {
		a.MetaDescription = *update.MetaDescription
	}
	if update.Status != nil {
		a.Status = *update.Status
	}
	if update.PublishedAt != nil {
		a.PublishedAt = update.PublishedAt
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (m *mockArticleRepo) Delete(ctx context.Context, profileID, id string) error {
	delete(m.articles, id)
	return nil
}

func (m *mockArticleRepo) List(ctx context.Context, profileID string, filter *repository.ArticleFilter, sort repository.Sort, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	var items []*entity.Article
	for _, a := range m.articles {
		if a.ProfileID != profileID {
			continue
		}
		if filter != nil && a.Status != filter.Status {
			continue
		}
		items = append(items, a)
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func TestCreateDraftDerivesSlugFromTitle(t *testing.T) {
	svc := NewService(newMockArticleRepo())

	created, err := svc.CreateDraft(context.Background(), "p-1", &DraftInput{
		Title: "Ten SEO Tips for 2026",
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if created.Slug != "ten-seo-tips-for-2026" {
		t.Errorf("slug = %q", created.Slug)
	}
	if created.Status != entity.ArticleStatusDraft {
		t.Errorf("status = %s, want draft", created.Status)
	}
}

func TestCreateDraftRoundTripsKeywordsInOrder(t *testing.T) {
	svc := NewService(newMockArticleRepo())

	created, err := svc.CreateDraft(context.Background(), "p-1", &DraftInput{
		Title:    "Ordered",
		Keywords: []string{"alpha", "beta"},
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	got, err := svc.Get(context.Background(), "p-1", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "alpha" || got.Keywords[1] != "beta" {
		t.Errorf("keywords = %v, want [alpha beta] in order", got.Keywords)
	}
}

func TestGetScopedToProfile(t *testing.T) {
	repo := newMockArticleRepo()
	svc := NewService(repo)

	created, err := svc.CreateDraft(context.Background(), "p-1", &DraftInput{Title: "Mine"})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	_, err = svc.Get(context.Background(), "p-2", created.ID)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeArticleNotFound {
		t.Fatalf("cross-profile read: err = %v, want article not found", err)
	}
}

func TestUpdateLeavesOmittedFieldsUntouched(t *testing.T) {
	repo := newMockArticleRepo()
	svc := NewService(repo)

	created, err := svc.CreateDraft(context.Background(), "p-1", &DraftInput{
		Title:       "Original",
		Content:     "original body",
		Description: "original description",
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	newTitle := "Renamed"
	updated, err := svc.Update(context.Background(), "p-1", created.ID, &UpdateInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Content != "original body" {
		t.Errorf("content changed: %q", updated.Content)
	}
	if updated.Description != "original description" {
		t.Errorf("description changed: %q", updated.Description)
	}
}

func TestPublishStampsPublishedAtOnce(t *testing.T) {
	repo := newMockArticleRepo()
	svc := NewService(repo)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	created, err := svc.CreateDraft(context.Background(), "p-1", &DraftInput{Title: "Post"})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	published := entity.ArticleStatusPublished
	first, err := svc.Update(context.Background(), "p-1", created.ID, &UpdateInput{Status: &published})
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if first.PublishedAt == nil || !first.PublishedAt.Equal(current) {
		t.Fatalf("published_at = %v, want %v", first.PublishedAt, current)
	}

	// 退回草稿后再次发布，发布时间保持首次值
	draft := entity.ArticleStatusDraft
	if _, err := svc.Update(context.Background(), "p-1", created.ID, &UpdateInput{Status: &draft}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	current = current.Add(48 * time.Hour)
	second, err := svc.Update(context.Background(), "p-1", created.ID, &UpdateInput{Status: &published})
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if second.PublishedAt == nil || !second.PublishedAt.Equal(first.PublishedAt.UTC()) {
		t.Errorf("published_at rewritten: %v, want %v", second.PublishedAt, first.PublishedAt)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	repo := newMockArticleRepo()
	svc := NewService(repo)

	if _, err := svc.CreateDraft(context.Background(), "p-1", &DraftInput{Title: "Draft"}); err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	published, err := svc.CreateDraft(context.Background(), "p-1", &DraftInput{Title: "Published"})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	status := entity.ArticleStatusPublished
	if _, err := svc.Update(context.Background(), "p-1", published.ID, &UpdateInput{Status: &status}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	result, err := svc.List(context.Background(), "p-1", &ListQuery{
		Status:     entity.ArticleStatusPublished,
		Pagination: repository.NewPagination(0, 20),
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != published.ID {
		t.Errorf("filtered items = %v", result.Items)
	}

	all, err := svc.List(context.Background(), "p-1", &ListQuery{Pagination: repository.NewPagination(0, 20)})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if all.Total != 2 {
		t.Errorf("total = %d, want 2", all.Total)
	}
}
