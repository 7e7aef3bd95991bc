package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/article"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	"inkpress-ai-api/internal/interfaces/http/middleware"
)

// capturingArticleRepo 记录 List 收到的排序参数
type capturingArticleRepo struct {
	lastSort repository.Sort
}

func (m *capturingArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	return nil
}

func (m *capturingArticleRepo) GetByID(ctx context.Context, profileID, id string) (*entity.Article, error) {
	return nil, nil
}

func (m *capturingArticleRepo) ApplyUpdate(ctx context.Context, profileID, id string, update *repository.ArticleUpdate) error {
	return nil
}

func (m *capturingArticleRepo) Delete(ctx context.Context, profileID, id string) error {
	return nil
}

func (m *capturingArticleRepo) List(ctx context.Context, profileID string, filter *repository.ArticleFilter, sort repository.Sort, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	m.lastSort = sort
	items := []*entity.Article{
		entity.NewArticle(profileID, "First", "first"),
	}
	return repository.NewPagedResult(items, 1, pagination), nil
}

func newArticleListServer(repo *capturingArticleRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewArticleHandler(article.NewService(repo))
	engine := gin.New()
	engine.GET("/api/articles", func(c *gin.Context) {
		c.Set(middleware.ContextKeyProfileID, "p-1")
		h.List(c)
	})
	return engine
}

func getArticles(engine *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/articles"+query, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestListBindsSortByAndSortOrder(t *testing.T) {
	repo := &capturingArticleRepo{}
	engine := newArticleListServer(repo)

	w := getArticles(engine, "?sortBy=title&sortOrder=asc")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if repo.lastSort.Field != "title" {
		t.Errorf("sort field = %q, want title", repo.lastSort.Field)
	}
	if repo.lastSort.Order != repository.SortOrderAsc {
		t.Errorf("sort order = %q, lowercase asc must normalize to ascending", repo.lastSort.Order)
	}
}

func TestListDefaultsToDescending(t *testing.T) {
	repo := &capturingArticleRepo{}
	engine := newArticleListServer(repo)

	for _, query := range []string{"", "?sortOrder=sideways"} {
		if w := getArticles(engine, query); w.Code != http.StatusOK {
			t.Fatalf("status = %d for %q", w.Code, query)
		}
		if repo.lastSort.Order != repository.SortOrderDesc {
			t.Errorf("sort order for %q = %q, want descending fallback", query, repo.lastSort.Order)
		}
	}
}

func TestListResponseUsesArticlesKey(t *testing.T) {
	repo := &capturingArticleRepo{}
	engine := newArticleListServer(repo)

	w := getArticles(engine, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Articles []json.RawMessage `json:"articles"`
		Total    int64             `json:"total"`
		Limit    int               `json:"limit"`
		Offset   int               `json:"offset"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Articles) != 1 || body.Total != 1 {
		t.Errorf("body = %s, want one article under the articles key", w.Body.String())
	}
	if body.Limit != 20 || body.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want defaults 20/0", body.Limit, body.Offset)
	}
}
