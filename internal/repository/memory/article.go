package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/Rrens/article-hub/internal/domain"
)

// ArticleRepository keeps articles in insertion order
type ArticleRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Article
}

// NewArticleRepository creates an empty article repository
func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{byID: make(map[string]domain.Article)}
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	article.ID = newID()
	r.byID[article.ID] = clone(*article)
	r.order = append(r.order, article.ID)
	return nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	article = clone(article)
	return &article, nil
}

func (r *ArticleRepository) List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	articles := []domain.Article{}
	for _, id := range r.order {
		article := r.byID[id]
		if search != "" &&
			!strings.Contains(strings.ToLower(article.Title), search) &&
			!strings.Contains(strings.ToLower(article.Content), search) {
			continue
		}
		if filter.Tags != nil && !slices.ContainsFunc(article.Tags, func(tag string) bool {
			return slices.Contains(filter.Tags, tag)
		}) {
			continue
		}
		articles = append(articles, clone(article))
	}
	return articles, nil
}

func (r *ArticleRepository) Update(ctx context.Context, id string, update domain.ArticleUpdate) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	article, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	if update.Title != nil {
		article.Title = *update.Title
	}
	if update.Content != nil {
		article.Content = *update.Content
	}
	r.byID[id] = article

	article = clone(article)
	return &article, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

// SetAnalysis reports false when the article does not exist
func (r *ArticleRepository) SetAnalysis(ctx context.Context, id string, analysis domain.Analysis) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	article, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	article.Analysis = &analysis
	r.byID[id] = article
	return true, nil
}

func (r *ArticleRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func clone(a domain.Article) domain.Article {
	a.Tags = slices.Clone(a.Tags)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Analysis != nil {
		analysis := *a.Analysis
		a.Analysis = &analysis
	}
	return a
}
