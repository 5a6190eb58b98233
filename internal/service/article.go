package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/security"
	"github.com/rs/zerolog/log"
)

// ArticleService handles article operations
type ArticleService struct {
	articles      ArticleRepository
	jobs          JobSubmitter
	results       JobResultWaiter
	resultTimeout time.Duration
	now           func() time.Time
}

// NewArticleService creates a new article service. A nil results waiter or
// a zero timeout disables waiting for analysis results.
func NewArticleService(
	articles ArticleRepository,
	jobs JobSubmitter,
	results JobResultWaiter,
	resultTimeout time.Duration,
) *ArticleService {
	return &ArticleService{
		articles:      articles,
		jobs:          jobs,
		results:       results,
		resultTimeout: resultTimeout,
		now:           time.Now,
	}
}

// Create stores a new article authored by the caller
func (s *ArticleService) Create(ctx context.Context, caller *domain.User, input domain.ArticleCreate) (*domain.Article, error) {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	article := &domain.Article{
		Title:     deref(input.Title),
		Content:   deref(input.Content),
		Tags:      tags,
		Author:    caller.ID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	return article, nil
}

// List returns every article matching the optional search term and the
// optional comma-separated tag list
func (s *ArticleService) List(ctx context.Context, caller *domain.User, search, tags string) ([]domain.Article, error) {
	filter := domain.ArticleFilter{
		Search: strings.TrimSpace(search),
		Tags:   ParseTags(tags),
	}

	articles, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	return articles, nil
}

// Get retrieves an article by ID
func (s *ArticleService) Get(ctx context.Context, caller *domain.User, id string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, domain.ErrArticleNotFound
	}

	return article, nil
}

// Update changes title and/or content of an article owned by the caller
func (s *ArticleService) Update(ctx context.Context, caller *domain.User, id string, input domain.ArticleUpdate) (*domain.Article, error) {
	existing, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := security.RequireOwner(existing.Author, caller); err != nil {
		return nil, err
	}

	if input.Empty() {
		return existing, nil
	}

	updated, err := s.articles.Update(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	if updated == nil {
		// Deleted between the ownership check and the update
		return nil, domain.ErrArticleNotFound
	}

	return updated, nil
}

// Delete removes an article owned by the caller
func (s *ArticleService) Delete(ctx context.Context, caller *domain.User, id string) error {
	existing, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := security.RequireOwner(existing.Author, caller); err != nil {
		return err
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	return nil
}

// TriggerAnalysis queues the analysis job for an article and returns the
// job ID. Existence is checked by the job, not here.
func (s *ArticleService) TriggerAnalysis(ctx context.Context, id string) (string, error) {
	jobID, err := s.jobs.Submit(ctx, domain.JobAnalyzeArticle, domain.AnalyzeArticlePayload{ArticleID: id})
	if err != nil {
		return "", fmt.Errorf("failed to queue analysis: %w", err)
	}
	return jobID, nil
}

// AwaitAnalysis waits a bounded time for the analysis job and returns the
// refreshed article. It returns nil, nil when the job is still pending,
// failed, or the article no longer exists; none of those are errors for
// the caller.
func (s *ArticleService) AwaitAnalysis(ctx context.Context, jobID, articleID string) (*domain.Article, error) {
	if s.results == nil || s.resultTimeout <= 0 {
		return nil, nil
	}

	result, err := s.results.WaitResult(ctx, jobID, s.resultTimeout)
	if err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("Failed to wait for analysis result")
		return nil, nil
	}
	if result == nil {
		return nil, nil
	}
	if !result.Succeeded() {
		log.Warn().Str("job_id", jobID).Str("error", result.Error).Msg("Analysis job failed")
		return nil, nil
	}

	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// ParseTags splits a comma-separated tag list, trimming blanks. An absent
// list yields nil; a list of only blanks yields an empty, non-nil slice.
func ParseTags(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
