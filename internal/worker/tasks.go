// Package worker runs background jobs consumed from the job queue.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/logging"
)

// ErrUnknownJob is returned for job names no handler is registered for
var ErrUnknownJob = errors.New("unknown job")

// ArticleStore is the part of the articles collection the jobs touch
type ArticleStore interface {
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	// SetAnalysis reports false when the article does not exist
	SetAnalysis(ctx context.Context, id string, analysis domain.Analysis) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// LogStore is the logs collection
type LogStore interface {
	Insert(ctx context.Context, entry domain.LogEntry) error
}

// Tasks implements the job handlers
type Tasks struct {
	articles ArticleStore
	logs     LogStore
	topics   *logging.Topics
	now      func() time.Time
}

// NewTasks creates the job handlers. A nil topics discards file output.
func NewTasks(articles ArticleStore, logs LogStore, topics *logging.Topics) *Tasks {
	if topics == nil {
		topics = logging.NopTopics()
	}
	return &Tasks{
		articles: articles,
		logs:     logs,
		topics:   topics,
		now:      time.Now,
	}
}

// Handle dispatches a job to its handler by name
func (t *Tasks) Handle(ctx context.Context, job domain.Job) error {
	switch job.Name {
	case domain.JobSendWelcomeEmail:
		var p domain.WelcomeEmailPayload
		if err := decode(job, &p); err != nil {
			return err
		}
		return t.SendWelcomeEmail(ctx, p)

	case domain.JobAnalyzeArticle:
		var p domain.AnalyzeArticlePayload
		if err := decode(job, &p); err != nil {
			return err
		}
		return t.AnalyzeArticle(ctx, p)

	case domain.JobLogArticlesCount:
		return t.LogArticlesCount(ctx)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, job.Name)
	}
}

// SendWelcomeEmail records that the new user was welcomed
func (t *Tasks) SendWelcomeEmail(ctx context.Context, p domain.WelcomeEmailPayload) error {
	line := fmt.Sprintf("Welcome email sent to %s (%s)", p.Email, p.Name)

	t.topics.Users.Info().Msg(line)
	return t.record(ctx, domain.LogTypeUser, line)
}

// AnalyzeArticle computes and stores the article's analysis. A missing
// article is not an error.
func (t *Tasks) AnalyzeArticle(ctx context.Context, p domain.AnalyzeArticlePayload) error {
	article, err := t.articles.GetByID(ctx, p.ArticleID)
	if err != nil {
		return fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil
	}

	if _, err := t.articles.SetAnalysis(ctx, p.ArticleID, Analyze(article)); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

// LogArticlesCount records the current number of articles
func (t *Tasks) LogArticlesCount(ctx context.Context) error {
	n, err := t.articles.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}

	line := fmt.Sprintf("[beat] Total articles in DB: %d", n)
	t.topics.Articles.Info().Int64("count", n).Msg(line)
	return t.record(ctx, domain.LogTypeArticle, line)
}

// Analyze returns the whitespace-delimited word count of the content and
// the number of distinct tags
func Analyze(article *domain.Article) domain.Analysis {
	tags := make(map[string]struct{}, len(article.Tags))
	for _, tag := range article.Tags {
		tags[tag] = struct{}{}
	}
	return domain.Analysis{
		WordCount:  len(strings.Fields(article.Content)),
		UniqueTags: len(tags),
	}
}

func (t *Tasks) record(ctx context.Context, typ, message string) error {
	err := t.logs.Insert(ctx, domain.LogEntry{
		Type:      typ,
		Message:   message,
		CreatedAt: t.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record log entry: %w", err)
	}
	return nil
}

func decode(job domain.Job, v any) error {
	if err := json.Unmarshal(job.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", job.Name, err)
	}
	return nil
}
