package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &domain.User{Email: "u1@x.com", Name: "U1"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Len(t, user.ID, 24)

	err := repo.Create(ctx, &domain.User{Email: "u1@x.com", Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	found, err := repo.GetByEmail(ctx, "u1@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.GetByEmail(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestArticleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository()

	a := &domain.Article{Title: "FastAPI Guide", Content: "hello", Tags: []string{"python"}, Author: "u1"}
	b := &domain.Article{Title: "Other", Content: "about FASTAPI", Tags: []string{"web"}, Author: "u2"}
	c := &domain.Article{Title: "Go", Content: "chi", Author: "u1"}
	for _, article := range []*domain.Article{a, b, c} {
		require.NoError(t, repo.Create(ctx, article))
	}

	list, err := repo.List(ctx, domain.ArticleFilter{Search: "fastapi"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	list, err = repo.List(ctx, domain.ArticleFilter{Search: "fastapi", Tags: []string{"web", "rust"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	list, err = repo.List(ctx, domain.ArticleFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, []string{}, list[2].Tags)

	// Returned values are copies
	list[0].Tags[0] = "mutated"
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, got.Tags)

	content := "new body"
	updated, err := repo.Update(ctx, a.ID, domain.ArticleUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "FastAPI Guide", updated.Title)
	assert.Equal(t, content, updated.Content)

	gone, err := repo.Update(ctx, "missing", domain.ArticleUpdate{Content: &content})
	require.NoError(t, err)
	assert.Nil(t, gone)

	ok, err := repo.SetAnalysis(ctx, a.ID, domain.Analysis{WordCount: 2, UniqueTags: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, a.ID))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err = repo.SetAnalysis(ctx, a.ID, domain.Analysis{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueue(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	id, err := q.Submit(ctx, domain.JobAnalyzeArticle, domain.AnalyzeArticlePayload{ArticleID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Pending())

	job, err := q.Consume(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, domain.JobAnalyzeArticle, job.Name)

	var payload domain.AnalyzeArticlePayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, "a1", payload.ArticleID)

	none, err := q.Consume(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, none)

	pending, err := q.WaitResult(ctx, id, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, pending)

	require.NoError(t, q.PublishResult(ctx, domain.JobResult{JobID: id, Status: domain.JobStatusSucceeded}))
	result, err := q.WaitResult(ctx, id, time.Second)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Succeeded())
}

func TestArticleRepository_TagFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository()
	require.NoError(t, repo.Create(ctx, &domain.Article{Title: "A", Tags: []string{"a"}}))
	require.NoError(t, repo.Create(ctx, &domain.Article{Title: "B"}))

	all, err := repo.List(ctx, domain.ArticleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := repo.List(ctx, domain.ArticleFilter{Tags: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}
