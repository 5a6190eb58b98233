package service

import (
	"context"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockArticleRepository mocks the ArticleRepository interface
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

func (m *MockArticleRepository) List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Article), args.Error(1)
}

func (m *MockArticleRepository) Update(ctx context.Context, id string, update domain.ArticleUpdate) (*domain.Article, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockJobSubmitter mocks the JobSubmitter interface
type MockJobSubmitter struct {
	mock.Mock
}

func (m *MockJobSubmitter) Submit(ctx context.Context, name string, payload any) (string, error) {
	args := m.Called(ctx, name, payload)
	return args.String(0), args.Error(1)
}

// MockJobResultWaiter mocks the JobResultWaiter interface
type MockJobResultWaiter struct {
	mock.Mock
}

func (m *MockJobResultWaiter) WaitResult(ctx context.Context, jobID string, timeout time.Duration) (*domain.JobResult, error) {
	args := m.Called(ctx, jobID, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobResult), args.Error(1)
}
