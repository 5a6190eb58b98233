package service

import (
	"context"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// UserRepository is the users collection as seen by the services
type UserRepository interface {
	// Create persists the user and sets its ID. It returns
	// domain.ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) error
	// GetByEmail returns nil, nil when no user has the email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ArticleRepository is the articles collection as seen by the services
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	// GetByID returns nil, nil when no article has the id
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error)
	Update(ctx context.Context, id string, update domain.ArticleUpdate) (*domain.Article, error)
	Delete(ctx context.Context, id string) error
}

// JobSubmitter enqueues a background job without waiting for it
type JobSubmitter interface {
	Submit(ctx context.Context, name string, payload any) (string, error)
}

// JobResultWaiter blocks until a submitted job reports a result. It returns
// nil, nil when the timeout elapses first.
type JobResultWaiter interface {
	WaitResult(ctx context.Context, jobID string, timeout time.Duration) (*domain.JobResult, error)
}

// TokenVerifier verifies bearer tokens
type TokenVerifier interface {
	Verify(tokenString string) (jwt.MapClaims, error)
}

// TokenIssuer issues token pairs and verifies tokens
type TokenIssuer interface {
	TokenVerifier
	GenerateTokenPair(email string) (*domain.TokenPair, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(plain, hash string) bool
}
