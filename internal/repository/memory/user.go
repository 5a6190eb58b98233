// Package memory provides in-process implementations of the store and
// broker contracts, used by the handler, worker and end-to-end tests.
package memory

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/google/uuid"
)

// UserRepository keeps users in a map keyed by email
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

// NewUserRepository creates an empty user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: make(map[string]domain.User)}
}

// Create stores the user, enforcing email uniqueness
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrUserExists
	}

	user.ID = newID()
	r.byEmail[user.Email] = *user
	return nil
}

// GetByEmail returns nil, nil when the email is unknown
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// newID returns a 24-character hex identifier shaped like an ObjectID
func newID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:12])
}
