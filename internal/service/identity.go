package service

import (
	"context"
	"fmt"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/security"
)

// IdentityResolver maps a bearer token to a persisted user
type IdentityResolver struct {
	tokens        TokenVerifier
	users         UserRepository
	rejectRefresh bool
}

// NewIdentityResolver creates a new identity resolver. When rejectRefresh
// is set, tokens carrying the refresh type marker are refused.
func NewIdentityResolver(tokens TokenVerifier, users UserRepository, rejectRefresh bool) *IdentityResolver {
	return &IdentityResolver{
		tokens:        tokens,
		users:         users,
		rejectRefresh: rejectRefresh,
	}
}

// Resolve returns the user the token was issued to. A bad or expired token
// and a vanished user both yield domain.ErrUnauthenticated; only store
// failures produce a different error.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	if r.rejectRefresh && security.TokenType(claims) == security.TokenTypeRefresh {
		return nil, domain.ErrUnauthenticated
	}

	email, err := claims.GetSubject()
	if err != nil || email == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	return user, nil
}
