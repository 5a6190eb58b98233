package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Rrens/article-hub/internal/api/response"
	"github.com/Rrens/article-hub/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to a user
type Authenticator interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware handles bearer token authentication
type AuthMiddleware struct {
	resolver Authenticator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(resolver Authenticator) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate resolves the caller and stores it in the request context.
// Every authentication failure gets the same 401 body.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.FromError(w, r, domain.ErrUnauthenticated)
			return
		}

		user, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrAuthentication) {
				response.FromError(w, r, err)
				return
			}
			response.FromError(w, r, domain.ErrUnauthenticated)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// WithUser returns a copy of ctx carrying the user
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
