package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Rrens/article-hub/internal/api/response"
	"github.com/Rrens/article-hub/internal/repository/redis"
	"github.com/rs/zerolog/log"
)

// Limiter counts requests per key
type Limiter interface {
	Allow(ctx context.Context, key string) (redis.Decision, error)
}

// RateLimitMiddleware limits authenticated callers per user
type RateLimitMiddleware struct {
	limiter Limiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit applies rate limiting based on the authenticated user. It must run
// after Authenticate. A limiter failure lets the request through.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		decision, err := m.limiter.Allow(r.Context(), user.ID)
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			response.TooManyRequests(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
