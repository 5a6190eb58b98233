package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/repository/redis"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Resolve(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (redis.Decision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(redis.Decision), args.Error(1)
}

var alice = &domain.User{ID: "u-alice", Email: "alice@x.com"}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(user.ID))
}

func TestAuthenticate(t *testing.T) {
	resolver := new(mockAuthenticator)
	resolver.On("Resolve", mock.Anything, "good").Return(alice, nil)
	resolver.On("Resolve", mock.Anything, "bad").Return(nil, domain.ErrUnauthenticated)
	resolver.On("Resolve", mock.Anything, "broken").Return(nil, errors.New("store down"))

	h := NewAuthMiddleware(resolver).Authenticate(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid", "Bearer good", http.StatusOK, "u-alice"},
		{"lowercase scheme", "bearer good", http.StatusOK, "u-alice"},
		{"missing", "", http.StatusUnauthorized, "Could not validate credentials"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "Could not validate credentials"},
		{"empty token", "Bearer  ", http.StatusUnauthorized, "Could not validate credentials"},
		{"rejected", "Bearer bad", http.StatusUnauthorized, "Could not validate credentials"},
		{"store failure", "Bearer broken", http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestRateLimit(t *testing.T) {
	reset := time.Date(2025, 1, 1, 12, 1, 0, 0, time.UTC)

	t.Run("allowed", func(t *testing.T) {
		limiter := new(mockLimiter)
		limiter.On("Allow", mock.Anything, "u-alice").
			Return(redis.Decision{Allowed: true, Limit: 10, Remaining: 9, ResetAt: reset}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), alice))
		NewRateLimitMiddleware(limiter).Limit(http.HandlerFunc(echoUser)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "1735732860", rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("exceeded", func(t *testing.T) {
		limiter := new(mockLimiter)
		limiter.On("Allow", mock.Anything, "u-alice").
			Return(redis.Decision{Allowed: false, Limit: 10, ResetAt: reset}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), alice))
		NewRateLimitMiddleware(limiter).Limit(http.HandlerFunc(echoUser)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "rate_limited")
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter := new(mockLimiter)
		limiter.On("Allow", mock.Anything, "u-alice").Return(redis.Decision{}, errors.New("redis down"))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), alice))
		NewRateLimitMiddleware(limiter).Limit(http.HandlerFunc(echoUser)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestIPThrottle(t *testing.T) {
	throttle, err := NewIPThrottle(0.001, 2, 16)
	require.NoError(t, err)
	h := throttle.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001").Code)

	rec := call("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other addresses have their own budget
	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}()

	h := middleware.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("Cookie", "session=abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "Request completed")
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, "request_id")
	assert.Contains(t, out, "[redacted]")
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "session=abc")
}
