package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Rrens/article-hub/internal/api/response"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// visitorTTL bounds how long an idle address keeps its bucket
const visitorTTL = 10 * time.Minute

// IPThrottle is an in-process token bucket per client address, applied to
// the unauthenticated auth routes
type IPThrottle struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors *lru.LRU[string, *rate.Limiter]
}

// NewIPThrottle allows perSecond requests per address with the given burst,
// tracking at most cacheSize addresses
func NewIPThrottle(perSecond float64, burst, cacheSize int) (*IPThrottle, error) {
	if cacheSize <= 0 {
		return nil, errors.New("visitor cache size must be positive")
	}
	return &IPThrottle{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		visitors: lru.NewLRU[string, *rate.Limiter](cacheSize, nil, visitorTTL),
	}, nil
}

// Limit rejects requests over the address's budget with 429
func (t *IPThrottle) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := t.limiterFor(clientIP(r))
		if !limiter.Allow() {
			w.Header().Set("Retry-After", retryAfter(limiter))
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *IPThrottle) limiterFor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.visitors.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(t.limit, t.burst)
	t.visitors.Add(ip, l)
	return l
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func retryAfter(l *rate.Limiter) string {
	r := l.Reserve()
	delay := r.Delay()
	r.Cancel()

	secs := int(delay.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprint(secs)
}
