package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Rrens/article-hub/internal/api/response"
	"github.com/rs/zerolog/log"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency whose reachability gates readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple liveness response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports ready only when every named dependency answers a ping
func ReadyCheck(deps map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := make(map[string]string, len(names))
		ready := true
		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Str("dependency", name).Msg("Dependency not ready")
				status[name] = "unavailable"
				ready = false
				continue
			}
			status[name] = "ok"
		}

		if !ready {
			response.JSON(w, http.StatusServiceUnavailable, status)
			return
		}

		status["status"] = "ready"
		response.OK(w, status)
	}
}
