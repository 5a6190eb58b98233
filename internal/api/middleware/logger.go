package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger logs one line per request and attaches a request-scoped logger to
// the context. Credentials in headers are never logged.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := log.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dict("headers", scrubbedHeaders(r.Header)).
			Msg("Incoming request")

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Msg("Request completed")
	})
}

func scrubbedHeaders(h http.Header) *zerolog.Event {
	dict := zerolog.Dict()
	for k, v := range h {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "authorization") || strings.Contains(lower, "cookie") {
			dict.Str(k, "[redacted]")
			continue
		}
		dict.Strs(k, v)
	}
	return dict
}
