package api

import (
	"net/http"

	"github.com/Rrens/article-hub/internal/api/handler"
	customMiddleware "github.com/Rrens/article-hub/internal/api/middleware"
	"github.com/Rrens/article-hub/internal/config"
	"github.com/Rrens/article-hub/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Services are the application components the router exposes
type Services struct {
	Users    *service.UserService
	Articles *service.ArticleService
	Identity *service.IdentityResolver

	// RateLimiter limits authenticated callers. Nil disables it.
	RateLimiter customMiddleware.Limiter

	// Readiness lists the dependencies pinged by /ready
	Readiness map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, svc Services) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(svc.Users)
	articleHandler := handler.NewArticleHandler(svc.Articles)

	authMiddleware := customMiddleware.NewAuthMiddleware(svc.Identity)

	protected := []func(http.Handler) http.Handler{authMiddleware.Authenticate}
	if svc.RateLimiter != nil && cfg.Security.RateLimit.Enabled {
		protected = append(protected, customMiddleware.NewRateLimitMiddleware(svc.RateLimiter).Limit)
	}

	throttle := func(next http.Handler) http.Handler { return next }
	if t := cfg.Security.AuthThrottle; t.Enabled {
		ipThrottle, err := customMiddleware.NewIPThrottle(t.RequestsPerSecond, t.Burst, t.CacheSize)
		if err != nil {
			return nil, err
		}
		throttle = ipThrottle.Limit
	}

	if !cfg.Auth.AnalyzeRequiresAuth {
		log.Warn().Msg("Article analysis route is public (auth.analyze_requires_auth=false)")
	}
	if !cfg.Auth.RejectRefreshAsAccess {
		log.Warn().Msg("Refresh tokens are accepted as bearer credentials (auth.reject_refresh_as_access=false)")
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(svc.Readiness))

		r.Route("/auth", func(r chi.Router) {
			r.With(throttle).Post("/register", authHandler.Register)
			r.With(throttle).Post("/login", authHandler.Login)
			r.With(throttle).Post("/refresh", authHandler.Refresh)
			r.With(protected...).Get("/profile", authHandler.Profile)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(protected...)

				r.Post("/", articleHandler.Create)
				r.Get("/", articleHandler.List)
				r.Get("/{articleID}", articleHandler.Get)
				r.Put("/{articleID}", articleHandler.Update)
				r.Delete("/{articleID}", articleHandler.Delete)
			})

			if cfg.Auth.AnalyzeRequiresAuth {
				r.With(protected...).Post("/{articleID}/analyze", articleHandler.Analyze)
			} else {
				r.Post("/{articleID}/analyze", articleHandler.Analyze)
			}
		})
	})

	return r, nil
}
