package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/straye-as/toolshelf/internal/auth"
	"github.com/straye-as/toolshelf/internal/config"
	"github.com/straye-as/toolshelf/internal/http/handler"
	"github.com/straye-as/toolshelf/internal/http/middleware"
	"github.com/straye-as/toolshelf/internal/metrics"
	"github.com/straye-as/toolshelf/internal/storage"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/toolshelf/docs" // Register swagger docs
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	metrics        *metrics.Metrics
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	toolHandler    *handler.ToolHandler
	fileHandler    *handler.FileHandler
	authHandler    *handler.AuthHandler
	healthHandler  *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *metrics.Metrics,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	toolHandler *handler.ToolHandler,
	fileHandler *handler.FileHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		metrics:        metrics,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		toolHandler:    toolHandler,
		fileHandler:    fileHandler,
		authHandler:    authHandler,
		healthHandler:  healthHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	if rt.cfg.Server.EnableMetrics {
		r.Use(middleware.Metrics(rt.metrics))
	}
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Local bucket objects are user-uploaded pages and images, served
	// without the API's restrictive CSP and frame headers.
	if rt.cfg.Storage.Mode == "local" || rt.cfg.Storage.Mode == "" {
		r.Get(storage.LocalPublicPrefix+"/"+storage.BucketName+"/*", rt.fileHandler.ServeObject)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders(&rt.cfg.Security))

		// Health checks
		r.Get("/health", rt.healthHandler.Live)
		r.Get("/health/db", rt.healthHandler.Database)
		r.Get("/health/ready", rt.healthHandler.Ready)

		if rt.cfg.Server.EnableMetrics {
			r.Handle("/metrics", promhttp.Handler())
		}

		// Swagger documentation
		if rt.cfg.Server.EnableSwagger {
			r.Get("/swagger/*", httpSwagger.Handler(
				httpSwagger.URL("/swagger/doc.json"),
			))
		}

		// API v1 routes
		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/auth/token", rt.authHandler.Token)

			r.Route("/tools", func(r chi.Router) {
				r.Get("/", rt.toolHandler.List)
				r.Post("/", rt.toolHandler.Create)
				r.Get("/{id}", rt.toolHandler.GetByID)
				r.Patch("/{id}", rt.toolHandler.Update)
				r.Put("/{id}", rt.toolHandler.Update)

				r.With(rt.authMiddleware.RequireAdmin, middleware.TrackAdmin).
					Delete("/{id}", rt.toolHandler.Delete)
			})

			r.Post("/files", rt.fileHandler.Upload)
		})
	})

	return r
}
