package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/straye-as/toolshelf/docs"
	"github.com/straye-as/toolshelf/internal/auth"
	"github.com/straye-as/toolshelf/internal/config"
	"github.com/straye-as/toolshelf/internal/database"
	"github.com/straye-as/toolshelf/internal/http/handler"
	"github.com/straye-as/toolshelf/internal/http/middleware"
	"github.com/straye-as/toolshelf/internal/http/router"
	"github.com/straye-as/toolshelf/internal/jobs"
	"github.com/straye-as/toolshelf/internal/logger"
	"github.com/straye-as/toolshelf/internal/metrics"
	"github.com/straye-as/toolshelf/internal/repository"
	"github.com/straye-as/toolshelf/internal/service"
	"github.com/straye-as/toolshelf/internal/storage"
)

// @title Toolshelf API
// @version 1.0
// @description Catalog of web tools with uploaded pages and cover images
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin bearer token from POST /auth/token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Swagger "try it out" targets the public host when one is configured
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	if u, err := url.Parse(basicCfg.App.PublicURL); err == nil && u.Host != "" {
		docs.SwaggerInfo.Host = u.Host
	}

	// In development: uses environment variables
	// In staging/production: may fetch from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	bucket, err := storage.NewBucket(ctx, &cfg.Storage, cfg.App.PublicURL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized",
		zap.String("mode", cfg.Storage.Mode),
		zap.String("bucket", storage.BucketName),
	)

	m := metrics.New(nil)

	toolRepo := repository.NewToolRepository(db)
	toolService := service.NewToolService(toolRepo, bucket, m, log)

	tokens := auth.NewTokenService(&cfg.Auth)
	authMiddleware := auth.NewMiddleware(tokens, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		m,
		authMiddleware,
		rateLimiter,
		handler.NewToolHandler(toolService, log),
		handler.NewFileHandler(toolService, cfg.Storage.MaxUploadSizeMB, log),
		handler.NewAuthHandler(tokens, log),
		handler.NewHealthHandler(db, bucket, log),
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.OrphanSweepEnabled {
		scheduler = jobs.NewScheduler(log)
		job := jobs.NewOrphanSweepJob(
			toolService,
			cfg.Jobs.OrphanSweepGraceDuration(),
			cfg.Jobs.OrphanSweepTimeoutDuration(),
			log,
		)
		if err := scheduler.AddJob(jobs.OrphanSweepJobName, cfg.Jobs.OrphanSweepCron, job); err != nil {
			log.Error("Failed to register orphan sweep job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
		}
	} else {
		log.Info("Orphan sweep disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
