package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"dadsadvice/internal/config"
	"dadsadvice/internal/database"
	"dadsadvice/internal/handlers"
	"dadsadvice/internal/logger"
	"dadsadvice/internal/repository"
	"dadsadvice/internal/security"
	"dadsadvice/internal/service"
	"dadsadvice/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(cfg.LogLevel)
	zap.ReplaceGlobals(log)

	err := run(cfg, log)
	if err != nil {
		log.Error("Server exited with error", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("Database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	adviceRepo := repository.NewAdviceRepository(db)

	// Optional outbound integrations
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	var objectStore service.ObjectStore
	if cfg.MediaStorageEnabled {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:          cfg.MediaBucket,
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3UsePathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		objectStore = s3Store
	} else {
		log.Info("Object storage disabled, uploads only return public URLs")
	}

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.SecretKey)
	authService := service.NewAuthService(userRepo, tokens, cfg.AccessTokenExpiry, emailService, log)
	adviceService := service.NewAdviceService(adviceRepo, log)
	mediaService := service.NewMediaService(objectStore, cfg.MediaPublicBaseURL, cfg.UploadMaxSize, log)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, cfg.DatabaseType),
	)

	// Initialize handlers
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, log),
		Advice:         handlers.NewAdviceHandler(adviceService, log),
		Media:          handlers.NewMediaHandler(mediaService, log),
		Home:           handlers.NewHomeHandler(db, log),
		Middleware:     handlers.NewMiddleware(authService, log),
		Metrics:        handlers.NewMetrics(registry),
		Gatherer:       registry,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
