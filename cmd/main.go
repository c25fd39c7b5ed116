package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/hackslate/hackathon-system/config"
	"github.com/hackslate/hackathon-system/db"
	"github.com/hackslate/hackathon-system/handlers"
	"github.com/hackslate/hackathon-system/live"
	"github.com/hackslate/hackathon-system/middleware"
	"github.com/hackslate/hackathon-system/repositories"
	"github.com/hackslate/hackathon-system/routes"
	"github.com/hackslate/hackathon-system/services"
	"github.com/hackslate/hackathon-system/storage"
)

const schedulerInterval = 30 * time.Second // How often the status scheduler runs

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := db.Migrate(migrateCtx, dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("live event hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	projectRepo := repositories.NewPostgresProjectRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	logger.Info("repositories initialized")

	tokenService := services.NewTokenService(cfg.JWTSecretKey, cfg.SessionTokenTTL, cfg.AdminGateTokenTTL)
	authService := services.NewAuthService(userRepo, cfg.AdminGatePassword)
	userService := services.NewUserService(userRepo, cloudflareUploader)
	projectService := services.NewProjectService(projectRepo, teamRepo, userRepo, cloudflareUploader, hub, logger)
	searchService := services.NewSearchService(userRepo, projectRepo)

	var emailService *services.EmailService
	if cfg.SMTPHost != "" {
		emailService = services.NewEmailService(cfg)
	} else {
		logger.Warn("SMTP not configured, verification emails disabled")
	}
	logger.Info("services initialized")

	// Moves planned projects to ongoing once their start date passes.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("project status scheduler started", slog.Duration("interval", schedulerInterval))

		if err := projectService.SyncStatusesByDates(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := projectService.SyncStatusesByDates(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	router := routes.InitRoutes(routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, tokenService, emailService, logger),
		Admin:     handlers.NewAdminHandler(authService, tokenService, emailService, logger),
		User:      handlers.NewUserHandler(userService),
		Project:   handlers.NewProjectHandler(projectService),
		Search:    handlers.NewSearchHandler(searchService),
		Websocket: handlers.NewWebsocketHandler(hub, projectService, logger),
	}, authMiddleware)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shut down gracefully")
		}
	}
}
