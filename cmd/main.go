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

	"github.com/sketcher2345/hackathon-platform/config"
	"github.com/sketcher2345/hackathon-platform/db"
	"github.com/sketcher2345/hackathon-platform/handlers"
	"github.com/sketcher2345/hackathon-platform/live"
	"github.com/sketcher2345/hackathon-platform/repositories"
	"github.com/sketcher2345/hackathon-platform/routes"
	"github.com/sketcher2345/hackathon-platform/services"
	"github.com/sketcher2345/hackathon-platform/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	hostRepo := repositories.NewPostgresHostRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	hackathonRepo := repositories.NewPostgresHackathonRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	txManager := repositories.NewTxManager(dbConn)
	logger.Info("repositories initialized")

	jwtSecret := []byte(cfg.JWTSecretKey)

	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(hostRepo, jwtSecret)
	hackathonService := services.NewHackathonService(
		txManager, hackathonRepo, teamRepo, registrationRepo, uploader, hub, logger)
	registrationService := services.NewRegistrationService(
		txManager, registrationRepo, teamRepo, hackathonRepo, emailService, hub, logger)
	rosterService := services.NewRosterService(
		txManager, hackathonRepo, teamRepo, userRepo, submissionRepo, hub, logger)
	winnerService := services.NewWinnerService(txManager, hackathonRepo, teamRepo, hub)
	logger.Info("services initialized")

	router := routes.SetupRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Hackathon:    handlers.NewHackathonHandler(hackathonService, winnerService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Roster:       handlers.NewRosterHandler(rosterService),
		WebSocket:    handlers.NewWebSocketHandler(hub, jwtSecret, logger),
	}, jwtSecret)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
