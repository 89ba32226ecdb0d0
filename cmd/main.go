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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/peladahub/pelada-system/config"
	"github.com/peladahub/pelada-system/db"
	"github.com/peladahub/pelada-system/handlers"
	"github.com/peladahub/pelada-system/live"
	"github.com/peladahub/pelada-system/middleware"
	"github.com/peladahub/pelada-system/report"
	"github.com/peladahub/pelada-system/repositories"
	api "github.com/peladahub/pelada-system/routes"
	"github.com/peladahub/pelada-system/services"
	"github.com/peladahub/pelada-system/standings"
	"github.com/peladahub/pelada-system/storage"
)

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

	// Report sharing is optional: without R2 credentials exports are
	// download-only.
	var uploader storage.FileUploader
	if cfg.ShareEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
	} else {
		logger.Info("report sharing disabled, R2 is not configured")
	}

	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	teamRepo := repositories.NewPostgresRoundTeamRepository(dbConn)
	entryRepo := repositories.NewPostgresRoundEntryRepository(dbConn)
	cashRepo := repositories.NewPostgresCashRepository(dbConn)
	settingsRepo := repositories.NewPostgresSettingsRepository(dbConn)
	logger.Info("Repositories initialized")

	calculator := standings.NewCalculator(standings.ThreeOneZero)

	authService := services.NewAuthService(userRepo, settingsRepo)
	playerService := services.NewPlayerService(playerRepo)
	roundService := services.NewRoundService(dbConn, roundRepo, teamRepo, entryRepo, playerRepo, standings.ThreeOneZero)
	standingsService := services.NewStandingsService(playerRepo, roundRepo, entryRepo, calculator, wsHub)
	cashService := services.NewCashService(cashRepo, entryRepo, roundRepo, settingsRepo)
	settingsService := services.NewSettingsService(settingsRepo)
	importService := services.NewImportService(playerRepo, teamRepo, roundService)
	exportService := services.NewExportService(standingsService, settingsRepo, report.NewPDFBuilder(), uploader)
	logger.Info("Services initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	playerHandler := handlers.NewPlayerHandler(playerService)
	roundHandler := handlers.NewRoundHandler(roundService, standingsService)
	standingsHandler := handlers.NewStandingsHandler(standingsService, exportService)
	cashHandler := handlers.NewCashHandler(cashService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	importHandler := handlers.NewImportHandler(importService, standingsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		playerHandler,
		roundHandler,
		standingsHandler,
		cashHandler,
		settingsHandler,
		importHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

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
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
