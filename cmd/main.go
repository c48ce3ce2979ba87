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

	"github.com/courtclub/tournament-engine/config"
	"github.com/courtclub/tournament-engine/db"
	"github.com/courtclub/tournament-engine/handlers"
	"github.com/courtclub/tournament-engine/live"
	"github.com/courtclub/tournament-engine/repositories"
	api "github.com/courtclub/tournament-engine/routes"
	"github.com/courtclub/tournament-engine/services"
	"github.com/courtclub/tournament-engine/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
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

	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	ledgerRepo := repositories.NewPostgresLedgerRepository(dbConn)
	pledgeRepo := repositories.NewPostgresPledgeRepository(dbConn)
	lotRepo := repositories.NewPostgresLotRepository(dbConn)
	bidRepo := repositories.NewPostgresBidRepository(dbConn)
	logger.Info("repositories initialized")

	policy := services.EnginePolicy{
		SetWinAwardCents:      cfg.SetWinAwardCents,
		AutoResolveAwardCents: cfg.AutoResolveAwardCents,
		AllowNegativeBalances: cfg.AllowNegativeBalances,
		MaxByesPerPlayer:      cfg.MaxByesPerPlayer,
	}

	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		roundRepo,
		matchRepo,
		ledgerRepo,
		lotRepo,
		policy,
		wsHub,
		logger,
	)
	matchService := services.NewMatchService(
		dbConn,
		matchRepo,
		ledgerRepo,
		policy,
		wsHub,
		logger,
	)
	auctionService := services.NewAuctionService(
		dbConn,
		tournamentRepo,
		pledgeRepo,
		lotRepo,
		bidRepo,
		ledgerRepo,
		wsHub,
		logger,
	)
	pledgeService := services.NewPledgeService(pledgeRepo, tournamentRepo, cloudflareUploader, logger)
	demoService := services.NewDemoService(tournamentService, pledgeService, logger)
	logger.Info("services initialized")

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	matchHandler := handlers.NewMatchHandler(matchService)
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	pledgeHandler := handlers.NewPledgeHandler(pledgeService)
	demoHandler := handlers.NewDemoHandler(demoService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Config{
			JWTSecret:         []byte(cfg.JWTSecretKey),
			AdminKeyHash:      cfg.AdminKeyHash,
			CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		},
		tournamentHandler,
		matchHandler,
		auctionHandler,
		pledgeHandler,
		demoHandler,
		webSocketHandler,
	)
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

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
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
