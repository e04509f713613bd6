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

	"github.com/mokki-app/mokki/config"
	"github.com/mokki-app/mokki/db"
	"github.com/mokki-app/mokki/handlers"
	"github.com/mokki-app/mokki/realtime"
	"github.com/mokki-app/mokki/repositories"
	api "github.com/mokki-app/mokki/routes"
	"github.com/mokki-app/mokki/services"
	"github.com/mokki-app/mokki/storage"
	_ "github.com/lib/pq"
)

// schedulerInterval controls how often past stays are swept to completed.
const schedulerInterval = 1 * time.Hour

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

	redisClient, err := db.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	if redisClient == nil {
		logger.Warn("REDIS_URL not set, running without cache")
	} else {
		defer redisClient.Close()
		logger.Info("redis connection established")
	}

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

	hub := realtime.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	houseRepo := repositories.NewPostgresHouseRepository(dbConn)
	invitationRepo := repositories.NewPostgresInvitationRepository(dbConn)
	stayRepo := repositories.NewPostgresStayRepository(dbConn)
	expenseRepo := repositories.NewPostgresExpenseRepository(dbConn)
	mediaRepo := repositories.NewPostgresMediaRepository(dbConn)
	logger.Info("repositories initialized")

	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo)
	houseService := services.NewHouseService(houseRepo)
	inviteService := services.NewInviteService(invitationRepo, houseRepo, hub)
	stayService := services.NewStayService(stayRepo, houseRepo, hub, logger)
	expenseService := services.NewExpenseService(expenseRepo, houseRepo, hub)
	mediaService := services.NewMediaService(mediaRepo, houseRepo, uploader, logger)
	weatherService := services.NewWeatherService(houseRepo, redisClient, nil, cfg.WeatherBaseURL, logger)
	dashboardService := services.NewDashboardService(houseRepo, stayRepo, expenseRepo)
	logger.Info("services initialized")

	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("stay completion scheduler started", slog.Duration("interval", schedulerInterval))

		if err := stayService.AutoCompletePastStays(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := stayService.AutoCompletePastStays(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	router := api.SetupRoutes(api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, inviteService, emailService, cfg.JWTSecretKey, logger),
		Dashboard: handlers.NewDashboardHandler(dashboardService, authService, inviteService, logger),
		House:     handlers.NewHouseHandler(houseService),
		Invite:    handlers.NewInviteHandler(inviteService, houseService, emailService, cfg.PublicURL, logger),
		Stay:      handlers.NewStayHandler(stayService),
		Expense:   handlers.NewExpenseHandler(expenseService),
		Media:     handlers.NewMediaHandler(mediaService),
		Weather:   handlers.NewWeatherHandler(weatherService),
		WebSocket: handlers.NewWebSocketHandler(hub, houseService, logger),
	}, []byte(cfg.JWTSecretKey))
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
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
