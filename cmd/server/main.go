package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/alerts"
	"github.com/lightstrail/aurora-backend/internal/auth"
	"github.com/lightstrail/aurora-backend/internal/mailer"
	"github.com/lightstrail/aurora-backend/internal/observability"
	"github.com/lightstrail/aurora-backend/internal/repositories"
	"github.com/lightstrail/aurora-backend/internal/router"
	"github.com/lightstrail/aurora-backend/internal/spaceweather"
	"github.com/lightstrail/aurora-backend/internal/weather"
	"github.com/lightstrail/aurora-backend/pkg/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database connection
	db, err := config.InitDB(cfg.MongoURI)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	mongoDB := db.Mongo.Database(cfg.MongoDBName)
	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	// Upstream clients
	conditions := spaceweather.NewService(spaceweather.Options{
		AuroraAPIBaseURL: cfg.AuroraAPIBaseURL,
		OpenMeteoBaseURL: cfg.OpenMeteoBaseURL,
		NOAABaseURL:      cfg.NOAABaseURL,
		Timeout:          cfg.UpstreamTimeout,
		CacheFresh:       cfg.ForecastCacheFresh,
		CacheStale:       cfg.ForecastCacheStale,
		Logger:           logger,
		Clock:            clock,
		Metrics:          metrics,
	})
	weatherClient := weather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.UpstreamTimeout, logger)

	// Mail dispatch
	mail, err := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		logger.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}

	// Alert pipeline
	prefRepo := repositories.NewMongoAlertPreferenceRepository(mongoDB)
	evaluator := alerts.NewEvaluator(prefRepo, conditions, mail, logger, clock, metrics)
	scheduler := alerts.NewScheduler(evaluator, cfg.AlertInterval, cfg.AlertStartupDelay, logger, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go scheduler.Run(ctx)

	// Google OAuth is optional; routes are disabled without credentials.
	googleOAuth, err := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if err != nil {
		logger.Warn("google sign-in disabled", "reason", err)
		googleOAuth = nil
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e, logger)

	// Setup routes and dependencies
	router.SetupRoutes(e, mongoDB, router.Dependencies{
		Config:      cfg,
		Conditions:  conditions,
		Weather:     weatherClient,
		Mailer:      mail,
		Evaluator:   evaluator,
		GoogleOAuth: googleOAuth,
		Logger:      logger,
	})

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()
	logger.Info("server started", "port", cfg.Port, "env", cfg.Env)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
