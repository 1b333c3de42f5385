package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/lightstrail/aurora-backend/internal/alerts"
	"github.com/lightstrail/aurora-backend/internal/auth"
	"github.com/lightstrail/aurora-backend/internal/handlers"
	"github.com/lightstrail/aurora-backend/internal/mailer"
	"github.com/lightstrail/aurora-backend/internal/middleware"
	"github.com/lightstrail/aurora-backend/internal/repositories"
	"github.com/lightstrail/aurora-backend/internal/spaceweather"
	"github.com/lightstrail/aurora-backend/internal/validators"
	"github.com/lightstrail/aurora-backend/internal/weather"
	"github.com/lightstrail/aurora-backend/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies carries the non-repository services the routes need.
type Dependencies struct {
	Config      *config.Config
	Conditions  *spaceweather.Service
	Weather     *weather.Client
	Mailer      *mailer.Mailer
	Evaluator   *alerts.Evaluator
	GoogleOAuth *auth.GoogleOAuth
	Logger      *slog.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *slog.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Validator = validators.NewValidator()
	logger.Info("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *mongo.Database, deps Dependencies) {
	logger := deps.Logger

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static("/uploads", deps.Config.UploadsDir)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	prefRepo := repositories.NewMongoAlertPreferenceRepository(db)
	galleryRepo := repositories.NewMongoGalleryRepository(db)
	cityRepo := repositories.NewMongoCityRepository(db)
	bookingRepo := repositories.NewMongoTripBookingRepository(db)

	// --- Unprotected routes ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, deps.GoogleOAuth, deps.Config.JWTSecret, deps.Config.FrontendURL)
	authHandler.RegisterAuthRoutes(authGroup)

	forecastHandler := handlers.NewForecastHandler(deps.Conditions, logger)
	forecastHandler.RegisterForecastRoutes(e.Group("/auroraforecast"))

	cityHandler := handlers.NewCityHandler(cityRepo)
	cityHandler.RegisterCityRoutes(e.Group("/longitudeLatitude"))

	predictionHandler := handlers.NewPredictionHandler(deps.Conditions, deps.Weather, logger)
	predictionHandler.RegisterPredictionRoutes(e.Group("/api/predictions"))

	galleryHandler := handlers.NewGalleryHandler(galleryRepo, deps.Config.UploadsDir, logger)
	galleryHandler.RegisterGalleryRoutes(e.Group("/api/gallery"))

	glossaryHandler := handlers.NewGlossaryHandler()
	glossaryHandler.RegisterGlossaryRoutes(e.Group("/api/glossary"))

	tourismHandler := handlers.NewTourismHandler(bookingRepo, deps.Mailer, logger)
	tourismHandler.RegisterTourismRoutes(e.Group("/api/email"))

	// --- Protected routes (require JWT authentication) ---
	protectedAuth := e.Group("/auth", middleware.JWTAuthMiddleware(deps.Config.JWTSecret))
	authHandler.RegisterUserRoutes(protectedAuth)

	alertGroup := e.Group("/api/alerts", middleware.JWTAuthMiddleware(deps.Config.JWTSecret))
	alertHandler := handlers.NewAlertHandler(prefRepo, deps.Evaluator, deps.Mailer, logger)
	alertHandler.RegisterAlertRoutes(alertGroup)

	logger.Info("all routes configured")
}
