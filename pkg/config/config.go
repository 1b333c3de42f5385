package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port        string
	Env         string
	MongoURI    string
	MongoDBName string
	JWTSecret   string
	FrontendURL string
	UploadsDir  string

	// SMTP settings for alert and booking emails.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Upstream API settings.
	AuroraAPIBaseURL   string
	OpenMeteoBaseURL   string
	NOAABaseURL        string
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	UpstreamTimeout    time.Duration
	ForecastCacheFresh time.Duration
	ForecastCacheStale time.Duration

	// Alert scheduler settings.
	AlertInterval     time.Duration
	AlertStartupDelay time.Duration

	// Google OAuth settings.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "3002"),
		Env:         getEnv("ENV", "development"),
		MongoURI:    os.Getenv("MONGO_CONNECTION"),
		MongoDBName: getEnv("MONGO_DB_NAME", "lightstrail"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		UploadsDir:  getEnv("UPLOADS_DIR", "./uploads"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("EMAIL_USER"),
		SMTPPassword: os.Getenv("EMAIL_PASSWORD"),
		SMTPFrom:     getEnv("EMAIL_FROM", os.Getenv("EMAIL_USER")),

		AuroraAPIBaseURL:   getEnv("AURORA_API_BASE_URL", "https://api.auroras.live/v1/"),
		OpenMeteoBaseURL:   getEnv("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1"),
		NOAABaseURL:        getEnv("NOAA_BASE_URL", "https://services.swpc.noaa.gov"),
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		UpstreamTimeout:    getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		ForecastCacheFresh: getEnvDuration("FORECAST_CACHE_FRESH", 5*time.Minute),
		ForecastCacheStale: getEnvDuration("FORECAST_CACHE_STALE", 30*time.Minute),

		AlertInterval:     getEnvDuration("ALERT_INTERVAL", 30*time.Minute),
		AlertStartupDelay: getEnvDuration("ALERT_STARTUP_DELAY", 5*time.Second),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3002/auth/google/callback"),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_CONNECTION environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable not set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
