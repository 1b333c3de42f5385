package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/spaceweather"
	"github.com/lightstrail/aurora-backend/internal/weather"
	"golang.org/x/sync/errgroup"
)

// Fallbacks used when the per-spot weather lookup fails. The spot is
// still returned, just with neutral conditions.
const (
	defaultTemperature = 0.0
	defaultCloudCover  = 50.0
	defaultVisibility  = 70.0
)

// Rating weights, normalized to a 0-5 scale.
const (
	weightProbability = 0.4
	weightVisibility  = 0.3
	weightKpIndex     = 0.2
	weightSolarWind   = 0.1
)

// PredictionService produces ranked aurora viewing spots.
type PredictionService interface {
	GeneratePredictions(ctx context.Context) ([]models.ViewingSpot, error)
}

// WeatherClient provides ground conditions and place names for spots.
type WeatherClient interface {
	CurrentConditions(ctx context.Context, lat, lon float64) (weather.Conditions, error)
	LocationName(ctx context.Context, lat, lon float64) string
}

// PredictionHandler serves the viewing-spot prediction endpoint.
type PredictionHandler struct {
	predictions PredictionService
	weather     WeatherClient
	logger      *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictions PredictionService, weatherClient WeatherClient, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictions: predictions,
		weather:     weatherClient,
		logger:      logger,
	}
}

// RegisterPredictionRoutes registers the prediction routes.
func (h *PredictionHandler) RegisterPredictionRoutes(g *echo.Group) {
	g.GET("", h.GetPredictions)
}

// GetPredictions returns the current top viewing spots enriched with
// ground weather, a place name and a 0-5 rating. Spots whose weather
// lookup fails are kept with fallback conditions.
func (h *PredictionHandler) GetPredictions(c echo.Context) error {
	ctx := c.Request().Context()

	spots, err := h.predictions.GeneratePredictions(ctx)
	if err != nil {
		h.logger.Error("prediction generation failed", "error", err)
		return respondError(c, http.StatusBadGateway, "Failed to generate predictions")
	}

	// Optional viewer position: sort results by distance when present.
	if latRaw, lonRaw := c.QueryParam("latitude"), c.QueryParam("longitude"); latRaw != "" && lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr == nil && lonErr == nil {
			spaceweather.SortByDistance(spots, lat, lon)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range spots {
		i := i
		g.Go(func() error {
			h.enrich(gctx, &spots[i])
			return nil
		})
	}
	_ = g.Wait()

	return respondOK(c, http.StatusOK, "", spots)
}

func (h *PredictionHandler) enrich(ctx context.Context, spot *models.ViewingSpot) {
	lat, lon := spot.Coordinates[0], spot.Coordinates[1]

	cond, err := h.weather.CurrentConditions(ctx, lat, lon)
	if err != nil {
		h.logger.Warn("weather lookup failed for spot, using fallback",
			"spotId", spot.ID, "error", err)
		spot.Location = weather.FormatCoordinates(lat, lon)
		spot.Temperature = defaultTemperature
		spot.CloudCover = defaultCloudCover
		spot.Visibility = defaultVisibility
	} else {
		// Daylight caps visibility regardless of cloud cover.
		visibility := 100 - cond.CloudCover
		if !cond.IsNight {
			visibility = math.Min(30, visibility)
		}
		spot.Location = h.weather.LocationName(ctx, lat, lon)
		spot.Temperature = cond.Temperature
		spot.CloudCover = cond.CloudCover
		spot.Visibility = visibility
	}

	spot.Rating = calculateRating(float64(spot.Probability), spot.Visibility, spot.KpIndex, spot.SolarWindSpeed)
	spot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// calculateRating folds probability, sky visibility, Kp and solar wind
// into one 0-5 score, rounded to one decimal place.
func calculateRating(probability, visibility, kpIndex, solarWindSpeed float64) float64 {
	normalizedProbability := (probability / 100) * 5
	normalizedVisibility := (visibility / 100) * 5
	normalizedKp := (kpIndex / 9) * 5
	normalizedWind := math.Min(((solarWindSpeed-300)/500)*5, 5)

	rating := normalizedProbability*weightProbability +
		normalizedVisibility*weightVisibility +
		normalizedKp*weightKpIndex +
		normalizedWind*weightSolarWind

	return math.Round(rating*10) / 10
}
