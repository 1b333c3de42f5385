package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/alerts"
	"github.com/lightstrail/aurora-backend/internal/spaceweather"
)

// ForecastHandler serves merged aurora condition data for a coordinate pair.
type ForecastHandler struct {
	conditions alerts.ConditionsFetcher
	logger     *slog.Logger
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(conditions alerts.ConditionsFetcher, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{conditions: conditions, logger: logger}
}

// RegisterForecastRoutes registers the forecast route.
func (h *ForecastHandler) RegisterForecastRoutes(g *echo.Group) {
	g.GET("", h.GetForecast)
}

// GetForecast returns current aurora conditions for ?latitude=&longitude=.
func (h *ForecastHandler) GetForecast(c echo.Context) error {
	lat, err := parseCoordinate(c.QueryParam("latitude"), -90, 90)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid latitude")
	}
	lon, err := parseCoordinate(c.QueryParam("longitude"), -180, 180)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid longitude")
	}

	forecast, err := h.conditions.Current(c.Request().Context(), lat, lon)
	if err != nil {
		if errors.Is(err, spaceweather.ErrMalformedUpstream) {
			h.logger.Error("malformed upstream forecast data", "error", err)
			return respondError(c, http.StatusBadGateway, "Upstream data source returned malformed data")
		}
		h.logger.Error("forecast fetch failed", "error", err)
		return respondError(c, http.StatusBadGateway, "Failed to fetch aurora forecast")
	}

	return respondOK(c, http.StatusOK, "", forecast)
}

func parseCoordinate(raw string, min, max float64) (float64, error) {
	if raw == "" {
		return 0, errors.New("missing coordinate")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, errors.New("coordinate out of range")
	}
	return v, nil
}
