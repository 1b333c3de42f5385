package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/repositories"
)

const citySuggestionLimit = 10

// CityHandler serves coordinate lookups for city-name prefixes.
type CityHandler struct {
	cities repositories.CityRepository
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(cities repositories.CityRepository) *CityHandler {
	return &CityHandler{cities: cities}
}

// RegisterCityRoutes registers the city lookup route.
func (h *CityHandler) RegisterCityRoutes(g *echo.Group) {
	g.GET("/:city", h.GetSuggestions)
}

// GetSuggestions returns up to 10 cities matching the prefix in the path.
func (h *CityHandler) GetSuggestions(c echo.Context) error {
	prefix := c.Param("city")
	if prefix == "" {
		return respondError(c, http.StatusBadRequest, "City prefix is required")
	}

	cities, err := h.cities.FetchSuggestions(c.Request().Context(), prefix, citySuggestionLimit)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to look up cities")
	}
	if len(cities) == 0 {
		return respondError(c, http.StatusNotFound, "No matching cities found")
	}

	return respondOK(c, http.StatusOK, "", cities)
}
