package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/alerts"
	"github.com/lightstrail/aurora-backend/internal/middleware"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/repositories"
)

// immediateCheckTimeout bounds the conditions fetch triggered by a save,
// so a slow upstream can't hang the request's follow-up work.
const immediateCheckTimeout = 30 * time.Second

// AlertHandler handles alert-preference HTTP requests.
type AlertHandler struct {
	prefs     repositories.AlertPreferenceRepository
	evaluator *alerts.Evaluator
	testMail  interface{ SendTestEmail(to string) error }
	logger    *slog.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(
	prefs repositories.AlertPreferenceRepository,
	evaluator *alerts.Evaluator,
	testMail interface{ SendTestEmail(to string) error },
	logger *slog.Logger,
) *AlertHandler {
	return &AlertHandler{
		prefs:     prefs,
		evaluator: evaluator,
		testMail:  testMail,
		logger:    logger,
	}
}

// RegisterAlertRoutes registers alert-preference routes (bearer auth).
func (h *AlertHandler) RegisterAlertRoutes(g *echo.Group) {
	g.POST("/preferences", h.SavePreference)
	g.PUT("/preferences", h.SavePreference)
	g.GET("/preferences", h.GetPreference)
	g.POST("/test-email", h.SendTestEmail)
}

// SavePreference upserts the caller's alert preference and kicks off an
// immediate conditions check. POST and PUT behave identically because
// each user keeps a single preference record.
func (h *AlertHandler) SavePreference(c echo.Context) error {
	claims, ok := middleware.UserClaims(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Missing authentication")
	}

	var req models.SaveAlertPreferenceRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidationError(c, http.StatusBadRequest, "Validation failed", err.Error())
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	pref := &models.AlertPreference{
		KpThreshold: req.KpThreshold,
		Email:       req.Email,
		Location: &models.AlertLocation{
			CityName:  req.Location.CityName,
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		},
		IsEnabled: isEnabled,
	}

	saved, err := h.prefs.Upsert(c.Request().Context(), claims.UserID, pref)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to save alert preference")
	}

	// Check conditions right away so a user saving during a storm hears
	// about it before the next scheduled pass.
	go func(p models.AlertPreference) {
		ctx, cancel := context.WithTimeout(context.Background(), immediateCheckTimeout)
		defer cancel()
		if err := h.evaluator.EvaluateOne(ctx, &p); err != nil {
			h.logger.Error("immediate alert check failed",
				"userId", claims.UserID, "error", err)
		}
	}(*saved)

	return respondOK(c, http.StatusOK, "Alert preference saved", saved)
}

// GetPreference returns the caller's alert preference.
func (h *AlertHandler) GetPreference(c echo.Context) error {
	claims, ok := middleware.UserClaims(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Missing authentication")
	}

	pref, err := h.prefs.GetByUserID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "No alert preference found")
		}
		return respondError(c, http.StatusInternalServerError, "Failed to load alert preference")
	}

	return respondOK(c, http.StatusOK, "", pref)
}

// SendTestEmail sends a test message to the caller's stored alert address.
func (h *AlertHandler) SendTestEmail(c echo.Context) error {
	claims, ok := middleware.UserClaims(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Missing authentication")
	}

	pref, err := h.prefs.GetByUserID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "No alert preference found")
		}
		return respondError(c, http.StatusInternalServerError, "Failed to load alert preference")
	}

	if err := h.testMail.SendTestEmail(pref.Email); err != nil {
		h.logger.Error("test email failed", "email", pref.Email, "error", err)
		return respondError(c, http.StatusInternalServerError, "Failed to send test email")
	}

	return respondOK(c, http.StatusOK, "Test email sent", nil)
}
