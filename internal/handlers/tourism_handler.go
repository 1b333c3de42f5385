package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/repositories"
)

// BookingMailer sends trip booking confirmations.
type BookingMailer interface {
	SendBookingConfirmation(to, name, destination, date string) error
}

// TourismHandler handles aurora trip booking enquiries.
type TourismHandler struct {
	bookings repositories.TripBookingRepository
	mailer   BookingMailer
	logger   *slog.Logger
}

// NewTourismHandler creates a new TourismHandler.
func NewTourismHandler(bookings repositories.TripBookingRepository, mailer BookingMailer, logger *slog.Logger) *TourismHandler {
	return &TourismHandler{bookings: bookings, mailer: mailer, logger: logger}
}

// RegisterTourismRoutes registers the booking route.
func (h *TourismHandler) RegisterTourismRoutes(g *echo.Group) {
	g.POST("/send", h.BookTrip)
}

// BookTrip sends the confirmation email and persists the booking. The
// booking is only recorded once the email went out.
func (h *TourismHandler) BookTrip(c echo.Context) error {
	var req models.BookingRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidationError(c, http.StatusBadRequest, "Validation failed", err.Error())
	}

	travelDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Date must be in YYYY-MM-DD format")
	}

	if err := h.mailer.SendBookingConfirmation(req.Email, req.Name, req.Destination, req.Date); err != nil {
		h.logger.Error("booking confirmation email failed", "email", req.Email, "error", err)
		return respondError(c, http.StatusInternalServerError, "Failed to send confirmation email")
	}

	booking := &models.TripBooking{
		Email:       req.Email,
		Name:        req.Name,
		Destination: req.Destination,
		Date:        travelDate,
	}
	if err := h.bookings.CreateBooking(c.Request().Context(), booking); err != nil {
		// The email is already out; log and still confirm to the caller.
		h.logger.Error("booking record insert failed", "email", req.Email, "error", err)
	}

	return respondOK(c, http.StatusOK, "Booking confirmation sent", booking)
}
