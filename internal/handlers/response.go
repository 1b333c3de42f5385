package handlers

import (
	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	StatusCode int         `json:"statusCode"`
	Errors     interface{} `json:"errors,omitempty"`
}

// respondOK writes a success envelope.
func respondOK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		StatusCode: status,
	})
}

// respondError writes a failure envelope.
func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, APIResponse{
		Success:    false,
		Message:    message,
		StatusCode: status,
	})
}

// respondValidationError writes a failure envelope carrying field errors.
func respondValidationError(c echo.Context, status int, message string, errs interface{}) error {
	return c.JSON(status, APIResponse{
		Success:    false,
		Message:    message,
		StatusCode: status,
		Errors:     errs,
	})
}
