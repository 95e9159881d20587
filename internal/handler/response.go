package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://expenses.app/errors/validation"
	ErrorTypeUnauthorized       = "https://expenses.app/errors/unauthorized"
	ErrorTypeBadGateway         = "https://expenses.app/errors/data-unavailable"
	ErrorTypeServiceUnavailable = "https://expenses.app/errors/service-unavailable"
	ErrorTypeInternal           = "https://expenses.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail)
}

// NewBadGatewayError creates a response for a failed upstream data source
func NewBadGatewayError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusBadGateway, ErrorTypeBadGateway, "Data Unavailable", detail)
}

// NewServiceUnavailableError creates a response for a disabled feature
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusServiceUnavailable, ErrorTypeServiceUnavailable, "Service Unavailable", detail)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail)
}

func newProblem(c echo.Context, status int, problemType, title, detail string) error {
	return c.JSON(status, ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// respondError maps a report error to its problem response
func respondError(c echo.Context, err error, userID string) error {
	var fieldErr *domain.ValidationError
	switch {
	case errors.As(err, &fieldErr):
		return NewValidationError(c, "Invalid date range", []ValidationError{
			{Field: queryField(fieldErr.Field), Message: fieldErr.Err.Error()},
		})
	case errors.Is(err, domain.ErrValidation):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Authentication required")
	case errors.Is(err, domain.ErrDataUnavailable):
		return NewBadGatewayError(c, "Report data is temporarily unavailable")
	case errors.Is(err, domain.ErrStorageNotConfigured):
		return NewServiceUnavailableError(c, "Report export is not configured")
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful can be written
		return nil
	default:
		log.Error().Err(err).Str("user_id", userID).Str("path", c.Request().URL.Path).Msg("Unexpected report error")
		return NewInternalError(c, "Failed to build report")
	}
}
