package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is returned for input the caller must fix. Maps to HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the resource name, e.g. "order not found"
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Conflict wraps ErrConflict with a message
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Forbidden wraps ErrForbidden with a message
func Forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrForbidden)
}

// StatusFor maps a service error to its HTTP status code
func StatusFor(err error) int {
	var vErr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// SendServiceError writes err using the standard error envelope.
// Internal errors are reported with the generic fallback message.
func SendServiceError(c echo.Context, err error, fallback string) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		field := vErr.Field
		if field == "" {
			field = "request"
		}
		return SendValidationError(c, field, vErr.Message)
	}

	switch StatusFor(err) {
	case http.StatusNotFound:
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	case http.StatusConflict:
		return SendConflictError(c, err.Error())
	case http.StatusForbidden:
		return SendForbiddenError(c, err.Error())
	case http.StatusUnauthorized:
		return SendUnauthorizedError(c)
	}

	c.Logger().Errorf("%s: %v", fallback, err)
	return SendServerError(c, fallback)
}
