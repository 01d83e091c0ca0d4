// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/keygateio/keygate/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MakeJSONResponse writes a JSON response with the given status code.
func MakeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response using Gin.
// Unmapped errors are logged and returned as a generic 500 so internal details never leak.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "The requested resource was not found",
		}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "CONFLICT",
			Message: "A conflicting operation is already in progress",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "BAD_REQUEST",
			Message: err.Error(),
		}

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "UNAUTHORIZED",
			Message: "Authentication is required",
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "FORBIDDEN",
			Message: "The caller is not allowed to perform this operation",
		}

	default:
		// Internal faults: log loudly, answer generically
		logger.Error("internal server error", slog.Any("error", err))
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "INTERNAL_SERVER_ERROR",
			Message: "An unexpected error occurred",
		}
	}

	c.JSON(statusCode, errorResponse)
}

// HandleValidationErrorGin returns a 422 response for request validation failures.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	logger.Debug("request validation failed", slog.String("error", err.Error()))

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "BAD_REQUEST",
		Message: err.Error(),
	})
}
