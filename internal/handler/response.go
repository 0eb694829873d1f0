package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
	"ridepool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropoffLocation),
		errors.Is(err, service.ErrInvalidLuggageCount),
		errors.Is(err, service.ErrInvalidMaxDetour),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrPassengerNotInRide):
		return http.StatusBadRequest

	// Conflict: a concurrent booking won the race. The orchestrator
	// swallows these during requests; they can still surface from the
	// cancellation path.
	case errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict

	// Capacity violations indicate a bug in match filtering.
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusInternalServerError

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
