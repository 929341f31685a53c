package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/api"
	"roadtrip/internal/directions"
	"roadtrip/internal/domain"
	"roadtrip/internal/repository"
	"roadtrip/internal/service"
)

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	var f *directions.Failure
	if errors.As(err, &f) {
		respondFailure(c, f)
		return
	}

	code := mapErrorToHTTPStatus(err)
	c.JSON(code, api.ErrorResponse{Error: err.Error()})
}

// respondBadRequest sends a 400 with a fixed message.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msg})
}

// respondFailure sends a routing failure with its kind as the error code.
func respondFailure(c *gin.Context, f *directions.Failure) {
	code := http.StatusBadGateway
	switch f.Kind {
	case directions.KindNotEnoughStops:
		code = http.StatusBadRequest
	case directions.KindUnroutable:
		code = http.StatusUnprocessableEntity
	}

	msg := f.Message
	if msg == "" {
		msg = f.Error()
	}
	c.JSON(code, directions.RelayError{
		Error:  msg,
		Code:   string(f.Kind),
		Points: f.Points,
	})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrPlaceNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidStopID),
		errors.Is(err, service.ErrInvalidTripName),
		errors.Is(err, service.ErrNoStops),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidCost),
		errors.Is(err, service.ErrInvalidStopTime),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrAddressRequired),
		errors.Is(err, domain.ErrInvalidCoordinates):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrTripSaveInProgress):
		return http.StatusConflict

	// Upstream provider failures
	case errors.Is(err, service.ErrGeocodingFailed):
		return http.StatusBadGateway

	// Service unavailable
	case errors.Is(err, service.ErrDirectionsUnavailable),
		errors.Is(err, service.ErrGeocodingUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
