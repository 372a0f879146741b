package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/tides"
)

// apiError is the JSON error envelope returned by every failing endpoint
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain error onto an HTTP status and envelope.
func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	c.AbortWithStatusJSON(status, gin.H{"error": apiError{
		Status:  status,
		Code:    code,
		Message: err.Error(),
	}})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, geo.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, tides.ErrUnrecognizedSchema):
		return http.StatusUnprocessableEntity, "unrecognized_schema"
	case errors.Is(err, tides.ErrNoValidRows):
		return http.StatusUnprocessableEntity, "no_valid_rows"
	case errors.Is(err, tides.ErrEmptySeries):
		return http.StatusConflict, "empty_series"
	case errors.Is(err, errSeriesNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// badRequest rejects malformed input that never reached the domain layer.
func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_argument",
		Message: message,
	}})
}
