package util

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/errors"
	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/search"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.Int("status", apiErr.Status),
		zap.String("path", c.FullPath()),
	}
	if apiErr.Field != "" {
		fields = append(fields, zap.String("field", apiErr.Field))
	}
	if rid := c.GetString("request_id"); rid != "" {
		fields = append(fields, logger.WithRequestID(rid))
	}

	if apiErr.Status >= http.StatusInternalServerError {
		if apiErr.Details != "" {
			fields = append(fields, zap.String("details", apiErr.Details))
		}
		logger.Log.Error("API error", fields...)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error", fields...)
	}

	c.JSON(apiErr.Status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondMissingField sends a 400 naming the missing field
func RespondMissingField(c *gin.Context, field, message string) {
	RespondWithAPIError(c, errors.MissingField(field, message))
}

// RespondInternalError sends a 500 with the underlying error as details
func RespondInternalError(c *gin.Context, message string, err error) {
	apiErr := errors.InternalError(message)
	if err != nil {
		apiErr.WithDetails(err.Error())
	}
	RespondWithAPIError(c, apiErr)
}

// RespondSearchError maps a search-layer error to its HTTP response
func RespondSearchError(c *gin.Context, message string, err error) {
	switch {
	case stderrors.Is(err, search.ErrEmptyQuery):
		RespondMissingField(c, "query", err.Error())
	case stderrors.Is(err, search.ErrUnavailable):
		RespondWithAPIError(c, errors.ServiceUnavailable("Elasticsearch server").WithDetails(err.Error()))
	case stderrors.Is(err, context.DeadlineExceeded):
		RespondWithAPIError(c, errors.Timeout(message).WithDetails(err.Error()))
	case stderrors.Is(err, search.ErrNotFound):
		RespondWithAPIError(c, errors.NotFound("resource").WithDetails(err.Error()))
	default:
		RespondInternalError(c, message, err)
	}
}
