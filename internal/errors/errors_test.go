package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		err    *APIError
		status int
		code   ErrorCode
	}{
		{NotFound("document"), http.StatusNotFound, ErrNotFound},
		{BadRequest("query is required"), http.StatusBadRequest, ErrBadRequest},
		{MissingField("id", "id is required"), http.StatusBadRequest, ErrBadRequest},
		{InternalError("boom"), http.StatusInternalServerError, ErrInternalError},
		{ServiceUnavailable("Elasticsearch"), http.StatusServiceUnavailable, ErrServiceUnavail},
		{Timeout("search"), http.StatusGatewayTimeout, ErrTimeout},
		{RateLimited(""), http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Status, tt.err.Error())
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.code.StatusCode())
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: document not found", NotFound("document").Error())
	assert.Equal(t, "BAD_REQUEST: id is required (field: id)", MissingField("id", "id is required").Error())
}

func TestWithDetails(t *testing.T) {
	err := ServiceUnavailable("Elasticsearch").WithDetails("connection refused")
	assert.Equal(t, "connection refused", err.Details)
	assert.Equal(t, "Elasticsearch is not available", err.Message)
}

func TestUnknownCodeDefaultsTo500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("NOPE").StatusCode())
}
