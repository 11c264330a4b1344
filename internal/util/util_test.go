package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/search"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("5", 10))
	assert.Equal(t, 5, ParseInt(" 5 ", 10))
	assert.Equal(t, 10, ParseInt("", 10))
	assert.Equal(t, 10, ParseInt("abc", 10))
	assert.Equal(t, int64(250000), ParseInt64("250000", 0))
	assert.Equal(t, int64(7), ParseInt64("1e9", 7))
}

func TestParseList(t *testing.T) {
	assert.Nil(t, ParseList(""))
	assert.Equal(t, []string{"go", "search"}, ParseList("go, search,,"))
}

func TestRespondSearchError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty query", search.ErrEmptyQuery, http.StatusBadRequest, "BAD_REQUEST"},
		{"unavailable", fmt.Errorf("ping: %w: dial tcp refused", search.ErrUnavailable), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"timeout", fmt.Errorf("search: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "TIMEOUT"},
		{"not found", &search.ResponseError{Status: 404, Type: "index_not_found_exception"}, http.StatusNotFound, "NOT_FOUND"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondSearchError(c, "Search failed", tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRespondSearchError_UnavailableMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondSearchError(c, "Search failed", fmt.Errorf("ping: %w: refused", search.ErrUnavailable))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Elasticsearch server is not available", body.Message)
	assert.Contains(t, body.Details, "refused")
}
