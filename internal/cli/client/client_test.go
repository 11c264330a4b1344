package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_SetsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	Configure(srv.URL, 5*time.Second)
	resp, err := GetClient().R().Get("/health")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, userAgent, got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.Equal(t, srv.URL, GetClient().BaseURL)
}
