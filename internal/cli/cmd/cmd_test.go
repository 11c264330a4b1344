package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/cli/output"
)

// run executes the CLI against a canned API and returns what it printed
func run(t *testing.T, routes map[string]string, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	color.NoColor = true
	var buf bytes.Buffer
	prev := output.Writer
	output.Writer = &buf
	t.Cleanup(func() { output.Writer = prev })

	citiesFromDB = false
	outputFmt = "text"
	full := append([]string{"--server", srv.URL, "--config", filepath.Join(t.TempDir(), "config.toml")}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCitiesSearch_Table(t *testing.T) {
	out, err := run(t, map[string]string{
		"GET /api/cities-es": `{"cities":[{"id":2,"name":"Seattle","state":"Washington","population":737015}],"total":1,"statusCode":200,"msg":"Found 1 cities matching \"sea\""}`,
	}, "cities", "search", "sea")

	require.NoError(t, err)
	assert.Contains(t, out, "Seattle")
	assert.Contains(t, out, "737,015")
	assert.Contains(t, out, `Found 1 cities matching "sea"`)
}

func TestCitiesSearch_JSON(t *testing.T) {
	out, err := run(t, map[string]string{
		"GET /api/cities": `{"cities":[],"total":0,"statusCode":200,"msg":"Retrieved 0 cities"}`,
	}, "-o", "json", "cities", "search", "--db")

	require.NoError(t, err)
	assert.JSONEq(t, `{"cities":[],"total":0,"statusCode":200,"msg":"Retrieved 0 cities"}`, out)
}

func TestSyncRun(t *testing.T) {
	out, err := run(t, map[string]string{
		"POST /api/cities/sync": `{"success":true,"message":"Successfully indexed 6 cities in 12ms","totalCities":6,"indexedCities":6}`,
	}, "sync", "run")

	require.NoError(t, err)
	assert.Contains(t, out, "Successfully indexed 6 cities")
}

func TestSyncStatus(t *testing.T) {
	out, err := run(t, map[string]string{
		"GET /api/cities/sync-direct": `{"indexed":true,"message":"Cities index exists and is ready","count":6,"version":2}`,
	}, "sync", "status", "--direct")

	require.NoError(t, err)
	assert.Contains(t, out, "Cities index exists and is ready")
	assert.Contains(t, out, "count: 6")
	assert.Contains(t, out, "mapping_version: 2")
}

func TestStatus(t *testing.T) {
	out, err := run(t, map[string]string{
		"GET /api/status": `{"elasticsearch":{"connected":true,"info":{"cluster_name":"docker-cluster","version":{"number":"8.19.0"}}},"database":{"connected":false,"error":"database not initialized"},"cache":{"enabled":false},"api":{"status":"healthy","timestamp":"2026-10-17T00:00:00Z"}}`,
	}, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "connected (docker-cluster, 8.19.0)")
	assert.Contains(t, out, "down: database not initialized")
	assert.Contains(t, out, "cache: disabled")
}

func TestDocsUpdate_RequiresAField(t *testing.T) {
	_, err := run(t, map[string]string{}, "docs", "update", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := run(t, map[string]string{}, "-o", "yaml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestFormatPopulation(t *testing.T) {
	assert.Equal(t, "0", formatPopulation(0))
	assert.Equal(t, "999", formatPopulation(999))
	assert.Equal(t, "7,115", formatPopulation(7115))
	assert.Equal(t, "478,961", formatPopulation(478961))
	assert.Equal(t, "2,746,388", formatPopulation(2746388))
	assert.Equal(t, "-1,000", formatPopulation(-1000))
}

func TestEmphasize(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "use Docker here", emphasize("use <em>Docker</em> here"))
	assert.Equal(t, "unclosed <em>tag", emphasize("unclosed <em>tag"))
}
