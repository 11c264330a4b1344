package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/cli/client"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

// fakeAPI answers with canned bodies per "METHOD path" and records requests
func fakeAPI(t *testing.T, routes map[string]func(w http.ResponseWriter)) *[]recorded {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		calls = append(calls, rec)

		handler, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w)
	}))
	t.Cleanup(srv.Close)
	client.Configure(srv.URL, 5*time.Second)
	return &calls
}

func reply(status int, body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestSearchCitiesES(t *testing.T) {
	calls := fakeAPI(t, map[string]func(http.ResponseWriter){
		"GET /api/cities-es": reply(200, `{"cities":[{"id":2,"name":"Seattle","state":"Washington","population":737015,"score":4.2}],"total":1,"statusCode":200,"msg":"Found 1 cities matching \"sea\""}`),
	})

	resp, err := SearchCitiesES("sea", 5, 10)
	require.NoError(t, err)
	require.Len(t, resp.Cities, 1)
	assert.Equal(t, "Seattle", resp.Cities[0].Name)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "limit=5&offset=10&q=sea", (*calls)[0].Query)
}

func TestSearchCitiesStructured_SendsFilters(t *testing.T) {
	calls := fakeAPI(t, map[string]func(http.ResponseWriter){
		"POST /api/cities-es": reply(200, `{"cities":[],"total":0,"statusCode":200}`),
	})

	_, err := SearchCitiesStructured("spring", CityFilters{Limit: 3, MinPopulation: 100000, State: "Illinois"})
	require.NoError(t, err)

	body := (*calls)[0].Body
	assert.Equal(t, "spring", body["query"])
	filters := body["filters"].(map[string]interface{})
	assert.Equal(t, float64(100000), filters["minPopulation"])
	assert.Equal(t, "Illinois", filters["state"])
}

func TestSearchCitiesDB_Unavailable(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"GET /api/cities": reply(503, `{"code":"SERVICE_UNAVAILABLE","message":"Database is not available"}`),
	})

	_, err := SearchCitiesDB("x", 10)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.Contains(t, err.Error(), "Database is not available")
}

func TestSyncCities_Partial(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"POST /api/cities/sync-direct": func(w http.ResponseWriter) {
			w.Header().Set("X-Reindex-Shared", "true")
			w.WriteHeader(http.StatusMultiStatus)
			_, _ = io.WriteString(w, `{"success":false,"message":"Indexed 5/6 cities with 1 errors","totalCities":6,"indexedCities":5,"errors":["id 3: bad"]}`)
		},
	})

	res, err := SyncCities(true)
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.True(t, res.Shared)
	assert.Equal(t, 5, res.IndexedCities)
	assert.Equal(t, []string{"id 3: bad"}, res.Errors)
}

func TestSyncCities_NoSourceIsAnError(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"POST /api/cities/sync": reply(404, `{"success":false,"message":"No cities found in PostgreSQL database","totalCities":0,"indexedCities":0}`),
	})

	_, err := SyncCities(false)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "No cities found")
}

func TestGetSyncStatus(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"GET /api/cities/sync": reply(200, `{"indexed":true,"message":"Cities index exists and is ready","count":6,"indexSize":2048,"version":2}`),
	})

	status, err := GetSyncStatus(false)
	require.NoError(t, err)
	assert.True(t, status.Indexed)
	assert.Equal(t, int64(6), status.Count)
	assert.Equal(t, 2, status.Version)
}

func TestDocumentRoutes(t *testing.T) {
	calls := fakeAPI(t, map[string]func(http.ResponseWriter){
		"POST /api/documents":    reply(200, `{"success":true,"id":"abc","document":{"title":"Go"}}`),
		"GET /api/documents/abc": reply(200, `{"id":"abc","title":"Go","content":"lang"}`),
		"PUT /api/documents":     reply(200, `{"success":true,"id":"abc","document":{"title":"Go 2"}}`),
		"DELETE /api/documents":  reply(200, `{"success":true,"message":"Document deleted successfully"}`),
		"GET /api/documents":     reply(200, `{"total":1,"took":1,"hits":[{"id":"abc","title":"Go"}]}`),
	})

	created, err := CreateDocument(DocumentInput{Title: "Go", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "abc", created.ID)

	doc, err := GetDocument("", "abc")
	require.NoError(t, err)
	assert.Equal(t, "lang", doc.Content)

	title := "Go 2"
	updated, err := UpdateDocument(DocumentPatch{ID: "abc", Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Go 2", updated.Document["title"])
	assert.NotContains(t, (*calls)[2].Body, "content")

	require.NoError(t, DeleteDocument("docs", "abc"))
	assert.Equal(t, "id=abc&index=docs", (*calls)[3].Query)

	list, err := ListDocuments("", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}

func TestCreateDocument_ValidationError(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"POST /api/documents": reply(400, `{"code":"BAD_REQUEST","message":"Document title is required","field":"title"}`),
	})

	_, err := CreateDocument(DocumentInput{})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "title", apiErr.Field)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestSearchDocuments(t *testing.T) {
	calls := fakeAPI(t, map[string]func(http.ResponseWriter){
		"POST /api/search": reply(200, `{"total":1,"took":3,"hits":[{"id":"1","title":"Docker Container Orchestration","highlight":{"title":["<em>Docker</em>"]}}]}`),
	})

	res, err := SearchDocuments(SearchRequest{Query: "docker", Filters: &SearchFilters{Tags: []string{"devops"}}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, []string{"<em>Docker</em>"}, res.Hits[0].Highlight["title"])
	assert.Equal(t, []interface{}{"devops"}, (*calls)[0].Body["filters"].(map[string]interface{})["tags"])
}

func TestSeedAndClear(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"POST /api/seed":   reply(200, `{"message":"Sample data already exists","count":8}`),
		"DELETE /api/seed": reply(200, `{"success":true,"message":"All sample data cleared successfully","indexName":"documents","deleted":8}`),
	})

	seeded, err := SeedDocuments()
	require.NoError(t, err)
	assert.Equal(t, int64(8), seeded.Count)

	cleared, err := ClearDocuments()
	require.NoError(t, err)
	assert.Equal(t, int64(8), cleared.Deleted)
}

func TestStatusAndTestES(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"GET /api/status":  reply(200, `{"elasticsearch":{"connected":true,"info":{"cluster_name":"docker-cluster","version":{"number":"8.19.0"}}},"database":{"connected":false,"error":"database not initialized"},"cache":{"enabled":false},"api":{"status":"healthy"}}`),
		"GET /api/test-es": reply(503, `{"success":false,"message":"Connection failed: connection refused"}`),
	})

	status, err := GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Elasticsearch.Connected)
	assert.Equal(t, "docker-cluster", status.Elasticsearch.Info.ClusterName)
	assert.False(t, status.Database.Connected)
	require.NotNil(t, status.Cache.Enabled)
	assert.False(t, *status.Cache.Enabled)

	_, err = TestElasticsearch()
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestParseError_PlainBody(t *testing.T) {
	fakeAPI(t, map[string]func(http.ResponseWriter){
		"GET /api/cities": reply(502, `bad gateway`),
	})

	_, err := SearchCitiesDB("", 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unknown_error", apiErr.Code)
	assert.Equal(t, 502, apiErr.StatusCode)
}
