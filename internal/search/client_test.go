package search

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/config"
	"github.com/zfogg/citysearch/internal/models"
	"github.com/zfogg/citysearch/internal/search/searchtest"
)

type fullEngine interface {
	Engine
	StatsProvider
	VersionProvider
	InfoProvider
}

func newEngines(t *testing.T, cfg config.ElasticsearchConfig) map[string]fullEngine {
	t.Helper()
	lib, err := NewClient(cfg)
	require.NoError(t, err)
	direct, err := NewDirectClient(cfg)
	require.NoError(t, err)
	return map[string]fullEngine{EngineLibrary: lib, EngineDirect: direct}
}

var engineNames = []string{EngineLibrary, EngineDirect}

func TestEngines_IndexLifecycle(t *testing.T) {
	for _, name := range engineNames {
		t.Run(name, func(t *testing.T) {
			srv := searchtest.NewServer(t)
			engine := newEngines(t, srv.Config())[name]
			ctx := context.Background()

			require.NoError(t, engine.Ping(ctx))

			exists, err := engine.IndexExists(ctx, "cities")
			require.NoError(t, err)
			assert.False(t, exists)

			// deleting a missing index is fine
			require.NoError(t, engine.DeleteIndex(ctx, "cities"))

			require.NoError(t, engine.CreateIndex(ctx, "cities", CityIndexMapping()))
			exists, err = engine.IndexExists(ctx, "cities")
			require.NoError(t, err)
			assert.True(t, exists)

			version, err := engine.MappingVersion(ctx, "cities")
			require.NoError(t, err)
			assert.Equal(t, MappingVersion, version)

			err = engine.CreateIndex(ctx, "cities", CityIndexMapping())
			var re *ResponseError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, http.StatusBadRequest, re.Status)
			assert.Equal(t, "resource_already_exists_exception", re.Type)

			require.NoError(t, engine.DeleteIndex(ctx, "cities"))
			assert.False(t, srv.HasIndex("cities"))
		})
	}
}

func TestEngines_BulkSearchCount(t *testing.T) {
	for _, name := range engineNames {
		t.Run(name, func(t *testing.T) {
			srv := searchtest.NewServer(t)
			engine := newEngines(t, srv.Config())[name]
			ctx := context.Background()

			cities := []models.City{
				{ID: 1, Name: "Seattle", State: "Washington", Population: 737015},
				{ID: 2, Name: "Seaside", State: "Oregon", Population: 7115},
				{ID: 3, Name: "Denver", State: "Colorado", Population: 715522},
			}
			docs := make([]BulkDocument, 0, len(cities))
			for _, c := range cities {
				docs = append(docs, BulkDocument{ID: CityDocumentID(c.ID), Body: CityToSearchDoc(c)})
			}

			resp, err := engine.BulkIndex(ctx, "cities", docs, true)
			require.NoError(t, err)
			assert.False(t, resp.Errors)
			require.Len(t, resp.Items, 3)
			assert.Equal(t, "1", resp.Items[0].Result().ID)
			assert.Equal(t, http.StatusCreated, resp.Items[0].Result().Status)

			bulk := srv.Requests("bulk")
			require.Len(t, bulk, 1)
			assert.Contains(t, bulk[0].Query, "refresh=true")

			count, err := engine.Count(ctx, "cities")
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)

			result, err := engine.Search(ctx, "cities", BuildCityQuery(CityQuery{Query: "sea"}))
			require.NoError(t, err)
			hits, err := FormatCities(result)
			require.NoError(t, err)
			require.Len(t, hits, 2)
			assert.Equal(t, "Seattle", hits[0].Name)
			assert.Equal(t, "Seaside", hits[1].Name)

			stats, err := engine.Stats(ctx, "cities")
			require.NoError(t, err)
			assert.Positive(t, stats.SizeInBytes)

			info, err := engine.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, "fake-cluster", info.ClusterName)
			assert.Equal(t, "8.19.0", info.Version.Number)
		})
	}
}

func TestEngines_BulkItemErrors(t *testing.T) {
	for _, name := range engineNames {
		t.Run(name, func(t *testing.T) {
			srv := searchtest.NewServer(t)
			srv.FailBulkItem = func(id string, _ map[string]interface{}) (string, string, bool) {
				return "mapper_parsing_exception", "failed to parse field [population]", id == "2"
			}
			engine := newEngines(t, srv.Config())[name]

			resp, err := engine.BulkIndex(context.Background(), "cities", []BulkDocument{
				{ID: "1", Body: map[string]interface{}{"name": "a"}},
				{ID: "2", Body: map[string]interface{}{"name": "b"}},
			}, true)
			require.NoError(t, err)
			assert.True(t, resp.Errors)

			item := resp.Items[1].Result()
			require.NotNil(t, item.Error)
			assert.Equal(t, "failed to parse field [population]", item.Error.Reason)
			assert.Nil(t, resp.Items[0].Result().Error)
		})
	}
}

func TestEngines_ResponseErrors(t *testing.T) {
	for _, name := range engineNames {
		t.Run(name, func(t *testing.T) {
			srv := searchtest.NewServer(t)
			engine := newEngines(t, srv.Config())[name]
			ctx := context.Background()

			_, err := engine.Search(ctx, "missing", BuildListQuery(10, 0))
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, ErrUnavailable)

			srv.SetFailure("count", http.StatusInternalServerError)
			_, err = engine.Count(ctx, "missing")
			var re *ResponseError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, http.StatusInternalServerError, re.Status)
			assert.Equal(t, "injected_failure", re.Type)
		})
	}
}

func TestEngines_Unavailable(t *testing.T) {
	srv := searchtest.NewServer(t)
	cfg := srv.Config()
	srv.Close()

	for name, engine := range newEngines(t, cfg) {
		t.Run(name, func(t *testing.T) {
			err := engine.Ping(context.Background())
			assert.ErrorIs(t, err, ErrUnavailable)

			_, err = engine.IndexExists(context.Background(), "cities")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestEngines_ContextDeadline(t *testing.T) {
	for _, name := range engineNames {
		t.Run(name, func(t *testing.T) {
			srv := searchtest.NewServer(t)
			srv.SetDelay("count", 200*time.Millisecond)
			engine := newEngines(t, srv.Config())[name]

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err := engine.Count(ctx, "cities")
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestClient_DocumentCRUD(t *testing.T) {
	srv := searchtest.NewServer(t)
	client, err := NewClient(srv.Config())
	require.NoError(t, err)
	ctx := context.Background()

	id, err := client.IndexDocument(ctx, "documents", "", Document{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Contains(t, srv.Requests("index")[0].Query, "refresh=wait_for")

	hit, err := client.GetDocument(ctx, "documents", id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Hello","content":"World"}`, string(hit.Source))

	require.NoError(t, client.UpdateDocument(ctx, "documents", id, map[string]interface{}{"title": "Hi"}))
	doc, ok := srv.Doc("documents", id)
	require.True(t, ok)
	assert.Equal(t, "Hi", doc["title"])
	assert.Equal(t, "World", doc["content"])

	err = client.UpdateDocument(ctx, "documents", "nope", map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, client.DeleteDocument(ctx, "documents", id))
	_, err = client.GetDocument(ctx, "documents", id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = client.DeleteDocument(ctx, "documents", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_DeleteByQueryAndRefresh(t *testing.T) {
	srv := searchtest.NewServer(t)
	srv.Seed("documents", "a", Document{Title: "a"})
	srv.Seed("documents", "b", Document{Title: "b"})

	client, err := NewClient(srv.Config())
	require.NoError(t, err)

	deleted, err := client.DeleteByQuery(context.Background(), "documents", map[string]interface{}{"match_all": map[string]interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Zero(t, srv.DocCount("documents"))

	require.NoError(t, client.Refresh(context.Background(), "documents"))
}

func TestNewClient_BadCACert(t *testing.T) {
	_, err := NewClient(config.ElasticsearchConfig{URL: "https://localhost:9200", CACertPath: "/does/not/exist.pem"})
	assert.Error(t, err)

	_, err = NewDirectClient(config.ElasticsearchConfig{URL: "https://localhost:9200", CACertPath: "/does/not/exist.pem"})
	assert.Error(t, err)
}

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, retryBackoff(1))
	assert.Equal(t, 200*time.Millisecond, retryBackoff(2))
	assert.Equal(t, 400*time.Millisecond, retryBackoff(3))
	assert.Equal(t, maxBackoff, retryBackoff(10))
	assert.Equal(t, maxBackoff, retryBackoff(64))
}

func TestCheckIndexVersion(t *testing.T) {
	srv := searchtest.NewServer(t)
	client, err := NewClient(srv.Config())
	require.NoError(t, err)
	ctx := context.Background()

	outdated, err := CheckIndexVersion(ctx, client, "cities")
	require.NoError(t, err)
	assert.True(t, outdated, "missing index")

	srv.CreateIndex("cities", map[string]interface{}{
		"mappings": map[string]interface{}{"_meta": map[string]interface{}{"version": MappingVersion - 1}},
	})
	outdated, err = CheckIndexVersion(ctx, client, "cities")
	require.NoError(t, err)
	assert.True(t, outdated, "stale mapping")

	require.NoError(t, client.DeleteIndex(ctx, "cities"))
	require.NoError(t, client.CreateIndex(ctx, "cities", CityIndexMapping()))
	outdated, err = CheckIndexVersion(ctx, client, "cities")
	require.NoError(t, err)
	assert.False(t, outdated)
}
