package documents

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/search/searchtest"
	"github.com/zfogg/citysearch/internal/seed"
)

type ServiceSuite struct {
	suite.Suite
	srv     *searchtest.Server
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.srv = searchtest.NewServer(s.T())
	client, err := search.NewClient(s.srv.Config())
	s.Require().NoError(err)
	s.service = NewService(client, "documents")
	s.service.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreateAutoCreatesIndex() {
	id, doc, err := s.service.Create(s.ctx, "", Input{Title: "Go Concurrency", Content: "channels", Tags: []string{"go", "go", " "}})
	s.Require().NoError(err)
	s.NotEmpty(id)
	s.Equal("2024-05-01T12:00:00Z", doc.CreatedAt)
	s.Equal(doc.CreatedAt, doc.UpdatedAt)
	s.Equal([]string{"go"}, doc.Tags)

	s.True(s.srv.HasIndex("documents"))
	props := s.srv.IndexBody("documents")["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	s.Contains(props, "created_at")

	index := s.srv.Requests("index")
	s.Require().Len(index, 1)
	s.Contains(index[0].Query, "refresh=wait_for")
}

func (s *ServiceSuite) TestCreateKeepsExistingIndex() {
	s.srv.CreateIndex("notes", map[string]interface{}{"mappings": map[string]interface{}{}})
	_, _, err := s.service.Create(s.ctx, "notes", Input{Title: "x"})
	s.Require().NoError(err)
	s.Empty(s.srv.Requests("create_index"))
	s.Equal(1, s.srv.DocCount("notes"))
}

func (s *ServiceSuite) TestCreateRequiresTitle() {
	_, _, err := s.service.Create(s.ctx, "", Input{Title: "  ", Content: "body"})
	s.ErrorIs(err, ErrTitleRequired)
	s.Empty(s.srv.Requests("index"))
}

func (s *ServiceSuite) TestRoundTripByTitle() {
	id, _, err := s.service.Create(s.ctx, "", Input{Title: "Elasticsearch Basics", Content: "Inverted indices"})
	s.Require().NoError(err)

	results, err := s.service.Search(s.ctx, "", search.DocumentQuery{Query: "Elasticsearch Basics"})
	s.Require().NoError(err)
	s.Require().Len(results.Hits, 1)
	s.Equal(id, results.Hits[0].ID)
	s.Positive(results.Hits[0].Score)
}

func (s *ServiceSuite) TestGet() {
	id, _, err := s.service.Create(s.ctx, "", Input{Title: "Hello"})
	s.Require().NoError(err)

	hit, err := s.service.Get(s.ctx, "", id)
	s.Require().NoError(err)
	s.Equal(id, hit.ID)
	s.Equal("Hello", hit.Title)

	_, err = s.service.Get(s.ctx, "", "missing")
	s.ErrorIs(err, search.ErrNotFound)

	_, err = s.service.Get(s.ctx, "", "")
	s.ErrorIs(err, ErrIDRequired)
}

func (s *ServiceSuite) TestUpdate() {
	id, _, err := s.service.Create(s.ctx, "", Input{Title: "Old", Content: "keep"})
	s.Require().NoError(err)

	later := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return later }
	title := "New"
	fields, err := s.service.Update(s.ctx, "", id, Patch{Title: &title})
	s.Require().NoError(err)
	s.Equal("New", fields["title"])
	s.NotContains(fields, "content")

	doc, ok := s.srv.Doc("documents", id)
	s.Require().True(ok)
	s.Equal("New", doc["title"])
	s.Equal("keep", doc["content"])
	s.Equal("2024-06-01T00:00:00Z", doc["updated_at"])
	s.Equal("2024-05-01T12:00:00Z", doc["created_at"])

	_, err = s.service.Update(s.ctx, "", "missing", Patch{Title: &title})
	s.ErrorIs(err, search.ErrNotFound)

	_, err = s.service.Update(s.ctx, "", "", Patch{})
	s.ErrorIs(err, ErrIDRequired)
}

func (s *ServiceSuite) TestDelete() {
	id, _, err := s.service.Create(s.ctx, "", Input{Title: "Bye"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, "", id))
	s.ErrorIs(s.service.Delete(s.ctx, "", id), search.ErrNotFound)
	s.ErrorIs(s.service.Delete(s.ctx, "", " "), ErrIDRequired)
}

func (s *ServiceSuite) TestList() {
	for _, title := range []string{"a", "b", "c"} {
		_, _, err := s.service.Create(s.ctx, "", Input{Title: title})
		s.Require().NoError(err)
	}

	page, err := s.service.List(s.ctx, "", 2, 1)
	s.Require().NoError(err)
	s.Equal(int64(3), page.Total)
	s.Len(page.Hits, 2)

	_, err = s.service.List(s.ctx, "nope", 10, 0)
	s.ErrorIs(err, search.ErrNotFound)
}

func (s *ServiceSuite) TestSeedIsIdempotent() {
	res, err := s.service.Seed(s.ctx, seed.SampleDocuments())
	s.Require().NoError(err)
	s.Equal(8, res.Created)
	s.Zero(res.Existing)
	s.Equal(8, s.srv.DocCount("documents"))

	bulk := s.srv.Requests("bulk")
	s.Require().Len(bulk, 1)
	s.Contains(bulk[0].Query, "refresh=true")

	res, err = s.service.Seed(s.ctx, seed.SampleDocuments())
	s.Require().NoError(err)
	s.Zero(res.Created)
	s.Equal(int64(8), res.Existing)
	s.Len(s.srv.Requests("bulk"), 1)
}

func (s *ServiceSuite) TestSeedItemFailure() {
	s.srv.FailBulkItem = func(_ string, src map[string]interface{}) (string, string, bool) {
		return "mapper_parsing_exception", "bad", src["title"] == "React Best Practices"
	}
	_, err := s.service.Seed(s.ctx, seed.SampleDocuments())
	s.ErrorIs(err, ErrSeedFailed)
}

func (s *ServiceSuite) TestClear() {
	_, err := s.service.Seed(s.ctx, seed.SampleDocuments())
	s.Require().NoError(err)

	deleted, err := s.service.Clear(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(8), deleted)
	s.Zero(s.srv.DocCount("documents"))
}

func (s *ServiceSuite) TestClearMissingIndex() {
	deleted, err := s.service.Clear(s.ctx)
	s.Require().NoError(err)
	s.Zero(deleted)
}

func TestEnsureIndex_Unavailable(t *testing.T) {
	srv := searchtest.NewServer(t)
	srv.SetFailure("exists", http.StatusServiceUnavailable)
	client, err := search.NewClient(srv.Config())
	require.NoError(t, err)

	err = NewService(client, "documents").EnsureIndex(context.Background(), "documents")
	assert.Error(t, err)
	assert.False(t, srv.HasIndex("documents"))
}

func TestIndexDefault(t *testing.T) {
	s := NewService(nil, "documents")
	assert.Equal(t, "documents", s.Index(""))
	assert.Equal(t, "documents", s.Index("  "))
	assert.Equal(t, "notes", s.Index("notes"))
}
