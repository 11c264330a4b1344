// Package documents manages the generic document corpus that lives only in
// the search index: CRUD, search and the sample data set.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/search"
	"go.uber.org/zap"
)

var (
	// ErrTitleRequired is returned when creating a document without a title
	ErrTitleRequired = errors.New("title is required")

	// ErrIDRequired is returned by updates and deletes without a document id
	ErrIDRequired = errors.New("document ID is required")

	// ErrSeedFailed is returned when some sample documents were rejected
	ErrSeedFailed = errors.New("some documents failed to index")
)

// Store is the subset of the search client the service needs
type Store interface {
	IndexExists(ctx context.Context, index string) (bool, error)
	CreateIndex(ctx context.Context, index string, body map[string]interface{}) error
	BulkIndex(ctx context.Context, index string, docs []search.BulkDocument, refresh bool) (*search.BulkResponse, error)
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
	GetDocument(ctx context.Context, index, id string) (*search.Hit, error)
	IndexDocument(ctx context.Context, index, id string, doc interface{}) (string, error)
	UpdateDocument(ctx context.Context, index, id string, fields map[string]interface{}) error
	DeleteDocument(ctx context.Context, index, id string) error
	DeleteByQuery(ctx context.Context, index string, query map[string]interface{}) (int64, error)
}

// Input is the body of a create request
type Input struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// SeedResult reports what Seed did
type SeedResult struct {
	Index    string
	Created  int
	Existing int64
}

// Service implements the document routes
type Service struct {
	store        Store
	defaultIndex string
	now          func() time.Time
}

// NewService creates a service writing to defaultIndex unless a call names another
func NewService(store Store, defaultIndex string) *Service {
	return &Service{store: store, defaultIndex: defaultIndex, now: time.Now}
}

// Index resolves an optional index name
func (s *Service) Index(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.defaultIndex
}

// EnsureIndex creates index with the default document mapping if it is missing
func (s *Service) EnsureIndex(ctx context.Context, index string) error {
	exists, err := s.store.IndexExists(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", index, err)
	}
	if exists {
		return nil
	}

	err = s.store.CreateIndex(ctx, index, search.DocumentIndexMapping())
	var re *search.ResponseError
	if errors.As(err, &re) && re.Type == "resource_already_exists_exception" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	logger.Log.Info("Created document index", logger.WithIndex(index))
	return nil
}

// List pages through every document of index
func (s *Service) List(ctx context.Context, index string, size, from int) (*search.DocumentResults, error) {
	resp, err := s.store.Search(ctx, s.Index(index), search.BuildListQuery(size, from))
	if err != nil {
		return nil, err
	}
	return search.FormatDocuments(resp)
}

// Get fetches one document
func (s *Service) Get(ctx context.Context, index, id string) (*search.DocumentHit, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrIDRequired
	}
	hit, err := s.store.GetDocument(ctx, s.Index(index), id)
	if err != nil {
		return nil, err
	}

	var resp search.SearchResponse
	resp.Hits.Hits = []search.Hit{*hit}
	results, err := search.FormatDocuments(&resp)
	if err != nil {
		return nil, err
	}
	return &results.Hits[0], nil
}

// Create stores a new document with server-assigned timestamps and returns its id
func (s *Service) Create(ctx context.Context, index string, in Input) (string, *search.Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", nil, ErrTitleRequired
	}
	index = s.Index(index)
	if err := s.EnsureIndex(ctx, index); err != nil {
		return "", nil, err
	}

	now := search.Timestamp(s.now())
	doc := &search.Document{
		Title:     in.Title,
		Content:   in.Content,
		Tags:      search.NormalizeTags(in.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.store.IndexDocument(ctx, index, "", doc)
	if err != nil {
		return "", nil, err
	}
	return id, doc, nil
}

// Update applies p to an existing document and refreshes updated_at. It
// returns the fields that were written.
func (s *Service) Update(ctx context.Context, index, id string, p Patch) (map[string]interface{}, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrIDRequired
	}

	fields := map[string]interface{}{"updated_at": search.Timestamp(s.now())}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		fields["content"] = *p.Content
	}
	if p.Tags != nil {
		fields["tags"] = search.NormalizeTags(p.Tags)
	}

	if err := s.store.UpdateDocument(ctx, s.Index(index), id, fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Delete removes one document
func (s *Service) Delete(ctx context.Context, index, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrIDRequired
	}
	return s.store.DeleteDocument(ctx, s.Index(index), id)
}

// Search runs a document query
func (s *Service) Search(ctx context.Context, index string, q search.DocumentQuery) (*search.DocumentResults, error) {
	body, err := search.BuildDocumentQuery(q)
	if err != nil {
		return nil, err
	}
	resp, err := s.store.Search(ctx, s.Index(index), body)
	if err != nil {
		return nil, err
	}
	return search.FormatDocuments(resp)
}

// Seed bulk-loads docs into the default index unless it already holds data
func (s *Service) Seed(ctx context.Context, docs []search.Document) (*SeedResult, error) {
	index := s.defaultIndex
	if err := s.EnsureIndex(ctx, index); err != nil {
		return nil, err
	}

	existing, err := s.store.Search(ctx, index, search.BuildListQuery(1, 0))
	if err != nil {
		return nil, err
	}
	if total := existing.Hits.Total.Value; total > 0 {
		return &SeedResult{Index: index, Existing: total}, nil
	}

	now := search.Timestamp(s.now())
	bulk := make([]search.BulkDocument, 0, len(docs))
	for _, d := range docs {
		d.Tags = search.NormalizeTags(d.Tags)
		d.CreatedAt = now
		d.UpdatedAt = now
		bulk = append(bulk, search.BulkDocument{Body: d})
	}

	resp, err := s.store.BulkIndex(ctx, index, bulk, true)
	if err != nil {
		return nil, err
	}
	if resp.Errors {
		for _, item := range resp.Items {
			if res := item.Result(); res.Error != nil {
				logger.Log.Warn("Sample document rejected",
					logger.WithIndex(index),
					zap.String("type", res.Error.Type),
					zap.String("reason", res.Error.Reason),
				)
			}
		}
		return nil, ErrSeedFailed
	}

	logger.Log.Info("Seeded sample documents", logger.WithIndex(index), zap.Int("count", len(bulk)))
	return &SeedResult{Index: index, Created: len(bulk)}, nil
}

// Clear deletes every document of the default index. A missing index
// counts as already clear.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteByQuery(ctx, s.defaultIndex, map[string]interface{}{"match_all": map[string]interface{}{}})
	if errors.Is(err, search.ErrNotFound) {
		return 0, nil
	}
	return deleted, err
}
