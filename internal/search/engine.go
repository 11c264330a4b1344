package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable marks transport-level failures reaching Elasticsearch
	// (connection refused, DNS, TLS, timeouts before a response).
	ErrUnavailable = errors.New("elasticsearch unavailable")

	// ErrDecode marks a response body that could not be parsed
	ErrDecode = errors.New("failed to decode elasticsearch response")

	// ErrNotFound marks a missing document or index
	ErrNotFound = errors.New("not found")

	// ErrEmptyQuery is returned by builders that require a search term
	ErrEmptyQuery = errors.New("query parameter is required")
)

// Engine is the adapter every search backend implements. The reindex
// pipeline and the sync status handlers only depend on this.
type Engine interface {
	Ping(ctx context.Context) error
	IndexExists(ctx context.Context, index string) (bool, error)
	CreateIndex(ctx context.Context, index string, body map[string]interface{}) error
	DeleteIndex(ctx context.Context, index string) error
	BulkIndex(ctx context.Context, index string, docs []BulkDocument, refresh bool) (*BulkResponse, error)
	Search(ctx context.Context, index string, query map[string]interface{}) (*SearchResponse, error)
	Count(ctx context.Context, index string) (int64, error)
}

// StatsProvider is implemented by engines that can report index storage stats
type StatsProvider interface {
	Stats(ctx context.Context, index string) (*IndexStats, error)
}

// VersionProvider is implemented by engines that can read the mapping version
type VersionProvider interface {
	MappingVersion(ctx context.Context, index string) (int, error)
}

// InfoProvider is implemented by engines that can describe the cluster
type InfoProvider interface {
	Info(ctx context.Context) (*ClusterInfo, error)
}

// ClusterInfo is the root endpoint response
type ClusterInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number        string `json:"number"`
		LuceneVersion string `json:"lucene_version"`
	} `json:"version"`
}

// BulkDocument is one index operation in a bulk request. An empty ID lets
// Elasticsearch assign one.
type BulkDocument struct {
	ID   string
	Body interface{}
}

// BulkResponse is the decoded bulk API response
type BulkResponse struct {
	Took   int        `json:"took"`
	Errors bool       `json:"errors"`
	Items  []BulkItem `json:"items"`
}

// BulkItem is a single item result keyed by operation type ("index", "create", ...)
type BulkItem map[string]BulkItemResult

// BulkItemResult is the per-document outcome of a bulk operation
type BulkItemResult struct {
	Index  string      `json:"_index"`
	ID     string      `json:"_id"`
	Status int         `json:"status"`
	Result string      `json:"result,omitempty"`
	Error  *ErrorCause `json:"error,omitempty"`
}

// Result returns the first (and only) operation result of the item
func (b BulkItem) Result() BulkItemResult {
	for _, r := range b {
		return r
	}
	return BulkItemResult{}
}

// ErrorCause is the error object Elasticsearch returns per request or item
type ErrorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// SearchResponse is the decoded search API response
type SearchResponse struct {
	Took     int  `json:"took"`
	TimedOut bool `json:"timed_out"`
	Hits     struct {
		Total struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []Hit    `json:"hits"`
	} `json:"hits"`
	Suggest map[string][]SuggestEntry `json:"suggest,omitempty"`
}

// Hit is a single search hit
type Hit struct {
	Index     string              `json:"_index"`
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Source    json.RawMessage     `json:"_source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// SuggestEntry is one entry of a completion suggester response
type SuggestEntry struct {
	Text    string `json:"text"`
	Options []struct {
		Text   string          `json:"text"`
		ID     string          `json:"_id"`
		Score  float64         `json:"_score"`
		Source json.RawMessage `json:"_source"`
	} `json:"options"`
}

// IndexStats is the subset of index stats exposed on the sync status routes
type IndexStats struct {
	SizeInBytes        int64 `json:"size_in_bytes"`
	RefreshTimeInMilli int64 `json:"refresh_time_in_millis"`
}

// ResponseError is a non-2xx Elasticsearch response
type ResponseError struct {
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" && e.Reason == "" {
		return fmt.Sprintf("elasticsearch returned status %d", e.Status)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Status, e.Type, e.Reason)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *ResponseError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// parseResponseError builds a ResponseError from an error body. The
// "error" field is either an object or, for some endpoints, a plain string.
func parseResponseError(status int, body []byte) *ResponseError {
	re := &ResponseError{Status: status}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return re
	}

	var cause ErrorCause
	if err := json.Unmarshal(envelope.Error, &cause); err == nil {
		re.Type = cause.Type
		re.Reason = cause.Reason
		return re
	}

	var reason string
	if err := json.Unmarshal(envelope.Error, &reason); err == nil {
		re.Reason = reason
	}
	return re
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

func decodeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
}
