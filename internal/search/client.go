package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/zfogg/citysearch/internal/config"
	"github.com/zfogg/citysearch/internal/metrics"
	"github.com/zfogg/citysearch/internal/telemetry"
)

// EngineLibrary labels metrics and logs for the go-elasticsearch engine
const EngineLibrary = "library"

// Client wraps the official Elasticsearch client. It is safe for concurrent
// use and never performs I/O when constructed.
type Client struct {
	es          *elasticsearch.Client
	pingTimeout time.Duration
}

// NewClient creates a new Elasticsearch client
func NewClient(cfg config.ElasticsearchConfig) (*Client, error) {
	transport, err := newHTTPTransport(cfg)
	if err != nil {
		return nil, err
	}

	esCfg := elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		Transport:     telemetry.NewTransport(transport),
		RetryOnStatus: retryStatuses,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  retryBackoff,
	}
	// zero means "use the library default" to go-elasticsearch
	if cfg.MaxRetries == 0 {
		esCfg.DisableRetry = true
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	return &Client{es: es, pingTimeout: pingTimeout}, nil
}

// perform runs one API call, reads the whole body and turns non-2xx
// responses into *ResponseError.
func (c *Client) perform(ctx context.Context, op, index string, call func(ctx context.Context) (*esapi.Response, error)) ([]byte, error) {
	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalCallAttrs{
		Service:   "elasticsearch",
		Operation: op,
		Index:     index,
		Engine:    EngineLibrary,
	})
	start := time.Now()

	body, err := c.roundTrip(ctx, op, call)

	metrics.ObserveElasticsearch(EngineLibrary, index, op, start, err)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordElasticsearchError(EngineLibrary, index, op, errorType(err))
	}
	telemetry.EndExternalCall(span, err)
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, op string, call func(ctx context.Context) (*esapi.Response, error)) ([]byte, error) {
	res, err := call(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return nil, unavailable(op, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, unavailable(op, err)
	}

	if res.IsError() {
		return body, fmt.Errorf("%s: %w", op, parseResponseError(res.StatusCode, body))
	}
	return body, nil
}

func errorType(err error) string {
	var re *ResponseError
	switch {
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &re):
		if re.Type != "" {
			return re.Type
		}
		return fmt.Sprintf("status_%d", re.Status)
	default:
		return "unknown"
	}
}

func decode(op string, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return decodeFailure(op, err)
	}
	return nil
}

// Ping checks that the cluster answers within the ping timeout
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	_, err := c.perform(ctx, "ping", "", func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Ping(c.es.Ping.WithContext(ctx))
	})
	return err
}

// Info returns the cluster name and version
func (c *Client) Info(ctx context.Context) (*ClusterInfo, error) {
	body, err := c.perform(ctx, "info", "", func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Info(c.es.Info.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}

	var info ClusterInfo
	if err := decode("info", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// IndexExists reports whether index exists
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	_, err := c.perform(ctx, "index_exists", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateIndex creates index with the given settings and mappings
func (c *Client) CreateIndex(ctx context.Context, index string, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	_, err = c.perform(ctx, "create_index", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Create(index,
			c.es.Indices.Create.WithBody(bytes.NewReader(payload)),
			c.es.Indices.Create.WithContext(ctx),
		)
	})
	return err
}

// DeleteIndex deletes index. A missing index is not an error.
func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	_, err := c.perform(ctx, "delete_index", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Delete([]string{index}, c.es.Indices.Delete.WithContext(ctx))
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// BulkIndex sends docs in a single bulk request
func (c *Client) BulkIndex(ctx context.Context, index string, docs []BulkDocument, refresh bool) (*BulkResponse, error) {
	payload, err := encodeBulk(index, docs)
	if err != nil {
		return nil, err
	}

	body, err := c.perform(ctx, "bulk", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Bulk(bytes.NewReader(payload.Bytes()),
			c.es.Bulk.WithIndex(index),
			c.es.Bulk.WithRefresh(refreshParam(refresh)),
			c.es.Bulk.WithContext(ctx),
		)
	})
	if err != nil {
		return nil, err
	}

	var resp BulkResponse
	if err := decode("bulk", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search runs query against index
func (c *Client) Search(ctx context.Context, index string, query map[string]interface{}) (*SearchResponse, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	body, err := c.perform(ctx, "search", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Search(
			c.es.Search.WithContext(ctx),
			c.es.Search.WithIndex(index),
			c.es.Search.WithBody(bytes.NewReader(payload)),
		)
	})
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := decode("search", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Count returns the number of documents in index
func (c *Client) Count(ctx context.Context, index string) (int64, error) {
	body, err := c.perform(ctx, "count", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Count(
			c.es.Count.WithIndex(index),
			c.es.Count.WithContext(ctx),
		)
	})
	if err != nil {
		return 0, err
	}

	var resp struct {
		Count int64 `json:"count"`
	}
	if err := decode("count", body, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Stats returns store size and refresh time for index
func (c *Client) Stats(ctx context.Context, index string) (*IndexStats, error) {
	body, err := c.perform(ctx, "stats", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Stats(
			c.es.Indices.Stats.WithIndex(index),
			c.es.Indices.Stats.WithMetric("store", "refresh"),
			c.es.Indices.Stats.WithContext(ctx),
		)
	})
	if err != nil {
		return nil, err
	}

	var resp statsEnvelope
	if err := decode("stats", body, &resp); err != nil {
		return nil, err
	}
	return resp.toStats(), nil
}

// MappingVersion reads _meta.version from the index mapping
func (c *Client) MappingVersion(ctx context.Context, index string) (int, error) {
	body, err := c.perform(ctx, "get_mapping", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.GetMapping(
			c.es.Indices.GetMapping.WithIndex(index),
			c.es.Indices.GetMapping.WithContext(ctx),
		)
	})
	if err != nil {
		return 0, err
	}

	var resp mappingEnvelope
	if err := decode("get_mapping", body, &resp); err != nil {
		return 0, err
	}
	return resp.version(), nil
}

// Refresh makes recent writes to index visible to search
func (c *Client) Refresh(ctx context.Context, index string) error {
	_, err := c.perform(ctx, "refresh", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Refresh(
			c.es.Indices.Refresh.WithIndex(index),
			c.es.Indices.Refresh.WithContext(ctx),
		)
	})
	return err
}

// GetDocument fetches one document. A missing document or index wraps ErrNotFound.
func (c *Client) GetDocument(ctx context.Context, index, id string) (*Hit, error) {
	body, err := c.perform(ctx, "get", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Get(index, id, c.es.Get.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Index  string          `json:"_index"`
		ID     string          `json:"_id"`
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	}
	if err := decode("get", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, fmt.Errorf("get %s/%s: %w", index, id, ErrNotFound)
	}
	return &Hit{Index: resp.Index, ID: resp.ID, Source: resp.Source}, nil
}

// IndexDocument writes doc and waits until it is searchable. An empty id
// lets Elasticsearch assign one; the stored id is returned.
func (c *Client) IndexDocument(ctx context.Context, index, id string, doc interface{}) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	body, err := c.perform(ctx, "index", index, func(ctx context.Context) (*esapi.Response, error) {
		opts := []func(*esapi.IndexRequest){
			c.es.Index.WithRefresh("wait_for"),
			c.es.Index.WithContext(ctx),
		}
		if id != "" {
			opts = append(opts, c.es.Index.WithDocumentID(id))
		}
		return c.es.Index(index, bytes.NewReader(payload), opts...)
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"_id"`
	}
	if err := decode("index", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdateDocument applies a partial update to an existing document
func (c *Client) UpdateDocument(ctx context.Context, index, id string, fields map[string]interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{"doc": fields})
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	_, err = c.perform(ctx, "update", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Update(index, id, bytes.NewReader(payload),
			c.es.Update.WithRefresh("wait_for"),
			c.es.Update.WithContext(ctx),
		)
	})
	return err
}

// DeleteDocument removes one document. A missing document wraps ErrNotFound.
func (c *Client) DeleteDocument(ctx context.Context, index, id string) error {
	_, err := c.perform(ctx, "delete", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Delete(index, id,
			c.es.Delete.WithRefresh("wait_for"),
			c.es.Delete.WithContext(ctx),
		)
	})
	return err
}

// DeleteByQuery removes every document matching query and returns the count
func (c *Client) DeleteByQuery(ctx context.Context, index string, query map[string]interface{}) (int64, error) {
	payload, err := json.Marshal(map[string]interface{}{"query": query})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal delete query: %w", err)
	}

	body, err := c.perform(ctx, "delete_by_query", index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.DeleteByQuery([]string{index}, bytes.NewReader(payload),
			c.es.DeleteByQuery.WithRefresh(true),
			c.es.DeleteByQuery.WithContext(ctx),
		)
	})
	if err != nil {
		return 0, err
	}

	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := decode("delete_by_query", body, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}
