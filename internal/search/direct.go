package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/citysearch/internal/config"
	"github.com/zfogg/citysearch/internal/metrics"
	"github.com/zfogg/citysearch/internal/telemetry"
)

// EngineDirect labels metrics and logs for the raw HTTP engine
const EngineDirect = "direct"

// DirectClient talks to the Elasticsearch REST API directly over resty,
// without the official client. It backs the sync-direct route.
type DirectClient struct {
	http        *resty.Client
	pingTimeout time.Duration
}

// NewDirectClient creates a raw HTTP engine. No request is made until first use.
func NewDirectClient(cfg config.ElasticsearchConfig) (*DirectClient, error) {
	transport, err := newHTTPTransport(cfg)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTransport(telemetry.NewTransport(transport)).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(retryBackoff(1)).
		SetRetryMaxWaitTime(maxBackoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && slices.Contains(retryStatuses, r.StatusCode())
		})
	if cfg.Username != "" {
		client.SetBasicAuth(cfg.Username, cfg.Password)
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	return &DirectClient{http: client, pingTimeout: pingTimeout}, nil
}

func (d *DirectClient) perform(ctx context.Context, op, index, method, path string, body interface{}, contentType string) ([]byte, error) {
	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalCallAttrs{
		Service:   "elasticsearch",
		Operation: op,
		Index:     index,
		Engine:    EngineDirect,
	})
	start := time.Now()

	respBody, err := d.roundTrip(ctx, op, method, path, body, contentType)

	metrics.ObserveElasticsearch(EngineDirect, index, op, start, err)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordElasticsearchError(EngineDirect, index, op, errorType(err))
	}
	telemetry.EndExternalCall(span, err)
	return respBody, err
}

func (d *DirectClient) roundTrip(ctx context.Context, op, method, path string, body interface{}, contentType string) ([]byte, error) {
	req := d.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
		if contentType == "" {
			contentType = "application/json"
		}
		req.SetHeader("Content-Type", contentType)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return nil, unavailable(op, err)
	}

	if resp.StatusCode() > 299 {
		return resp.Body(), fmt.Errorf("%s: %w", op, parseResponseError(resp.StatusCode(), resp.Body()))
	}
	return resp.Body(), nil
}

func indexPath(index string, parts ...string) string {
	p := "/" + url.PathEscape(index)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Ping checks that the cluster answers within the ping timeout
func (d *DirectClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.pingTimeout)
	defer cancel()

	_, err := d.perform(ctx, "ping", "", http.MethodHead, "/", nil, "")
	return err
}

// Info returns the cluster name and version
func (d *DirectClient) Info(ctx context.Context) (*ClusterInfo, error) {
	body, err := d.perform(ctx, "info", "", http.MethodGet, "/", nil, "")
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
func (d *DirectClient) IndexExists(ctx context.Context, index string) (bool, error) {
	_, err := d.perform(ctx, "index_exists", index, http.MethodHead, indexPath(index), nil, "")
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateIndex creates index with the given settings and mappings
func (d *DirectClient) CreateIndex(ctx context.Context, index string, body map[string]interface{}) error {
	_, err := d.perform(ctx, "create_index", index, http.MethodPut, indexPath(index), body, "")
	return err
}

// DeleteIndex deletes index. A missing index is not an error.
func (d *DirectClient) DeleteIndex(ctx context.Context, index string) error {
	_, err := d.perform(ctx, "delete_index", index, http.MethodDelete, indexPath(index), nil, "")
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// BulkIndex sends docs as one NDJSON bulk request
func (d *DirectClient) BulkIndex(ctx context.Context, index string, docs []BulkDocument, refresh bool) (*BulkResponse, error) {
	payload, err := encodeBulk(index, docs)
	if err != nil {
		return nil, err
	}

	path := indexPath(index, "_bulk") + "?refresh=" + refreshParam(refresh)
	body, err := d.perform(ctx, "bulk", index, http.MethodPost, path, payload.Bytes(), "application/x-ndjson")
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
func (d *DirectClient) Search(ctx context.Context, index string, query map[string]interface{}) (*SearchResponse, error) {
	body, err := d.perform(ctx, "search", index, http.MethodPost, indexPath(index, "_search"), query, "")
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
func (d *DirectClient) Count(ctx context.Context, index string) (int64, error) {
	body, err := d.perform(ctx, "count", index, http.MethodGet, indexPath(index, "_count"), nil, "")
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
func (d *DirectClient) Stats(ctx context.Context, index string) (*IndexStats, error) {
	body, err := d.perform(ctx, "stats", index, http.MethodGet, indexPath(index, "_stats", "store,refresh"), nil, "")
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
func (d *DirectClient) MappingVersion(ctx context.Context, index string) (int, error) {
	body, err := d.perform(ctx, "get_mapping", index, http.MethodGet, indexPath(index, "_mapping"), nil, "")
	if err != nil {
		return 0, err
	}

	var resp mappingEnvelope
	if err := decode("get_mapping", body, &resp); err != nil {
		return 0, err
	}
	return resp.version(), nil
}
