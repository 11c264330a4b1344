package search

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/zfogg/citysearch/internal/config"
)

// retryStatuses are the responses both engines retry on
var retryStatuses = []int{429, 502, 503, 504}

const maxBackoff = 5 * time.Second

// retryBackoff is exponential from 100ms, capped at maxBackoff. attempt starts at 1.
func retryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		return maxBackoff
	}
	d := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// newHTTPTransport builds the base transport with the configured TLS trust
func newHTTPTransport(cfg config.ElasticsearchConfig) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()

	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.InsecureTLS {
		tlsCfg.InsecureSkipVerify = true //nolint:gosec // ELASTICSEARCH_INSECURE_TLS
	}
	if cfg.CACertPath != "" {
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CACertPath)
		}
		tlsCfg.RootCAs = pool
	}
	t.TLSClientConfig = tlsCfg
	return t, nil
}

// encodeBulk renders docs as the NDJSON body of an index bulk request
func encodeBulk(index string, docs []BulkDocument) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		meta := map[string]interface{}{"_index": index}
		if doc.ID != "" {
			meta["_id"] = doc.ID
		}
		if err := enc.Encode(map[string]interface{}{"index": meta}); err != nil {
			return nil, fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := enc.Encode(doc.Body); err != nil {
			return nil, fmt.Errorf("failed to encode bulk document %s: %w", doc.ID, err)
		}
	}
	return &buf, nil
}

func refreshParam(refresh bool) string {
	if refresh {
		return "true"
	}
	return "false"
}

// statsEnvelope is the part of the index stats response we read
type statsEnvelope struct {
	All struct {
		Primaries struct {
			Store struct {
				SizeInBytes int64 `json:"size_in_bytes"`
			} `json:"store"`
			Refresh struct {
				TotalTimeInMillis int64 `json:"total_time_in_millis"`
			} `json:"refresh"`
		} `json:"primaries"`
	} `json:"_all"`
}

func (s statsEnvelope) toStats() *IndexStats {
	return &IndexStats{
		SizeInBytes:        s.All.Primaries.Store.SizeInBytes,
		RefreshTimeInMilli: s.All.Primaries.Refresh.TotalTimeInMillis,
	}
}

// mappingEnvelope is the get-mapping response keyed by concrete index name
type mappingEnvelope map[string]struct {
	Mappings struct {
		Meta struct {
			Version int `json:"version"`
		} `json:"_meta"`
	} `json:"mappings"`
}

// version returns the stored mapping version, 0 when absent
func (m mappingEnvelope) version() int {
	for _, idx := range m {
		return idx.Mappings.Meta.Version
	}
	return 0
}
