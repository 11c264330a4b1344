// Package searchtest provides an in-memory Elasticsearch stand-in for tests.
// It speaks enough of the REST API for both search engines: index admin,
// bulk, search, count, stats, mappings and single-document CRUD.
package searchtest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zfogg/citysearch/internal/config"
)

// Request is one recorded call
type Request struct {
	Op     string
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Server is a fake Elasticsearch cluster
type Server struct {
	*httptest.Server

	// FailBulkItem, when set, fails the bulk item it returns true for
	FailBulkItem func(id string, source map[string]interface{}) (errType, reason string, failed bool)

	mu       sync.Mutex
	indices  map[string]*fakeIndex
	requests []Request
	failures map[string]int
	delays   map[string]time.Duration
	nextID   int
}

type fakeIndex struct {
	body  map[string]interface{}
	docs  map[string]json.RawMessage
	order []string
}

// NewServer starts a fake cluster that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		indices:  make(map[string]*fakeIndex),
		failures: make(map[string]int),
		delays:   make(map[string]time.Duration),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Config returns engine settings pointing at the fake cluster
func (s *Server) Config() config.ElasticsearchConfig {
	return config.ElasticsearchConfig{
		URL:         s.URL,
		MaxRetries:  0,
		PingTimeout: time.Second,
	}
}

// SetFailure forces every call of op to answer with status until cleared with 0
func (s *Server) SetFailure(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, op)
		return
	}
	s.failures[op] = status
}

// SetDelay makes every call of op sleep for d before answering
func (s *Server) SetDelay(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[op] = d
}

// Seed stores a document directly, creating the index if needed
func (s *Server) Seed(index, id string, source interface{}) {
	raw, err := json.Marshal(source)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(s.ensureIndex(index), id, raw)
}

// CreateIndex creates an empty index with body as its definition
func (s *Server) CreateIndex(index string, body map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[index] = &fakeIndex{body: body, docs: make(map[string]json.RawMessage)}
}

// HasIndex reports whether index exists
func (s *Server) HasIndex(index string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indices[index]
	return ok
}

// IndexBody returns the definition index was created with
func (s *Server) IndexBody(index string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indices[index]; ok {
		return idx.body
	}
	return nil
}

// Doc returns the stored source of one document
func (s *Server) Doc(index, id string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indices[index]
	if !ok {
		return nil, false
	}
	raw, ok := idx.docs[id]
	if !ok {
		return nil, false
	}
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return out, true
}

// DocCount returns the number of documents in index
func (s *Server) DocCount(index string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indices[index]; ok {
		return len(idx.docs)
	}
	return 0
}

// Requests returns the recorded calls, optionally only those of op
func (s *Server) Requests(op string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if op == "" || r.Op == op {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) ensureIndex(name string) *fakeIndex {
	idx, ok := s.indices[name]
	if !ok {
		idx = &fakeIndex{body: map[string]interface{}{}, docs: make(map[string]json.RawMessage)}
		s.indices[name] = idx
	}
	return idx
}

func (s *Server) put(idx *fakeIndex, id string, raw json.RawMessage) {
	if _, exists := idx.docs[id]; !exists {
		idx.order = append(idx.order, id)
	}
	idx.docs[id] = raw
}

func (s *Server) remove(idx *fakeIndex, id string) bool {
	if _, ok := idx.docs[id]; !ok {
		return false
	}
	delete(idx.docs, id)
	for i, o := range idx.order {
		if o == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return true
}

func operation(method string, segs []string) string {
	if len(segs) == 0 {
		if method == http.MethodHead {
			return "ping"
		}
		return "info"
	}
	if len(segs) == 1 {
		switch method {
		case http.MethodHead:
			return "exists"
		case http.MethodPut:
			return "create_index"
		case http.MethodDelete:
			return "delete_index"
		}
		return "get_index"
	}
	switch segs[1] {
	case "_bulk":
		return "bulk"
	case "_search":
		return "search"
	case "_count":
		return "count"
	case "_mapping":
		return "mapping"
	case "_stats":
		return "stats"
	case "_update":
		return "update"
	case "_delete_by_query":
		return "delete_by_query"
	case "_refresh":
		return "refresh"
	case "_doc":
		switch method {
		case http.MethodGet:
			return "get"
		case http.MethodDelete:
			return "delete"
		}
		return "index"
	}
	return "unknown"
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)
	var segs []string
	for _, p := range strings.Split(strings.Trim(r.URL.Path, "/"), "/") {
		if p != "" {
			segs = append(segs, p)
		}
	}
	op := operation(r.Method, segs)

	s.mu.Lock()
	s.requests = append(s.requests, Request{Op: op, Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	status, failing := s.failures[op]
	delay := s.delays[op]
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failing {
		writeError(w, status, "injected_failure", fmt.Sprintf("%s failed", op))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(segs) == 0 {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":         "fake-node",
			"cluster_name": "fake-cluster",
			"version": map[string]interface{}{
				"number":         "8.19.0",
				"lucene_version": "9.12.0",
			},
		})
		return
	}

	name := segs[0]
	idx, exists := s.indices[name]

	switch op {
	case "exists":
		if exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case "create_index":
		if exists {
			writeError(w, http.StatusBadRequest, "resource_already_exists_exception",
				fmt.Sprintf("index [%s] already exists", name))
			return
		}
		var def map[string]interface{}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &def); err != nil {
				writeError(w, http.StatusBadRequest, "parse_exception", err.Error())
				return
			}
		}
		s.indices[name] = &fakeIndex{body: def, docs: make(map[string]json.RawMessage)}
		writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true, "index": name})
	case "delete_index":
		if !exists {
			indexNotFound(w, name)
			return
		}
		delete(s.indices, name)
		writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
	case "bulk":
		s.bulk(w, name, body)
	case "search":
		if !exists {
			indexNotFound(w, name)
			return
		}
		s.search(w, name, idx, body)
	case "count":
		if !exists {
			indexNotFound(w, name)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(idx.docs)})
	case "mapping":
		if !exists {
			indexNotFound(w, name)
			return
		}
		mappings, _ := idx.body["mappings"].(map[string]interface{})
		if mappings == nil {
			mappings = map[string]interface{}{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{name: map[string]interface{}{"mappings": mappings}})
	case "stats":
		if !exists {
			indexNotFound(w, name)
			return
		}
		var size int
		for _, raw := range idx.docs {
			size += len(raw)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"_all": map[string]interface{}{
				"primaries": map[string]interface{}{
					"store":   map[string]interface{}{"size_in_bytes": size},
					"refresh": map[string]interface{}{"total_time_in_millis": 7},
				},
			},
		})
	case "refresh":
		if !exists {
			indexNotFound(w, name)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"_shards": map[string]interface{}{"successful": 1}})
	case "get":
		id := docID(segs)
		if !exists {
			indexNotFound(w, name)
			return
		}
		raw, ok := idx.docs[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"_index": name, "_id": id, "found": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"_index": name, "_id": id, "found": true, "_source": raw})
	case "index":
		id := docID(segs)
		if id == "" {
			s.nextID++
			id = "doc-" + strconv.Itoa(s.nextID)
		}
		if !json.Valid(body) {
			writeError(w, http.StatusBadRequest, "mapper_parsing_exception", "failed to parse")
			return
		}
		target := s.ensureIndex(name)
		result := "created"
		if _, ok := target.docs[id]; ok {
			result = "updated"
		}
		s.put(target, id, body)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"_index": name, "_id": id, "result": result})
	case "update":
		id := docID(segs)
		if !exists {
			indexNotFound(w, name)
			return
		}
		raw, ok := idx.docs[id]
		if !ok {
			writeError(w, http.StatusNotFound, "document_missing_exception",
				fmt.Sprintf("[%s]: document missing", id))
			return
		}
		var req struct {
			Doc map[string]interface{} `json:"doc"`
		}
		var current map[string]interface{}
		_ = json.Unmarshal(body, &req)
		_ = json.Unmarshal(raw, &current)
		if current == nil {
			current = map[string]interface{}{}
		}
		for k, v := range req.Doc {
			current[k] = v
		}
		merged, _ := json.Marshal(current)
		s.put(idx, id, merged)
		writeJSON(w, http.StatusOK, map[string]interface{}{"_index": name, "_id": id, "result": "updated"})
	case "delete":
		id := docID(segs)
		if !exists || !s.remove(idx, id) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"_index": name, "_id": id, "result": "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"_index": name, "_id": id, "result": "deleted"})
	case "delete_by_query":
		if !exists {
			indexNotFound(w, name)
			return
		}
		deleted := len(idx.docs)
		idx.docs = make(map[string]json.RawMessage)
		idx.order = nil
		writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
	default:
		writeError(w, http.StatusBadRequest, "unsupported_operation", r.Method+" "+r.URL.Path)
	}
}

func docID(segs []string) string {
	if len(segs) > 2 {
		return segs[2]
	}
	return ""
}

func (s *Server) bulk(w http.ResponseWriter, name string, body []byte) {
	idx := s.ensureIndex(name)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	var items []map[string]interface{}
	hasErrors := false
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var action map[string]struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		}
		if err := json.Unmarshal(line, &action); err != nil {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "malformed action line")
			return
		}
		if !scanner.Scan() {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "missing source line")
			return
		}
		source := append([]byte(nil), bytes.TrimSpace(scanner.Bytes())...)

		meta := action["index"]
		id := meta.ID
		if id == "" {
			s.nextID++
			id = "doc-" + strconv.Itoa(s.nextID)
		}

		result := map[string]interface{}{"_index": name, "_id": id}
		var parsed map[string]interface{}
		_ = json.Unmarshal(source, &parsed)
		if s.FailBulkItem != nil {
			if errType, reason, failed := s.FailBulkItem(id, parsed); failed {
				hasErrors = true
				result["status"] = http.StatusBadRequest
				result["error"] = map[string]interface{}{"type": errType, "reason": reason}
				items = append(items, map[string]interface{}{"index": result})
				continue
			}
		}
		s.put(idx, id, source)
		result["status"] = http.StatusCreated
		result["result"] = "created"
		items = append(items, map[string]interface{}{"index": result})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"took":   3,
		"errors": hasErrors,
		"items":  items,
	})
}

func (s *Server) search(w http.ResponseWriter, name string, idx *fakeIndex, body []byte) {
	var req map[string]interface{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &req)
	}

	if sug, ok := req["suggest"].(map[string]interface{}); ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"took":      1,
			"timed_out": false,
			"hits":      map[string]interface{}{"total": map[string]interface{}{"value": 0, "relation": "eq"}, "hits": []interface{}{}},
			"suggest":   s.suggest(name, idx, sug),
		})
		return
	}

	term := strings.ToLower(findTerm(req["query"]))
	var matched []string
	for _, id := range idx.order {
		if term == "" || strings.Contains(strings.ToLower(string(idx.docs[id])), term) {
			matched = append(matched, id)
		}
	}

	size := intParam(req["size"], 10)
	from := intParam(req["from"], 0)
	page := []map[string]interface{}{}
	for i := from; i < len(matched) && len(page) < size; i++ {
		id := matched[i]
		hit := map[string]interface{}{
			"_index":  name,
			"_id":     id,
			"_score":  1.0,
			"_source": idx.docs[id],
		}
		if _, wantsHighlight := req["highlight"]; wantsHighlight && term != "" {
			hit["highlight"] = highlight(idx.docs[id], term)
		}
		page = append(page, hit)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"took":      2,
		"timed_out": false,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": len(matched), "relation": "eq"},
			"max_score": 1.0,
			"hits":      page,
		},
	})
}

func (s *Server) suggest(name string, idx *fakeIndex, req map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for key, v := range req {
		spec, _ := v.(map[string]interface{})
		prefix, _ := spec["prefix"].(string)
		completion, _ := spec["completion"].(map[string]interface{})
		size := intParam(completion["size"], 5)

		var options []map[string]interface{}
		for _, id := range idx.order {
			var doc map[string]interface{}
			_ = json.Unmarshal(idx.docs[id], &doc)
			docName, _ := doc["name"].(string)
			if strings.HasPrefix(strings.ToLower(docName), strings.ToLower(prefix)) && len(options) < size {
				options = append(options, map[string]interface{}{
					"text":    docName,
					"_index":  name,
					"_id":     id,
					"_score":  1.0,
					"_source": idx.docs[id],
				})
			}
		}
		if options == nil {
			options = []map[string]interface{}{}
		}
		out[key] = []map[string]interface{}{{"text": prefix, "offset": 0, "length": len(prefix), "options": options}}
	}
	return out
}

// findTerm returns the first multi_match query or prefix value in a query tree
func findTerm(node interface{}) string {
	switch n := node.(type) {
	case map[string]interface{}:
		if mm, ok := n["multi_match"].(map[string]interface{}); ok {
			if q, ok := mm["query"].(string); ok {
				return q
			}
		}
		if p, ok := n["prefix"].(map[string]interface{}); ok {
			for _, v := range p {
				if fv, ok := v.(map[string]interface{}); ok {
					if val, ok := fv["value"].(string); ok {
						return val
					}
				}
			}
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "filter" {
				continue
			}
			if t := findTerm(n[k]); t != "" {
				return t
			}
		}
	case []interface{}:
		for _, v := range n {
			if t := findTerm(v); t != "" {
				return t
			}
		}
	}
	return ""
}

func highlight(raw json.RawMessage, term string) map[string][]string {
	var doc map[string]interface{}
	_ = json.Unmarshal(raw, &doc)
	out := map[string][]string{}
	for _, field := range []string{"title", "content"} {
		text, _ := doc[field].(string)
		lower := strings.ToLower(text)
		if i := strings.Index(lower, term); i >= 0 {
			out[field] = []string{text[:i] + "<em>" + text[i:i+len(term)] + "</em>" + text[i+len(term):]}
		}
	}
	return out
}

func intParam(v interface{}, def int) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return def
}

func indexNotFound(w http.ResponseWriter, name string) {
	writeError(w, http.StatusNotFound, "index_not_found_exception", fmt.Sprintf("no such index [%s]", name))
}

func writeError(w http.ResponseWriter, status int, errType, reason string) {
	writeJSON(w, status, map[string]interface{}{
		"error":  map[string]interface{}{"type": errType, "reason": reason},
		"status": status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
