package api

// City is one city in a search response
type City struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	State       string  `json:"state"`
	Population  int64   `json:"population"`
	Description string  `json:"description"`
	Score       float64 `json:"score,omitempty"`
}

// CitiesResponse is the body of every city search route
type CitiesResponse struct {
	Cities     []City `json:"cities"`
	Total      int64  `json:"total"`
	StatusCode int    `json:"statusCode"`
	Msg        string `json:"msg,omitempty"`
}

// CityFilters narrows a structured city search
type CityFilters struct {
	Limit         int    `json:"limit,omitempty"`
	MinPopulation int64  `json:"minPopulation,omitempty"`
	State         string `json:"state,omitempty"`
}

// Suggestion is one typeahead completion
type Suggestion struct {
	Text       string `json:"text"`
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	State      string `json:"state,omitempty"`
	Population int64  `json:"population,omitempty"`
}

// SuggestResponse wraps the suggestions
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	Total       int          `json:"total"`
}

// SyncResult is the outcome of a reindex
type SyncResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	TotalCities   int      `json:"totalCities"`
	IndexedCities int      `json:"indexedCities"`
	Errors        []string `json:"errors,omitempty"`

	// Partial is set for a 207 answer
	Partial bool `json:"-"`
	// Shared is set when the call joined a rebuild already in flight
	Shared bool `json:"-"`
}

// SyncStatus describes the city index
type SyncStatus struct {
	Indexed      bool   `json:"indexed"`
	Message      string `json:"message"`
	Count        int64  `json:"count"`
	IndexSize    int64  `json:"indexSize,omitempty"`
	LastModified int64  `json:"lastModified,omitempty"`
	Version      int    `json:"version,omitempty"`
}

// Document is a generic full-text document
type Document struct {
	ID        string              `json:"id,omitempty"`
	Score     float64             `json:"score,omitempty"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Tags      []string            `json:"tags,omitempty"`
	CreatedAt string              `json:"created_at,omitempty"`
	UpdatedAt string              `json:"updated_at,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// DocumentResults is a page of documents
type DocumentResults struct {
	Total int64      `json:"total"`
	Took  int        `json:"took"`
	Hits  []Document `json:"hits"`
}

// DocumentInput creates a document
type DocumentInput struct {
	Index   string   `json:"index,omitempty"`
	Title   string   `json:"title"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// DocumentPatch updates a document; nil fields are left alone
type DocumentPatch struct {
	ID      string   `json:"id"`
	Index   string   `json:"index,omitempty"`
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// WriteResponse is the answer to a document create or update
type WriteResponse struct {
	Success  bool                   `json:"success"`
	ID       string                 `json:"id"`
	Document map[string]interface{} `json:"document"`
}

// DateRange bounds created_at
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// SearchFilters narrows a document search
type SearchFilters struct {
	Tags      []string   `json:"tags,omitempty"`
	DateRange *DateRange `json:"dateRange,omitempty"`
}

// SearchRequest is the body of POST /api/search
type SearchRequest struct {
	Query   string         `json:"query"`
	Index   string         `json:"index,omitempty"`
	Size    int            `json:"size,omitempty"`
	From    int            `json:"from,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
}

// SeedResponse is the answer to POST /api/seed
type SeedResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	DocumentsCreated int    `json:"documentsCreated,omitempty"`
	IndexName        string `json:"indexName,omitempty"`
	Count            int64  `json:"count,omitempty"`
}

// ClearResponse is the answer to DELETE /api/seed
type ClearResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	IndexName string `json:"indexName"`
	Deleted   int64  `json:"deleted"`
}

// ClusterInfo is the Elasticsearch root document
type ClusterInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number        string `json:"number"`
		LuceneVersion string `json:"lucene_version"`
	} `json:"version"`
}

// ComponentStatus is one backend in /api/status
type ComponentStatus struct {
	Connected bool         `json:"connected"`
	Enabled   *bool        `json:"enabled,omitempty"`
	Error     string       `json:"error,omitempty"`
	Info      *ClusterInfo `json:"info,omitempty"`
}

// StatusResponse is the body of /api/status
type StatusResponse struct {
	Elasticsearch ComponentStatus `json:"elasticsearch"`
	Database      ComponentStatus `json:"database"`
	Cache         ComponentStatus `json:"cache"`
	API           struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	} `json:"api"`
}

// TestESResponse is the body of /api/test-es
type TestESResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Ping    bool   `json:"ping"`
	Cluster struct {
		Name          string `json:"name"`
		Version       string `json:"version"`
		LuceneVersion string `json:"lucene_version"`
	} `json:"cluster"`
}
