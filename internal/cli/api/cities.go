package api

import (
	"fmt"
	"net/http"

	"github.com/zfogg/citysearch/internal/cli/client"
	"github.com/zfogg/citysearch/internal/cli/logger"
)

// SearchCitiesDB searches the Postgres cities table
func SearchCitiesDB(query string, limit int) (*CitiesResponse, error) {
	logger.Debug("Searching cities in Postgres", "query", query, "limit", limit)

	var response CitiesResponse
	resp, err := client.GetClient().
		R().
		SetQueryParam("q", query).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&response).
		Get("/api/cities")
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// SearchCitiesES runs the typeahead query against Elasticsearch
func SearchCitiesES(query string, limit, offset int) (*CitiesResponse, error) {
	logger.Debug("Searching cities in Elasticsearch", "query", query, "limit", limit, "offset", offset)

	var response CitiesResponse
	resp, err := client.GetClient().
		R().
		SetQueryParam("q", query).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("offset", fmt.Sprintf("%d", offset)).
		SetResult(&response).
		Get("/api/cities-es")
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// SearchCitiesStructured runs a filtered Elasticsearch city search
func SearchCitiesStructured(query string, filters CityFilters) (*CitiesResponse, error) {
	logger.Debug("Structured city search", "query", query, "state", filters.State, "min_population", filters.MinPopulation)

	var response CitiesResponse
	resp, err := client.GetClient().
		R().
		SetBody(map[string]interface{}{"query": query, "filters": filters}).
		SetResult(&response).
		Post("/api/cities-es")
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// SuggestCities returns name completions for prefix
func SuggestCities(prefix string, size int) (*SuggestResponse, error) {
	var response SuggestResponse
	resp, err := client.GetClient().
		R().
		SetQueryParam("q", prefix).
		SetQueryParam("size", fmt.Sprintf("%d", size)).
		SetResult(&response).
		Get("/api/cities-es/suggest")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

func syncPath(direct bool) string {
	if direct {
		return "/api/cities/sync-direct"
	}
	return "/api/cities/sync"
}

// SyncCities rebuilds the city index. A 207 is returned as a result with
// Partial set, not as an error.
func SyncCities(direct bool) (*SyncResult, error) {
	logger.Debug("Rebuilding city index", "direct", direct)

	var response SyncResult
	resp, err := client.GetClient().
		R().
		SetResult(&response).
		Post(syncPath(direct))
	if err != nil {
		return nil, fmt.Errorf("failed to sync cities: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	response.Partial = resp.StatusCode() == http.StatusMultiStatus
	response.Shared = resp.Header().Get("X-Reindex-Shared") == "true"
	return &response, nil
}

// GetSyncStatus reports the state of the city index
func GetSyncStatus(direct bool) (*SyncStatus, error) {
	var response SyncStatus
	resp, err := client.GetClient().
		R().
		SetResult(&response).
		Get(syncPath(direct))
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}
