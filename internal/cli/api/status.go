package api

import (
	"fmt"

	"github.com/zfogg/citysearch/internal/cli/client"
)

// GetStatus probes every backend through the server
func GetStatus() (*StatusResponse, error) {
	var response StatusResponse
	resp, err := client.GetClient().R().SetResult(&response).Get("/api/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// TestElasticsearch pings the cluster through the server
func TestElasticsearch() (*TestESResponse, error) {
	var response TestESResponse
	resp, err := client.GetClient().R().SetResult(&response).Get("/api/test-es")
	if err != nil {
		return nil, fmt.Errorf("failed to test elasticsearch: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// Health checks the liveness route
func Health() (map[string]interface{}, error) {
	var response map[string]interface{}
	resp, err := client.GetClient().R().SetResult(&response).Get("/health")
	if err != nil {
		return nil, fmt.Errorf("failed to check health: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return response, nil
}
