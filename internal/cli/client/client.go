package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/zfogg/citysearch/internal/cli/config"
	"github.com/zfogg/citysearch/internal/cli/logger"
)

const userAgent = "CitySearch-CLI/0.1.0"

var httpClient *resty.Client

// Init builds the HTTP client from api.base_url and api.timeout
func Init() {
	Configure(config.GetString("api.base_url"), time.Duration(config.GetInt("api.timeout"))*time.Second)
}

// Configure builds the HTTP client for an explicit server
func Configure(baseURL string, timeout time.Duration) {
	httpClient = resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", userAgent)
	httpClient.SetHeader("Accept", "application/json")

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		// correlates CLI logs with server logs
		req.SetHeader("X-Request-ID", uuid.NewString())
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"request_id", resp.Request.Header.Get("X-Request-ID"),
			"duration", resp.Time(),
		)
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}
