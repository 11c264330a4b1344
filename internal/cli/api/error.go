package api

import (
	stderrors "errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// ErrorResponse is the server's error body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// APIError is a non-2xx answer from the server
type APIError struct {
	Code       string
	Message    string
	Field      string
	Details    string
	StatusCode int
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field: %s)", e.Field)
	}
	if e.Details != "" {
		msg += fmt.Sprintf(" (details: %s)", e.Details)
	}
	return msg
}

// ParseError parses an error response from the API. Reindex failures carry
// a result body instead of an error code; their message is kept.
func ParseError(resp *resty.Response) error {
	statusCode := resp.StatusCode()

	var errResp ErrorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err == nil && (errResp.Code != "" || errResp.Message != "") {
		code := errResp.Code
		if code == "" {
			code = "request_failed"
		}
		return &APIError{
			Code:       code,
			Message:    errResp.Message,
			Field:      errResp.Field,
			Details:    errResp.Details,
			StatusCode: statusCode,
		}
	}

	return &APIError{
		Code:       "unknown_error",
		Message:    string(resp.Body()),
		StatusCode: statusCode,
	}
}

// StatusCode returns the HTTP status of an APIError, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports a 404
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

// IsUnavailable reports a 503
func IsUnavailable(err error) bool {
	return StatusCode(err) == 503
}

// IsRateLimited reports a 429
func IsRateLimited(err error) bool {
	return StatusCode(err) == 429
}
