package reindex

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zfogg/citysearch/internal/search"
)

// MaxReportedErrors caps the per-item errors returned to the caller. The
// full count is always kept in ErrorCount.
const MaxReportedErrors = 10

// Result summarizes one reindex run
type Result struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	TotalCities   int      `json:"totalCities"`
	IndexedCities int      `json:"indexedCities"`
	Errors        []string `json:"errors,omitempty"`

	ErrorCount int           `json:"-"`
	Status     int           `json:"-"`
	Duration   time.Duration `json:"-"`
	Engine     string        `json:"-"`
}

// Outcome labels the result for metrics and logs
func (r *Result) Outcome() string {
	switch r.Status {
	case http.StatusOK:
		return "success"
	case http.StatusMultiStatus:
		return "partial"
	case http.StatusNotFound:
		return "no_source"
	default:
		return "failed"
	}
}

// NoSourceResult is returned when the source table has no rows
func NoSourceResult() *Result {
	return &Result{
		Success: false,
		Message: "No cities found in PostgreSQL database",
		Status:  http.StatusNotFound,
	}
}

// FailureResult describes a run aborted by err. Unreachable search engines
// map to 503, everything else to 500.
func FailureResult(err error) *Result {
	status := http.StatusInternalServerError
	if errors.Is(err, search.ErrUnavailable) {
		status = http.StatusServiceUnavailable
	}
	return &Result{
		Success: false,
		Message: fmt.Sprintf("Sync failed: %v", err),
		Status:  status,
	}
}

// bulkResult folds the per-item outcome into a Result
func bulkResult(total int, itemErrors []string, errorCount int, took time.Duration) *Result {
	indexed := total - errorCount
	r := &Result{
		TotalCities:   total,
		IndexedCities: indexed,
		ErrorCount:    errorCount,
		Duration:      took,
	}

	switch {
	case errorCount == 0:
		r.Success = true
		r.Status = http.StatusOK
		r.Message = fmt.Sprintf("Successfully indexed %d cities in %dms", indexed, took.Milliseconds())
	default:
		// item failures never abort the batch, even when none were indexed
		r.Status = http.StatusMultiStatus
		r.Message = fmt.Sprintf("Indexed %d/%d cities with %d errors", indexed, total, errorCount)
		r.Errors = itemErrors
	}
	return r
}

// collectItemErrors walks the bulk items, returning at most
// MaxReportedErrors messages and the total number of failed items.
func collectItemErrors(resp *search.BulkResponse) ([]string, int) {
	if resp == nil || !resp.Errors {
		return nil, 0
	}
	var messages []string
	count := 0
	for _, item := range resp.Items {
		res := item.Result()
		if res.Error == nil {
			continue
		}
		count++
		if len(messages) < MaxReportedErrors {
			messages = append(messages, fmt.Sprintf("id %s: %s", res.ID, res.Error.Reason))
		}
	}
	return messages, count
}
