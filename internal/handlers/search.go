package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/util"
)

type searchRequest struct {
	Query   string `json:"query"`
	Index   string `json:"index"`
	Size    int    `json:"size"`
	From    int    `json:"from"`
	Filters struct {
		Tags      []string              `json:"tags"`
		DateRange search.DateRangeQuery `json:"dateRange"`
	} `json:"filters"`
}

// SearchDocuments runs a full-text document search
// POST /api/search
func (h *Handlers) SearchDocuments(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Invalid request body")
		return
	}

	results, err := h.documents.Search(c.Request.Context(), req.Index, search.DocumentQuery{
		Query: req.Query,
		Size:  search.ClampLimit(req.Size),
		From:  req.From,
		Tags:  req.Filters.Tags,
		Dates: req.Filters.DateRange,
	})
	if err != nil {
		util.RespondSearchError(c, "Internal server error occurred during search", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// SearchUsage describes the POST body
// GET /api/search
func (h *Handlers) SearchUsage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Search API endpoint. Use POST method to perform searches.",
		"usage": gin.H{
			"method": "POST",
			"body": gin.H{
				"query": "string (required)",
				"index": "string (optional, default: documents)",
				"size":  "number (optional, default: 10)",
				"from":  "number (optional, default: 0)",
				"filters": gin.H{
					"tags": "string[] (optional)",
					"dateRange": gin.H{
						"from": "string (optional)",
						"to":   "string (optional)",
					},
				},
			},
		},
	})
}
