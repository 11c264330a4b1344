package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/documents"
	"github.com/zfogg/citysearch/internal/seed"
	"github.com/zfogg/citysearch/internal/util"
)

// SeedDocuments loads the sample corpus unless the index already has data
// POST /api/seed
func (h *Handlers) SeedDocuments(c *gin.Context) {
	res, err := h.documents.Seed(c.Request.Context(), seed.SampleDocuments())
	if stderrors.Is(err, documents.ErrSeedFailed) {
		util.RespondInternalError(c, "Some documents failed to index", err)
		return
	}
	if err != nil {
		util.RespondSearchError(c, "Failed to seed sample data", err)
		return
	}

	if res.Existing > 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "Sample data already exists",
			"count":   res.Existing,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Sample data seeded successfully",
		"documentsCreated": res.Created,
		"indexName":        res.Index,
	})
}

// ClearDocuments deletes every document of the default index
// DELETE /api/seed
func (h *Handlers) ClearDocuments(c *gin.Context) {
	deleted, err := h.documents.Clear(c.Request.Context())
	if err != nil {
		util.RespondSearchError(c, "Failed to clear sample data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "All sample data cleared successfully",
		"indexName": h.documents.Index(""),
		"deleted":   deleted,
	})
}
