package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/documents"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/util"
)

type createDocumentRequest struct {
	documents.Input
	Index string `json:"index"`
}

type updateDocumentRequest struct {
	documents.Patch
	ID    string `json:"id"`
	Index string `json:"index"`
}

func respondDocumentError(c *gin.Context, message string, err error) {
	switch {
	case stderrors.Is(err, documents.ErrTitleRequired):
		util.RespondMissingField(c, "title", "Document title is required")
	case stderrors.Is(err, documents.ErrIDRequired):
		util.RespondMissingField(c, "id", "Document ID is required")
	case stderrors.Is(err, search.ErrNotFound):
		util.RespondNotFound(c, "Document")
	default:
		util.RespondSearchError(c, message, err)
	}
}

// ListDocuments pages through an index
// GET /api/documents?index=&size=&from=
func (h *Handlers) ListDocuments(c *gin.Context) {
	results, err := h.documents.List(c.Request.Context(),
		c.Query("index"),
		search.ClampLimit(util.ParseInt(c.Query("size"), search.DefaultLimit)),
		max(util.ParseInt(c.Query("from"), 0), 0),
	)
	if err != nil {
		util.RespondSearchError(c, "Failed to retrieve documents", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetDocument fetches one document
// GET /api/documents/:id?index=
func (h *Handlers) GetDocument(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Query("index"), c.Param("id"))
	if err != nil {
		respondDocumentError(c, "Failed to retrieve document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// CreateDocument stores a new document, creating the index on first write
// POST /api/documents
func (h *Handlers) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Invalid request body")
		return
	}

	id, doc, err := h.documents.Create(c.Request.Context(), req.Index, req.Input)
	if err != nil {
		respondDocumentError(c, "Failed to create document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       id,
		"document": doc,
	})
}

// UpdateDocument applies a partial update
// PUT /api/documents
func (h *Handlers) UpdateDocument(c *gin.Context) {
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Invalid request body")
		return
	}

	fields, err := h.documents.Update(c.Request.Context(), req.Index, req.ID, req.Patch)
	if err != nil {
		respondDocumentError(c, "Failed to update document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       req.ID,
		"document": fields,
	})
}

// DeleteDocument removes one document
// DELETE /api/documents?id=&index=
func (h *Handlers) DeleteDocument(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Query("index"), c.Query("id")); err != nil {
		respondDocumentError(c, "Failed to delete document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document deleted successfully",
	})
}
