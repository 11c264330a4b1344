package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/database"
	"github.com/zfogg/citysearch/internal/search"
)

type componentStatus struct {
	Connected bool                `json:"connected"`
	Error     string              `json:"error,omitempty"`
	Info      *search.ClusterInfo `json:"info,omitempty"`
}

// Status probes every backend. It always answers 200; the body says what is down.
// GET /api/status
func (h *Handlers) Status(c *gin.Context) {
	ctx := c.Request.Context()

	es := componentStatus{}
	if err := h.engine.Ping(ctx); err != nil {
		es.Error = err.Error()
	} else {
		es.Connected = true
		if info, err := h.engine.Info(ctx); err == nil {
			es.Info = info
		}
	}

	db := componentStatus{}
	if err := database.Health(ctx, h.db); err != nil {
		db.Error = err.Error()
	} else {
		db.Connected = true
	}

	cache := gin.H{"enabled": h.cache.Enabled()}
	if h.cache.Enabled() {
		if err := h.cache.Ping(ctx); err != nil {
			cache["error"] = err.Error()
		} else {
			cache["connected"] = true
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"elasticsearch": es,
		"database":      db,
		"cache":         cache,
		"api": gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// TestElasticsearch pings the cluster and reports its version
// GET /api/test-es
func (h *Handlers) TestElasticsearch(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.engine.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Connection failed: " + err.Error(),
		})
		return
	}

	info, err := h.engine.Info(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Connection failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Elasticsearch connection successful",
		"ping":    true,
		"cluster": gin.H{
			"name":           info.ClusterName,
			"version":        info.Version.Number,
			"lucene_version": info.Version.LuceneVersion,
		},
	})
}
