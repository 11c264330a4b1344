package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/errors"
	"github.com/zfogg/citysearch/internal/reindex"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/util"
)

// SyncStatusResponse describes the city index
type SyncStatusResponse struct {
	Indexed      bool   `json:"indexed"`
	Message      string `json:"message"`
	Count        int64  `json:"count"`
	IndexSize    int64  `json:"indexSize,omitempty"`
	LastModified int64  `json:"lastModified,omitempty"`
	Version      int    `json:"version,omitempty"`
}

func (h *Handlers) engineFor(name string) Engine {
	if name == search.EngineDirect {
		return h.direct
	}
	return h.engine
}

func syncPath(name string) string {
	if name == search.EngineDirect {
		return "/api/cities/sync-direct"
	}
	return "/api/cities/sync"
}

// SyncCities rebuilds the city index from Postgres with the named engine.
// Concurrent calls for the same index share one rebuild.
// POST /api/cities/sync, POST /api/cities/sync-direct
func (h *Handlers) SyncCities(engineName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.requireDatabase(c) {
			return
		}

		p := &reindex.Pipeline{
			Engine:     h.engineFor(engineName),
			Source:     h.cities,
			Index:      h.citiesIndex,
			EngineName: engineName,
		}

		res, shared, err := h.coordinator.Run(c.Request.Context(), p)
		if err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
				util.RespondWithAPIError(c, errors.Timeout("City reindex").WithDetails(err.Error()))
				return
			}
			res = reindex.FailureResult(err)
			util.RespondWithAPIError(c, &errors.APIError{
				Code:    errorCodeFor(res.Status),
				Message: res.Message,
				Details: err.Error(),
				Status:  res.Status,
			})
			return
		}

		c.Header("X-Reindex-Shared", strconv.FormatBool(shared))
		c.JSON(res.Status, res)
	}
}

func errorCodeFor(status int) errors.ErrorCode {
	if status == http.StatusServiceUnavailable {
		return errors.ErrServiceUnavail
	}
	return errors.ErrInternalError
}

// SyncStatus reports whether the city index exists, its size and mapping version
// GET /api/cities/sync, GET /api/cities/sync-direct
func (h *Handlers) SyncStatus(engineName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		engine := h.engineFor(engineName)

		exists, err := engine.IndexExists(ctx, h.citiesIndex)
		if err != nil {
			util.RespondSearchError(c, "Status check failed", err)
			return
		}
		if !exists {
			c.JSON(http.StatusOK, SyncStatusResponse{
				Message: fmt.Sprintf("Cities index does not exist. Run POST %s to create it.", syncPath(engineName)),
			})
			return
		}

		count, err := engine.Count(ctx, h.citiesIndex)
		if err != nil {
			util.RespondSearchError(c, "Status check failed", err)
			return
		}
		stats, err := engine.Stats(ctx, h.citiesIndex)
		if err != nil {
			util.RespondSearchError(c, "Status check failed", err)
			return
		}
		version, err := engine.MappingVersion(ctx, h.citiesIndex)
		if err != nil {
			util.RespondSearchError(c, "Status check failed", err)
			return
		}

		c.JSON(http.StatusOK, SyncStatusResponse{
			Indexed:      true,
			Message:      "Cities index exists and is ready",
			Count:        count,
			IndexSize:    stats.SizeInBytes,
			LastModified: stats.RefreshTimeInMilli,
			Version:      version,
		})
	}
}
