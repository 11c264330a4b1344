package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/util"
)

func (h *Handlers) loadCities(index string, query map[string]interface{}) func(context.Context) (*search.CityResults, error) {
	return func(ctx context.Context) (*search.CityResults, error) {
		resp, err := h.engine.Search(ctx, index, query)
		if err != nil {
			return nil, err
		}
		cities, err := search.FormatCities(resp)
		if err != nil {
			return nil, err
		}
		return &search.CityResults{Cities: cities, Total: resp.Hits.Total.Value}, nil
	}
}

// SearchCitiesES runs the boosted typeahead query. A blank q lists cities
// by population.
// GET /api/cities-es?q=&limit=&offset=
func (h *Handlers) SearchCitiesES(c *gin.Context) {
	q := search.CityQuery{
		Query:  c.Query("q"),
		Limit:  search.ClampLimit(util.ParseInt(c.Query("limit"), search.DefaultLimit)),
		Offset: max(util.ParseInt(c.Query("offset"), 0), 0),
	}

	results, err := h.cache.Cities(c.Request.Context(), "query", q, h.loadCities(h.citiesIndex, search.BuildCityQuery(q)))
	if err != nil {
		util.RespondSearchError(c, "City search", err)
		return
	}

	c.JSON(http.StatusOK, CitiesResponse{
		Cities:     results.Cities,
		Total:      results.Total,
		StatusCode: http.StatusOK,
		Msg:        citiesMessage(len(results.Cities), q.Query),
	})
}

// SearchCitiesESStructured runs a filtered query from a JSON body
// POST /api/cities-es
func (h *Handlers) SearchCitiesESStructured(c *gin.Context) {
	var req citySearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Invalid request body")
		return
	}

	q := search.StructuredCityQuery{
		Query:         req.Query,
		Limit:         search.ClampLimit(req.Filters.Limit),
		MinPopulation: req.Filters.MinPopulation,
		State:         strings.TrimSpace(req.Filters.State),
	}

	results, err := h.cache.Cities(c.Request.Context(), "structured", q, h.loadCities(h.citiesIndex, search.BuildStructuredCityQuery(q)))
	if err != nil {
		util.RespondSearchError(c, "City search", err)
		return
	}

	c.JSON(http.StatusOK, CitiesResponse{
		Cities:     results.Cities,
		Total:      results.Total,
		StatusCode: http.StatusOK,
		Msg:        fmt.Sprintf("Found %d cities", len(results.Cities)),
	})
}

// SuggestCities returns completion suggestions for a name prefix
// GET /api/cities-es/suggest?q=&size=
func (h *Handlers) SuggestCities(c *gin.Context) {
	prefix := strings.TrimSpace(c.Query("q"))
	if prefix == "" {
		util.RespondMissingField(c, "q", "q parameter is required")
		return
	}
	size := search.ClampLimit(util.ParseInt(c.Query("size"), search.DefaultLimit))

	resp, err := h.engine.Search(c.Request.Context(), h.citiesIndex, search.BuildSuggestQuery(prefix, size))
	if err != nil {
		util.RespondSearchError(c, "City suggest", err)
		return
	}

	suggestions := search.FormatSuggestions(resp)
	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}
