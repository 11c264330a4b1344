package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/errors"
	"github.com/zfogg/citysearch/internal/models"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/util"
)

// CitiesResponse is the body of every city search route
type CitiesResponse struct {
	Cities     interface{} `json:"cities"`
	Total      int64       `json:"total"`
	StatusCode int         `json:"statusCode"`
	Msg        string      `json:"msg,omitempty"`
}

// cityFilters is the filters object of the POST search bodies
type cityFilters struct {
	Limit         int    `json:"limit"`
	MinPopulation int64  `json:"minPopulation"`
	State         string `json:"state"`
}

type citySearchRequest struct {
	Query   string      `json:"query"`
	Filters cityFilters `json:"filters"`
}

func citiesMessage(n int, q string) string {
	if strings.TrimSpace(q) == "" {
		return fmt.Sprintf("Retrieved %d cities", n)
	}
	return fmt.Sprintf("Found %d cities matching %q", n, q)
}

func (h *Handlers) requireDatabase(c *gin.Context) bool {
	if h.cities == nil {
		util.RespondWithAPIError(c, errors.ServiceUnavailable("Database"))
		return false
	}
	return true
}

// SearchCitiesDB searches the cities table
// GET /api/cities?q=&limit=
func (h *Handlers) SearchCitiesDB(c *gin.Context) {
	if !h.requireDatabase(c) {
		return
	}
	q := c.Query("q")
	limit := search.ClampLimit(util.ParseInt(c.Query("limit"), search.DefaultLimit))

	cities, err := h.cities.Search(c.Request.Context(), q, limit)
	if err != nil {
		util.RespondInternalError(c, "Database connection error", err)
		return
	}
	respondCities(c, cities, citiesMessage(len(cities), q))
}

// SearchCitiesDBPost is the JSON body variant of SearchCitiesDB
// POST /api/cities
func (h *Handlers) SearchCitiesDBPost(c *gin.Context) {
	if !h.requireDatabase(c) {
		return
	}
	var req citySearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Invalid request body")
		return
	}

	cities, err := h.cities.Search(c.Request.Context(), req.Query, search.ClampLimit(req.Filters.Limit))
	if err != nil {
		util.RespondInternalError(c, "Search failed", err)
		return
	}
	respondCities(c, cities, fmt.Sprintf("Found %d cities", len(cities)))
}

func respondCities(c *gin.Context, cities []models.City, msg string) {
	if cities == nil {
		cities = []models.City{}
	}
	c.JSON(http.StatusOK, CitiesResponse{
		Cities:     cities,
		Total:      int64(len(cities)),
		StatusCode: http.StatusOK,
		Msg:        msg,
	})
}
