package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/documents"
	"github.com/zfogg/citysearch/internal/reindex"
	"github.com/zfogg/citysearch/internal/repository"
	"github.com/zfogg/citysearch/internal/search"
	"gorm.io/gorm"
)

// Engine is what the city and status routes need from a search backend
type Engine interface {
	search.Engine
	search.StatsProvider
	search.VersionProvider
	search.InfoProvider
}

// Deps wires the handlers to their backends. Cities and DB may be nil when
// Postgres is not configured; those routes then answer 503.
type Deps struct {
	Cities      *repository.CityRepository
	DB          *gorm.DB
	Engine      Engine
	Direct      Engine
	Documents   *documents.Service
	Cache       *search.CityCache
	Coordinator *reindex.Coordinator
	CitiesIndex string
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	cities      *repository.CityRepository
	db          *gorm.DB
	engine      Engine
	direct      Engine
	documents   *documents.Service
	cache       *search.CityCache
	coordinator *reindex.Coordinator
	citiesIndex string
}

// NewHandlers creates a new handlers instance
func NewHandlers(d Deps) *Handlers {
	if d.CitiesIndex == "" {
		d.CitiesIndex = "cities"
	}
	return &Handlers{
		cities:      d.Cities,
		db:          d.DB,
		engine:      d.Engine,
		direct:      d.Direct,
		documents:   d.Documents,
		cache:       d.Cache,
		coordinator: d.Coordinator,
		citiesIndex: d.CitiesIndex,
	}
}

// RegisterRoutes mounts every API route on api
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/cities", h.SearchCitiesDB)
	api.POST("/cities", h.SearchCitiesDBPost)

	citiesES := api.Group("/cities-es")
	{
		citiesES.GET("", h.SearchCitiesES)
		citiesES.POST("", h.SearchCitiesESStructured)
		citiesES.GET("/suggest", h.SuggestCities)
	}

	sync := api.Group("/cities")
	{
		sync.POST("/sync", h.SyncCities(search.EngineLibrary))
		sync.GET("/sync", h.SyncStatus(search.EngineLibrary))
		sync.POST("/sync-direct", h.SyncCities(search.EngineDirect))
		sync.GET("/sync-direct", h.SyncStatus(search.EngineDirect))
	}

	docs := api.Group("/documents")
	{
		docs.GET("", h.ListDocuments)
		docs.GET("/:id", h.GetDocument)
		docs.POST("", h.CreateDocument)
		docs.PUT("", h.UpdateDocument)
		docs.DELETE("", h.DeleteDocument)
	}

	api.POST("/search", h.SearchDocuments)
	api.GET("/search", h.SearchUsage)

	api.POST("/seed", h.SeedDocuments)
	api.DELETE("/seed", h.ClearDocuments)

	api.GET("/status", h.Status)
	api.GET("/test-es", h.TestElasticsearch)
}
