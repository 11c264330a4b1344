package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zfogg/citysearch/internal/config"
	"github.com/zfogg/citysearch/internal/database"
	"github.com/zfogg/citysearch/internal/documents"
	"github.com/zfogg/citysearch/internal/handlers"
	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/metrics"
	"github.com/zfogg/citysearch/internal/middleware"
	"github.com/zfogg/citysearch/internal/reindex"
	"github.com/zfogg/citysearch/internal/repository"
	"github.com/zfogg/citysearch/internal/search"
	"github.com/zfogg/citysearch/internal/telemetry"
	"github.com/zfogg/citysearch/internal/validation"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== citysearch server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("elasticsearch", cfg.Elasticsearch.URL),
	)

	tp, err := telemetry.InitTracer(cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	} else if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	metrics.Initialize()

	// Postgres is optional; city routes answer 503 without it
	var cities *repository.CityRepository
	if err := database.Initialize(cfg.Database, cfg.IsDevelopment()); err != nil {
		if cfg.RequireDatabase {
			logger.FatalWithFields("Failed to initialize database", err)
		}
		logger.Log.Warn("Database unavailable, city routes disabled", zap.Error(err))
	} else {
		defer database.Close()
		if err := database.Migrate(database.DB, cfg.Database.CitiesTable); err != nil {
			logger.FatalWithFields("Failed to run migrations", err)
		}
		cities = repository.NewCityRepository(database.DB, cfg.Database.CitiesTable)
	}

	client, err := search.NewClient(cfg.Elasticsearch)
	if err != nil {
		logger.FatalWithFields("Failed to create Elasticsearch client", err)
	}
	direct, err := search.NewDirectClient(cfg.Elasticsearch)
	if err != nil {
		logger.FatalWithFields("Failed to create direct Elasticsearch client", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	cache, err := search.NewCityCache(startupCtx, cfg.Redis, cfg.RequireRedis)
	if err != nil {
		cancelStartup()
		logger.FatalWithFields("Failed to initialize search cache", err)
	}
	defer cache.Close()

	validator := validation.NewServiceValidator().
		Register("elasticsearch", cfg.RequireElasticsearch, func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				return err
			}
			_, err := client.Info(ctx)
			return err
		}).
		Register("database", cfg.RequireDatabase, func(ctx context.Context) error {
			return database.Health(ctx, database.DB)
		})
	if cache.Enabled() {
		validator.Register("redis", cfg.RequireRedis, cache.Ping)
	}
	if err := validator.ValidateServices(startupCtx); err != nil {
		cancelStartup()
		logger.FatalWithFields("Service validation failed", err)
	}
	cancelStartup()

	coordinator := reindex.NewCoordinator(cfg.ReindexTimeout)
	coordinator.OnComplete(func(ctx context.Context, res *reindex.Result) {
		if err := cache.Invalidate(ctx); err != nil {
			logger.Log.Warn("Failed to invalidate city search cache", zap.Error(err))
		}
	})

	if cities != nil && cfg.ReconcileInterval > 0 {
		reconciler := reindex.NewReconciler(&reindex.Pipeline{
			Engine:     client,
			Source:     cities,
			Index:      cfg.CitiesIndex,
			EngineName: search.EngineLibrary,
		}, coordinator, cfg.ReconcileInterval)
		reconciler.Start()
		defer reconciler.Stop()
	}

	h := handlers.NewHandlers(handlers.Deps{
		Cities:      cities,
		DB:          database.DB,
		Engine:      client,
		Direct:      direct,
		Documents:   documents.NewService(client, cfg.DocumentsIndex),
		Cache:       cache,
		Coordinator: coordinator,
		CitiesIndex: cfg.CitiesIndex,
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if tp != nil {
		r.Use(middleware.TracingMiddleware(cfg.Telemetry.ServiceName)...)
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, middleware.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "X-Reindex-Shared", "Retry-After"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "citysearch",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig(cfg.RateLimitPerMinute))
		defer limiter.Stop()
		api.Use(limiter.Middleware())
	} else {
		logger.Log.Info("Rate limiting disabled")
	}
	h.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// reindex runs can be long
		WriteTimeout: cfg.ReindexTimeout + 30*time.Second,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Server exited")
}
