package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/models"
	"github.com/zfogg/citysearch/internal/search"
	"go.uber.org/zap"
)

// Source is the relational side of a reindex
type Source interface {
	AllByPopulation(ctx context.Context) ([]models.City, error)
	Count(ctx context.Context) (int64, error)
}

// Pipeline is a destructive full resync of the city index from Source
type Pipeline struct {
	Engine     search.Engine
	Source     Source
	Index      string
	EngineName string
}

// Run executes the resync. Each step completes before the next starts. A
// returned error means the run was aborted and nothing is reported; per-item
// bulk failures are reported in the Result instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := logger.Log.With(logger.WithIndex(p.Index), zap.String("engine", p.EngineName))

	exists, err := p.Engine.IndexExists(ctx, p.Index)
	if err != nil {
		return nil, fmt.Errorf("failed to check index: %w", err)
	}
	if exists {
		if err := p.Engine.DeleteIndex(ctx, p.Index); err != nil {
			return nil, fmt.Errorf("failed to delete index: %w", err)
		}
		log.Info("Deleted existing index")
	}

	if err := p.Engine.CreateIndex(ctx, p.Index, search.CityIndexMapping()); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	log.Info("Created index", zap.Int("mapping_version", search.MappingVersion))

	cities, err := p.Source.AllByPopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source rows: %w", err)
	}
	log.Info("Fetched cities from database", zap.Int("count", len(cities)))

	if len(cities) == 0 {
		res := NoSourceResult()
		res.Engine = p.EngineName
		res.Duration = time.Since(start)
		return res, nil
	}

	docs := make([]search.BulkDocument, 0, len(cities))
	for _, city := range cities {
		docs = append(docs, search.BulkDocument{
			ID:   search.CityDocumentID(city.ID),
			Body: search.CityToSearchDoc(city),
		})
	}

	resp, err := p.Engine.BulkIndex(ctx, p.Index, docs, true)
	if err != nil {
		return nil, fmt.Errorf("bulk indexing failed: %w", err)
	}

	itemErrors, errorCount := collectItemErrors(resp)
	res := bulkResult(len(cities), itemErrors, errorCount, time.Since(start))
	res.Engine = p.EngineName

	log.Info(res.Message,
		zap.Int("total", res.TotalCities),
		zap.Int("indexed", res.IndexedCities),
		zap.Int("errors", res.ErrorCount),
		logger.WithDuration(res.Duration),
	)
	return res, nil
}
