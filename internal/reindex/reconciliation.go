package reindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/metrics"
	"github.com/zfogg/citysearch/internal/search"
	"go.uber.org/zap"
)

// Drift describes how the city index differs from the source table
type Drift struct {
	SourceCount  int64
	IndexCount   int64
	StaleMapping bool
	MissingIndex bool
}

// NeedsRebuild reports whether the index should be rebuilt
func (d Drift) NeedsRebuild() bool {
	return d.MissingIndex || d.StaleMapping || d.SourceCount != d.IndexCount
}

// Reconciler periodically compares the city index with the source table and
// triggers a reindex through the coordinator when they have drifted apart.
type Reconciler struct {
	pipeline    *Pipeline
	coordinator *Coordinator
	interval    time.Duration
	stopChan    chan struct{}
	wg          sync.WaitGroup
	isRunning   bool
	mu          sync.Mutex
}

// NewReconciler creates a reconciler. It does nothing until Start.
func NewReconciler(p *Pipeline, coordinator *Coordinator, interval time.Duration) *Reconciler {
	return &Reconciler{
		pipeline:    p,
		coordinator: coordinator,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the periodic reconciliation loop
func (r *Reconciler) Start() {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return
	}
	r.isRunning = true
	r.mu.Unlock()

	logger.Log.Info("Starting city index reconciliation",
		logger.WithIndex(r.pipeline.Index),
		zap.Duration("interval", r.interval),
	)

	r.wg.Add(1)
	go r.loop()
}

// Stop stops the loop and waits for an in-progress check to finish
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return
	}
	r.isRunning = false
	r.mu.Unlock()

	close(r.stopChan)
	r.wg.Wait()
	logger.Log.Info("City index reconciliation stopped")
}

func (r *Reconciler) loop() {
	defer r.wg.Done()

	r.reconcileOnce()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.reconcileOnce()
		}
	}
}

func (r *Reconciler) reconcileOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.coordinator.timeout)
	defer cancel()

	if _, err := r.Reconcile(ctx); err != nil {
		logger.Log.Warn("City index reconciliation failed",
			logger.WithIndex(r.pipeline.Index),
			zap.Error(err),
		)
	}
}

// Check measures drift without changing anything
func (r *Reconciler) Check(ctx context.Context) (Drift, error) {
	var d Drift
	p := r.pipeline

	sourceCount, err := p.Source.Count(ctx)
	if err != nil {
		return d, fmt.Errorf("failed to count source rows: %w", err)
	}
	d.SourceCount = sourceCount

	exists, err := p.Engine.IndexExists(ctx, p.Index)
	if err != nil {
		return d, fmt.Errorf("failed to check index: %w", err)
	}
	if !exists {
		d.MissingIndex = true
		return d, nil
	}

	stale, err := search.CheckIndexVersion(ctx, p.Engine, p.Index)
	if err != nil {
		return d, fmt.Errorf("failed to check mapping version: %w", err)
	}
	d.StaleMapping = stale

	indexCount, err := p.Engine.Count(ctx, p.Index)
	if err != nil {
		return d, fmt.Errorf("failed to count index documents: %w", err)
	}
	d.IndexCount = indexCount
	return d, nil
}

// Reconcile runs one check and rebuilds the index if it drifted. The
// returned Result is nil when no rebuild was needed.
func (r *Reconciler) Reconcile(ctx context.Context) (*Result, error) {
	index := r.pipeline.Index

	drift, err := r.Check(ctx)
	if err != nil {
		metrics.ReconciliationRunsTotal.WithLabelValues(index, "error").Inc()
		return nil, err
	}

	if !drift.NeedsRebuild() {
		metrics.ReconciliationRunsTotal.WithLabelValues(index, "in_sync").Inc()
		logger.Log.Debug("City index in sync", logger.WithIndex(index), zap.Int64("count", drift.IndexCount))
		return nil, nil
	}

	// an empty source would only wipe the index
	if drift.SourceCount == 0 {
		metrics.ReconciliationRunsTotal.WithLabelValues(index, "no_source").Inc()
		return nil, nil
	}

	logger.Log.Info("City index drifted, rebuilding",
		logger.WithIndex(index),
		zap.Int64("source_count", drift.SourceCount),
		zap.Int64("index_count", drift.IndexCount),
		zap.Bool("stale_mapping", drift.StaleMapping),
		zap.Bool("missing_index", drift.MissingIndex),
	)

	res, _, err := r.coordinator.Run(ctx, r.pipeline)
	if err != nil {
		metrics.ReconciliationRunsTotal.WithLabelValues(index, "error").Inc()
		return nil, err
	}
	metrics.ReconciliationRunsTotal.WithLabelValues(index, "rebuilt").Inc()
	return res, nil
}
