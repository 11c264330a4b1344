package reindex

import (
	"context"
	"sync"
	"time"

	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Hook runs after every completed reindex, successful or partial
type Hook func(ctx context.Context, res *Result)

// Coordinator serializes reindex runs per index. A run started while another
// is in flight for the same index joins it and receives the same Result.
type Coordinator struct {
	group   singleflight.Group
	timeout time.Duration

	mu    sync.Mutex
	hooks []Hook
}

// NewCoordinator creates a coordinator whose runs are bounded by timeout
func NewCoordinator(timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Coordinator{timeout: timeout}
}

// OnComplete registers a hook
func (c *Coordinator) OnComplete(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Run executes p, or joins the run already in flight for p.Index. The run
// itself is detached from ctx so a client disconnect does not leave the index
// half built; ctx only bounds how long this caller waits. shared reports
// whether the result was delivered to more than one caller.
func (c *Coordinator) Run(ctx context.Context, p *Pipeline) (res *Result, shared bool, err error) {
	ch := c.group.DoChan(p.Index, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.execute(runCtx, p)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Shared, r.Err
		}
		return r.Val.(*Result), r.Shared, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (c *Coordinator) execute(ctx context.Context, p *Pipeline) (*Result, error) {
	start := time.Now()
	res, err := p.Run(ctx)

	metrics.ReindexDuration.WithLabelValues(p.Index, p.EngineName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReindexRunsTotal.WithLabelValues(p.Index, p.EngineName, "failed").Inc()
		logger.Log.Error("Reindex failed",
			logger.WithIndex(p.Index),
			zap.String("engine", p.EngineName),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ReindexRunsTotal.WithLabelValues(p.Index, p.EngineName, res.Outcome()).Inc()
	if res.ErrorCount > 0 {
		metrics.ReindexItemErrorsTotal.WithLabelValues(p.Index).Add(float64(res.ErrorCount))
	}
	if res.IndexedCities > 0 {
		metrics.ElasticsearchDocumentCount.WithLabelValues(p.Index).Set(float64(res.IndexedCities))
	}

	c.mu.Lock()
	hooks := append([]Hook(nil), c.hooks...)
	c.mu.Unlock()
	for _, h := range hooks {
		h(ctx, res)
	}
	return res, nil
}
