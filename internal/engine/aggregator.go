// Package engine implements the route aggregation pipeline: a concurrent
// fan-out over the registered provider adapters, followed by scoring and
// deterministic ranking of the merged option set.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/provider"
)

// DefaultAdapterTimeout bounds a single adapter query so one slow provider
// cannot unboundedly delay the joined result.
const DefaultAdapterTimeout = 10 * time.Second

// Aggregator fans a search out to every registered adapter, merges the
// results, scores them, and returns them ranked.
type Aggregator struct {
	registry *provider.Registry
	combiner Combiner
	scorer   Scorer
	timeout  time.Duration
	log      *slog.Logger
}

// NewAggregator constructs an Aggregator. A zero timeout falls back to
// DefaultAdapterTimeout.
func NewAggregator(registry *provider.Registry, combiner Combiner, scorer Scorer, timeout time.Duration, log *slog.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultAdapterTimeout
	}
	return &Aggregator{registry: registry, combiner: combiner, scorer: scorer, timeout: timeout, log: log}
}

// Aggregate queries every adapter concurrently and waits for all of them to
// settle — a failed or slow adapter never cancels its siblings, and partial
// results are returned rather than an error. Successful results are merged
// in adapter registration order, run through the multi-modal combiner,
// scored, and ranked.
//
// domain.ErrAggregation is returned only when the engine cannot run at all:
// no adapters registered, or every adapter failed structurally. An empty
// ranked list with a nil error means the search legitimately found nothing.
func (a *Aggregator) Aggregate(ctx context.Context, params domain.SearchParams) ([]domain.TravelOption, error) {
	adapters := a.registry.Adapters()
	if len(adapters) == 0 {
		return nil, fmt.Errorf("engine.Aggregator.Aggregate: no adapters registered: %w", domain.ErrAggregation)
	}

	results := make([][]domain.TravelOption, len(adapters))
	failures := make([]error, len(adapters))

	var g errgroup.Group
	for i, adapter := range adapters {
		g.Go(func() error {
			queryCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			options, err := adapter.Query(queryCtx, params)
			if err != nil {
				// Structural failure — recorded, never propagated, so the
				// join always waits for every sibling.
				failures[i] = err
				a.log.Warn("adapter query failed", "provider", adapter.Name(), "error", err)
				return nil
			}
			results[i] = options
			return nil
		})
	}
	// Goroutines only ever return nil; Wait is just the join point.
	_ = g.Wait()

	structural := 0
	for _, err := range failures {
		if err != nil {
			structural++
		}
	}
	if structural == len(adapters) {
		return nil, fmt.Errorf("engine.Aggregator.Aggregate: all %d adapters failed: %w", len(adapters), domain.ErrAggregation)
	}

	var merged []domain.TravelOption
	for i, options := range results {
		for _, opt := range options {
			opt.AdapterOrder = i
			merged = append(merged, opt)
		}
	}

	combined, err := a.combiner.Combine(ctx, params, merged)
	if err != nil {
		// The combiner follows the same fail-open policy as an adapter.
		a.log.Warn("multi-modal combiner failed", "error", err)
	} else {
		merged = append(merged, combined...)
	}

	a.scorer.ScoreAll(merged)
	Rank(merged)

	return merged, nil
}
