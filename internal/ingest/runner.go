/**
 * @description
 * Ingestion cycle runner.
 * Scatters Fetch over every enabled adapter concurrently, gathers explicit
 * per-branch results (ok with quotes, or failed with a reason), then pushes
 * the gathered quotes through the odds pipeline. One adapter failing or
 * timing out only blanks that source for the cycle; siblings are unaffected.
 *
 * @dependencies
 * - backend/internal/sources
 * - backend/internal/services (via the QuoteIngestor interface)
 *
 * @notes
 * - Shutdown is cooperative at the cycle boundary: cancelling the context
 *   stops scheduling new cycles, an in-flight cycle finishes.
 */

package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/gridline-project/backend/internal/logger"
	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/services"
	"github.com/gridline-project/backend/internal/sources"
)

// QuoteIngestor consumes one raw quote. Satisfied by *services.OddsService.
type QuoteIngestor interface {
	IngestQuote(ctx context.Context, q sources.RawQuote) (*models.OddsRecord, *services.Rejection, error)
}

// FetchResult is one adapter's branch of the scatter/gather.
type FetchResult struct {
	Kind   sources.Kind
	Quotes []sources.RawQuote
	Err    error
}

// CycleStats summarizes one ingestion cycle.
type CycleStats struct {
	Fetched  int
	Stored   int
	Rejected int
	Failed   []FetchResult // branches that errored
}

// Runner drives periodic ingestion cycles.
type Runner struct {
	Adapters []sources.Adapter
	Odds     QuoteIngestor
	Interval time.Duration
}

func NewRunner(adapters []sources.Adapter, odds QuoteIngestor, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Runner{Adapters: adapters, Odds: odds, Interval: interval}
}

// RunCycle executes one scatter/gather ingestion pass.
func (r *Runner) RunCycle(ctx context.Context) CycleStats {
	results := r.scatter(ctx)

	var stats CycleStats
	for _, res := range results {
		if res.Err != nil {
			logger.Error("❌ Source %s failed this cycle: %v", res.Kind, res.Err)
			stats.Failed = append(stats.Failed, res)
			continue
		}
		stats.Fetched += len(res.Quotes)

		for _, q := range res.Quotes {
			_, rejection, err := r.Odds.IngestQuote(ctx, q)
			if err != nil {
				logger.Error("❌ Ingest failed for %s quote: %v", q.Source, err)
				continue
			}
			if rejection != nil {
				stats.Rejected++
				continue
			}
			stats.Stored++
		}
	}

	logger.Info("🔄 Cycle done: %d fetched, %d stored, %d rejected, %d sources failed",
		stats.Fetched, stats.Stored, stats.Rejected, len(stats.Failed))
	return stats
}

// scatter fetches from every adapter concurrently and gathers both result
// variants; a panic or error in one branch never cancels the others.
func (r *Runner) scatter(ctx context.Context) []FetchResult {
	results := make([]FetchResult, len(r.Adapters))
	var wg sync.WaitGroup
	for i, adapter := range r.Adapters {
		wg.Add(1)
		go func(i int, adapter sources.Adapter) {
			defer wg.Done()
			quotes, err := adapter.Fetch(ctx)
			results[i] = FetchResult{Kind: adapter.Kind(), Quotes: quotes, Err: err}
		}(i, adapter)
	}
	wg.Wait()
	return results
}

// Start runs cycles on a ticker until the context is cancelled. The first
// cycle runs immediately.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Ingestion runner stopping")
			return
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}
