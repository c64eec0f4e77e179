package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/services"
	"github.com/gridline-project/backend/internal/sources"
)

type fakeAdapter struct {
	kind   sources.Kind
	quotes []sources.RawQuote
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (f *fakeAdapter) Kind() sources.Kind { return f.kind }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]sources.RawQuote, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.quotes, f.err
}

type fakeIngestor struct {
	stored    atomic.Int32
	rejected  atomic.Int32
	rejectAll bool
}

func (f *fakeIngestor) IngestQuote(_ context.Context, _ sources.RawQuote) (*models.OddsRecord, *services.Rejection, error) {
	if f.rejectAll {
		f.rejected.Add(1)
		return nil, &services.Rejection{Reason: services.ReasonNoMatch}, nil
	}
	f.stored.Add(1)
	return &models.OddsRecord{}, nil, nil
}

func quote(source string) sources.RawQuote {
	return sources.RawQuote{
		Kind:    sources.KindESPN,
		Source:  source,
		Payload: json.RawMessage(`{"spread":-3.5}`),
	}
}

func TestRunCycleStoresQuotes(t *testing.T) {
	adapter := &fakeAdapter{
		kind:   sources.KindESPN,
		quotes: []sources.RawQuote{quote("ESPN"), quote("ESPN")},
	}
	ing := &fakeIngestor{}
	r := NewRunner([]sources.Adapter{adapter}, ing, time.Minute)

	stats := r.RunCycle(context.Background())
	if stats.Fetched != 2 || stats.Stored != 2 || stats.Rejected != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRunCycleIsolatesFailedAdapter(t *testing.T) {
	broken := &fakeAdapter{kind: sources.KindOddsAPI, err: errors.New("upstream 503")}
	healthy := &fakeAdapter{
		kind:   sources.KindESPN,
		quotes: []sources.RawQuote{quote("ESPN")},
	}
	ing := &fakeIngestor{}
	r := NewRunner([]sources.Adapter{broken, healthy}, ing, time.Minute)

	stats := r.RunCycle(context.Background())

	if len(stats.Failed) != 1 || stats.Failed[0].Kind != sources.KindOddsAPI {
		t.Fatalf("expected one failed branch for oddsapi, got %+v", stats.Failed)
	}
	if stats.Stored != 1 {
		t.Errorf("healthy adapter's quote must still be stored, stats %+v", stats)
	}
}

func TestRunCycleCountsRejections(t *testing.T) {
	adapter := &fakeAdapter{
		kind:   sources.KindESPN,
		quotes: []sources.RawQuote{quote("ESPN")},
	}
	ing := &fakeIngestor{rejectAll: true}
	r := NewRunner([]sources.Adapter{adapter}, ing, time.Minute)

	stats := r.RunCycle(context.Background())
	if stats.Rejected != 1 || stats.Stored != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	adapter := &fakeAdapter{kind: sources.KindESPN}
	ing := &fakeIngestor{}
	r := NewRunner([]sources.Adapter{adapter}, ing, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(70 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}

	if adapter.calls.Load() < 2 {
		t.Errorf("expected at least the immediate cycle plus one tick, got %d", adapter.calls.Load())
	}
}
