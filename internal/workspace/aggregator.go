// Package workspace assembles the read-model for one universe: member
// tickers, recent price and indicator history, and generated candidates.
package workspace

import (
	"context"
	"sync"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/pkg/logger"
	"github.com/wonny/chronos/pkg/redis"
)

// Engine is the subset of engine operations the aggregator reads from
type Engine interface {
	ListUniverseStocks(ctx context.Context, universeID int64) ([]string, error)
	GetUniverseOHLCV(ctx context.Context, universeID int64, limit int) (*engine.OHLCVResponse, error)
	GetUniverseSignals(ctx context.Context, universeID int64, limit int) (*engine.SignalsResponse, error)
	ListUniverseCandidates(ctx context.Context, universeID int64) ([]engine.Candidate, error)
}

// View is one universe's assembled state. Every field is defined even when
// no universe is selected.
type View struct {
	UniverseID int64                           `json:"universe_id"`
	Stocks     []string                        `json:"stocks"`
	OHLCV      map[string][]engine.OHLCVPoint  `json:"ohlcv"`
	Signals    map[string][]engine.SignalPoint `json:"signals"`
	Candidates []engine.Candidate              `json:"candidates"`
}

// ActiveTicker picks the default ticker for detail display: the first key
// of the OHLCV map. The choice is arbitrary (map iteration order), which is
// fine because it only seeds the display, it is not a correctness property.
func (v *View) ActiveTicker() string {
	for ticker := range v.OHLCV {
		return ticker
	}
	return ""
}

// Aggregator fetches the four independent universe reads concurrently and
// joins them into one View
// ⭐ SSOT: workspace read-model assembly happens here and only here
type Aggregator struct {
	engine Engine
	cache  *redis.Cache
	logger *logger.Logger
	limit  int
}

// NewAggregator creates an aggregator. limit bounds the OHLCV/signal
// history window per ticker.
func NewAggregator(eng Engine, cache *redis.Cache, log *logger.Logger, limit int) *Aggregator {
	if limit <= 0 {
		limit = 30
	}
	return &Aggregator{
		engine: eng,
		cache:  cache,
		logger: log,
		limit:  limit,
	}
}

// emptyView is the defined-empty result for "no universe selected"
func emptyView() *View {
	return &View{
		Stocks:     []string{},
		OHLCV:      map[string][]engine.OHLCVPoint{},
		Signals:    map[string][]engine.SignalPoint{},
		Candidates: []engine.Candidate{},
	}
}

// Assemble builds the view for a universe. universeID == 0 means nothing is
// selected and yields the defined-empty view without touching the engine.
//
// The four reads run concurrently and the call waits for all of them
// (fan-out/fan-in). Failure is all-or-nothing: if any read fails the whole
// call fails with the first error observed, and no partial view is
// surfaced. A failed read must never render as an empty universe.
func (a *Aggregator) Assemble(ctx context.Context, universeID int64) (*View, error) {
	if universeID == 0 {
		return emptyView(), nil
	}

	// Serve a recently assembled view when available
	if a.cache != nil {
		var cached View
		if found, err := a.cache.Get(ctx, redis.WorkspaceViewKey(universeID, a.limit), &cached); err == nil && found {
			return &cached, nil
		}
	}

	view := &View{UniverseID: universeID}

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(4)

	go func() {
		defer wg.Done()
		stocks, err := a.engine.ListUniverseStocks(ctx, universeID)
		if err != nil {
			errCh <- err
			return
		}
		view.Stocks = stocks
	}()

	go func() {
		defer wg.Done()
		resp, err := a.engine.GetUniverseOHLCV(ctx, universeID, a.limit)
		if err != nil {
			errCh <- err
			return
		}
		view.OHLCV = resp.Data
	}()

	go func() {
		defer wg.Done()
		resp, err := a.engine.GetUniverseSignals(ctx, universeID, a.limit)
		if err != nil {
			errCh <- err
			return
		}
		view.Signals = resp.Data
	}()

	go func() {
		defer wg.Done()
		candidates, err := a.engine.ListUniverseCandidates(ctx, universeID)
		if err != nil {
			errCh <- err
			return
		}
		view.Candidates = candidates
	}()

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		a.logger.WithError(err).WithField("universe_id", universeID).Error("Workspace assembly failed")
		return nil, err
	}

	// Backends may legitimately return empty sets; the view stays defined
	if view.Stocks == nil {
		view.Stocks = []string{}
	}
	if view.OHLCV == nil {
		view.OHLCV = map[string][]engine.OHLCVPoint{}
	}
	if view.Signals == nil {
		view.Signals = map[string][]engine.SignalPoint{}
	}
	if view.Candidates == nil {
		view.Candidates = []engine.Candidate{}
	}

	if a.cache != nil {
		_ = a.cache.Set(ctx, redis.WorkspaceViewKey(universeID, a.limit), view, redis.TTLShort)
	}

	return view, nil
}

// Invalidate drops the cached view for a universe so the next Assemble
// observes fresh engine state
func (a *Aggregator) Invalidate(ctx context.Context, universeID int64) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Delete(ctx, redis.WorkspaceViewKey(universeID, a.limit)); err != nil {
		a.logger.WithError(err).WithField("universe_id", universeID).Warn("View cache invalidation failed")
	}
}
