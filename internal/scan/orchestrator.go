// Package scan drives one-shot candidate scans against the engine and
// carries their results to exactly the next render.
package scan

import (
	"context"
	"strconv"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/pkg/logger"
)

// Engine is the single engine operation the orchestrator needs
type Engine interface {
	RunScan(ctx context.Context, universeID int64, req engine.ScanRequest) (*engine.ScanResult, error)
}

// ViewInvalidator drops cached state for a universe after a mutation
type ViewInvalidator interface {
	Invalidate(ctx context.Context, universeID int64)
}

// Outcome is a completed scan plus the one-time token that redeems its
// result on the next render
type Outcome struct {
	Token  string
	Result *engine.ScanResult
}

// Orchestrator issues scan requests and threads the result forward
// ⭐ SSOT: scan invocation goes through the orchestrator and only the orchestrator
type Orchestrator struct {
	engine   Engine
	views    ViewInvalidator
	stash    *ResultStash
	logger   *logger.Logger
	provider string
	interval string
}

// NewOrchestrator creates an orchestrator. provider and interval are the
// defaults threaded into every scan request.
func NewOrchestrator(eng Engine, views ViewInvalidator, stash *ResultStash, log *logger.Logger, provider, interval string) *Orchestrator {
	return &Orchestrator{
		engine:   eng,
		views:    views,
		stash:    stash,
		logger:   log,
		provider: provider,
		interval: interval,
	}
}

// Run scans (universe, template) on the engine. Non-positive identifiers
// are a silent no-op guarding against malformed form submissions: no remote
// call, no error, nothing to report.
//
// A result with ErrorCount > 0 is a partial success and comes back like any
// other: the engine summarizes per-ticker failures, it does not fail the
// scan for them. Only a transport/server failure of the scan call itself is
// an error.
func (o *Orchestrator) Run(ctx context.Context, universeID, templateID int64) (*Outcome, error) {
	if universeID <= 0 || templateID <= 0 {
		return nil, nil
	}

	result, err := o.engine.RunScan(ctx, universeID, engine.ScanRequest{
		TemplateID: templateID,
		Provider:   o.provider,
		Interval:   o.interval,
	})
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(map[string]interface{}{
		"universe_id":        universeID,
		"template_id":        templateID,
		"tickers_processed":  result.TickersProcessed,
		"candidates_created": result.CandidatesCreated,
		"error_count":        result.ErrorCount,
	}).Info("Scan completed")

	// New candidates and rows exist now; cached views are stale
	if o.views != nil {
		o.views.Invalidate(ctx, universeID)
	}

	token, err := o.stash.Put(ctx, result)
	if err != nil {
		// The scan itself succeeded; losing the stash only loses the
		// one-shot display
		o.logger.WithError(err).Warn("Failed to stash scan result")
		token = ""
	}

	return &Outcome{Token: token, Result: result}, nil
}

// RunForm is Run for raw form values. Absent or non-numeric identifiers
// no-op silently, per the input-guard policy.
func (o *Orchestrator) RunForm(ctx context.Context, universeID, templateID string) (*Outcome, error) {
	uid, err := strconv.ParseInt(universeID, 10, 64)
	if err != nil {
		return nil, nil
	}
	tid, err := strconv.ParseInt(templateID, 10, 64)
	if err != nil {
		return nil, nil
	}

	return o.Run(ctx, uid, tid)
}

// Redeem consumes the stashed result for a token. An empty or unknown token
// yields nothing, by design: the result is single-delivery.
func (o *Orchestrator) Redeem(ctx context.Context, token string) (*engine.ScanResult, bool) {
	return o.stash.Take(ctx, token)
}
