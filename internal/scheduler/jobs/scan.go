package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/chronos/internal/scan"
	"github.com/wonny/chronos/pkg/logger"
)

// ScanJob runs a recurring candidate scan for one (universe, template) pair
// ⭐ SSOT: the recurring scan schedule lives in this job and only this job
type ScanJob struct {
	orchestrator *scan.Orchestrator
	logger       *logger.Logger
	universeID   int64
	templateID   int64
	schedule     string
}

// NewScanJob creates a new recurring scan job
func NewScanJob(orchestrator *scan.Orchestrator, log *logger.Logger, universeID, templateID int64, schedule string) *ScanJob {
	return &ScanJob{
		orchestrator: orchestrator,
		logger:       log,
		universeID:   universeID,
		templateID:   templateID,
		schedule:     schedule,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return fmt.Sprintf("scan_u%d_t%d", j.universeID, j.templateID)
}

// Schedule returns the cron schedule (with seconds)
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan. No stash token is redeemed here: scheduled scans
// have no render waiting on the other side, so the undelivered result just
// expires.
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.WithFields(map[string]interface{}{
		"universe_id": j.universeID,
		"template_id": j.templateID,
	}).Info("Starting scheduled scan")

	outcome, err := j.orchestrator.Run(ctx, j.universeID, j.templateID)
	if err != nil {
		return fmt.Errorf("scheduled scan: %w", err)
	}
	if outcome == nil {
		// Misconfigured pair guards out; nothing ran
		j.logger.Warn("Scheduled scan skipped: invalid universe/template pair")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers_processed":  outcome.Result.TickersProcessed,
		"ohlcv_rows_written": outcome.Result.OHLCVRowsWritten,
		"candidates_created": outcome.Result.CandidatesCreated,
		"error_count":        outcome.Result.ErrorCount,
	}).Info("Scheduled scan completed")

	return nil
}
