package handlers

import (
	"net/http"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/internal/scan"
	"github.com/wonny/chronos/pkg/logger"
)

// ScanHandler triggers candidate scans
type ScanHandler struct {
	orchestrator *scan.Orchestrator
	logger       *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(orchestrator *scan.Orchestrator, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		orchestrator: orchestrator,
		logger:       log,
	}
}

// ScanResponse carries the counters plus the one-time token that lets the
// next workspace read display them
type ScanResponse struct {
	ScanToken string             `json:"scan_token"`
	Result    *engine.ScanResult `json:"result"`
}

// RunScan triggers a scan for a (universe, template) pair submitted as form
// values. Missing or non-numeric identifiers no-op silently: malformed form
// submissions are nothing to do, not errors.
// POST /api/scan
func (h *ScanHandler) RunScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	outcome, err := h.orchestrator.RunForm(ctx, r.FormValue("universe_id"), r.FormValue("template_id"))
	if err != nil {
		h.logger.WithError(err).Error("Scan failed")
		respondError(w, http.StatusBadGateway, "Scan failed")
		return
	}
	if outcome == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, ScanResponse{
		ScanToken: outcome.Token,
		Result:    outcome.Result,
	})
}
