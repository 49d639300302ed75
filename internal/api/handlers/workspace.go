package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wonny/chronos/internal/candidate"
	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/internal/scan"
	"github.com/wonny/chronos/internal/template"
	"github.com/wonny/chronos/internal/workspace"
	"github.com/wonny/chronos/pkg/logger"
)

// Catalog lists the engine's universes and templates
type Catalog interface {
	ListUniverses(ctx context.Context) ([]engine.Universe, error)
	ListTemplates(ctx context.Context, kind engine.TemplateKind) ([]engine.Template, error)
}

// WorkspaceHandler serves the single workspace view
// SSOT: the workspace read surface is this handler and only this handler
type WorkspaceHandler struct {
	catalog      Catalog
	aggregator   *workspace.Aggregator
	orchestrator *scan.Orchestrator
	logger       *logger.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(catalog Catalog, aggregator *workspace.Aggregator, orchestrator *scan.Orchestrator, log *logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		catalog:      catalog,
		aggregator:   aggregator,
		orchestrator: orchestrator,
		logger:       log,
	}
}

// WorkspaceResponse is the assembled view for one render. ScanResult is
// present at most once per scan token; TickerError relays a rejected
// add-ticker attempt back to the form that caused it.
type WorkspaceResponse struct {
	Universes      []engine.Universe               `json:"universes"`
	Templates      []engine.Template               `json:"templates"`
	SelectedID     int64                           `json:"selected_id"`
	Stocks         []string                        `json:"stocks"`
	OHLCV          map[string][]engine.OHLCVPoint  `json:"ohlcv"`
	Signals        map[string][]engine.SignalPoint `json:"signals"`
	ActiveTicker   string                          `json:"active_ticker"`
	Candidates     []candidate.Row                 `json:"candidates"`
	Template       *engine.Template                `json:"template"`
	TemplateConfig *template.Config                `json:"template_config"`
	ScanResult     *engine.ScanResult              `json:"scan_result,omitempty"`
	TickerError    string                          `json:"ticker_error,omitempty"`
}

// GetWorkspace returns the workspace view
// GET /api/workspace?universe=&scan_token=&ticker_error=
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	universes, err := h.catalog.ListUniverses(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list universes")
		respondError(w, http.StatusBadGateway, "Failed to load universes")
		return
	}

	templates, err := h.catalog.ListTemplates(ctx, engine.KindStrategy)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list templates")
		respondError(w, http.StatusBadGateway, "Failed to load templates")
		return
	}

	selectedID := selectUniverse(query.Get("universe"), universes)

	view, err := h.aggregator.Assemble(ctx, selectedID)
	if err != nil {
		// A failed aggregate read is a failed render, never an empty universe
		h.logger.WithError(err).WithField("universe_id", selectedID).Error("Failed to assemble workspace")
		respondError(w, http.StatusBadGateway, "Failed to load universe state")
		return
	}

	resp := WorkspaceResponse{
		Universes:    universes,
		Templates:    templates,
		SelectedID:   selectedID,
		Stocks:       view.Stocks,
		OHLCV:        view.OHLCV,
		Signals:      view.Signals,
		ActiveTicker: view.ActiveTicker(),
		Candidates:   candidate.ProjectWithRefs(view.Candidates, universes, templates),
		TickerError:  query.Get("ticker_error"),
	}

	if len(templates) > 0 {
		resp.Template = &templates[0]
		resp.TemplateConfig = template.Decode(templates[0].ConfigJSON)
	}

	// One-shot: present this token's result now, then never again
	if token := query.Get("scan_token"); token != "" {
		if result, found := h.orchestrator.Redeem(ctx, token); found {
			resp.ScanResult = result
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// selectUniverse resolves the selected universe id: an explicit numeric
// param wins, otherwise the first universe the engine listed, otherwise
// nothing selected
func selectUniverse(param string, universes []engine.Universe) int64 {
	if param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil || id <= 0 {
			return 0
		}
		return id
	}

	if len(universes) > 0 {
		return universes[0].ID
	}

	return 0
}
