package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/internal/universe"
	"github.com/wonny/chronos/pkg/logger"
)

// UniverseHandler handles universe and membership mutations
type UniverseHandler struct {
	gateway *universe.Gateway
	logger  *logger.Logger
}

// NewUniverseHandler creates a new universe handler
func NewUniverseHandler(gateway *universe.Gateway, log *logger.Logger) *UniverseHandler {
	return &UniverseHandler{
		gateway: gateway,
		logger:  log,
	}
}

// CreateUniverseRequest is the create form payload
type CreateUniverseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateUniverse creates a universe
// POST /api/universes
func (h *UniverseHandler) CreateUniverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUniverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.gateway.Create(ctx, req.Name, req.Description)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create universe")
		respondError(w, http.StatusBadGateway, "Failed to create universe")
		return
	}
	if created == nil {
		// Blank name: nothing to do
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// updateUniverseRequest distinguishes absent fields from explicit nulls:
// a key the client never sent stays out of the engine payload entirely
type updateUniverseRequest struct {
	Name        *string         `json:"name"`
	Description json.RawMessage `json:"description"`
}

// UpdateUniverse applies a partial update
// PATCH /api/universes/{id}
func (h *UniverseHandler) UpdateUniverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	universeID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || universeID <= 0 {
		// Input-guard failure: nothing to do
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req updateUniverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	changes := universe.NewChanges()
	if req.Name != nil {
		changes.SetName(*req.Name)
	}
	if req.Description != nil {
		var desc *string
		if err := json.Unmarshal(req.Description, &desc); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid description value")
			return
		}
		if desc == nil {
			changes.ClearDescription()
		} else {
			changes.SetDescription(*desc)
		}
	}

	updated, err := h.gateway.Update(ctx, universeID, changes)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update universe")
		respondError(w, http.StatusBadGateway, "Failed to update universe")
		return
	}
	if updated == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// AddTickerRequest is the add-ticker form payload
type AddTickerRequest struct {
	Ticker string `json:"ticker"`
}

// AddTicker adds a ticker to a universe. An engine validation rejection is
// relayed with its detail text so the form can show it; it is recoverable
// and leaves the rest of the view intact.
// POST /api/universes/{id}/stocks
func (h *UniverseHandler) AddTicker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	universeID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || universeID <= 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req AddTickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.gateway.AddTicker(ctx, universeID, req.Ticker)
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"detail": verr.Detail,
			})
			return
		}

		h.logger.WithError(err).Error("Failed to add ticker")
		respondError(w, http.StatusBadGateway, "Failed to add ticker")
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}
