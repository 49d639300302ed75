// Package universe is the mutation gateway for universes and their stock
// memberships. Reads live in the workspace aggregator; this side only
// creates, renames, and appends.
package universe

import (
	"context"
	"strings"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/pkg/logger"
)

// Engine is the subset of engine operations the gateway writes through
type Engine interface {
	CreateUniverse(ctx context.Context, req engine.CreateUniverseRequest) (*engine.Universe, error)
	UpdateUniverse(ctx context.Context, universeID int64, fields map[string]interface{}) (*engine.Universe, error)
	AddTicker(ctx context.Context, universeID int64, req engine.AddTickerRequest) (*engine.AddTickerResult, error)
}

// ViewInvalidator drops cached state for a universe after a mutation
type ViewInvalidator interface {
	Invalidate(ctx context.Context, universeID int64)
}

// Changes is an explicit field-change set for a partial universe update.
// An untouched field never appears in the payload, which keeps "leave
// unchanged" and "clear to empty" apart at the type level instead of by
// convention.
type Changes struct {
	fields map[string]interface{}
}

// NewChanges creates an empty change set
func NewChanges() *Changes {
	return &Changes{fields: make(map[string]interface{})}
}

// SetName stages a rename. Blank names are ignored: a rename form left
// empty means "keep the current name".
func (c *Changes) SetName(name string) *Changes {
	name = strings.TrimSpace(name)
	if name != "" {
		c.fields["name"] = name
	}
	return c
}

// SetDescription stages a description change
func (c *Changes) SetDescription(description string) *Changes {
	c.fields["description"] = description
	return c
}

// ClearDescription stages an explicit null description, distinct from
// leaving it unchanged
func (c *Changes) ClearDescription() *Changes {
	c.fields["description"] = nil
	return c
}

// Empty reports whether nothing was staged
func (c *Changes) Empty() bool {
	return len(c.fields) == 0
}

// Payload returns the partial-update body: touched fields only
func (c *Changes) Payload() map[string]interface{} {
	return c.fields
}

// Gateway issues universe and membership mutations against the engine
// ⭐ SSOT: universe mutations go through the gateway and only the gateway
type Gateway struct {
	engine Engine
	views  ViewInvalidator
	logger *logger.Logger
}

// NewGateway creates a mutation gateway
func NewGateway(eng Engine, views ViewInvalidator, log *logger.Logger) *Gateway {
	return &Gateway{
		engine: eng,
		views:  views,
		logger: log,
	}
}

// Create creates a universe. A name that trims to empty is a silent no-op:
// no engine call, no error. An omitted description is sent as explicit null.
func (g *Gateway) Create(ctx context.Context, name, description string) (*engine.Universe, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	req := engine.CreateUniverseRequest{Name: name}
	if desc := strings.TrimSpace(description); desc != "" {
		req.Description = &desc
	}

	created, err := g.engine.CreateUniverse(ctx, req)
	if err != nil {
		return nil, err
	}

	g.logger.WithFields(map[string]interface{}{
		"universe_id": created.ID,
		"name":        created.Name,
	}).Info("Universe created")

	return created, nil
}

// Update applies a partial update. An empty change set or a non-positive id
// is a silent no-op.
func (g *Gateway) Update(ctx context.Context, universeID int64, changes *Changes) (*engine.Universe, error) {
	if universeID <= 0 || changes == nil || changes.Empty() {
		return nil, nil
	}

	updated, err := g.engine.UpdateUniverse(ctx, universeID, changes.Payload())
	if err != nil {
		return nil, err
	}

	g.invalidate(ctx, universeID)
	return updated, nil
}

// AddTicker appends one ticker to a universe. The engine may reject it
// (malformed symbol, duplicate); that rejection comes back as a
// *engine.ValidationError with the engine's reason text, leaving all other
// universe state untouched. A blank ticker or non-positive id is a silent
// no-op.
func (g *Gateway) AddTicker(ctx context.Context, universeID int64, ticker string) (*engine.AddTickerResult, error) {
	ticker = strings.TrimSpace(ticker)
	if universeID <= 0 || ticker == "" {
		return nil, nil
	}

	result, err := g.engine.AddTicker(ctx, universeID, engine.AddTickerRequest{Ticker: ticker})
	if err != nil {
		return nil, err
	}

	g.logger.WithFields(map[string]interface{}{
		"universe_id": universeID,
		"ticker":      result.Ticker,
	}).Info("Ticker added to universe")

	g.invalidate(ctx, universeID)
	return result, nil
}

func (g *Gateway) invalidate(ctx context.Context, universeID int64) {
	if g.views != nil {
		g.views.Invalidate(ctx, universeID)
	}
}
