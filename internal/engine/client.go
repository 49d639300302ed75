package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/wonny/chronos/pkg/config"
	"github.com/wonny/chronos/pkg/httputil"
	"github.com/wonny/chronos/pkg/logger"
)

// Client handles communication with the candidate engine API
// ⭐ SSOT: engine API calls go through this client and only this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a new candidate-engine client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.Engine.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Engine.RateLimit), cfg.Engine.RateLimit)
	}

	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.Engine.BaseURL,
		limiter:    limiter,
	}
}

// ListUniverses returns all universes in engine order
func (c *Client) ListUniverses(ctx context.Context) ([]Universe, error) {
	var out []Universe
	if err := c.getJSON(ctx, "list universes", "/universes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUniverseStocks returns the member tickers of a universe
func (c *Client) ListUniverseStocks(ctx context.Context, universeID int64) ([]string, error) {
	var out []string
	path := fmt.Sprintf("/universes/%d/stocks", universeID)
	if err := c.getJSON(ctx, "list universe stocks", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUniverseOHLCV returns per-ticker price history, most recent rows first
// bounded by limit
func (c *Client) GetUniverseOHLCV(ctx context.Context, universeID int64, limit int) (*OHLCVResponse, error) {
	var out OHLCVResponse
	path := fmt.Sprintf("/universes/%d/ohlcv", universeID)
	params := url.Values{"limit": {fmt.Sprint(limit)}}
	if err := c.getJSON(ctx, "get universe ohlcv", path, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUniverseSignals returns per-ticker indicator history under the same limit
func (c *Client) GetUniverseSignals(ctx context.Context, universeID int64, limit int) (*SignalsResponse, error) {
	var out SignalsResponse
	path := fmt.Sprintf("/universes/%d/signals", universeID)
	params := url.Values{"limit": {fmt.Sprint(limit)}}
	if err := c.getJSON(ctx, "get universe signals", path, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTemplates returns templates, optionally filtered by kind
func (c *Client) ListTemplates(ctx context.Context, kind TemplateKind) ([]Template, error) {
	var out []Template
	var params url.Values
	if kind != "" {
		params = url.Values{"kind": {string(kind)}}
	}
	if err := c.getJSON(ctx, "list templates", "/templates", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUniverseCandidates returns the candidates generated for a universe
func (c *Client) ListUniverseCandidates(ctx context.Context, universeID int64) ([]Candidate, error) {
	var out []Candidate
	path := fmt.Sprintf("/universes/%d/candidates", universeID)
	if err := c.getJSON(ctx, "list universe candidates", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUniverse creates a universe on the engine
func (c *Client) CreateUniverse(ctx context.Context, req CreateUniverseRequest) (*Universe, error) {
	var out Universe
	if err := c.sendJSON(ctx, "create universe", http.MethodPost, "/universes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUniverse applies a partial update. The payload contains only the
// fields the caller touched; an omitted field is left unchanged by the engine.
func (c *Client) UpdateUniverse(ctx context.Context, universeID int64, fields map[string]interface{}) (*Universe, error) {
	var out Universe
	path := fmt.Sprintf("/universes/%d", universeID)
	if err := c.sendJSON(ctx, "update universe", http.MethodPatch, path, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddTicker adds a ticker to a universe. A 422 rejection comes back as a
// *ValidationError carrying the engine's detail text.
func (c *Client) AddTicker(ctx context.Context, universeID int64, req AddTickerRequest) (*AddTickerResult, error) {
	var out AddTickerResult
	path := fmt.Sprintf("/universes/%d/stocks", universeID)
	if err := c.sendJSON(ctx, "add ticker", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunScan triggers one scan of (universe, template) on the engine and
// returns its execution counters
func (c *Client) RunScan(ctx context.Context, universeID int64, req ScanRequest) (*ScanResult, error) {
	var out ScanResult
	path := fmt.Sprintf("/universes/%d/scan", universeID)
	if err := c.sendJSON(ctx, "run scan", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON performs a GET and decodes the JSON response into dest
func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, dest interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return fmt.Errorf("engine %s: %w", op, err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(op, resp, dest)
}

// sendJSON performs a POST/PATCH with a JSON body and decodes the response
func (c *Client) sendJSON(ctx context.Context, op, method, path string, body, dest interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var resp *http.Response
	var err error
	fullURL := c.baseURL + path

	switch method {
	case http.MethodPost:
		resp, err = c.httpClient.PostJSON(ctx, fullURL, body)
	case http.MethodPatch:
		resp, err = c.httpClient.PatchJSON(ctx, fullURL, body)
	default:
		return fmt.Errorf("engine %s: unsupported method %s", op, method)
	}
	if err != nil {
		return fmt.Errorf("engine %s: %w", op, err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(op, resp, dest)
}

// decodeResponse maps status codes to the error taxonomy and decodes 2xx bodies.
// 422 is the engine's recoverable validation rejection; everything else
// non-2xx is fatal for the triggering action.
func (c *Client) decodeResponse(op string, resp *http.Response, dest interface{}) error {
	if resp.StatusCode == http.StatusUnprocessableEntity {
		detail := validationDetail{Detail: "validation failed"}
		if body, err := io.ReadAll(resp.Body); err == nil {
			_ = json.Unmarshal(body, &detail)
		}
		return &ValidationError{Detail: detail.Detail}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(map[string]interface{}{
			"op":          op,
			"status_code": resp.StatusCode,
		}).Warn("Engine request rejected")
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("engine %s: decode response: %w", op, err)
	}

	return nil
}

// wait blocks on the process-local rate limiter when one is configured
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("engine rate limit wait: %w", err)
	}
	return nil
}
