package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wonny/chronos/pkg/config"
	"github.com/wonny/chronos/pkg/httputil"
	"github.com/wonny/chronos/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Engine: config.EngineConfig{
			BaseURL:   baseURL,
			RateLimit: 0,
		},
	}
	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()

	return NewClient(cfg, httpClient, log)
}

func TestListUniverses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/universes" {
			t.Errorf("Expected path /universes, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Tech","description":null},{"id":2,"name":"Energy","description":"oil and gas"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	universes, err := client.ListUniverses(context.Background())
	if err != nil {
		t.Fatalf("ListUniverses() error = %v", err)
	}

	if len(universes) != 2 {
		t.Fatalf("Expected 2 universes, got %d", len(universes))
	}
	if universes[0].ID != 1 || universes[0].Name != "Tech" {
		t.Errorf("Unexpected first universe: %+v", universes[0])
	}
	if universes[0].Description != nil {
		t.Error("Expected nil description for first universe")
	}
	if universes[1].Description == nil || *universes[1].Description != "oil and gas" {
		t.Error("Expected description to be preserved for second universe")
	}
}

func TestGetUniverseOHLCV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/universes/1/ohlcv" {
			t.Errorf("Expected path /universes/1/ohlcv, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "30" {
			t.Errorf("Expected limit=30, got %s", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"universe_id":1,"provider":"yahooquery","interval":"1d","data":{"AAPL":[{"date":"2026-08-28","open":1,"high":2,"low":0.5,"close":1.5,"volume":null}]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.GetUniverseOHLCV(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("GetUniverseOHLCV() error = %v", err)
	}

	points, ok := resp.Data["AAPL"]
	if !ok {
		t.Fatal("Expected AAPL in response data")
	}
	if len(points) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(points))
	}
	if points[0].Volume != nil {
		t.Error("Expected null volume to decode as nil")
	}
}

func TestGetUniverseSignals_NullableIndicators(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"universe_id":1,"provider":"yahooquery","interval":"1d","data":{"AAPL":[{"as_of":"2026-08-28","rsi":55.2,"macd":null,"macd_signal":null,"ema_20":101.5,"ema_50":null,"bb_upper":null,"bb_lower":null}]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.GetUniverseSignals(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("GetUniverseSignals() error = %v", err)
	}

	point := resp.Data["AAPL"][0]
	if point.RSI == nil || *point.RSI != 55.2 {
		t.Error("Expected rsi=55.2")
	}
	if point.MACD != nil {
		t.Error("Expected macd to be nil when the engine sends null")
	}
	if point.EMA20 == nil || *point.EMA20 != 101.5 {
		t.Error("Expected ema_20=101.5")
	}
}

func TestListTemplates_KindFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("kind") != "strategy" {
			t.Errorf("Expected kind=strategy, got %s", r.URL.Query().Get("kind"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":5,"kind":"strategy","name":"momentum","version":2,"description":null,"config_json":"{\"entry_rules\":[]}"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	templates, err := client.ListTemplates(context.Background(), KindStrategy)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}

	if len(templates) != 1 {
		t.Fatalf("Expected 1 template, got %d", len(templates))
	}
	if templates[0].Version != 2 {
		t.Errorf("Expected version 2, got %d", templates[0].Version)
	}
}

func TestAddTicker_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"ticker already exists"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.AddTicker(context.Background(), 1, AddTickerRequest{Ticker: "AAPL"})
	if err == nil {
		t.Fatal("Expected error for 422 response")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if verr.Detail != "ticker already exists" {
		t.Errorf("Expected detail %q, got %q", "ticker already exists", verr.Detail)
	}
}

func TestAddTicker_ServerErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.AddTicker(context.Background(), 1, AddTickerRequest{Ticker: "AAPL"})
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}

	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected *StatusError, got %T", err)
	}
	if serr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", serr.StatusCode)
	}
}

func TestUpdateUniverse_PartialPayload(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"Renamed","description":null}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.UpdateUniverse(context.Background(), 1, map[string]interface{}{"name": "Renamed"})
	if err != nil {
		t.Fatalf("UpdateUniverse() error = %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("Expected payload with 1 field, got %v", received)
	}
	if received["name"] != "Renamed" {
		t.Errorf("Expected name=Renamed, got %v", received["name"])
	}
	if _, ok := received["description"]; ok {
		t.Error("Description must not appear in the payload when not touched")
	}
}

func TestRunScan_PartialSuccessCounters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/universes/1/scan" {
			t.Errorf("Expected path /universes/1/scan, got %s", r.URL.Path)
		}
		var req ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode scan request: %v", err)
		}
		if req.TemplateID != 5 {
			t.Errorf("Expected template_id=5, got %d", req.TemplateID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"universe_id":1,"template_id":5,"tickers_processed":10,"ohlcv_rows_written":300,"candidates_created":4,"error_count":2}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.RunScan(context.Background(), 1, ScanRequest{TemplateID: 5, Provider: "yahooquery", Interval: "1d"})
	if err != nil {
		t.Fatalf("RunScan() error = %v, partial success must not be an error", err)
	}

	if result.TickersProcessed != 10 {
		t.Errorf("Expected tickers_processed=10, got %d", result.TickersProcessed)
	}
	if result.OHLCVRowsWritten != 300 {
		t.Errorf("Expected ohlcv_rows_written=300, got %d", result.OHLCVRowsWritten)
	}
	if result.CandidatesCreated != 4 {
		t.Errorf("Expected candidates_created=4, got %d", result.CandidatesCreated)
	}
	if result.ErrorCount != 2 {
		t.Errorf("Expected error_count=2, got %d", result.ErrorCount)
	}
}

func TestCreateUniverse_NullDescription(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":3,"name":"New","description":null}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	u, err := client.CreateUniverse(context.Background(), CreateUniverseRequest{Name: "New"})
	if err != nil {
		t.Fatalf("CreateUniverse() error = %v", err)
	}

	if u.ID != 3 {
		t.Errorf("Expected id=3, got %d", u.ID)
	}

	// Omitted description still serializes: explicit null, not absent
	v, ok := received["description"]
	if !ok {
		t.Fatal("Expected description key in payload")
	}
	if v != nil {
		t.Errorf("Expected explicit null description, got %v", v)
	}
}
