package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chronos/internal/api"
	"github.com/wonny/chronos/internal/api/handlers"
	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/internal/scan"
	"github.com/wonny/chronos/internal/universe"
	"github.com/wonny/chronos/internal/workspace"
	"github.com/wonny/chronos/pkg/config"
	"github.com/wonny/chronos/pkg/httputil"
	"github.com/wonny/chronos/pkg/logger"
)

// fakeEngineServer is an httptest stand-in for the candidate engine
type fakeEngineServer struct {
	mux *http.ServeMux

	stocks       map[string][]string // keyed by universe id path segment
	addTickerErr string              // non-empty: respond 422 with this detail
}

func newFakeEngineServer() *fakeEngineServer {
	f := &fakeEngineServer{
		mux: http.NewServeMux(),
		stocks: map[string][]string{
			"1": {"AAPL", "MSFT"},
			"2": {"XOM", "CVX"},
		},
	}

	f.mux.HandleFunc("GET /universes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"id":1,"name":"U1","description":null},{"id":2,"name":"U2","description":null}]`)
	})
	f.mux.HandleFunc("GET /templates", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"id":5,"kind":"strategy","name":"momentum","version":1,"description":null,"config_json":"{\"entry_rules\":[{\"field\":\"rsi\",\"op\":\"<\",\"value\":30}],\"score_field\":\"rsi\"}"}]`)
	})
	f.mux.HandleFunc("GET /universes/{id}/stocks", func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(f.stocks[r.PathValue("id")])
		writeJSON(w, string(data))
	})
	f.mux.HandleFunc("GET /universes/{id}/ohlcv", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"universe_id":1,"provider":"yahooquery","interval":"1d","data":{}}`)
	})
	f.mux.HandleFunc("GET /universes/{id}/signals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"universe_id":1,"provider":"yahooquery","interval":"1d","data":{}}`)
	})
	f.mux.HandleFunc("GET /universes/{id}/candidates", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	})
	f.mux.HandleFunc("POST /universes/{id}/stocks", func(w http.ResponseWriter, r *http.Request) {
		if f.addTickerErr != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"detail": f.addTickerErr})
			return
		}
		writeJSON(w, `{"universe_id":1,"stock_id":10,"ticker":"TSLA"}`)
	})
	f.mux.HandleFunc("POST /universes/{id}/scan", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"universe_id":1,"template_id":5,"tickers_processed":10,"ohlcv_rows_written":300,"candidates_created":4,"error_count":2}`)
	})

	return f
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

// newTestAPI wires the full stack against a fake engine and returns the
// API server plus the fake for mutation
func newTestAPI(t *testing.T) (*httptest.Server, *fakeEngineServer) {
	t.Helper()

	fake := newFakeEngineServer()
	engineSrv := httptest.NewServer(fake.mux)
	t.Cleanup(engineSrv.Close)

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Engine: config.EngineConfig{
			BaseURL:      engineSrv.URL,
			Provider:     "yahooquery",
			Interval:     "1d",
			HistoryLimit: 30,
		},
	}
	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()
	client := engine.NewClient(cfg, httpClient, log)

	aggregator := workspace.NewAggregator(client, nil, log, cfg.Engine.HistoryLimit)
	stash := scan.NewResultStash(nil)
	orchestrator := scan.NewOrchestrator(client, aggregator, stash, log, cfg.Engine.Provider, cfg.Engine.Interval)
	gateway := universe.NewGateway(client, aggregator, log)

	router := api.NewRouter(
		handlers.NewWorkspaceHandler(client, aggregator, orchestrator, log),
		handlers.NewUniverseHandler(gateway, log),
		handlers.NewScanHandler(orchestrator, log),
		log,
	)

	apiSrv := httptest.NewServer(router)
	t.Cleanup(apiSrv.Close)

	return apiSrv, fake
}

func getWorkspace(t *testing.T, apiSrv *httptest.Server, query string) handlers.WorkspaceResponse {
	t.Helper()

	resp, err := http.Get(apiSrv.URL + "/api/workspace" + query)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ws handlers.WorkspaceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ws))
	return ws
}

func TestWorkspace_DefaultsToFirstUniverse(t *testing.T) {
	apiSrv, _ := newTestAPI(t)

	ws := getWorkspace(t, apiSrv, "")

	require.Len(t, ws.Universes, 2)
	assert.EqualValues(t, 1, ws.SelectedID, "no param selects the first universe")
	assert.Equal(t, []string{"AAPL", "MSFT"}, ws.Stocks)
}

func TestWorkspace_SelectsRequestedUniverse(t *testing.T) {
	apiSrv, _ := newTestAPI(t)

	ws := getWorkspace(t, apiSrv, "?universe=2")

	assert.EqualValues(t, 2, ws.SelectedID)
	assert.Equal(t, []string{"XOM", "CVX"}, ws.Stocks, "universe=2 returns U2's stocks only")
}

func TestWorkspace_DecodedTemplateConfig(t *testing.T) {
	apiSrv, _ := newTestAPI(t)

	ws := getWorkspace(t, apiSrv, "")

	require.NotNil(t, ws.Template)
	assert.Equal(t, "momentum", ws.Template.Name)
	require.NotNil(t, ws.TemplateConfig)
	require.Len(t, ws.TemplateConfig.EntryRules, 1)
	assert.Equal(t, "rsi", ws.TemplateConfig.EntryRules[0].Field)
}

func TestAddTicker_ValidationDetailRelayed(t *testing.T) {
	apiSrv, fake := newTestAPI(t)
	fake.addTickerErr = "ticker already exists"

	body := strings.NewReader(`{"ticker":"AAPL"}`)
	resp, err := http.Post(apiSrv.URL+"/api/universes/1/stocks", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ticker already exists", payload["detail"], "engine detail text relayed verbatim")

	// The universe's stock list is untouched by the rejection
	ws := getWorkspace(t, apiSrv, "?universe=1")
	assert.Equal(t, []string{"AAPL", "MSFT"}, ws.Stocks)
}

func TestScan_CountersVerbatimAndOneShot(t *testing.T) {
	apiSrv, _ := newTestAPI(t)

	form := url.Values{"universe_id": {"1"}, "template_id": {"5"}}
	resp, err := http.PostForm(apiSrv.URL+"/api/scan", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var scanResp handlers.ScanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scanResp))
	require.NotEmpty(t, scanResp.ScanToken)
	require.NotNil(t, scanResp.Result)

	// error_count: 2 did not fail the action, and all counters survive
	assert.Equal(t, 10, scanResp.Result.TickersProcessed)
	assert.Equal(t, 300, scanResp.Result.OHLCVRowsWritten)
	assert.Equal(t, 4, scanResp.Result.CandidatesCreated)
	assert.Equal(t, 2, scanResp.Result.ErrorCount)

	// The token delivers exactly once
	ws := getWorkspace(t, apiSrv, "?universe=1&scan_token="+scanResp.ScanToken)
	require.NotNil(t, ws.ScanResult)
	assert.Equal(t, 4, ws.ScanResult.CandidatesCreated)

	ws = getWorkspace(t, apiSrv, "?universe=1&scan_token="+scanResp.ScanToken)
	assert.Nil(t, ws.ScanResult, "a reload with the same token shows no scan result")
}

func TestScan_MissingTemplateIDNoOps(t *testing.T) {
	apiSrv, _ := newTestAPI(t)

	form := url.Values{"universe_id": {"1"}, "template_id": {"not-a-number"}}
	resp, err := http.PostForm(apiSrv.URL+"/api/scan", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "guard failures no-op")
}

func TestCreateUniverse_BlankNameNoContent(t *testing.T) {
	apiSrv, _ := newTestAPI(t)

	body := strings.NewReader(`{"name":"   "}`)
	resp, err := http.Post(apiSrv.URL+"/api/universes", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
