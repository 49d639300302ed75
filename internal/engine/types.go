package engine

// Universe is a named, user-managed collection of tracked tickers
type Universe struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatedAt   *string `json:"created_at,omitempty"`
}

// TemplateKind classifies a template
type TemplateKind string

const (
	KindStrategy TemplateKind = "strategy"
	KindTrade    TemplateKind = "trade"
	KindRisk     TemplateKind = "risk"
)

// Template is a versioned strategy configuration. Templates are immutable:
// edits produce a new version on the engine side, this service only reads them.
type Template struct {
	ID          int64        `json:"id"`
	Kind        TemplateKind `json:"kind"`
	Name        string       `json:"name"`
	Version     int          `json:"version"`
	Description *string      `json:"description"`
	ConfigJSON  string       `json:"config_json"`
}

// CandidateStatus is the candidate lifecycle state
type CandidateStatus string

const (
	StatusProposed CandidateStatus = "proposed"
	StatusSelected CandidateStatus = "selected"
	StatusRejected CandidateStatus = "rejected"
)

// Candidate is a scored per-ticker scan output. Status transitions happen
// on the engine; it is read-only here.
type Candidate struct {
	ID          int64           `json:"id"`
	UniverseID  int64           `json:"universe_id"`
	TemplateID  int64           `json:"template_id"`
	Ticker      string          `json:"ticker"`
	AsOf        string          `json:"as_of"`
	Score       float64         `json:"score"`
	Status      CandidateStatus `json:"status"`
	ReasonCode  *string         `json:"reason_code"`
	PayloadJSON string          `json:"payload_json"`
}

// OHLCVPoint is one bar of price history
type OHLCVPoint struct {
	Date   string   `json:"date"`
	Open   float64  `json:"open"`
	High   float64  `json:"high"`
	Low    float64  `json:"low"`
	Close  float64  `json:"close"`
	Volume *float64 `json:"volume"`
}

// SignalPoint is one row of computed indicators. Each indicator is
// independently nullable: the engine leaves it unset when the history
// window is too short to compute it.
type SignalPoint struct {
	AsOf       string   `json:"as_of"`
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	EMA20      *float64 `json:"ema_20"`
	EMA50      *float64 `json:"ema_50"`
	BBUpper    *float64 `json:"bb_upper"`
	BBLower    *float64 `json:"bb_lower"`
}

// OHLCVResponse is the engine's per-universe price history payload
type OHLCVResponse struct {
	UniverseID int64                   `json:"universe_id"`
	Provider   string                  `json:"provider"`
	Interval   string                  `json:"interval"`
	Data       map[string][]OHLCVPoint `json:"data"`
}

// SignalsResponse is the engine's per-universe indicator history payload
type SignalsResponse struct {
	UniverseID int64                    `json:"universe_id"`
	Provider   string                   `json:"provider"`
	Interval   string                   `json:"interval"`
	Data       map[string][]SignalPoint `json:"data"`
}

// ScanRequest asks the engine to scan a universe with one template
type ScanRequest struct {
	TemplateID int64  `json:"template_id"`
	Provider   string `json:"provider,omitempty"`
	Interval   string `json:"interval,omitempty"`
}

// ScanResult summarizes one scan execution. It is never persisted here;
// it lives exactly long enough to be shown once after the scan.
// ErrorCount > 0 alongside CandidatesCreated > 0 is a normal partial
// success, not a failure.
type ScanResult struct {
	UniverseID        int64 `json:"universe_id"`
	TemplateID        int64 `json:"template_id"`
	TickersProcessed  int   `json:"tickers_processed"`
	OHLCVRowsWritten  int   `json:"ohlcv_rows_written"`
	CandidatesCreated int   `json:"candidates_created"`
	ErrorCount        int   `json:"error_count"`
}

// CreateUniverseRequest creates a universe. Description marshals to an
// explicit null when absent.
type CreateUniverseRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// AddTickerRequest adds one ticker to a universe
type AddTickerRequest struct {
	Ticker string  `json:"ticker"`
	Name   *string `json:"name,omitempty"`
}

// AddTickerResult is the engine's membership confirmation
type AddTickerResult struct {
	UniverseID int64  `json:"universe_id"`
	StockID    int64  `json:"stock_id"`
	Ticker     string `json:"ticker"`
}
