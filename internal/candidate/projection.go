// Package candidate is the read-only display projection of scan-generated
// candidates. Candidates are created by the engine (always proposed) and
// their status transitions live there too; nothing here mutates them.
package candidate

import "github.com/wonny/chronos/internal/engine"

// NoReason marks an absent reason code so the display never has to tell
// "empty" and "missing" apart.
const NoReason = "-"

// Row is one candidate prepared for display
type Row struct {
	ID         int64   `json:"id"`
	UniverseID int64   `json:"universe_id"`
	TemplateID int64   `json:"template_id"`
	Ticker     string  `json:"ticker"`
	AsOf       string  `json:"as_of"`
	Score      float64 `json:"score"`
	Status     string  `json:"status"`
	ReasonCode string  `json:"reason_code"`
	Orphaned   bool    `json:"orphaned,omitempty"`
}

// Project maps candidates to display rows. Input order is preserved and
// status is rendered verbatim from the engine's three-value enum.
func Project(candidates []engine.Candidate) []Row {
	rows := make([]Row, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, toRow(c, false))
	}
	return rows
}

// ProjectWithRefs behaves like Project and additionally flags candidates
// whose universe or template no longer resolves. An orphan is display-only,
// never an error.
func ProjectWithRefs(candidates []engine.Candidate, universes []engine.Universe, templates []engine.Template) []Row {
	universeIDs := make(map[int64]bool, len(universes))
	for _, u := range universes {
		universeIDs[u.ID] = true
	}
	templateIDs := make(map[int64]bool, len(templates))
	for _, t := range templates {
		templateIDs[t.ID] = true
	}

	rows := make([]Row, 0, len(candidates))
	for _, c := range candidates {
		orphaned := !universeIDs[c.UniverseID] || !templateIDs[c.TemplateID]
		rows = append(rows, toRow(c, orphaned))
	}
	return rows
}

func toRow(c engine.Candidate, orphaned bool) Row {
	reason := NoReason
	if c.ReasonCode != nil {
		reason = *c.ReasonCode
	}

	return Row{
		ID:         c.ID,
		UniverseID: c.UniverseID,
		TemplateID: c.TemplateID,
		Ticker:     c.Ticker,
		AsOf:       c.AsOf,
		Score:      c.Score,
		Status:     string(c.Status),
		ReasonCode: reason,
		Orphaned:   orphaned,
	}
}
