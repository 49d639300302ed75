package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chronos/internal/engine"
)

func strPtr(s string) *string { return &s }

func TestProject_PreservesOrder(t *testing.T) {
	candidates := []engine.Candidate{
		{ID: 3, Ticker: "MSFT", Score: 0.7, Status: engine.StatusProposed},
		{ID: 1, Ticker: "AAPL", Score: 0.9, Status: engine.StatusSelected},
		{ID: 2, Ticker: "NVDA", Score: 0.8, Status: engine.StatusRejected, ReasonCode: strPtr("low_volume")},
	}

	rows := Project(candidates)
	require.Len(t, rows, 3)

	// No re-sorting: rows come out in input order
	assert.Equal(t, "MSFT", rows[0].Ticker)
	assert.Equal(t, "AAPL", rows[1].Ticker)
	assert.Equal(t, "NVDA", rows[2].Ticker)

	// Status verbatim from the enum
	assert.Equal(t, "proposed", rows[0].Status)
	assert.Equal(t, "selected", rows[1].Status)
	assert.Equal(t, "rejected", rows[2].Status)
}

func TestProject_ReasonCodeMarker(t *testing.T) {
	rows := Project([]engine.Candidate{
		{ID: 1, Status: engine.StatusProposed},
		{ID: 2, Status: engine.StatusRejected, ReasonCode: strPtr("stale_data")},
	})

	assert.Equal(t, NoReason, rows[0].ReasonCode, "absent reason renders as explicit marker")
	assert.Equal(t, "stale_data", rows[1].ReasonCode)
}

func TestProject_Empty(t *testing.T) {
	rows := Project(nil)
	require.NotNil(t, rows, "projection of nothing is an empty slice, not nil")
	assert.Empty(t, rows)
}

func TestProjectWithRefs_Orphans(t *testing.T) {
	universes := []engine.Universe{{ID: 1, Name: "Tech"}}
	templates := []engine.Template{{ID: 5, Kind: engine.KindStrategy, Name: "momentum"}}

	candidates := []engine.Candidate{
		{ID: 1, UniverseID: 1, TemplateID: 5, Ticker: "AAPL", Status: engine.StatusProposed},
		{ID: 2, UniverseID: 9, TemplateID: 5, Ticker: "MSFT", Status: engine.StatusProposed},
		{ID: 3, UniverseID: 1, TemplateID: 8, Ticker: "NVDA", Status: engine.StatusProposed},
	}

	rows := ProjectWithRefs(candidates, universes, templates)
	require.Len(t, rows, 3, "orphans are displayed, never dropped or fatal")

	assert.False(t, rows[0].Orphaned)
	assert.True(t, rows[1].Orphaned, "unresolvable universe makes an orphan")
	assert.True(t, rows[2].Orphaned, "unresolvable template makes an orphan")
}
