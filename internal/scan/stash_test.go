package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chronos/internal/engine"
)

func TestResultStash_SingleDelivery(t *testing.T) {
	ctx := context.Background()
	stash := NewResultStash(nil)

	result := &engine.ScanResult{
		UniverseID:        1,
		TemplateID:        3,
		TickersProcessed:  10,
		CandidatesCreated: 4,
	}

	token, err := stash.Put(ctx, result)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, ok := stash.Take(ctx, token)
	require.True(t, ok)
	assert.Equal(t, 10, got.TickersProcessed)
	assert.Equal(t, 4, got.CandidatesCreated)

	// Second take finds nothing
	got, ok = stash.Take(ctx, token)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResultStash_UnknownToken(t *testing.T) {
	ctx := context.Background()
	stash := NewResultStash(nil)

	_, ok := stash.Take(ctx, "nope")
	assert.False(t, ok)

	_, ok = stash.Take(ctx, "")
	assert.False(t, ok)
}

func TestResultStash_DistinctTokens(t *testing.T) {
	ctx := context.Background()
	stash := NewResultStash(nil)

	a, err := stash.Put(ctx, &engine.ScanResult{UniverseID: 1})
	require.NoError(t, err)
	b, err := stash.Put(ctx, &engine.ScanResult{UniverseID: 2})
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	gotB, ok := stash.Take(ctx, b)
	require.True(t, ok)
	assert.Equal(t, int64(2), gotB.UniverseID)

	gotA, ok := stash.Take(ctx, a)
	require.True(t, ok)
	assert.Equal(t, int64(1), gotA.UniverseID)
}
