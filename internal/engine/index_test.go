package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/myat555/WildfireNowcast/internal/model"
)

func TestGridIndexSuppressWithinRadius(t *testing.T) {
	clock := clockwork.NewFakeClock()
	idx := NewGridIndex(0.02, 2.0, 30*time.Minute, clock)
	ctx := context.Background()

	suppressed, err := idx.CheckAndRecord(ctx, model.AlertCritical, 34.05, -118.24)
	require.NoError(t, err)
	require.False(t, suppressed, "empty index never suppresses")

	// ~1.1 km north.
	suppressed, err = idx.CheckAndRecord(ctx, model.AlertCritical, 34.06, -118.24)
	require.NoError(t, err)
	require.True(t, suppressed)
}

func TestGridIndexDistanceIsTrueKilometers(t *testing.T) {
	clock := clockwork.NewFakeClock()
	idx := NewGridIndex(0.02, 2.0, 30*time.Minute, clock)
	ctx := context.Background()

	// At 60N a 0.03 degree longitude step is only ~1.7 km, well inside
	// the radius even though the degree delta looks large.
	_, err := idx.CheckAndRecord(ctx, model.AlertHigh, 60.0, 20.0)
	require.NoError(t, err)
	suppressed, err := idx.CheckAndRecord(ctx, model.AlertHigh, 60.0, 20.03)
	require.NoError(t, err)
	require.True(t, suppressed)
}

func TestGridIndexBeyondRadiusNotSuppressed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	idx := NewGridIndex(0.02, 2.0, 30*time.Minute, clock)
	ctx := context.Background()

	_, err := idx.CheckAndRecord(ctx, model.AlertCritical, 34.05, -118.24)
	require.NoError(t, err)

	// ~3.3 km north.
	suppressed, err := idx.CheckAndRecord(ctx, model.AlertCritical, 34.08, -118.24)
	require.NoError(t, err)
	require.False(t, suppressed)
}

func TestGridIndexWindowExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	idx := NewGridIndex(0.02, 2.0, 30*time.Minute, clock)
	ctx := context.Background()

	_, err := idx.CheckAndRecord(ctx, model.AlertCritical, 34.05, -118.24)
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	suppressed, err := idx.CheckAndRecord(ctx, model.AlertCritical, 34.05, -118.24)
	require.NoError(t, err)
	require.True(t, suppressed, "inside the window")

	clock.Advance(31 * time.Minute)
	suppressed, err = idx.CheckAndRecord(ctx, model.AlertCritical, 34.05, -118.24)
	require.NoError(t, err)
	require.False(t, suppressed, "window expired")
}

func TestGridIndexLevelsAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	idx := NewGridIndex(0.02, 2.0, 30*time.Minute, clock)
	ctx := context.Background()

	_, err := idx.CheckAndRecord(ctx, model.AlertCritical, 34.05, -118.24)
	require.NoError(t, err)
	suppressed, err := idx.CheckAndRecord(ctx, model.AlertHigh, 34.05, -118.24)
	require.NoError(t, err)
	require.False(t, suppressed, "different level is a different suppression key")
}

func TestGridIndexConcurrentSingleWinner(t *testing.T) {
	clock := clockwork.NewFakeClock()
	idx := NewGridIndex(0.02, 2.0, 30*time.Minute, clock)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	results := make([]bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			suppressed, err := idx.CheckAndRecord(ctx, model.AlertCritical, 34.05, -118.24)
			require.NoError(t, err)
			results[i] = suppressed
		}(i)
	}
	wg.Wait()

	emitted := 0
	for _, suppressed := range results {
		if !suppressed {
			emitted++
		}
	}
	require.Equal(t, 1, emitted, "exactly one concurrent caller may emit")
}
