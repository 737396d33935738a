package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/myat555/WildfireNowcast/internal/alerts"
	"github.com/myat555/WildfireNowcast/internal/assets"
	"github.com/myat555/WildfireNowcast/internal/config"
	"github.com/myat555/WildfireNowcast/internal/engine"
	"github.com/myat555/WildfireNowcast/internal/ingest"
	"github.com/myat555/WildfireNowcast/internal/model"
	"github.com/myat555/WildfireNowcast/internal/notify"
	"github.com/myat555/WildfireNowcast/internal/observability"
	"github.com/myat555/WildfireNowcast/internal/results"
)

func testCatalog() *assets.Catalog {
	catalogAssets := []model.Asset{
		{ID: "asset-1", Name: "Community Hospital", Type: model.AssetHealthcare, Latitude: 34.06, Longitude: -118.25, Population: 400},
		{ID: "asset-2", Name: "Hillside Homes", Type: model.AssetResidential, Latitude: 34.10, Longitude: -118.30, Population: 1500},
	}
	areas := []model.ProtectedArea{
		{ID: "area-1", Name: "Downtown", Priority: model.PriorityCritical, Latitude: 34.05, Longitude: -118.24, ThreatRadius: 10},
	}
	return assets.NewStatic(catalogAssets, areas)
}

func testPipeline(t *testing.T, clock clockwork.Clock) (*Pipeline, *results.Store, *alerts.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	alertsStore := alerts.NewStore(100)
	resultsStore := results.NewStore(10)
	index := engine.NewGridIndex(0, 0, 0, clock)
	eng := engine.NewEngine(index, notify.NewLogNotifier(logger), alertsStore, nil, metrics, logger, clock)
	cfg := config.AssessmentConfig{MaxDistanceKm: 50, EvacuationBufferKm: 5, RankCriteria: "population_proximity", BatchSize: 100}
	pipe := New(cfg, testCatalog(), eng, resultsStore, nil, metrics, &ingest.SkipTally{}, logger, clock)
	return pipe, resultsStore, alertsStore
}

func TestRunCycleProducesSnapshotAndAlerts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pipe, resultsStore, alertsStore := testPipeline(t, clock)

	hotspots := []model.Hotspot{
		{ID: "hs-1", Latitude: 34.055, Longitude: -118.245, Confidence: 95, Brightness: 340},
		{ID: "hs-2", Latitude: 36.0, Longitude: -119.0, Confidence: 40, Brightness: 310},
	}
	cycle, err := pipe.RunCycle(context.Background(), hotspots)
	require.NoError(t, err)
	require.Equal(t, 2, cycle.TotalHotspots)
	require.Equal(t, 2, cycle.TotalAssets)
	require.Equal(t, 1, cycle.AlertsEmitted, "only the close high-confidence hotspot alerts")
	require.Zero(t, cycle.AlertsSuppressed)

	snap, ok := resultsStore.Latest()
	require.True(t, ok)
	require.Len(t, snap.Ranked, 2)
	require.Equal(t, 1, snap.Ranked[0].Rank)
	require.Len(t, snap.AreaThreats, 2)
	require.NotEmpty(t, snap.Assessments, "hs-1 is within range of both assets")

	recorded := alertsStore.List(0)
	require.Len(t, recorded, 1)
	require.Equal(t, model.AlertCritical, recorded[0].Level)
}

func TestRunCycleSuppressesAcrossCycles(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pipe, _, alertsStore := testPipeline(t, clock)

	hotspot := model.Hotspot{ID: "hs-1", Latitude: 34.055, Longitude: -118.245, Confidence: 95, Brightness: 340}
	_, err := pipe.RunCycle(context.Background(), []model.Hotspot{hotspot})
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	repeat := hotspot
	repeat.ID = "hs-1b"
	cycle, err := pipe.RunCycle(context.Background(), []model.Hotspot{repeat})
	require.NoError(t, err)
	require.Equal(t, 1, cycle.AlertsSuppressed)
	require.Zero(t, cycle.AlertsEmitted)

	recorded := alertsStore.List(0)
	require.Len(t, recorded, 2)
	require.Equal(t, model.StatusSuppressed, recorded[1].Status)
}

func TestRunCycleEmptyBatch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pipe, resultsStore, _ := testPipeline(t, clock)

	cycle, err := pipe.RunCycle(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, cycle.TotalHotspots)
	require.Zero(t, cycle.AlertsEmitted)

	snap, ok := resultsStore.Latest()
	require.True(t, ok, "an empty cycle still publishes a snapshot")
	require.Empty(t, snap.Assessments)
}

func TestRunnerTickDrainsChannel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pipe, resultsStore, _ := testPipeline(t, clock)

	in := make(chan model.Hotspot, 10)
	in <- model.Hotspot{ID: "hs-1", Latitude: 34.055, Longitude: -118.245, Confidence: 95, Brightness: 340}
	in <- model.Hotspot{ID: "hs-2", Latitude: 36.0, Longitude: -119.0, Confidence: 40, Brightness: 310}

	runner := NewRunner(pipe, in, 100, slog.New(slog.NewTextHandler(io.Discard, nil)))
	runner.Tick(context.Background())

	require.Empty(t, in)
	snap, ok := resultsStore.Latest()
	require.True(t, ok)
	require.Len(t, snap.AreaThreats, 2)
}

func TestRunCycleDrainsSkippedRecords(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pipe, resultsStore, _ := testPipeline(t, clock)

	pipe.skips.Inc()
	pipe.skips.Inc()
	cycle, err := pipe.RunCycle(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, cycle.SkippedRecords)
	require.InDelta(t, 2.0, testutil.ToFloat64(pipe.metrics.RecordsSkipped), 0.001)

	summaries := resultsStore.Summaries(0)
	require.Len(t, summaries, 1)
	require.Equal(t, 2, summaries[0].SkippedRecords)

	cycle, err = pipe.RunCycle(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, cycle.SkippedRecords, "each cycle drains the tally")
}

func TestRunCycleStagesAgreeAcrossRuns(t *testing.T) {
	hotspots := []model.Hotspot{
		{ID: "hs-1", Latitude: 34.055, Longitude: -118.245, Confidence: 95, Brightness: 340},
		{ID: "hs-2", Latitude: 34.09, Longitude: -118.29, Confidence: 72, Brightness: 325},
		{ID: "hs-3", Latitude: 36.0, Longitude: -119.0, Confidence: 40, Brightness: 310},
	}

	pipeA, resultsA, _ := testPipeline(t, clockwork.NewFakeClock())
	pipeB, resultsB, _ := testPipeline(t, clockwork.NewFakeClock())

	_, err := pipeA.RunCycle(context.Background(), hotspots)
	require.NoError(t, err)
	_, err = pipeB.RunCycle(context.Background(), hotspots)
	require.NoError(t, err)

	snapA, ok := resultsA.Latest()
	require.True(t, ok)
	snapB, ok := resultsB.Latest()
	require.True(t, ok)
	require.Equal(t, snapA.Ranked, snapB.Ranked)
	require.Equal(t, snapA.Zones, snapB.Zones)
	require.Equal(t, snapA.Assessments, snapB.Assessments)
}

func TestRunnerTickEmptyChannelNoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pipe, resultsStore, _ := testPipeline(t, clock)

	in := make(chan model.Hotspot, 1)
	runner := NewRunner(pipe, in, 100, nil)
	runner.Tick(context.Background())

	_, ok := resultsStore.Latest()
	require.False(t, ok, "no cycle runs without hotspots")
}
