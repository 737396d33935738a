package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/myat555/WildfireNowcast/internal/alerts"
	"github.com/myat555/WildfireNowcast/internal/model"
	"github.com/myat555/WildfireNowcast/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeNotifier struct {
	sent    []model.Alert
	results map[string]bool
}

func (f *fakeNotifier) Send(_ context.Context, alert model.Alert) map[string]bool {
	f.sent = append(f.sent, alert)
	if f.results != nil {
		return f.results
	}
	return map[string]bool{"chat": true}
}

type erroringIndex struct{}

func (erroringIndex) CheckAndRecord(context.Context, model.AlertLevel, float64, float64) (bool, error) {
	return false, errors.New("index unavailable")
}

func testEngine(t *testing.T, clock clockwork.Clock, index SuppressionIndex, notifier *fakeNotifier) (*Engine, *alerts.Store) {
	t.Helper()
	store := alerts.NewStore(100)
	eng := NewEngine(index, notifier, store, nil, observability.NewMetricsForTesting(), testLogger(), clock)
	return eng, store
}

func criticalInputs() (model.Hotspot, model.AreaThreat) {
	hotspot := model.Hotspot{
		ID:         "hs-1",
		Latitude:   34.0522,
		Longitude:  -118.2437,
		Confidence: 95,
		Brightness: 340,
	}
	area := model.AreaThreat{
		HotspotID:     hotspot.ID,
		ThreatLevel:   model.ThreatCritical,
		MinDistanceKm: 1.2,
		Affected: []model.AffectedArea{
			{AreaID: "area-1", Name: "Downtown", Priority: model.PriorityCritical, DistanceKm: 1.2},
		},
	}
	return hotspot, area
}

func TestDecideEmitsFirstAlert(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{}
	eng, store := testEngine(t, clock, NewGridIndex(0, 0, 0, clock), notifier)

	hotspot, area := criticalInputs()
	alert, ok := eng.Decide(context.Background(), hotspot, area)
	require.True(t, ok)
	require.Equal(t, model.AlertCritical, alert.Level)
	require.False(t, alert.Suppressed)
	require.Equal(t, model.StatusSent, alert.Status)
	require.Len(t, notifier.sent, 1)
	require.Len(t, store.List(0), 1)
}

func TestDecideSuppressesNearbyDuplicate(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{}
	eng, store := testEngine(t, clock, NewGridIndex(0, 0, 0, clock), notifier)

	hotspot, area := criticalInputs()
	_, ok := eng.Decide(context.Background(), hotspot, area)
	require.True(t, ok)

	// Second detection 500m away, 10 minutes later.
	clock.Advance(10 * time.Minute)
	nearby := hotspot
	nearby.ID = "hs-2"
	nearby.Latitude += 0.004
	alert, ok := eng.Decide(context.Background(), nearby, area)
	require.True(t, ok)
	require.True(t, alert.Suppressed)
	require.Equal(t, model.StatusSuppressed, alert.Status)
	require.Len(t, notifier.sent, 1, "suppressed alert must not reach the notifier")
	require.Len(t, store.List(0), 2, "suppressed alert still recorded for audit")
}

func TestDecideEmitsAfterWindowExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{}
	eng, _ := testEngine(t, clock, NewGridIndex(0, 0, 0, clock), notifier)

	hotspot, area := criticalInputs()
	_, _ = eng.Decide(context.Background(), hotspot, area)

	clock.Advance(31 * time.Minute)
	alert, ok := eng.Decide(context.Background(), hotspot, area)
	require.True(t, ok)
	require.False(t, alert.Suppressed)
	require.Len(t, notifier.sent, 2)
}

func TestDecideDifferentLevelNotSuppressed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{}
	eng, _ := testEngine(t, clock, NewGridIndex(0, 0, 0, clock), notifier)

	hotspot, area := criticalInputs()
	_, _ = eng.Decide(context.Background(), hotspot, area)

	// Same spot but a HIGH classification: separate suppression key.
	high := hotspot
	high.ID = "hs-3"
	high.Confidence = 75
	highArea := area
	highArea.ThreatLevel = model.ThreatHigh
	highArea.MinDistanceKm = 12
	highArea.Affected = []model.AffectedArea{
		{AreaID: "area-1", Name: "Downtown", Priority: model.PriorityHigh, DistanceKm: 12},
	}
	alert, ok := eng.Decide(context.Background(), high, highArea)
	require.True(t, ok)
	require.Equal(t, model.AlertHigh, alert.Level)
	require.False(t, alert.Suppressed)
}

func TestDecideFailsOpenOnIndexError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{}
	eng, _ := testEngine(t, clock, erroringIndex{}, notifier)

	hotspot, area := criticalInputs()
	alert, ok := eng.Decide(context.Background(), hotspot, area)
	require.True(t, ok)
	require.False(t, alert.Suppressed)
	require.Len(t, notifier.sent, 1, "index failure must not block alerting")
}

func TestDecideNoneProducesNoRecord(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{}
	eng, store := testEngine(t, clock, NewGridIndex(0, 0, 0, clock), notifier)

	hotspot := model.Hotspot{ID: "hs-4", Latitude: 40, Longitude: -120, Confidence: 30}
	area := model.AreaThreat{HotspotID: hotspot.ID, ThreatLevel: model.ThreatLow, MinDistanceKm: -1}
	_, ok := eng.Decide(context.Background(), hotspot, area)
	require.False(t, ok)
	require.Empty(t, notifier.sent)
	require.Empty(t, store.List(0))
}

func TestDecideFailedDelivery(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{results: map[string]bool{"email": false, "sms": false}}
	eng, _ := testEngine(t, clock, NewGridIndex(0, 0, 0, clock), notifier)

	hotspot, area := criticalInputs()
	alert, ok := eng.Decide(context.Background(), hotspot, area)
	require.True(t, ok)
	require.Equal(t, model.StatusFailed, alert.Status)
}

func TestAlertIDFormat(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 30, 5, 0, time.UTC)
	id := alertID(now, 34.0522, -118.2437)
	require.Equal(t, "ALERT-20260830143005-34.0522--118.2437", id)
}
