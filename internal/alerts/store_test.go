package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/myat555/WildfireNowcast/internal/model"
)

func makeAlert(id string, level model.AlertLevel, status model.DeliveryStatus, at time.Time) model.Alert {
	return model.Alert{ID: id, Level: level, Status: status, CreatedAt: at}
}

func TestStoreBounded(t *testing.T) {
	s := NewStore(3)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Add(makeAlert(string(rune('a'+i)), model.AlertHigh, model.StatusSent, now))
	}
	list := s.List(0)
	require.Len(t, list, 3)
	require.Equal(t, "c", list[0].ID, "oldest entries evicted first")
	require.Equal(t, "e", list[2].ID)
}

func TestStoreListLimit(t *testing.T) {
	s := NewStore(10)
	now := time.Now().UTC()
	s.Add(makeAlert("a", model.AlertHigh, model.StatusSent, now))
	s.Add(makeAlert("b", model.AlertHigh, model.StatusSent, now))
	s.Add(makeAlert("c", model.AlertHigh, model.StatusSent, now))

	list := s.List(2)
	require.Len(t, list, 2)
	require.Equal(t, "b", list[0].ID)
}

func TestStoreSinceFilters(t *testing.T) {
	s := NewStore(10)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.Add(makeAlert("old", model.AlertCritical, model.StatusSent, base.Add(-2*time.Hour)))
	s.Add(makeAlert("new-crit", model.AlertCritical, model.StatusSent, base))
	s.Add(makeAlert("new-high", model.AlertHigh, model.StatusSent, base))

	recent := s.Since(base.Add(-time.Hour), "")
	require.Len(t, recent, 2)

	crit := s.Since(base.Add(-time.Hour), model.AlertCritical)
	require.Len(t, crit, 1)
	require.Equal(t, "new-crit", crit[0].ID)
}

func TestStoreStatsSince(t *testing.T) {
	s := NewStore(10)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.Add(makeAlert("a", model.AlertCritical, model.StatusSent, base))
	s.Add(makeAlert("b", model.AlertHigh, model.StatusFailed, base))
	s.Add(makeAlert("c", model.AlertMedium, model.StatusSuppressed, base))
	s.Add(makeAlert("d", model.AlertCritical, model.StatusSent, base.Add(-48*time.Hour)))

	stats := s.StatsSince(base.Add(-time.Hour))
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.Critical)
	require.Equal(t, 1, stats.High)
	require.Equal(t, 1, stats.Medium)
	require.Equal(t, 1, stats.Sent)
	require.Equal(t, 1, stats.Failed)
	require.Equal(t, 1, stats.Suppressed)
}

func TestStoreClear(t *testing.T) {
	s := NewStore(10)
	s.Add(makeAlert("a", model.AlertHigh, model.StatusSent, time.Now().UTC()))
	s.Clear()
	require.Empty(t, s.List(0))
}
