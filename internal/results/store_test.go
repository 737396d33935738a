package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/myat555/WildfireNowcast/internal/model"
)

func TestStoreLatest(t *testing.T) {
	s := NewStore(10)
	_, ok := s.Latest()
	require.False(t, ok)

	snap := Snapshot{Timestamp: time.Now().UTC(), Summary: model.AssessmentSummary{Total: 3}}
	s.SetLatest(snap)
	got, ok := s.Latest()
	require.True(t, ok)
	require.Equal(t, 3, got.Summary.Total)
}

func TestStoreSummariesBounded(t *testing.T) {
	s := NewStore(2)
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.AddSummary(model.CycleSummary{Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}
	list := s.Summaries(0)
	require.Len(t, list, 2)
	require.Equal(t, base.Add(2*time.Minute), list[0].Timestamp, "oldest entries evicted")
	require.Equal(t, base.Add(3*time.Minute), list[1].Timestamp)
}

func TestStoreClear(t *testing.T) {
	s := NewStore(10)
	s.SetLatest(Snapshot{Timestamp: time.Now().UTC()})
	s.AddSummary(model.CycleSummary{})
	s.Clear()
	_, ok := s.Latest()
	require.False(t, ok)
	require.Empty(t, s.Summaries(0))
}
