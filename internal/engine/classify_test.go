package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/myat555/WildfireNowcast/internal/model"
)

func TestClassifyCascade(t *testing.T) {
	tests := []struct {
		name string
		h    model.Hotspot
		a    model.AreaThreat
		want model.AlertLevel
	}{
		{
			name: "high confidence close to area",
			h:    model.Hotspot{Confidence: 90},
			a:    model.AreaThreat{ThreatLevel: model.ThreatHigh, MinDistanceKm: 3},
			want: model.AlertCritical,
		},
		{
			name: "critical threat level alone",
			h:    model.Hotspot{Confidence: 50},
			a:    model.AreaThreat{ThreatLevel: model.ThreatCritical, MinDistanceKm: 40},
			want: model.AlertCritical,
		},
		{
			name: "critical priority area nearby",
			h:    model.Hotspot{Confidence: 40},
			a: model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: 4, Affected: []model.AffectedArea{
				{AreaID: "a", Priority: model.PriorityCritical, DistanceKm: 4},
			}},
			want: model.AlertCritical,
		},
		{
			name: "very high confidence within ten km",
			h:    model.Hotspot{Confidence: 92},
			a:    model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: 8},
			want: model.AlertCritical,
		},
		{
			name: "good confidence within fifteen km",
			h:    model.Hotspot{Confidence: 72},
			a:    model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: 14},
			want: model.AlertHigh,
		},
		{
			name: "high threat level alone",
			h:    model.Hotspot{Confidence: 20},
			a:    model.AreaThreat{ThreatLevel: model.ThreatHigh, MinDistanceKm: 40},
			want: model.AlertHigh,
		},
		{
			name: "high priority area within fifteen km",
			h:    model.Hotspot{Confidence: 20},
			a: model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: 14, Affected: []model.AffectedArea{
				{AreaID: "a", Priority: model.PriorityHigh, DistanceKm: 14},
			}},
			want: model.AlertHigh,
		},
		{
			name: "moderate confidence within thirty km",
			h:    model.Hotspot{Confidence: 65},
			a:    model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: 28},
			want: model.AlertMedium,
		},
		{
			name: "any affected area",
			h:    model.Hotspot{Confidence: 10},
			a: model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: 45, Affected: []model.AffectedArea{
				{AreaID: "a", Priority: model.PriorityMedium, DistanceKm: 45},
			}},
			want: model.AlertMedium,
		},
		{
			name: "low everything",
			h:    model.Hotspot{Confidence: 40},
			a:    model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: 45},
			want: model.AlertNone,
		},
		{
			name: "high confidence but no areas anywhere",
			h:    model.Hotspot{Confidence: 95},
			a:    model.AreaThreat{ThreatLevel: model.ThreatLow, MinDistanceKm: -1},
			want: model.AlertNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.h, tt.a))
		})
	}
}

func TestWithinKmNegativeDistance(t *testing.T) {
	require.False(t, withinKm(-1, 1000), "no-area sentinel is infinitely far")
	require.True(t, withinKm(0, 5))
	require.True(t, withinKm(5, 5))
	require.False(t, withinKm(5.01, 5))
}
