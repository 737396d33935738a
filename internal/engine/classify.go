package engine

import (
	"github.com/myat555/WildfireNowcast/internal/model"
)

// Classification thresholds. Distances are kilometers against the closest
// protected area; confidence is the 0-100 detection confidence.
const (
	criticalConfidence = 85
	criticalDistanceKm = 5
	highConfidence     = 70
	highDistanceKm     = 15
	mediumConfidence   = 60
	mediumDistanceKm   = 30
)

// Classify runs the alert level cascade, first match wins. The area threat
// supplies the assessed threat level, the minimum distance to any
// protected area, and the affected area set.
func Classify(hotspot model.Hotspot, area model.AreaThreat) model.AlertLevel {
	confidence := hotspot.Confidence
	minDistance := area.MinDistanceKm

	switch {
	case confidence >= criticalConfidence && withinKm(minDistance, criticalDistanceKm),
		area.ThreatLevel == model.ThreatCritical,
		anyAreaWithin(area.Affected, criticalDistanceKm, model.PriorityCritical),
		confidence >= 90 && withinKm(minDistance, 10):
		return model.AlertCritical

	case confidence >= highConfidence && withinKm(minDistance, highDistanceKm),
		area.ThreatLevel == model.ThreatHigh,
		anyAreaWithin(area.Affected, highDistanceKm, model.PriorityCritical, model.PriorityHigh),
		confidence >= 80 && withinKm(minDistance, 20):
		return model.AlertHigh

	case confidence >= mediumConfidence && withinKm(minDistance, mediumDistanceKm),
		area.ThreatLevel == model.ThreatMedium,
		len(area.Affected) > 0:
		return model.AlertMedium
	}
	return model.AlertNone
}

// withinKm treats the no-area sentinel (negative distance) as infinitely far.
func withinKm(distance, limit float64) bool {
	return distance >= 0 && distance <= limit
}

func anyAreaWithin(areas []model.AffectedArea, limitKm float64, priorities ...model.AreaPriority) bool {
	for _, a := range areas {
		if a.DistanceKm > limitKm {
			continue
		}
		for _, p := range priorities {
			if a.Priority == p {
				return true
			}
		}
	}
	return false
}
