package threat

import (
	"log/slog"

	"github.com/myat555/WildfireNowcast/internal/geo"
	"github.com/myat555/WildfireNowcast/internal/model"
)

// NoAreaDistance marks an AreaThreat computed against an empty catalog.
// Distance-gated alert conditions treat it as infinitely far.
const NoAreaDistance = -1.0

// AssessAreas evaluates one hotspot against the protected-area catalog.
// Containment in an area's polygon counts as distance 0 and raises the
// level to CRITICAL outright. Outside the polygon, the distance to the
// area center is compared against the area's threat radius:
// HIGH- and CRITICAL-priority areas within 5 km escalate to CRITICAL,
// within the radius to HIGH, and any other area within its radius to
// MEDIUM. Low detection
// confidence (<30) steps the final level down one notch.
func AssessAreas(hotspot model.Hotspot, areas []model.ProtectedArea, logger *slog.Logger) model.AreaThreat {
	result := model.AreaThreat{
		HotspotID:     hotspot.ID,
		ThreatLevel:   model.ThreatLow,
		MinDistanceKm: NoAreaDistance,
	}

	for _, area := range areas {
		if len(area.Polygon) >= 3 {
			inside, err := geo.PointInPolygon(hotspot.Latitude, hotspot.Longitude, area.Polygon)
			if err != nil {
				if logger != nil {
					logger.Warn("polygon containment check failed", "area_id", area.ID, "err", err)
				}
			} else if inside {
				result.Affected = append(result.Affected, model.AffectedArea{
					AreaID:     area.ID,
					Name:       area.Name,
					Priority:   area.Priority,
					DistanceKm: 0,
					Contained:  true,
				})
				result.MinDistanceKm = 0
				result.ThreatLevel = model.ThreatCritical
				continue
			}
		}

		distance, err := geo.DistanceKm(hotspot.Latitude, hotspot.Longitude, area.Latitude, area.Longitude)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping area with bad coordinates", "area_id", area.ID, "err", err)
			}
			continue
		}
		if result.MinDistanceKm < 0 || distance < result.MinDistanceKm {
			result.MinDistanceKm = distance
		}

		threatRadius := area.ThreatRadius
		if threatRadius <= 0 {
			threatRadius = 10
		}
		if distance > threatRadius {
			continue
		}
		result.Affected = append(result.Affected, model.AffectedArea{
			AreaID:     area.ID,
			Name:       area.Name,
			Priority:   area.Priority,
			DistanceKm: distance,
		})
		elevated := area.Priority == model.PriorityHigh || area.Priority == model.PriorityCritical
		switch {
		case elevated && distance <= 5:
			result.ThreatLevel = model.ThreatCritical
		case elevated:
			if result.ThreatLevel != model.ThreatCritical {
				result.ThreatLevel = model.ThreatHigh
			}
		default:
			if result.ThreatLevel != model.ThreatCritical && result.ThreatLevel != model.ThreatHigh {
				result.ThreatLevel = model.ThreatMedium
			}
		}
	}

	if hotspot.Confidence < 30 {
		switch result.ThreatLevel {
		case model.ThreatCritical:
			result.ThreatLevel = model.ThreatHigh
		case model.ThreatHigh:
			result.ThreatLevel = model.ThreatMedium
		}
	}
	return result
}
