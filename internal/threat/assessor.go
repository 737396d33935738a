package threat

import (
	"log/slog"
	"sort"

	"github.com/myat555/WildfireNowcast/internal/geo"
	"github.com/myat555/WildfireNowcast/internal/model"
)

// Assessor runs the hotspot x asset cross product within a distance
// cutoff. Stateless apart from its logger; a run's output depends only on
// its inputs.
type Assessor struct {
	scorer *Scorer
	logger *slog.Logger
}

func NewAssessor(scorer *Scorer, logger *slog.Logger) *Assessor {
	return &Assessor{scorer: scorer, logger: logger}
}

// Assess scores every pair within maxDistanceKm. Pairs beyond the cutoff
// are skipped before scoring. Records with malformed coordinates are
// logged and skipped; the run never aborts because of one bad record.
// Results are ordered by score descending, ties broken by distance
// ascending then asset id ascending.
func (a *Assessor) Assess(hotspots []model.Hotspot, assets []model.Asset, maxDistanceKm float64) ([]model.ThreatAssessment, model.AssessmentSummary) {
	assessments := make([]model.ThreatAssessment, 0, len(hotspots))

	for _, hotspot := range hotspots {
		for _, asset := range assets {
			distance, err := geo.DistanceKm(hotspot.Latitude, hotspot.Longitude, asset.Latitude, asset.Longitude)
			if err != nil {
				if a.logger != nil {
					a.logger.Warn("skipping pair with bad coordinates",
						"hotspot_id", hotspot.ID,
						"asset_id", asset.ID,
						"err", err,
					)
				}
				continue
			}
			if distance > maxDistanceKm {
				continue
			}
			assessments = append(assessments, a.scorer.ScoreAtDistance(hotspot, asset, distance))
		}
	}

	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].ThreatScore != assessments[j].ThreatScore {
			return assessments[i].ThreatScore > assessments[j].ThreatScore
		}
		if assessments[i].DistanceKm != assessments[j].DistanceKm {
			return assessments[i].DistanceKm < assessments[j].DistanceKm
		}
		return assessments[i].AssetID < assessments[j].AssetID
	})

	return assessments, summarize(assessments)
}

func summarize(assessments []model.ThreatAssessment) model.AssessmentSummary {
	summary := model.AssessmentSummary{Total: len(assessments)}
	for _, t := range assessments {
		switch t.ThreatLevel {
		case model.ThreatCritical:
			summary.Critical++
		case model.ThreatHigh:
			summary.High++
		case model.ThreatMedium:
			summary.Medium++
		default:
			summary.Low++
		}
		if t.EvacuationNeeded {
			summary.EvacuationNeeded++
		}
	}
	return summary
}
