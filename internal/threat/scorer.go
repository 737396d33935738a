package threat

import (
	"github.com/myat555/WildfireNowcast/internal/geo"
	"github.com/myat555/WildfireNowcast/internal/model"
)

// minDistanceFloorKm floors the inverse-distance term so a hotspot sitting
// on top of an asset does not blow the score up to infinity.
const minDistanceFloorKm = 0.1

// Scorer computes per hotspot/asset threat assessments. Stateless and safe
// for concurrent use.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the distance between hotspot and asset and assesses the
// threat. Fails with geo.ErrInvalidCoordinate on malformed input.
func (s *Scorer) Score(hotspot model.Hotspot, asset model.Asset) (model.ThreatAssessment, error) {
	distance, err := geo.DistanceKm(hotspot.Latitude, hotspot.Longitude, asset.Latitude, asset.Longitude)
	if err != nil {
		return model.ThreatAssessment{}, err
	}
	return s.ScoreAtDistance(hotspot, asset, distance), nil
}

// ScoreAtDistance assesses a pair whose distance is already known, so
// callers that pre-filter by distance do not compute it twice.
//
// threatScore = (100 / max(d, 0.1)) * assetMultiplier * fireMultiplier * (1 + population/1000)
func (s *Scorer) ScoreAtDistance(hotspot model.Hotspot, asset model.Asset, distanceKm float64) model.ThreatAssessment {
	params := paramsFor(asset.Type)
	bucket := BucketForConfidence(hotspot.Confidence)

	floored := distanceKm
	if floored < minDistanceFloorKm {
		floored = minDistanceFloorKm
	}
	baseThreat := 100.0 / floored
	populationFactor := 1.0 + float64(asset.Population)/1000.0
	score := baseThreat * params.Multiplier * bucket.Multiplier * populationFactor

	return model.ThreatAssessment{
		HotspotID:          hotspot.ID,
		AssetID:            asset.ID,
		AssetName:          asset.Name,
		AssetType:          asset.Type,
		DistanceKm:         distanceKm,
		ThreatScore:        score,
		ThreatLevel:        levelForScore(score),
		EvacuationNeeded:   distanceKm <= params.EvacuationRadiusKm,
		EvacuationRadiusKm: params.EvacuationRadiusKm,
		Population:         asset.Population,
	}
}
