package threat

import "github.com/myat555/WildfireNowcast/internal/model"

// assetParams carries the per-type scoring multiplier and the default
// evacuation radius used for the evacuation-needed decision.
type assetParams struct {
	Multiplier         float64
	EvacuationRadiusKm float64
}

var assetTable = map[model.AssetType]assetParams{
	model.AssetResidential:    {1.0, 5.0},
	model.AssetCommercial:     {0.8, 3.0},
	model.AssetIndustrial:     {1.2, 8.0},
	model.AssetCriticalInfra:  {2.0, 10.0},
	model.AssetHealthcare:     {1.5, 7.0},
	model.AssetSchool:         {1.3, 6.0},
	model.AssetAirport:        {1.8, 12.0},
	model.AssetPowerPlant:     {2.5, 15.0},
	model.AssetWildlifeRefuge: {0.5, 2.0},
	model.AssetForest:         {0.3, 1.0},
}

// paramsFor falls back to residential for unknown asset types.
func paramsFor(t model.AssetType) assetParams {
	if p, ok := assetTable[t]; ok {
		return p
	}
	return assetTable[model.AssetResidential]
}

// IntensityBucket classifies a detection confidence value into one of four
// fire intensity levels. Each bucket carries a threat multiplier and a
// spread rate used by the spread_potential ranking formula.
type IntensityBucket struct {
	Name       string
	Multiplier float64
	SpreadRate float64
}

var (
	bucketLow      = IntensityBucket{"low", 0.5, 0.1}
	bucketModerate = IntensityBucket{"moderate", 1.0, 0.3}
	bucketHigh     = IntensityBucket{"high", 1.5, 0.6}
	bucketExtreme  = IntensityBucket{"extreme", 2.0, 1.0}
)

// BucketForConfidence maps a 0-100 detection confidence to an intensity
// bucket. Out-of-range values fall back to moderate.
func BucketForConfidence(confidence int) IntensityBucket {
	switch {
	case confidence < 0 || confidence > 100:
		return bucketModerate
	case confidence < 30:
		return bucketLow
	case confidence < 70:
		return bucketModerate
	case confidence < 90:
		return bucketHigh
	default:
		return bucketExtreme
	}
}

// levelForScore maps an assessment score to a threat level. Boundary
// values fall into the lower bucket: a score of exactly 50 is HIGH.
func levelForScore(score float64) model.ThreatLevel {
	switch {
	case score > 50:
		return model.ThreatCritical
	case score > 25:
		return model.ThreatHigh
	case score > 10:
		return model.ThreatMedium
	default:
		return model.ThreatLow
	}
}

// levelForRankScore grades FireRanker scores, which live on a different
// scale than assessment scores.
func levelForRankScore(score float64) model.ThreatLevel {
	switch {
	case score > 80:
		return model.ThreatCritical
	case score > 60:
		return model.ThreatHigh
	case score > 40:
		return model.ThreatMedium
	default:
		return model.ThreatLow
	}
}
