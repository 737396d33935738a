package threat

import (
	"sort"

	"github.com/myat555/WildfireNowcast/internal/model"
)

// ScoreFunc is a deterministic severity formula over a single hotspot.
// Custom functions can be registered to plug in real population-density
// data for the proximity criterion.
type ScoreFunc func(model.Hotspot) float64

// Ranker orders hotspots by a chosen severity criterion. Unknown criteria
// fall back to the default formula instead of erroring.
type Ranker struct {
	formulas map[model.RankCriteria]ScoreFunc
	fallback ScoreFunc
}

func NewRanker() *Ranker {
	return &Ranker{
		formulas: map[model.RankCriteria]ScoreFunc{
			model.RankPopulationProximity: populationProximityScore,
			model.RankFireIntensity:       fireIntensityScore,
			model.RankSpreadPotential:     spreadPotentialScore,
		},
		fallback: defaultScore,
	}
}

// Register installs or replaces the formula for a criterion.
func (r *Ranker) Register(criteria model.RankCriteria, fn ScoreFunc) {
	if fn != nil {
		r.formulas[criteria] = fn
	}
}

// Rank scores every hotspot with the criterion's formula and orders the
// result descending. Ties keep the original input order. Rank values run
// 1..N with no gaps or duplicates.
func (r *Ranker) Rank(hotspots []model.Hotspot, criteria model.RankCriteria) []model.RankedFire {
	fn, ok := r.formulas[criteria]
	if !ok {
		fn = r.fallback
	}

	ranked := make([]model.RankedFire, 0, len(hotspots))
	for _, h := range hotspots {
		score := fn(h)
		ranked = append(ranked, model.RankedFire{
			HotspotID:   h.ID,
			Latitude:    h.Latitude,
			Longitude:   h.Longitude,
			Confidence:  h.Confidence,
			Brightness:  h.Brightness,
			ThreatScore: score,
			ThreatLevel: levelForRankScore(score),
			Criteria:    criteria,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ThreatScore > ranked[j].ThreatScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// populationProximityScore is a deterministic proxy until real population
// density is plugged in: confidence stands in for density so repeated
// runs produce the same ordering.
func populationProximityScore(h model.Hotspot) float64 {
	bonus := float64(h.Confidence) / 100.0 * 50.0
	return h.Brightness*0.5 + bonus
}

func fireIntensityScore(h model.Hotspot) float64 {
	bucket := BucketForConfidence(h.Confidence)
	bonus := 50.0
	if bucket.Multiplier >= bucketHigh.Multiplier {
		bonus = 100.0
	}
	return h.Brightness*0.8 + bonus
}

func spreadPotentialScore(h model.Hotspot) float64 {
	bucket := BucketForConfidence(h.Confidence)
	return h.Brightness * bucket.SpreadRate * 100
}

func defaultScore(h model.Hotspot) float64 {
	return h.Brightness * 0.6
}
