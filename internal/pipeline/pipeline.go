package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/myat555/WildfireNowcast/internal/assets"
	"github.com/myat555/WildfireNowcast/internal/config"
	"github.com/myat555/WildfireNowcast/internal/engine"
	"github.com/myat555/WildfireNowcast/internal/ingest"
	"github.com/myat555/WildfireNowcast/internal/model"
	"github.com/myat555/WildfireNowcast/internal/observability"
	"github.com/myat555/WildfireNowcast/internal/results"
	"github.com/myat555/WildfireNowcast/internal/storage"
	"github.com/myat555/WildfireNowcast/internal/threat"
)

// Pipeline runs one full processing cycle over a hotspot batch: score
// every hotspot against the asset catalog, rank the fires, compute
// evacuation zones, and feed each hotspot's area threat into the alert
// engine. Cycles are independent; only the engine carries state across
// them.
type Pipeline struct {
	logger   *slog.Logger
	clock    clockwork.Clock
	catalog  *assets.Catalog
	assessor *threat.Assessor
	ranker   *threat.Ranker
	zones    *threat.ZoneCalculator
	engine   *engine.Engine
	results  *results.Store
	store    storage.Store
	metrics  *observability.Metrics
	skips    *ingest.SkipTally

	maxDistanceKm float64
	bufferKm      float64
	criteria      model.RankCriteria
}

func New(cfg config.AssessmentConfig, catalog *assets.Catalog, eng *engine.Engine, resultsStore *results.Store, store storage.Store, metrics *observability.Metrics, skips *ingest.SkipTally, logger *slog.Logger, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	scorer := threat.NewScorer()
	return &Pipeline{
		logger:        logger,
		clock:         clock,
		catalog:       catalog,
		assessor:      threat.NewAssessor(scorer, logger),
		ranker:        threat.NewRanker(),
		zones:         threat.NewZoneCalculator(logger),
		engine:        eng,
		results:       resultsStore,
		store:         store,
		metrics:       metrics,
		skips:         skips,
		maxDistanceKm: cfg.MaxDistanceKm,
		bufferKm:      cfg.EvacuationBufferKm,
		criteria:      model.RankCriteria(cfg.RankCriteria),
	}
}

// RunCycle processes one batch of hotspots and returns the cycle
// summary. Individual bad records were already filtered at ingest; a
// cycle only fails as a whole when the context is cancelled.
func (p *Pipeline) RunCycle(ctx context.Context, hotspots []model.Hotspot) (model.CycleSummary, error) {
	start := p.clock.Now()
	if p.metrics != nil {
		p.metrics.CyclesRun.Inc()
		p.metrics.HotspotsProcessed.Add(float64(len(hotspots)))
	}

	skipped := p.skips.Drain()
	if p.metrics != nil && skipped > 0 {
		p.metrics.RecordsSkipped.Add(float64(skipped))
	}

	catalogAssets := p.catalog.Assets()
	areas := p.catalog.Areas()

	// Ranking and zoning are independent of the assessment, so the three
	// run concurrently over the same immutable batch.
	var (
		ranked []model.RankedFire
		zones  []model.EvacuationZone
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ranked = p.ranker.Rank(hotspots, p.criteria)
	}()
	go func() {
		defer wg.Done()
		zones = p.zones.Compute(hotspots, catalogAssets, p.bufferKm)
	}()
	assessments, summary := p.assessor.Assess(hotspots, catalogAssets, p.maxDistanceKm)
	wg.Wait()

	if p.metrics != nil {
		p.metrics.Assessments.Add(float64(len(assessments)))
	}

	affectedPopulation := 0
	for _, z := range zones {
		affectedPopulation += z.TotalPopulation
	}

	emitted := 0
	suppressed := 0
	areaThreats := make([]model.AreaThreat, 0, len(hotspots))
	for _, h := range hotspots {
		if err := ctx.Err(); err != nil {
			return model.CycleSummary{}, err
		}
		areaThreat := threat.AssessAreas(h, areas, p.logger)
		areaThreats = append(areaThreats, areaThreat)
		alert, ok := p.engine.Decide(ctx, h, areaThreat)
		if !ok {
			continue
		}
		if alert.Suppressed {
			suppressed++
		} else {
			emitted++
		}
	}

	cycle := model.CycleSummary{
		Timestamp:          start.UTC(),
		TotalHotspots:      len(hotspots),
		TotalAssets:        len(catalogAssets),
		Assessments:        summary,
		EvacuationZones:    len(zones),
		AffectedPopulation: affectedPopulation,
		AlertsEmitted:      emitted,
		AlertsSuppressed:   suppressed,
		SkippedRecords:     skipped,
	}

	if p.results != nil {
		p.results.SetLatest(results.Snapshot{
			Timestamp:   cycle.Timestamp,
			Assessments: assessments,
			Summary:     summary,
			Ranked:      ranked,
			Zones:       zones,
			AreaThreats: areaThreats,
		})
		p.results.AddSummary(cycle)
	}
	if p.store != nil {
		if err := p.store.SaveCycleSummary(ctx, cycle); err != nil && p.logger != nil {
			p.logger.Warn("cycle summary persistence failed", "err", err)
		}
	}
	if p.metrics != nil {
		p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())
	}
	if p.logger != nil {
		p.logger.Info("cycle complete",
			"hotspots", cycle.TotalHotspots,
			"assessments", summary.Total,
			"zones", cycle.EvacuationZones,
			"alerts_emitted", emitted,
			"alerts_suppressed", suppressed,
			"records_skipped", skipped,
		)
	}
	return cycle, nil
}
