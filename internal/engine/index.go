package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/myat555/WildfireNowcast/internal/geo"
	"github.com/myat555/WildfireNowcast/internal/model"
)

// SuppressionIndex answers whether a candidate alert duplicates a recently
// emitted one of the same level near the same location. Implementations
// that can fail (e.g. database-backed) return an error; the engine then
// fails open and emits.
type SuppressionIndex interface {
	CheckAndRecord(ctx context.Context, level model.AlertLevel, lat, lon float64) (bool, error)
}

type cellKey struct {
	level   model.AlertLevel
	latCell int
	lonCell int
}

type cellEntry struct {
	lat float64
	lon float64
	at  time.Time
}

// GridIndex buckets recent alerts by level and rounded lat/lon cell so a
// suppression lookup touches only the candidate's neighborhood instead of
// scanning every recent alert. The single mutex serializes the
// check-then-record sequence, so two concurrent evaluations of nearby
// hotspots cannot both pass the check and double-fire.
type GridIndex struct {
	mu          sync.Mutex
	cells       map[cellKey][]cellEntry
	cellSizeDeg float64
	radiusKm    float64
	window      time.Duration
	clock       clockwork.Clock
}

func NewGridIndex(cellSizeDeg, radiusKm float64, window time.Duration, clock clockwork.Clock) *GridIndex {
	if cellSizeDeg <= 0 {
		cellSizeDeg = 0.02
	}
	if radiusKm <= 0 {
		radiusKm = 2.0
	}
	if window <= 0 {
		window = 30 * time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &GridIndex{
		cells:       make(map[cellKey][]cellEntry),
		cellSizeDeg: cellSizeDeg,
		radiusKm:    radiusKm,
		window:      window,
		clock:       clock,
	}
}

// CheckAndRecord reports true when a same-level alert within radiusKm was
// recorded inside the suppression window. A candidate that is not
// suppressed is recorded atomically in the same critical section.
func (g *GridIndex) CheckAndRecord(_ context.Context, level model.AlertLevel, lat, lon float64) (bool, error) {
	now := g.clock.Now().UTC()
	cutoff := now.Add(-g.window)

	g.mu.Lock()
	defer g.mu.Unlock()

	latCell := int(math.Floor(lat / g.cellSizeDeg))
	lonCell := int(math.Floor(lon / g.cellSizeDeg))
	for _, key := range g.neighborhood(level, lat, latCell, lonCell) {
		entries := g.evictLocked(key, cutoff)
		for _, e := range entries {
			d, err := geo.DistanceKm(lat, lon, e.lat, e.lon)
			if err != nil {
				continue
			}
			if d <= g.radiusKm {
				return true, nil
			}
		}
	}

	key := cellKey{level: level, latCell: latCell, lonCell: lonCell}
	g.cells[key] = append(g.cells[key], cellEntry{lat: lat, lon: lon, at: now})
	return false, nil
}

// neighborhood lists the cells a lookup must scan. Longitude cells shrink
// toward the poles, so the east-west reach widens with latitude.
func (g *GridIndex) neighborhood(level model.AlertLevel, lat float64, latCell, lonCell int) []cellKey {
	latReach := int(math.Ceil(g.radiusKm/(111.0*g.cellSizeDeg))) + 1

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.2 {
		cosLat = 0.2
	}
	lonReach := int(math.Ceil(g.radiusKm/(111.0*g.cellSizeDeg*cosLat))) + 1

	keys := make([]cellKey, 0, (2*latReach+1)*(2*lonReach+1))
	for dlat := -latReach; dlat <= latReach; dlat++ {
		for dlon := -lonReach; dlon <= lonReach; dlon++ {
			keys = append(keys, cellKey{level: level, latCell: latCell + dlat, lonCell: lonCell + dlon})
		}
	}
	return keys
}

// evictLocked drops expired entries for a cell and returns the survivors.
// Caller must hold g.mu.
func (g *GridIndex) evictLocked(key cellKey, cutoff time.Time) []cellEntry {
	entries, ok := g.cells[key]
	if !ok {
		return nil
	}
	kept := entries[:0]
	for _, e := range entries {
		if !e.at.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(g.cells, key)
		return nil
	}
	g.cells[key] = kept
	return kept
}
