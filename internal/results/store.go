package results

import (
	"sync"
	"time"

	"github.com/myat555/WildfireNowcast/internal/model"
)

// Snapshot is the complete output of one processing cycle. The API serves
// the latest snapshot; older ones are discarded since every cycle
// recomputes from scratch.
type Snapshot struct {
	Timestamp   time.Time                `json:"timestamp"`
	Assessments []model.ThreatAssessment `json:"assessments"`
	Summary     model.AssessmentSummary  `json:"summary"`
	Ranked      []model.RankedFire       `json:"ranked_fires"`
	Zones       []model.EvacuationZone   `json:"evacuation_zones"`
	AreaThreats []model.AreaThreat       `json:"area_threats"`
}

// Store holds the latest snapshot plus a bounded history of cycle
// summaries, oldest first.
type Store struct {
	mu        sync.RWMutex
	latest    Snapshot
	hasLatest bool
	summaries []model.CycleSummary
	limit     int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 500
	}
	return &Store{limit: limit}
}

func (s *Store) SetLatest(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
	s.hasLatest = true
}

func (s *Store) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLatest
}

func (s *Store) AddSummary(summary model.CycleSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.summaries) < s.limit {
		s.summaries = append(s.summaries, summary)
		return
	}
	copy(s.summaries, s.summaries[1:])
	s.summaries[len(s.summaries)-1] = summary
}

// Summaries returns up to limit of the most recent cycle summaries,
// oldest first.
func (s *Store) Summaries(limit int) []model.CycleSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.summaries) {
		limit = len(s.summaries)
	}
	out := make([]model.CycleSummary, 0, limit)
	for i := len(s.summaries) - limit; i < len(s.summaries); i++ {
		out = append(out, s.summaries[i])
	}
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = Snapshot{}
	s.hasLatest = false
	s.summaries = nil
}
