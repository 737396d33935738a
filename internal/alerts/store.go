package alerts

import (
	"sync"
	"time"

	"github.com/myat555/WildfireNowcast/internal/model"
)

// Stats counts recent alerts by level and delivery outcome.
type Stats struct {
	Total      int `json:"total_alerts"`
	Critical   int `json:"critical_alerts"`
	High       int `json:"high_alerts"`
	Medium     int `json:"medium_alerts"`
	Sent       int `json:"successful_notifications"`
	Failed     int `json:"failed_notifications"`
	Suppressed int `json:"suppressed_alerts"`
}

// Store is a bounded in-memory buffer of alert records, oldest first.
// Suppressed records are kept alongside delivered ones for audit.
type Store struct {
	mu    sync.RWMutex
	buf   []model.Alert
	limit int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 1000
	}
	return &Store{limit: limit}
}

func (s *Store) Add(alert model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) < s.limit {
		s.buf = append(s.buf, alert)
		return
	}
	copy(s.buf, s.buf[1:])
	s.buf[len(s.buf)-1] = alert
}

// List returns up to limit of the most recent alerts, oldest first.
func (s *Store) List(limit int) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.buf) {
		limit = len(s.buf)
	}
	out := make([]model.Alert, 0, limit)
	for i := len(s.buf) - limit; i < len(s.buf); i++ {
		out = append(out, s.buf[i])
	}
	return out
}

// Since returns alerts created at or after ts, optionally filtered by level.
func (s *Store) Since(ts time.Time, level model.AlertLevel) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, 0)
	for _, a := range s.buf {
		if a.CreatedAt.Before(ts) {
			continue
		}
		if level != "" && a.Level != level {
			continue
		}
		out = append(out, a)
	}
	return out
}

// StatsSince aggregates per-level and per-status counts over alerts
// created at or after ts.
func (s *Store) StatsSince(ts time.Time) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats Stats
	for _, a := range s.buf {
		if a.CreatedAt.Before(ts) {
			continue
		}
		stats.Total++
		switch a.Level {
		case model.AlertCritical:
			stats.Critical++
		case model.AlertHigh:
			stats.High++
		case model.AlertMedium:
			stats.Medium++
		}
		switch a.Status {
		case model.StatusSent:
			stats.Sent++
		case model.StatusFailed:
			stats.Failed++
		case model.StatusSuppressed:
			stats.Suppressed++
		}
	}
	return stats
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
}
