package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the nowcast engine.
type Metrics struct {
	CyclesRun         prometheus.Counter
	CycleDuration     prometheus.Histogram
	HotspotsProcessed prometheus.Counter
	RecordsSkipped    prometheus.Counter
	Assessments       prometheus.Counter
	AlertsEmitted     *prometheus.CounterVec // label: level
	AlertsSuppressed  *prometheus.CounterVec // label: level
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesRun,
		m.CycleDuration,
		m.HotspotsProcessed,
		m.RecordsSkipped,
		m.Assessments,
		m.AlertsEmitted,
		m.AlertsSuppressed,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nowcast",
			Name:      "cycles_total",
			Help:      "Total processing cycles executed.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nowcast",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete assess-rank-zone-alert cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		HotspotsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nowcast",
			Name:      "hotspots_processed_total",
			Help:      "Total hotspots consumed by processing cycles.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nowcast",
			Name:      "records_skipped_total",
			Help:      "Total malformed records skipped.",
		}),
		Assessments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nowcast",
			Name:      "assessments_total",
			Help:      "Total hotspot/asset threat assessments computed.",
		}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nowcast",
			Name:      "alerts_emitted_total",
			Help:      "Alerts handed to the notifier, by level.",
		}, []string{"level"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nowcast",
			Name:      "alerts_suppressed_total",
			Help:      "Alerts withheld as duplicates, by level.",
		}, []string{"level"}),
	}
}
