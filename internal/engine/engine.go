package engine

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/myat555/WildfireNowcast/internal/alerts"
	"github.com/myat555/WildfireNowcast/internal/model"
	"github.com/myat555/WildfireNowcast/internal/notify"
	"github.com/myat555/WildfireNowcast/internal/observability"
	"github.com/myat555/WildfireNowcast/internal/storage"
)

// Engine turns a hotspot's area threat into an alert decision: classify,
// suppress duplicates, notify, record. It is the only component with
// shared mutable state (the suppression index); everything upstream is
// pure per cycle.
type Engine struct {
	logger   *slog.Logger
	clock    clockwork.Clock
	index    SuppressionIndex
	notifier notify.Notifier
	alerts   *alerts.Store
	store    storage.Store
	metrics  *observability.Metrics
}

func NewEngine(index SuppressionIndex, notifier notify.Notifier, alertsStore *alerts.Store, store storage.Store, metrics *observability.Metrics, logger *slog.Logger, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		logger:   logger,
		clock:    clock,
		index:    index,
		notifier: notifier,
		alerts:   alertsStore,
		store:    store,
		metrics:  metrics,
	}
}

// Decide classifies the hotspot and, unless the alert duplicates a recent
// one, emits it through the notifier. The returned bool is false when the
// classification is NONE and no record was produced. Suppressed candidates
// still yield a record tagged SUPPRESSED for audit.
func (e *Engine) Decide(ctx context.Context, hotspot model.Hotspot, area model.AreaThreat) (model.Alert, bool) {
	level := Classify(hotspot, area)
	if level == model.AlertNone {
		return model.Alert{}, false
	}

	alert := e.newAlert(hotspot, area, level)

	suppressed, err := e.index.CheckAndRecord(ctx, level, hotspot.Latitude, hotspot.Longitude)
	if err != nil {
		// Fail open: a broken suppression store must never block alerting.
		suppressed = false
		if e.logger != nil {
			e.logger.Warn("suppression check failed, emitting anyway",
				"alert_id", alert.ID,
				"err", err,
			)
		}
	}

	if suppressed {
		alert.Suppressed = true
		alert.Status = model.StatusSuppressed
		e.record(ctx, alert)
		if e.metrics != nil {
			e.metrics.AlertsSuppressed.WithLabelValues(string(level)).Inc()
		}
		if e.logger != nil {
			e.logger.Info("alert suppressed",
				"alert_id", alert.ID,
				"level", level,
				"lat", alert.Latitude,
				"lon", alert.Longitude,
			)
		}
		return alert, true
	}

	channels := e.notifier.Send(ctx, alert)
	alert.Channels = channels
	alert.Status = model.StatusFailed
	for _, ok := range channels {
		if ok {
			alert.Status = model.StatusSent
			break
		}
	}

	e.record(ctx, alert)
	if e.metrics != nil {
		e.metrics.AlertsEmitted.WithLabelValues(string(level)).Inc()
	}
	if e.logger != nil {
		e.logger.Warn("alert emitted",
			"alert_id", alert.ID,
			"level", level,
			"status", alert.Status,
			"affected_areas", len(alert.AffectedAreaIDs),
		)
	}
	return alert, true
}

func (e *Engine) record(ctx context.Context, alert model.Alert) {
	if e.alerts != nil {
		e.alerts.Add(alert)
	}
	if e.store != nil {
		if err := e.store.SaveAlert(ctx, alert); err != nil && e.logger != nil {
			e.logger.Warn("alert persistence failed", "alert_id", alert.ID, "err", err)
		}
	}
}

func (e *Engine) newAlert(hotspot model.Hotspot, area model.AreaThreat, level model.AlertLevel) model.Alert {
	now := e.clock.Now().UTC()
	areaIDs := make([]string, 0, len(area.Affected))
	for _, a := range area.Affected {
		areaIDs = append(areaIDs, a.AreaID)
	}
	return model.Alert{
		ID:              alertID(now, hotspot.Latitude, hotspot.Longitude),
		Level:           level,
		Latitude:        hotspot.Latitude,
		Longitude:       hotspot.Longitude,
		CreatedAt:       now,
		HotspotID:       hotspot.ID,
		Confidence:      hotspot.Confidence,
		Satellite:       hotspot.Satellite,
		ThreatLevel:     area.ThreatLevel,
		MinDistanceKm:   area.MinDistanceKm,
		AffectedAreaIDs: areaIDs,
		Status:          model.StatusPending,
		Message:         alertMessage(hotspot, area, level),
	}
}
