package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/myat555/WildfireNowcast/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:nowcast.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// modernc/sqlite does not support concurrent writers.
	db.SetMaxOpenConns(1)
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			alert_id TEXT PRIMARY KEY,
			alert_level TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			created_at TEXT NOT NULL,
			hotspot_id TEXT NOT NULL,
			confidence INTEGER NOT NULL,
			threat_level TEXT NOT NULL,
			min_distance_km REAL NOT NULL,
			affected_areas_json TEXT NOT NULL,
			suppressed INTEGER NOT NULL,
			status TEXT NOT NULL,
			channels_json TEXT,
			message TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_level_created ON alerts(alert_level, created_at)`,
		`CREATE TABLE IF NOT EXISTS cycle_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			total_hotspots INTEGER NOT NULL,
			total_assets INTEGER NOT NULL,
			evacuation_zones INTEGER NOT NULL,
			affected_population INTEGER NOT NULL,
			alerts_emitted INTEGER NOT NULL,
			alerts_suppressed INTEGER NOT NULL,
			skipped_records INTEGER NOT NULL,
			summary_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_summaries_ts ON cycle_summaries(ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (alert_id, alert_level, latitude, longitude, created_at, hotspot_id, confidence,
			threat_level, min_distance_km, affected_areas_json, suppressed, status, channels_json, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (alert_id) DO UPDATE SET status = excluded.status, channels_json = excluded.channels_json`,
		alert.ID,
		alert.Level,
		alert.Latitude,
		alert.Longitude,
		alert.CreatedAt.UTC().Format(time.RFC3339Nano),
		alert.HotspotID,
		alert.Confidence,
		alert.ThreatLevel,
		alert.MinDistanceKm,
		encodeJSON(alert.AffectedAreaIDs),
		alert.Suppressed,
		alert.Status,
		encodeJSON(alert.Channels),
		alert.Message,
	)
	return err
}

func (s *sqliteStore) SaveCycleSummary(ctx context.Context, summary model.CycleSummary) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycle_summaries (ts, total_hotspots, total_assets, evacuation_zones,
			affected_population, alerts_emitted, alerts_suppressed, skipped_records, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.Timestamp.UTC().Format(time.RFC3339Nano),
		summary.TotalHotspots,
		summary.TotalAssets,
		summary.EvacuationZones,
		summary.AffectedPopulation,
		summary.AlertsEmitted,
		summary.AlertsSuppressed,
		summary.SkippedRecords,
		encodeJSON(summary),
	)
	return err
}

func (s *sqliteStore) RecentAlerts(ctx context.Context, since time.Time, level model.AlertLevel) ([]model.Alert, error) {
	if s.db == nil {
		return nil, nil
	}
	query := `SELECT alert_id, alert_level, latitude, longitude, created_at, hotspot_id, confidence,
			threat_level, min_distance_km, affected_areas_json, suppressed, status, channels_json, message
		FROM alerts WHERE created_at >= ?`
	args := []any{since.UTC().Format(time.RFC3339Nano)}
	if level != "" {
		query += ` AND alert_level = ?`
		args = append(args, level)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Timestamps live as RFC 3339 text in sqlite, so rows are scanned by
	// hand instead of through scanAlerts.
	out := make([]model.Alert, 0)
	for rows.Next() {
		var (
			a            model.Alert
			createdAt    string
			areasJSON    string
			channelsJSON string
		)
		if err := rows.Scan(
			&a.ID, &a.Level, &a.Latitude, &a.Longitude, &createdAt,
			&a.HotspotID, &a.Confidence, &a.ThreatLevel, &a.MinDistanceKm,
			&areasJSON, &a.Suppressed, &a.Status, &channelsJSON, &a.Message,
		); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		_ = json.Unmarshal([]byte(areasJSON), &a.AffectedAreaIDs)
		_ = json.Unmarshal([]byte(channelsJSON), &a.Channels)
		out = append(out, a)
	}
	return out, rows.Err()
}
