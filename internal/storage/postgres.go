package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/myat555/WildfireNowcast/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/nowcast?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			alert_id TEXT PRIMARY KEY,
			alert_level TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			hotspot_id TEXT NOT NULL,
			confidence INTEGER NOT NULL,
			threat_level TEXT NOT NULL,
			min_distance_km DOUBLE PRECISION NOT NULL,
			affected_areas_json JSONB NOT NULL,
			suppressed BOOLEAN NOT NULL,
			status TEXT NOT NULL,
			channels_json JSONB,
			message TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_level_created ON alerts(alert_level, created_at)`,
		`CREATE TABLE IF NOT EXISTS cycle_summaries (
			id BIGSERIAL PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			total_hotspots INTEGER NOT NULL,
			total_assets INTEGER NOT NULL,
			evacuation_zones INTEGER NOT NULL,
			affected_population INTEGER NOT NULL,
			alerts_emitted INTEGER NOT NULL,
			alerts_suppressed INTEGER NOT NULL,
			skipped_records INTEGER NOT NULL,
			summary_json JSONB NOT NULL
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

func (s *postgresStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (alert_id, alert_level, latitude, longitude, created_at, hotspot_id, confidence,
			threat_level, min_distance_km, affected_areas_json, suppressed, status, channels_json, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (alert_id) DO UPDATE SET status = EXCLUDED.status, channels_json = EXCLUDED.channels_json`,
		alert.ID,
		alert.Level,
		alert.Latitude,
		alert.Longitude,
		alert.CreatedAt.UTC(),
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

func (s *postgresStore) SaveCycleSummary(ctx context.Context, summary model.CycleSummary) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycle_summaries (ts, total_hotspots, total_assets, evacuation_zones,
			affected_population, alerts_emitted, alerts_suppressed, skipped_records, summary_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		summary.Timestamp.UTC(),
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

func (s *postgresStore) RecentAlerts(ctx context.Context, since time.Time, level model.AlertLevel) ([]model.Alert, error) {
	if s.db == nil {
		return nil, nil
	}
	query := `SELECT alert_id, alert_level, latitude, longitude, created_at, hotspot_id, confidence,
			threat_level, min_distance_km, affected_areas_json, suppressed, status, channels_json, message
		FROM alerts WHERE created_at >= $1`
	args := []any{since.UTC()}
	if level != "" {
		query += ` AND alert_level = $2`
		args = append(args, level)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanAlerts(rows)
}
