package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/myat555/WildfireNowcast/internal/config"
	"github.com/myat555/WildfireNowcast/internal/model"
)

// Store persists alert records and per-cycle summaries. Assessments and
// zones are recomputed every cycle and are not persisted.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveAlert(ctx context.Context, alert model.Alert) error
	SaveCycleSummary(ctx context.Context, summary model.CycleSummary) error
	RecentAlerts(ctx context.Context, since time.Time, level model.AlertLevel) ([]model.Alert, error)
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func encodeJSON(value any) string {
	data, _ := json.Marshal(value)
	return string(data)
}

func scanAlerts(rows *sql.Rows) ([]model.Alert, error) {
	defer rows.Close()
	out := make([]model.Alert, 0)
	for rows.Next() {
		var (
			a            model.Alert
			areasJSON    string
			channelsJSON string
		)
		if err := rows.Scan(
			&a.ID, &a.Level, &a.Latitude, &a.Longitude, &a.CreatedAt,
			&a.HotspotID, &a.Confidence, &a.ThreatLevel, &a.MinDistanceKm,
			&areasJSON, &a.Suppressed, &a.Status, &channelsJSON, &a.Message,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(areasJSON), &a.AffectedAreaIDs)
		_ = json.Unmarshal([]byte(channelsJSON), &a.Channels)
		out = append(out, a)
	}
	return out, rows.Err()
}
