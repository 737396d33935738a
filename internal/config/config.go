package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string           `json:"log_level" yaml:"log_level"`
	LogFormat  string           `json:"log_format" yaml:"log_format"`
	Ingest     IngestConfig     `json:"ingest" yaml:"ingest"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
	Assessment AssessmentConfig `json:"assessment" yaml:"assessment"`
	Alerting   AlertingConfig   `json:"alerting" yaml:"alerting"`
	Scheduler  SchedulerConfig  `json:"scheduler" yaml:"scheduler"`
	API        APIConfig        `json:"api" yaml:"api"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Results    ResultsConfig    `json:"results" yaml:"results"`
	Alerts     AlertsConfig     `json:"alerts" yaml:"alerts"`
}

type IngestConfig struct {
	ChannelBuffer int            `json:"channel_buffer" yaml:"channel_buffer"`
	Kafka         KafkaConfig    `json:"kafka" yaml:"kafka"`
	REST          RESTConfig     `json:"rest" yaml:"rest"`
	FileTail      FileTailConfig `json:"file_tail" yaml:"file_tail"`
}

type RESTConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

// FileTailConfig replays FIRMS-style CSV exports from disk, following the
// files as they grow.
type FileTailConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	StartAtEnd bool     `json:"start_at_end" yaml:"start_at_end"`
	Files      []string `json:"files" yaml:"files"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

// CatalogConfig points at the YAML files describing the protected assets
// and areas the engine scores hotspots against.
type CatalogConfig struct {
	AssetsFile string `json:"assets_file" yaml:"assets_file"`
	AreasFile  string `json:"areas_file" yaml:"areas_file"`
}

type AssessmentConfig struct {
	MaxDistanceKm      float64 `json:"max_distance_km" yaml:"max_distance_km"`
	EvacuationBufferKm float64 `json:"evacuation_buffer_km" yaml:"evacuation_buffer_km"`
	RankCriteria       string  `json:"rank_criteria" yaml:"rank_criteria"`
	BatchSize          int     `json:"batch_size" yaml:"batch_size"`
}

type AlertingConfig struct {
	SuppressionWindow   Duration `json:"suppression_window" yaml:"suppression_window"`
	SuppressionRadiusKm float64  `json:"suppression_radius_km" yaml:"suppression_radius_km"`
	GridCellDeg         float64  `json:"grid_cell_deg" yaml:"grid_cell_deg"`
}

// Duration decodes both Go duration strings ("30m") and raw nanosecond
// integers in config files.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return perr
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

type SchedulerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Spec    string `json:"spec" yaml:"spec"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type ResultsConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

type AlertsConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Ingest: IngestConfig{
			ChannelBuffer: 10000,
			Kafka:         KafkaConfig{Enabled: false},
			REST:          RESTConfig{Enabled: true, Addr: ":8080"},
			FileTail:      FileTailConfig{Enabled: false, StartAtEnd: true},
		},
		Catalog: CatalogConfig{
			AssetsFile: "catalog/assets.yaml",
			AreasFile:  "catalog/areas.yaml",
		},
		Assessment: AssessmentConfig{
			MaxDistanceKm:      50,
			EvacuationBufferKm: 5,
			RankCriteria:       "population_proximity",
			BatchSize:          100,
		},
		Alerting: AlertingConfig{
			SuppressionWindow:   Duration(30 * time.Minute),
			SuppressionRadiusKm: 2.0,
			GridCellDeg:         0.02,
		},
		Scheduler: SchedulerConfig{Enabled: true, Spec: "@every 5m"},
		API:       APIConfig{Enabled: true, Addr: ":8081"},
		Storage:   StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:nowcast.db?_pragma=busy_timeout(5000)"},
		Results:   ResultsConfig{StoreLimit: 500},
		Alerts:    AlertsConfig{StoreLimit: 1000},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.Ingest.ChannelBuffer <= 0 {
		cfg.Ingest.ChannelBuffer = 10000
	}
	if cfg.Assessment.MaxDistanceKm <= 0 {
		cfg.Assessment.MaxDistanceKm = 50
	}
	if cfg.Assessment.EvacuationBufferKm <= 0 {
		cfg.Assessment.EvacuationBufferKm = 5
	}
	if cfg.Assessment.RankCriteria == "" {
		cfg.Assessment.RankCriteria = "population_proximity"
	}
	if cfg.Assessment.BatchSize <= 0 {
		cfg.Assessment.BatchSize = 100
	}
	if cfg.Alerting.SuppressionWindow <= 0 {
		cfg.Alerting.SuppressionWindow = Duration(30 * time.Minute)
	}
	if cfg.Alerting.SuppressionRadiusKm <= 0 {
		cfg.Alerting.SuppressionRadiusKm = 2.0
	}
	if cfg.Alerting.GridCellDeg <= 0 {
		cfg.Alerting.GridCellDeg = 0.02
	}
	if cfg.Scheduler.Spec == "" {
		cfg.Scheduler.Spec = "@every 5m"
	}
	if cfg.Results.StoreLimit <= 0 {
		cfg.Results.StoreLimit = 500
	}
	if cfg.Alerts.StoreLimit <= 0 {
		cfg.Alerts.StoreLimit = 1000
	}
}

func Validate(cfg *Config) error {
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Ingest.Kafka.Enabled {
		if len(cfg.Ingest.Kafka.Brokers) == 0 || cfg.Ingest.Kafka.Topic == "" || cfg.Ingest.Kafka.GroupID == "" {
			return errors.New("ingest.kafka requires brokers, topic, group_id")
		}
	}
	if cfg.Ingest.REST.Enabled && cfg.Ingest.REST.Addr == "" {
		return errors.New("ingest.rest.addr required when ingest.rest.enabled is true")
	}
	if cfg.Ingest.FileTail.Enabled && len(cfg.Ingest.FileTail.Files) == 0 {
		return errors.New("ingest.file_tail.files required when ingest.file_tail.enabled is true")
	}
	if cfg.Storage.Enabled && cfg.Storage.Driver == "" {
		return errors.New("storage.driver required when storage.enabled is true")
	}
	switch cfg.Assessment.RankCriteria {
	case "population_proximity", "fire_intensity", "spread_potential":
	default:
		return fmt.Errorf("assessment.rank_criteria unknown: %q", cfg.Assessment.RankCriteria)
	}
	if cfg.Assessment.MaxDistanceKm <= 0 {
		return errors.New("assessment.max_distance_km must be > 0")
	}
	if cfg.Alerting.SuppressionRadiusKm <= 0 {
		return errors.New("alerting.suppression_radius_km must be > 0")
	}
	return nil
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	info, err := os.Stat(path)
	if err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) Update(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := Save(m.path, cfg); err != nil {
		return err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return nil
}

func (m *Manager) NeedsReload() (bool, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func (m *Manager) Watch(interval time.Duration, onReload func(*Config), onError func(error), stop <-chan struct{}) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			needs, err := m.NeedsReload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if !needs {
				continue
			}
			cfg, err := m.Reload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onReload != nil {
				onReload(cfg)
			}
		case <-stop:
			return
		}
	}
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
