package assets

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/myat555/WildfireNowcast/internal/config"
	"github.com/myat555/WildfireNowcast/internal/geo"
	"github.com/myat555/WildfireNowcast/internal/model"
)

// Catalog holds the protected assets and areas loaded from the YAML
// files named in the config. Reload swaps both lists atomically so a
// cycle always sees a consistent pair.
type Catalog struct {
	mu     sync.RWMutex
	assets []model.Asset
	areas  []model.ProtectedArea
}

type assetsFile struct {
	Assets []model.Asset `yaml:"assets"`
}

type areasFile struct {
	Areas []areaEntry `yaml:"areas"`
}

// areaEntry mirrors model.ProtectedArea with yaml tags; polygon vertices
// are (lon, lat) pairs.
type areaEntry struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Priority     string       `yaml:"priority"`
	Latitude     float64      `yaml:"latitude"`
	Longitude    float64      `yaml:"longitude"`
	Polygon      [][2]float64 `yaml:"polygon"`
	ThreatRadius float64      `yaml:"threat_radius_km"`
}

// NewStatic builds a catalog from in-memory lists, bypassing the file
// loaders.
func NewStatic(assets []model.Asset, areas []model.ProtectedArea) *Catalog {
	return &Catalog{assets: assets, areas: areas}
}

func Load(cfg config.CatalogConfig, logger *slog.Logger) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(cfg, logger); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Reload(cfg config.CatalogConfig, logger *slog.Logger) error {
	assets, err := loadAssets(cfg.AssetsFile, logger)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	areas, err := loadAreas(cfg.AreasFile, logger)
	if err != nil {
		return fmt.Errorf("load areas: %w", err)
	}
	c.mu.Lock()
	c.assets = assets
	c.areas = areas
	c.mu.Unlock()
	if logger != nil {
		logger.Info("catalog loaded", "assets", len(assets), "areas", len(areas))
	}
	return nil
}

func (c *Catalog) Assets() []model.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

func (c *Catalog) Areas() []model.ProtectedArea {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.ProtectedArea, len(c.areas))
	copy(out, c.areas)
	return out
}

func loadAssets(path string, logger *slog.Logger) ([]model.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f assetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	out := make([]model.Asset, 0, len(f.Assets))
	for _, a := range f.Assets {
		if a.ID == "" || geo.Validate(a.Latitude, a.Longitude) != nil {
			if logger != nil {
				logger.Warn("asset entry skipped", "id", a.ID, "lat", a.Latitude, "lon", a.Longitude)
			}
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func loadAreas(path string, logger *slog.Logger) ([]model.ProtectedArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f areasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	out := make([]model.ProtectedArea, 0, len(f.Areas))
	for _, e := range f.Areas {
		if e.ID == "" || geo.Validate(e.Latitude, e.Longitude) != nil {
			if logger != nil {
				logger.Warn("area entry skipped", "id", e.ID, "lat", e.Latitude, "lon", e.Longitude)
			}
			continue
		}
		area := model.ProtectedArea{
			ID:           e.ID,
			Name:         e.Name,
			Priority:     model.AreaPriority(strings.ToUpper(e.Priority)),
			Latitude:     e.Latitude,
			Longitude:    e.Longitude,
			Polygon:      e.Polygon,
			ThreatRadius: e.ThreatRadius,
		}
		if area.Priority == "" {
			area.Priority = model.PriorityMedium
		}
		if area.ThreatRadius <= 0 {
			area.ThreatRadius = 10
		}
		out = append(out, area)
	}
	return out, nil
}
