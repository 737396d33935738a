package threat

import (
	"log/slog"
	"sort"

	"github.com/myat555/WildfireNowcast/internal/geo"
	"github.com/myat555/WildfireNowcast/internal/model"
)

// ZoneCalculator builds evacuation zones around hotspots. The zone radius
// scales the buffer distance by the hotspot's intensity multiplier.
type ZoneCalculator struct {
	logger *slog.Logger
}

func NewZoneCalculator(logger *slog.Logger) *ZoneCalculator {
	return &ZoneCalculator{logger: logger}
}

// Compute returns one zone per hotspot, holding the assets inside the
// evacuation radius sorted by distance ascending. Zones are ordered by
// total affected population descending.
func (z *ZoneCalculator) Compute(hotspots []model.Hotspot, assets []model.Asset, bufferKm float64) []model.EvacuationZone {
	zones := make([]model.EvacuationZone, 0, len(hotspots))

	for _, hotspot := range hotspots {
		bucket := BucketForConfidence(hotspot.Confidence)
		radius := bufferKm * bucket.Multiplier

		zone := model.EvacuationZone{
			HotspotID:          hotspot.ID,
			Latitude:           hotspot.Latitude,
			Longitude:          hotspot.Longitude,
			EvacuationRadiusKm: radius,
			AssetTypes:         make(map[model.AssetType]int),
		}

		for _, asset := range assets {
			distance, err := geo.DistanceKm(hotspot.Latitude, hotspot.Longitude, asset.Latitude, asset.Longitude)
			if err != nil {
				if z.logger != nil {
					z.logger.Warn("skipping asset with bad coordinates", "asset_id", asset.ID, "err", err)
				}
				continue
			}
			if distance > radius {
				continue
			}
			zone.AffectedAssets = append(zone.AffectedAssets, model.AffectedAsset{
				AssetID:    asset.ID,
				Name:       asset.Name,
				Type:       asset.Type,
				DistanceKm: distance,
				Population: asset.Population,
			})
			zone.TotalPopulation += asset.Population
			zone.AssetTypes[asset.Type]++
		}

		sort.Slice(zone.AffectedAssets, func(i, j int) bool {
			if zone.AffectedAssets[i].DistanceKm != zone.AffectedAssets[j].DistanceKm {
				return zone.AffectedAssets[i].DistanceKm < zone.AffectedAssets[j].DistanceKm
			}
			return zone.AffectedAssets[i].AssetID < zone.AffectedAssets[j].AssetID
		})
		zones = append(zones, zone)
	}

	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].TotalPopulation > zones[j].TotalPopulation
	})
	return zones
}
