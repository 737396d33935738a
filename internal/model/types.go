package model

import "time"

// ThreatLevel grades both per-target assessments and ranked fires.
// A single enum is used everywhere; there is no separate "MODERATE".
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "LOW"
	ThreatMedium   ThreatLevel = "MEDIUM"
	ThreatHigh     ThreatLevel = "HIGH"
	ThreatCritical ThreatLevel = "CRITICAL"
)

// AlertLevel is the outcome of the alert classification cascade.
type AlertLevel string

const (
	AlertNone     AlertLevel = "NONE"
	AlertMedium   AlertLevel = "MEDIUM"
	AlertHigh     AlertLevel = "HIGH"
	AlertCritical AlertLevel = "CRITICAL"
)

// DeliveryStatus tracks the short-lived alert lifecycle:
// CREATED -> SENT | FAILED, or CREATED -> SUPPRESSED (terminal).
type DeliveryStatus string

const (
	StatusPending    DeliveryStatus = "PENDING"
	StatusSent       DeliveryStatus = "SENT"
	StatusFailed     DeliveryStatus = "FAILED"
	StatusSuppressed DeliveryStatus = "SUPPRESSED"
)

type AssetType string

const (
	AssetResidential    AssetType = "residential"
	AssetCommercial     AssetType = "commercial"
	AssetIndustrial     AssetType = "industrial"
	AssetCriticalInfra  AssetType = "critical_infrastructure"
	AssetHealthcare     AssetType = "healthcare"
	AssetSchool         AssetType = "school"
	AssetAirport        AssetType = "airport"
	AssetPowerPlant     AssetType = "power_plant"
	AssetWildlifeRefuge AssetType = "wildlife_refuge"
	AssetForest         AssetType = "forest"
)

type AreaPriority string

const (
	PriorityLow      AreaPriority = "LOW"
	PriorityMedium   AreaPriority = "MEDIUM"
	PriorityHigh     AreaPriority = "HIGH"
	PriorityCritical AreaPriority = "CRITICAL"
)

// RankCriteria selects the FireRanker scoring formula.
type RankCriteria string

const (
	RankPopulationProximity RankCriteria = "population_proximity"
	RankFireIntensity       RankCriteria = "fire_intensity"
	RankSpreadPotential     RankCriteria = "spread_potential"
)

// Hotspot is a satellite-detected thermal anomaly from the fire feed.
// Immutable once produced by the collector.
type Hotspot struct {
	ID         string  `json:"id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Confidence int     `json:"confidence"`
	Brightness float64 `json:"brightness"`
	AcqDate    string  `json:"acq_date"`
	AcqTime    string  `json:"acq_time"`
	Satellite  string  `json:"satellite"`
}

type Asset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       AssetType `json:"type"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Population int       `json:"population"`
}

// ProtectedArea is an AOI with a center point, an optional polygon ring
// given as (lon,lat) vertices, and a threat radius around the center.
type ProtectedArea struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Priority     AreaPriority `json:"priority"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Polygon      [][2]float64 `json:"polygon,omitempty"`
	ThreatRadius float64      `json:"threat_radius_km"`
}

// ThreatAssessment scores one hotspot/asset pair. Entities are referenced
// by id so assessments never hold pointers into the input collections.
type ThreatAssessment struct {
	HotspotID          string      `json:"hotspot_id"`
	AssetID            string      `json:"asset_id"`
	AssetName          string      `json:"asset_name"`
	AssetType          AssetType   `json:"asset_type"`
	DistanceKm         float64     `json:"distance_km"`
	ThreatScore        float64     `json:"threat_score"`
	ThreatLevel        ThreatLevel `json:"threat_level"`
	EvacuationNeeded   bool        `json:"evacuation_needed"`
	EvacuationRadiusKm float64     `json:"evacuation_radius_km"`
	Population         int         `json:"asset_population"`
}

// AssessmentSummary aggregates one assessment run.
type AssessmentSummary struct {
	Total            int `json:"total_assessments"`
	Critical         int `json:"critical_threats"`
	High             int `json:"high_threats"`
	Medium           int `json:"medium_threats"`
	Low              int `json:"low_threats"`
	EvacuationNeeded int `json:"evacuation_needed"`
}

// AreaThreat is the per-hotspot view over the protected areas: the closest
// approach plus every area the hotspot endangers. A hotspot inside an
// area's polygon reports distance 0 for that area.
type AreaThreat struct {
	HotspotID     string         `json:"hotspot_id"`
	ThreatLevel   ThreatLevel    `json:"threat_level"`
	MinDistanceKm float64        `json:"min_distance_km"`
	Affected      []AffectedArea `json:"affected_areas"`
}

type AffectedArea struct {
	AreaID     string       `json:"area_id"`
	Name       string       `json:"name"`
	Priority   AreaPriority `json:"priority"`
	DistanceKm float64      `json:"distance_km"`
	Contained  bool         `json:"contained"`
}

// RankedFire is one FireRanker result row. Rank runs 1..N with no gaps.
type RankedFire struct {
	HotspotID   string       `json:"fire_id"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Confidence  int          `json:"confidence"`
	Brightness  float64      `json:"brightness"`
	ThreatScore float64      `json:"threat_score"`
	ThreatLevel ThreatLevel  `json:"threat_level"`
	Criteria    RankCriteria `json:"ranking_criteria"`
	Rank        int          `json:"rank"`
}

// EvacuationZone aggregates the assets caught inside a hotspot's
// evacuation radius, ordered by distance ascending.
type EvacuationZone struct {
	HotspotID          string            `json:"fire_id"`
	Latitude           float64           `json:"latitude"`
	Longitude          float64           `json:"longitude"`
	EvacuationRadiusKm float64           `json:"evacuation_radius_km"`
	AffectedAssets     []AffectedAsset   `json:"affected_assets"`
	TotalPopulation    int               `json:"total_population"`
	AssetTypes         map[AssetType]int `json:"asset_types"`
}

type AffectedAsset struct {
	AssetID    string    `json:"asset_id"`
	Name       string    `json:"asset_name"`
	Type       AssetType `json:"asset_type"`
	DistanceKm float64   `json:"distance_km"`
	Population int       `json:"population"`
}

// Alert is the only mutable entity in the core. Location identifies the
// triggering hotspot; AffectedAreaIDs reference areas by id.
type Alert struct {
	ID              string          `json:"alert_id"`
	Level           AlertLevel      `json:"alert_level"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	CreatedAt       time.Time       `json:"created_at"`
	HotspotID       string          `json:"hotspot_id"`
	Confidence      int             `json:"confidence"`
	Satellite       string          `json:"satellite,omitempty"`
	ThreatLevel     ThreatLevel     `json:"threat_level"`
	MinDistanceKm   float64         `json:"min_distance_km"`
	AffectedAreaIDs []string        `json:"affected_areas"`
	Suppressed      bool            `json:"suppressed"`
	Status          DeliveryStatus  `json:"status"`
	Channels        map[string]bool `json:"channels,omitempty"`
	Message         string          `json:"message"`
}

// CycleSummary is the combined overview of one processing cycle.
type CycleSummary struct {
	Timestamp          time.Time         `json:"timestamp"`
	TotalHotspots      int               `json:"total_hotspots"`
	TotalAssets        int               `json:"total_assets"`
	Assessments        AssessmentSummary `json:"assessments"`
	EvacuationZones    int               `json:"evacuation_zones"`
	AffectedPopulation int               `json:"affected_population"`
	AlertsEmitted      int               `json:"alerts_emitted"`
	AlertsSuppressed   int               `json:"alerts_suppressed"`
	SkippedRecords     int               `json:"skipped_records"`
}
