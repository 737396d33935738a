package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/myat555/WildfireNowcast/internal/model"
)

var (
	ErrBadRecord = errors.New("bad hotspot record")
)

// Parser turns raw feed lines into hotspots. It accepts single JSON
// objects and FIRMS-style CSV rows; a CSV header row, when present,
// drives column assignment for the rest of the stream.
type Parser struct {
	header []string
}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParseLine(line string) (*model.Hotspot, error) {
	trim := strings.TrimSpace(line)
	if trim == "" {
		return nil, nil
	}
	if looksLikeJSON(trim) {
		return parseJSON(trim)
	}
	return p.parseCSV(trim)
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

func parseJSON(line string) (*model.Hotspot, error) {
	var raw struct {
		ID         string          `json:"id"`
		Latitude   float64         `json:"latitude"`
		Longitude  float64         `json:"longitude"`
		Confidence json.RawMessage `json:"confidence"`
		Brightness float64         `json:"brightness"`
		AcqDate    string          `json:"acq_date"`
		AcqTime    string          `json:"acq_time"`
		Satellite  string          `json:"satellite"`
	}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, err
	}
	h := &model.Hotspot{
		ID:         raw.ID,
		Latitude:   raw.Latitude,
		Longitude:  raw.Longitude,
		Confidence: parseConfidence(string(raw.Confidence)),
		Brightness: raw.Brightness,
		AcqDate:    raw.AcqDate,
		AcqTime:    raw.AcqTime,
		Satellite:  raw.Satellite,
	}
	return finishHotspot(h)
}

func (p *Parser) parseCSV(line string) (*model.Hotspot, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.TrimLeadingSpace = true
	record, err := r.Read()
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, nil
	}
	if p.header == nil && looksLikeHeader(record) {
		p.header = normalizeHeader(record)
		return nil, nil
	}

	h := &model.Hotspot{}
	if p.header != nil {
		for i, name := range p.header {
			if i >= len(record) {
				break
			}
			assignField(h, name, record[i])
		}
	} else {
		// Headerless rows follow the FIRMS column order.
		if len(record) < 3 {
			return nil, ErrBadRecord
		}
		assignField(h, "latitude", record[0])
		assignField(h, "longitude", record[1])
		assignField(h, "brightness", record[2])
		if len(record) >= 6 {
			h.AcqDate = strings.TrimSpace(record[5])
		}
		if len(record) >= 7 {
			h.AcqTime = strings.TrimSpace(record[6])
		}
		if len(record) >= 8 {
			h.Satellite = strings.TrimSpace(record[7])
		}
		if len(record) >= 10 {
			h.Confidence = parseConfidence(record[9])
		}
	}
	return finishHotspot(h)
}

func finishHotspot(h *model.Hotspot) (*model.Hotspot, error) {
	if h.Latitude < -90 || h.Latitude > 90 || h.Longitude < -180 || h.Longitude > 180 {
		return nil, ErrBadRecord
	}
	if h.Brightness < 0 {
		return nil, ErrBadRecord
	}
	if h.Confidence < 0 {
		h.Confidence = 0
	}
	if h.Confidence > 100 {
		h.Confidence = 100
	}
	if h.ID == "" {
		h.ID = fmt.Sprintf("FIRMS-%s-%s%s-%.4f-%.4f", h.Satellite, h.AcqDate, h.AcqTime, h.Latitude, h.Longitude)
	}
	return h, nil
}

// parseConfidence handles both numeric confidence (MODIS) and the VIIRS
// letter labels low/nominal/high.
func parseConfidence(v string) int {
	v = strings.Trim(strings.TrimSpace(v), `"`)
	switch strings.ToLower(v) {
	case "l", "low":
		return 20
	case "n", "nominal":
		return 50
	case "h", "high":
		return 85
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func looksLikeHeader(record []string) bool {
	for _, v := range record {
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "latitude", "longitude", "brightness", "bright_ti4", "acq_date", "acq_time", "satellite", "confidence", "frp":
			return true
		}
	}
	return false
}

func normalizeHeader(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

func assignField(h *model.Hotspot, name string, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	switch name {
	case "id", "hotspot_id":
		h.ID = value
	case "latitude", "lat":
		h.Latitude, _ = strconv.ParseFloat(value, 64)
	case "longitude", "lon", "lng":
		h.Longitude, _ = strconv.ParseFloat(value, 64)
	case "brightness", "bright_ti4", "bright_t31":
		if h.Brightness == 0 {
			h.Brightness, _ = strconv.ParseFloat(value, 64)
		}
	case "confidence":
		h.Confidence = parseConfidence(value)
	case "acq_date":
		h.AcqDate = value
	case "acq_time":
		h.AcqTime = value
	case "satellite":
		h.Satellite = value
	}
}
