package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/myat555/WildfireNowcast/internal/model"
)

// alertID builds the canonical alert identifier:
// ALERT-<UTC yyyymmddhhmmss>-<lat>-<lon>. Deterministic given the clock
// and the triggering location.
func alertID(now time.Time, lat, lon float64) string {
	return fmt.Sprintf("ALERT-%s-%.4f-%.4f", now.UTC().Format("20060102150405"), lat, lon)
}

// alertMessage renders the human-readable summary attached to the alert
// record. At most three affected area names are listed.
func alertMessage(hotspot model.Hotspot, area model.AreaThreat, level model.AlertLevel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wildfire threat detected at %.4f, %.4f with %d%% confidence. ",
		level, hotspot.Latitude, hotspot.Longitude, hotspot.Confidence)
	fmt.Fprintf(&b, "Threat level: %s. ", area.ThreatLevel)

	if len(area.Affected) > 0 {
		names := make([]string, 0, 3)
		for _, a := range area.Affected {
			names = append(names, a.Name)
			if len(names) == 3 {
				break
			}
		}
		fmt.Fprintf(&b, "Affected areas: %s. ", strings.Join(names, ", "))
	}
	b.WriteString("Immediate verification recommended.")
	return b.String()
}
