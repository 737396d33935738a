package geo

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrDegeneratePolygon = errors.New("polygon ring needs at least 3 vertices")
)

// Validate checks that lat is within [-90,90] and lon within [-180,180].
func Validate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, lat, lon)
	}
	return nil
}

// DistanceKm returns the haversine great-circle distance between two points
// in kilometers. Symmetric, and zero for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := Validate(lat1, lon1); err != nil {
		return 0, err
	}
	if err := Validate(lat2, lon2); err != nil {
		return 0, err
	}
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return earthRadiusKm * c, nil
}

// PointInPolygon runs a ray-casting containment test. The ring is an
// ordered list of (lon,lat) vertices and is treated as implicitly closed.
// Rings with fewer than 3 vertices fail with ErrDegeneratePolygon.
func PointInPolygon(lat, lon float64, ring [][2]float64) (bool, error) {
	if len(ring) < 3 {
		return false, ErrDegeneratePolygon
	}
	if err := Validate(lat, lon); err != nil {
		return false, err
	}
	x, y := lon, lat
	inside := false
	n := len(ring)

	p1x, p1y := ring[0][0], ring[0][1]
	for i := 1; i <= n; i++ {
		p2x, p2y := ring[i%n][0], ring[i%n][1]
		if y > math.Min(p1y, p2y) && y <= math.Max(p1y, p2y) && x <= math.Max(p1x, p2x) {
			var xinters float64
			if p1y != p2y {
				xinters = (y-p1y)*(p2x-p1x)/(p2y-p1y) + p1x
			}
			if p1x == p2x || x <= xinters {
				inside = !inside
			}
		}
		p1x, p1y = p2x, p2y
	}
	return inside, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
