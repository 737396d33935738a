package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKmIdenticalPoints(t *testing.T) {
	d, err := DistanceKm(34.0522, -118.2437, 34.0522, -118.2437)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDistanceKmSymmetric(t *testing.T) {
	d1, err := DistanceKm(34.0522, -118.2437, 37.7749, -122.4194)
	require.NoError(t, err)
	d2, err := DistanceKm(37.7749, -122.4194, 34.0522, -118.2437)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestDistanceKmLosAngelesToSanFrancisco(t *testing.T) {
	d, err := DistanceKm(34.0522, -118.2437, 37.7749, -122.4194)
	require.NoError(t, err)
	assert.InDelta(t, 559.0, d, 5.0)
}

func TestDistanceKmInvalidCoordinates(t *testing.T) {
	cases := []struct {
		name               string
		lat1, lon1         float64
		lat2, lon2         float64
	}{
		{"lat over 90", 91, 0, 0, 0},
		{"lat under -90", -90.5, 0, 0, 0},
		{"lon over 180", 0, 181, 0, 0},
		{"lon under -180", 0, 0, 0, -180.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DistanceKm(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			assert.ErrorIs(t, err, ErrInvalidCoordinate)
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	ring := [][2]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

	inside, err := PointInPolygon(0.5, 0.5, ring)
	require.NoError(t, err)
	assert.True(t, inside)

	outside, err := PointInPolygon(2, 2, ring)
	require.NoError(t, err)
	assert.False(t, outside)
}

func TestPointInPolygonDegenerateRing(t *testing.T) {
	_, err := PointInPolygon(0.5, 0.5, [][2]float64{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrDegeneratePolygon)

	_, err = PointInPolygon(0.5, 0.5, nil)
	assert.ErrorIs(t, err, ErrDegeneratePolygon)
}
