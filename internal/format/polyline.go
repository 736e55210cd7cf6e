package format

import (
	"fmt"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/planbiir/gthin/internal/track"
)

// EncodePolyline encodes points as a Google polyline (lat, lon pairs, 5
// decimals). Timestamps and elevation are dropped.
func EncodePolyline(points []track.Point) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat(), p.Lon()})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes a Google polyline into points without timestamps.
func DecodePolyline(s string) ([]track.Point, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("failed to decode polyline: %d trailing bytes", len(rest))
	}

	points := make([]track.Point, len(coords))
	for i, c := range coords {
		points[i] = track.NewPoint(c[1], c[0], time.Time{})
	}
	return points, nil
}
