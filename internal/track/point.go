package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
)

// ErrInvalidCoordinate is returned when a point carries a NaN or infinite coordinate.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a single track sample. A zero Time means the point has no timestamp.
type Point struct {
	Coord     orb.Point // [lon, lat] in degrees
	Time      time.Time
	Elevation *float64
}

// NewPoint builds a point from longitude/latitude and an optional timestamp.
func NewPoint(lon, lat float64, t time.Time) Point {
	return Point{Coord: orb.Point{lon, lat}, Time: t}
}

func (p Point) Lon() float64 { return p.Coord.Lon() }
func (p Point) Lat() float64 { return p.Coord.Lat() }

// HasTime reports whether the point carries a timestamp. A real timestamp
// of 0001-01-01T00:00:00Z is the zero time and reads as missing.
func (p Point) HasTime() bool { return !p.Time.IsZero() }

type pointJSON struct {
	Lon       float64  `json:"lon"`
	Lat       float64  `json:"lat"`
	Elevation *float64 `json:"ele,omitempty"`
	Time      *string  `json:"time"`
}

// MarshalJSON writes the point as {lon, lat, ele, time} with a null time
// when the point has none.
func (p Point) MarshalJSON() ([]byte, error) {
	out := pointJSON{Lon: p.Lon(), Lat: p.Lat(), Elevation: p.Elevation}
	if p.HasTime() {
		s := p.Time.Format(time.RFC3339Nano)
		out.Time = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON. A time that does not
// parse as RFC 3339 is treated as missing.
func (p *Point) UnmarshalJSON(data []byte) error {
	var in pointJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Point{Coord: orb.Point{in.Lon, in.Lat}, Elevation: in.Elevation}
	if in.Time != nil {
		p.Time = ParseTime(*in.Time)
	}
	return nil
}

// ParseTime parses an RFC 3339 timestamp, returning the zero time when s is
// empty or malformed. "0001-01-01T00:00:00Z" also parses to the zero time and
// so cannot be told apart from a missing timestamp.
func ParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Segment is one contiguous run of points, a GPX trkseg or a GeoJSON feature.
type Segment struct {
	Source       string
	Name         string
	TrackIndex   int
	SegmentIndex int
	Points       []Point
}

// Validate checks that every coordinate is finite.
func Validate(points []Point) error {
	for i, p := range points {
		for _, v := range p.Coord {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("point %d (%v, %v): %w", i, p.Coord.Lon(), p.Coord.Lat(), ErrInvalidCoordinate)
			}
		}
	}
	return nil
}

// Clone returns a copy of points that shares no backing array with the input.
func Clone(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// LineString returns the coordinates of points in order.
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.Coord
	}
	return ls
}
