package format

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"

	"github.com/planbiir/gthin/internal/track"
)

// ErrTimestampMismatch is returned when a feature's timeStamps property does
// not line up with its coordinates.
var ErrTimestampMismatch = errors.New("timeStamps length does not match coordinates")

// coordinatePrecision is the number of decimals kept for lon/lat.
const coordinatePrecision = 9

// Feature property keys.
const (
	propFileName     = "fileName"
	propTrackName    = "trackName"
	propFileIndex    = "fileIndex"
	propTrackIndex   = "trackIndex"
	propSegmentIndex = "segmentIndex"
	propTimeStamps   = "timeStamps"
	propElevations   = "elevations"
)

// EncodeGeoJSON writes one LineString feature per segment. Timestamps go to
// the timeStamps property as RFC 3339 strings or null.
func EncodeGeoJSON(segments []track.Segment) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	fileIndex := make(map[string]int)

	for _, seg := range segments {
		idx, ok := fileIndex[seg.Source]
		if !ok {
			idx = len(fileIndex)
			fileIndex[seg.Source] = idx
		}

		line := make(orb.LineString, len(seg.Points))
		stamps := make([]interface{}, len(seg.Points))
		var elevations []interface{}
		for i, p := range seg.Points {
			line[i] = orb.Point{round(p.Lon()), round(p.Lat())}
			if p.HasTime() {
				stamps[i] = p.Time.UTC().Format(time.RFC3339Nano)
			}
			if p.Elevation != nil {
				if elevations == nil {
					elevations = make([]interface{}, len(seg.Points))
				}
				elevations[i] = *p.Elevation
			}
		}

		f := geojson.NewFeature(line)
		f.Properties[propFileName] = seg.Source
		f.Properties[propTrackName] = trackName(seg)
		f.Properties[propFileIndex] = idx
		f.Properties[propTrackIndex] = seg.TrackIndex
		f.Properties[propSegmentIndex] = seg.SegmentIndex
		f.Properties[propTimeStamps] = stamps
		if elevations != nil {
			f.Properties[propElevations] = elevations
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return data, nil
}

// DecodeGeoJSON reads LineString features back into segments. Other geometry
// types are skipped. Timestamps that are null or do not parse become missing.
// Elevation is taken from a third coordinate when present, otherwise from the
// elevations property.
func DecodeGeoJSON(data []byte) ([]track.Segment, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	rawFeatures := gjson.GetBytes(data, "features").Array()

	var segments []track.Segment
	for i, f := range fc.Features {
		line, ok := f.Geometry.(orb.LineString)
		if !ok {
			continue
		}

		seg := track.Segment{
			Source:       stringProp(f.Properties, propFileName),
			Name:         stringProp(f.Properties, propTrackName),
			TrackIndex:   intProp(f.Properties, propTrackIndex),
			SegmentIndex: intProp(f.Properties, propSegmentIndex),
			Points:       make([]track.Point, len(line)),
		}
		for j, c := range line {
			seg.Points[j] = track.Point{Coord: c}
		}

		if raw, ok := f.Properties[propTimeStamps]; ok && raw != nil {
			stamps, ok := raw.([]interface{})
			if !ok || len(stamps) != len(line) {
				return nil, fmt.Errorf("feature %d: %w", i, ErrTimestampMismatch)
			}
			for j, s := range stamps {
				if str, ok := s.(string); ok {
					seg.Points[j].Time = track.ParseTime(str)
				}
			}
		}

		if i < len(rawFeatures) {
			applyElevations(seg.Points, rawFeatures[i], f.Properties)
		}

		segments = append(segments, seg)
	}

	return segments, nil
}

func applyElevations(points []track.Point, raw gjson.Result, props geojson.Properties) {
	coords := raw.Get("geometry.coordinates").Array()
	fromProp, _ := props[propElevations].([]interface{})

	for j := range points {
		if j < len(coords) {
			if c := coords[j].Array(); len(c) >= 3 {
				ele := c[2].Float()
				points[j].Elevation = &ele
				continue
			}
		}
		if j < len(fromProp) {
			if ele, ok := fromProp[j].(float64); ok {
				points[j].Elevation = &ele
			}
		}
	}
}

func trackName(seg track.Segment) string {
	if seg.Name != "" {
		return seg.Name
	}
	return fmt.Sprintf("Track %d", seg.TrackIndex+1)
}

func stringProp(props geojson.Properties, key string) string {
	s, _ := props[key].(string)
	return s
}

func intProp(props geojson.Properties, key string) int {
	switch v := props[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func round(v float64) float64 {
	p := math.Pow10(coordinatePrecision)
	return math.Round(v*p) / p
}
