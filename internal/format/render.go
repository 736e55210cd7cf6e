package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/planbiir/gthin/internal/gpx"
	"github.com/planbiir/gthin/internal/track"
)

// ErrUnknownFormat is returned for an output format Render does not know.
var ErrUnknownFormat = errors.New("unknown output format")

// Output formats.
const (
	KindGPX      = "gpx"
	KindGeoJSON  = "geojson"
	KindPolyline = "polyline"
)

var (
	extensions = map[string]string{
		KindGPX:      ".gpx",
		KindGeoJSON:  ".geojson",
		KindPolyline: ".txt",
	}
	contentTypes = map[string]string{
		KindGPX:      "application/gpx+xml",
		KindGeoJSON:  "application/geo+json",
		KindPolyline: "text/plain; charset=utf-8",
	}
)

func IsKnown(kind string) bool {
	_, ok := extensions[kind]
	return ok
}

func Extension(kind string) string {
	return extensions[kind]
}

func ContentType(kind string) string {
	return contentTypes[kind]
}

// Render encodes segments in the given format. Polylines are written one per
// line, one line per segment.
func Render(segments []track.Segment, name, kind string) ([]byte, error) {
	switch kind {
	case KindGPX:
		return gpx.FromSegments(name, segments).Bytes()
	case KindGeoJSON:
		return EncodeGeoJSON(segments)
	case KindPolyline:
		lines := make([]string, len(segments))
		for i, seg := range segments {
			lines[i] = EncodePolyline(seg.Points)
		}
		return []byte(strings.Join(lines, "\n")), nil
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownFormat)
	}
}
