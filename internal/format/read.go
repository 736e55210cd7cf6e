package format

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/planbiir/gthin/internal/fitfile"
	"github.com/planbiir/gthin/internal/gpx"
	"github.com/planbiir/gthin/internal/track"
)

// ErrUnsupportedInput is returned by ReadFile for unknown file extensions.
var ErrUnsupportedInput = errors.New("unsupported input file")

// ReadFile loads the segments of a .gpx, .fit, .geojson or .json file,
// choosing the decoder by extension. Segment sources are set to the file's
// base name.
func ReadFile(path string) ([]track.Segment, error) {
	source := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		doc, err := gpx.Parse(path)
		if err != nil {
			return nil, err
		}
		return doc.Segments(source), nil
	case ".fit":
		seg, err := fitfile.Parse(path)
		if err != nil {
			return nil, err
		}
		if len(seg.Points) == 0 {
			return nil, nil
		}
		return []track.Segment{seg}, nil
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return DecodeGeoJSON(data)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedInput)
	}
}
