// Package fitfile reads Garmin FIT activity files into track segments.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tormoder/fit"

	"github.com/planbiir/gthin/internal/track"
)

// ErrNotActivity is returned for FIT files that hold no activity records.
var ErrNotActivity = errors.New("FIT file is not an activity")

// Parse opens and decodes a FIT file.
func Parse(filename string) (track.Segment, error) {
	file, err := os.Open(filename)
	if err != nil {
		return track.Segment{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	seg, err := Decode(file)
	if err != nil {
		return track.Segment{}, err
	}
	seg.Source = filepath.Base(filename)
	return seg, nil
}

// Decode reads the record messages of a FIT activity. Records without a valid
// position are skipped; a record without a timestamp yields a point without
// one.
func Decode(r io.Reader) (track.Segment, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return track.Segment{}, fmt.Errorf("failed to decode FIT: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return track.Segment{}, fmt.Errorf("%w: %v", ErrNotActivity, err)
	}

	var seg track.Segment
	for _, rec := range activity.Records {
		if rec == nil || rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
			continue
		}

		ts := rec.Timestamp
		if fit.IsBaseTime(ts) {
			ts = time.Time{}
		}
		p := track.NewPoint(rec.PositionLong.Degrees(), rec.PositionLat.Degrees(), ts)
		if ele := altitude(rec); !math.IsNaN(ele) {
			p.Elevation = &ele
		}
		seg.Points = append(seg.Points, p)
	}

	return seg, nil
}

func altitude(rec *fit.RecordMsg) float64 {
	if ele := rec.GetEnhancedAltitudeScaled(); !math.IsNaN(ele) {
		return ele
	}
	return rec.GetAltitudeScaled()
}
