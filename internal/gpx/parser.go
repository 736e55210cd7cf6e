package gpx

import (
	"bytes"
	"fmt"
	"io"
	"os"

	gogpx "github.com/tkrajina/gpxgo/gpx"

	"github.com/planbiir/gthin/internal/thin"
	"github.com/planbiir/gthin/internal/track"
)

const defaultCreator = "gthin"

// Document wraps a parsed GPX file. Extensions and per-point fields that the
// thinning engine does not look at are kept on the original points.
type Document struct {
	GPX *gogpx.GPX
}

// Parse reads and parses a GPX file
func Parse(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader parses GPX from an io.Reader
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GPX: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses an in-memory GPX document
func ParseBytes(data []byte) (*Document, error) {
	g, err := gogpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}
	if g.Creator == "" {
		g.Creator = defaultCreator
	}
	return &Document{GPX: g}, nil
}

// Write saves the document to a file
func (d *Document) Write(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return d.WriteToWriter(file)
}

// WriteToWriter writes GPX 1.1 XML to w
func (d *Document) WriteToWriter(w io.Writer) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Bytes returns the document encoded as indented GPX 1.1
func (d *Document) Bytes() ([]byte, error) {
	data, err := d.GPX.ToXml(gogpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GPX: %w", err)
	}
	return data, nil
}

// Segments returns every non-empty track segment in file order. A segment
// with a single point is kept; it is still recorded data and thins to itself.
func (d *Document) Segments(source string) []track.Segment {
	var segments []track.Segment

	for trackIdx, trk := range d.GPX.Tracks {
		for segIdx, seg := range trk.Segments {
			if len(seg.Points) == 0 {
				continue
			}
			segments = append(segments, track.Segment{
				Source:       source,
				Name:         trk.Name,
				TrackIndex:   trackIdx,
				SegmentIndex: segIdx,
				Points:       toPoints(seg.Points),
			})
		}
	}

	return segments
}

// FlattenPoints returns all points from all tracks and segments in order
func (d *Document) FlattenPoints() []track.Point {
	var points []track.Point
	for _, trk := range d.GPX.Tracks {
		for _, seg := range trk.Segments {
			points = append(points, toPoints(seg.Points)...)
		}
	}
	return points
}

// Stats returns statistics over all points of the document
func (d *Document) Stats() track.Stats {
	return track.Calculate(d.FlattenPoints())
}

// Thin applies p to each segment independently and replaces the segment's
// points with the kept originals. One result is returned per non-empty
// segment, in the order of Segments.
func (d *Document) Thin(p thin.Policy) ([]thin.Result, error) {
	var results []thin.Result

	for trackIdx := range d.GPX.Tracks {
		trk := &d.GPX.Tracks[trackIdx]
		for segIdx := range trk.Segments {
			seg := &trk.Segments[segIdx]
			if len(seg.Points) == 0 {
				continue
			}

			points := toPoints(seg.Points)
			indices, err := thin.Select(points, p)
			if err != nil {
				return nil, fmt.Errorf("track %d segment %d: %w", trackIdx, segIdx, err)
			}

			kept := make([]gogpx.GPXPoint, len(indices))
			keptPoints := make([]track.Point, len(indices))
			for i, idx := range indices {
				kept[i] = seg.Points[idx]
				keptPoints[i] = points[idx]
			}
			seg.Points = kept

			results = append(results, thin.Result{
				Points: keptPoints,
				Before: track.Calculate(points),
				After:  track.Calculate(keptPoints),
			})
		}
	}

	return results, nil
}

// FromSegments builds a document with one track per (source, track index)
// pair, keeping segment order.
func FromSegments(name string, segments []track.Segment) *Document {
	g := &gogpx.GPX{
		Version: "1.1",
		Creator: defaultCreator,
		Name:    name,
	}

	type trackKey struct {
		source string
		index  int
	}
	trackPos := make(map[trackKey]int)

	for _, seg := range segments {
		key := trackKey{seg.Source, seg.TrackIndex}
		pos, ok := trackPos[key]
		if !ok {
			trackName := seg.Name
			if trackName == "" {
				trackName = seg.Source
			}
			g.Tracks = append(g.Tracks, gogpx.GPXTrack{Name: trackName})
			pos = len(g.Tracks) - 1
			trackPos[key] = pos
		}
		g.Tracks[pos].Segments = append(g.Tracks[pos].Segments, gogpx.GPXTrackSegment{
			Points: fromPoints(seg.Points),
		})
	}

	return &Document{GPX: g}
}

// Sniff reports whether data looks like a GPX document.
func Sniff(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<gpx"))
}

func toPoints(src []gogpx.GPXPoint) []track.Point {
	points := make([]track.Point, len(src))
	for i, p := range src {
		points[i] = track.NewPoint(p.Longitude, p.Latitude, p.Timestamp)
		if p.Elevation.NotNull() {
			ele := p.Elevation.Value()
			points[i].Elevation = &ele
		}
	}
	return points
}

func fromPoints(src []track.Point) []gogpx.GPXPoint {
	points := make([]gogpx.GPXPoint, len(src))
	for i, p := range src {
		points[i] = gogpx.GPXPoint{
			Point: gogpx.Point{
				Latitude:  p.Lat(),
				Longitude: p.Lon(),
			},
			Timestamp: p.Time,
		}
		if p.Elevation != nil {
			points[i].Elevation = *gogpx.NewNullableFloat64(*p.Elevation)
		}
	}
	return points
}
