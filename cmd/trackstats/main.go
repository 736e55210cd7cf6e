package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/planbiir/gthin/internal/edit"
	"github.com/planbiir/gthin/internal/format"
	"github.com/planbiir/gthin/internal/track"
)

type segmentReport struct {
	File         string      `json:"file"`
	Track        string      `json:"track"`
	TrackIndex   int         `json:"track_index"`
	SegmentIndex int         `json:"segment_index"`
	Stats        track.Stats `json:"stats"`
	Missing      int         `json:"missing_timestamps"`
	Gaps         []gapInfo   `json:"gaps,omitempty"`
}

type gapInfo struct {
	Index int           `json:"index"`
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Gap   time.Duration `json:"gap_ns"`
}

func main() {
	jsonFlag := flag.Bool("json", false, "Print reports as JSON")
	gapFlag := flag.Duration("gap", 0, "Also list timestamp gaps longer than this (e.g. 2m, 0 disables)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalf("usage: %s [flags] <track.gpx|track.fit|track.geojson>...", os.Args[0])
	}

	var reports []segmentReport
	for _, path := range args {
		segments, err := format.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		if len(segments) == 0 {
			log.Printf("%s: no track segments", path)
			continue
		}
		for _, seg := range segments {
			reports = append(reports, analyze(seg, *gapFlag))
		}
	}

	if *jsonFlag {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			log.Fatalf("marshal reports: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	for _, r := range reports {
		printReport(os.Stdout, r)
	}
}

func analyze(seg track.Segment, threshold time.Duration) segmentReport {
	r := segmentReport{
		File:         seg.Source,
		Track:        seg.Name,
		TrackIndex:   seg.TrackIndex,
		SegmentIndex: seg.SegmentIndex,
		Stats:        track.Calculate(seg.Points),
		Missing:      edit.Missing(seg.Points),
	}
	if threshold > 0 {
		r.Gaps = findGaps(seg.Points, threshold)
	}
	return r
}

// findGaps reports consecutive timestamped points further apart than
// threshold. Pairs involving a point without a timestamp are skipped.
func findGaps(points []track.Point, threshold time.Duration) []gapInfo {
	var gaps []gapInfo
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		if !a.HasTime() || !b.HasTime() {
			continue
		}
		if gap := b.Time.Sub(a.Time); gap > threshold {
			gaps = append(gaps, gapInfo{Index: i, Start: a.Time, End: b.Time, Gap: gap})
		}
	}
	return gaps
}

func printReport(w io.Writer, r segmentReport) {
	name := r.Track
	if name == "" {
		name = fmt.Sprintf("track %d", r.TrackIndex+1)
	}
	fmt.Fprintf(w, "%s: %s, segment %d\n", r.File, name, r.SegmentIndex+1)
	fmt.Fprintf(w, "  points: %d (%d without time)\n", r.Stats.TotalPoints, r.Missing)
	fmt.Fprintf(w, "  distance: %s\n", track.FormatDistance(r.Stats.TotalDistance))
	fmt.Fprintf(w, "  time span: %s (duration %s)\n",
		track.FormatTimeRange(r.Stats.StartTime, r.Stats.EndTime), track.FormatDuration(r.Stats.Duration))
	fmt.Fprintf(w, "  average interval: %s\n", track.FormatInterval(r.Stats.AverageInterval))
	for n, g := range r.Gaps {
		fmt.Fprintf(w, "  gap #%d after point %d: %s – %s (%v)\n",
			n+1, g.Index, g.Start.Format(time.TimeOnly), g.End.Format(time.TimeOnly), g.Gap)
	}
}
