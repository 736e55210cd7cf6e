package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/planbiir/gthin/internal/track"
)

func TestAnalyze(t *testing.T) {
	base := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	seg := track.Segment{
		Source: "walk.gpx",
		Points: []track.Point{
			track.NewPoint(7.0, 46.0, base),
			track.NewPoint(7.0, 46.001, base.Add(10*time.Second)),
			track.NewPoint(7.0, 46.002, time.Time{}),
			track.NewPoint(7.0, 46.003, base.Add(5*time.Minute)),
			track.NewPoint(7.0, 46.004, base.Add(5*time.Minute+10*time.Second)),
		},
	}

	r := analyze(seg, time.Minute)
	if r.Stats.TotalPoints != 5 || r.Missing != 1 {
		t.Fatalf("unexpected report %+v", r)
	}
	// The long gap spans the point without a timestamp, so it is not reported.
	if len(r.Gaps) != 0 {
		t.Fatalf("expected no gaps between adjacent timestamped points, got %+v", r.Gaps)
	}

	seg.Points[2].Time = base.Add(20 * time.Second)
	r = analyze(seg, time.Minute)
	if len(r.Gaps) != 1 || r.Gaps[0].Index != 2 || r.Gaps[0].Gap != 4*time.Minute+40*time.Second {
		t.Fatalf("unexpected gaps %+v", r.Gaps)
	}
}

func TestPrintReport(t *testing.T) {
	base := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	seg := track.Segment{
		Source: "walk.gpx",
		Points: []track.Point{
			track.NewPoint(7.0, 46.0, base),
			track.NewPoint(7.0, 46.01, base.Add(30*time.Minute)),
		},
	}

	var buf bytes.Buffer
	printReport(&buf, analyze(seg, 0))
	out := buf.String()

	for _, want := range []string{"walk.gpx: track 1, segment 1", "points: 2 (0 without time)", "30m", "2025-01-01 07:00 - 07:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyzeCountsMissing(t *testing.T) {
	seg := track.Segment{Points: []track.Point{
		track.NewPoint(7.0, 46.0, time.Time{}),
		track.NewPoint(7.0, 46.001, time.Time{}),
		track.NewPoint(7.0, 46.002, time.Time{}),
	}}

	r := analyze(seg, time.Minute)
	if r.Missing != 3 || r.Stats.AverageInterval != nil || len(r.Gaps) != 0 {
		t.Fatalf("unexpected report for untimed segment %+v", r)
	}
}
