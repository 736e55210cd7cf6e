// Package edit holds small track editing helpers that run before thinning.
package edit

import (
	"time"

	"github.com/planbiir/gthin/internal/track"
)

// InterpolateTimes returns a copy of points where each run of missing
// timestamps between two timestamped anchors is filled proportionally to the
// distance travelled. Runs before the first or after the last timestamp are
// left missing.
func InterpolateTimes(points []track.Point) []track.Point {
	out := track.Clone(points)
	if len(out) < 3 {
		return out
	}

	progress := computeProgress(out)
	prev := -1
	for i := range out {
		if !out[i].HasTime() {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			fillRun(out, progress, prev, i)
		}
		prev = i
	}
	return out
}

// Missing counts points without a timestamp.
func Missing(points []track.Point) int {
	n := 0
	for _, p := range points {
		if !p.HasTime() {
			n++
		}
	}
	return n
}

// fillRun assigns times to the points strictly between from and to.
func fillRun(points []track.Point, progress []float64, from, to int) {
	start, end := points[from].Time, points[to].Time
	gap := end.Sub(start)
	if gap <= 0 {
		for k := from + 1; k < to; k++ {
			points[k].Time = start
		}
		return
	}

	span := progress[to] - progress[from]
	for k := from + 1; k < to; k++ {
		var frac float64
		if span > 0 {
			frac = (progress[k] - progress[from]) / span
		} else {
			frac = float64(k-from) / float64(to-from)
		}
		points[k].Time = start.Add(time.Duration(frac * float64(gap)))
	}
}

func computeProgress(points []track.Point) []float64 {
	progress := make([]float64, len(points))
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += track.Distance(points[i-1], points[i])
		progress[i] = total
	}
	return progress
}
