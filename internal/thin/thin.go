package thin

import (
	"fmt"
	"time"

	"github.com/planbiir/gthin/internal/track"
)

// Result holds the thinned points with statistics before and after thinning.
type Result struct {
	Points []track.Point `json:"points"`
	Before track.Stats   `json:"before"`
	After  track.Stats   `json:"after"`
}

// Select returns the indices of points kept by p, in ascending order.
// The first and last index are always present. Tracks of two points or
// fewer are returned whole whatever the policy.
func Select(points []track.Point, p Policy) ([]int, error) {
	if p == nil {
		return nil, ErrNoPolicy
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := track.Validate(points); err != nil {
		return nil, err
	}

	if len(points) <= 2 {
		return allIndices(len(points)), nil
	}

	switch p := p.(type) {
	case None:
		return allIndices(len(points)), nil
	case Stride:
		return byStride(points, p.Every), nil
	case TimeInterval:
		return byTime(points, p.Interval), nil
	case DistanceInterval:
		return byDistance(points, p.Meters), nil
	default:
		return nil, fmt.Errorf("unsupported policy %T: %w", p, ErrInvalidPolicy)
	}
}

// Thin returns a new slice with the points kept by p.
func Thin(points []track.Point, p Policy) ([]track.Point, error) {
	indices, err := Select(points, p)
	if err != nil {
		return nil, err
	}
	return extract(points, indices), nil
}

// Apply thins points and reports statistics for the input and the output.
func Apply(points []track.Point, p Policy) (Result, error) {
	kept, err := Thin(points, p)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Points: kept,
		Before: track.Calculate(points),
		After:  track.Calculate(kept),
	}, nil
}

func byStride(points []track.Point, every int) []int {
	last := len(points) - 1
	indices := make([]int, 0, last/every+2)
	indices = append(indices, 0)

	// The bound excludes the last index; it is appended below.
	for i := every; i < last; i += every {
		indices = append(indices, i)
	}

	return append(indices, last)
}

// byTime never recovers once the reference time is lost: a kept point
// without a timestamp blocks every later candidate.
func byTime(points []track.Point, interval time.Duration) []int {
	last := len(points) - 1
	indices := []int{0}
	lastKept := points[0].Time

	for i := 1; i < last; i++ {
		current := points[i].Time
		if current.IsZero() || lastKept.IsZero() {
			continue
		}
		if current.Sub(lastKept) >= interval {
			indices = append(indices, i)
			lastKept = current
		}
	}

	return append(indices, last)
}

// byDistance measures each candidate from the last kept point, not along the path.
func byDistance(points []track.Point, meters float64) []int {
	last := len(points) - 1
	indices := []int{0}
	lastKept := points[0]

	for i := 1; i < last; i++ {
		if track.Distance(lastKept, points[i]) >= meters {
			indices = append(indices, i)
			lastKept = points[i]
		}
	}

	return append(indices, last)
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func extract(points []track.Point, indices []int) []track.Point {
	out := make([]track.Point, len(indices))
	for i, idx := range indices {
		out[i] = points[idx]
	}
	return out
}
