package track

import (
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/paulmach/orb/geo"
)

// Stats describes a point sequence. Nil fields mean the value is unknown
// because the track lacks enough timestamps.
type Stats struct {
	TotalPoints     int
	TotalDistance   float64 // km
	AverageInterval *time.Duration
	StartTime       *time.Time
	EndTime         *time.Time
	Duration        *time.Duration
}

type statsJSON struct {
	TotalPoints     int        `json:"total_points"`
	TotalDistance   float64    `json:"total_distance_km"`
	AverageInterval *float64   `json:"average_time_interval_ms"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Duration        *float64   `json:"duration_ms"`
}

// MarshalJSON writes durations as milliseconds.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		TotalPoints:     s.TotalPoints,
		TotalDistance:   s.TotalDistance,
		AverageInterval: millis(s.AverageInterval),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Duration:        millis(s.Duration),
	})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw statsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Stats{
		TotalPoints:     raw.TotalPoints,
		TotalDistance:   raw.TotalDistance,
		AverageInterval: fromMillis(raw.AverageInterval),
		StartTime:       raw.StartTime,
		EndTime:         raw.EndTime,
		Duration:        fromMillis(raw.Duration),
	}
	return nil
}

func millis(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	ms := float64(*d) / float64(time.Millisecond)
	return &ms
}

func fromMillis(ms *float64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms * float64(time.Millisecond))
	return &d
}

// Calculate computes Stats for points. It never fails: a distance that cannot
// be computed is reported as 0, missing timestamps leave the time fields nil.
// Timestamps are used in input order and never sorted.
func Calculate(points []Point) Stats {
	stats := Stats{TotalPoints: len(points)}

	if len(points) > 1 {
		stats.TotalDistance = PathLength(points) / 1000
		if math.IsNaN(stats.TotalDistance) || math.IsInf(stats.TotalDistance, 0) {
			log.Printf("distance calculation failed for %d points, reporting 0", len(points))
			stats.TotalDistance = 0
		}
	}

	validTimes := make([]time.Time, 0, len(points))
	for _, p := range points {
		if p.HasTime() {
			validTimes = append(validTimes, p.Time)
		}
	}

	switch {
	case len(validTimes) > 1:
		start := validTimes[0]
		end := validTimes[len(validTimes)-1]
		duration := end.Sub(start)
		avg := duration / time.Duration(len(validTimes)-1)
		stats.StartTime = &start
		stats.EndTime = &end
		stats.Duration = &duration
		stats.AverageInterval = &avg
	case len(validTimes) == 1:
		start := validTimes[0]
		end := validTimes[0]
		var duration time.Duration
		stats.StartTime = &start
		stats.EndTime = &end
		stats.Duration = &duration
	}

	return stats
}

// Distance returns the haversine distance between two points in meters.
func Distance(a, b Point) float64 {
	return geo.DistanceHaversine(a.Coord, b.Coord)
}

// PathLength sums the distance between consecutive points, in meters.
func PathLength(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
