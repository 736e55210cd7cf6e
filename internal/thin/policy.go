package thin

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNoPolicy is returned when a nil Policy is passed.
	ErrNoPolicy = errors.New("no thinning policy")
	// ErrInvalidPolicy is returned when a policy parameter is out of range.
	ErrInvalidPolicy = errors.New("invalid thinning policy")
)

// Policy selects which points of a track survive thinning. The set of
// implementations is closed: None, Stride, TimeInterval and DistanceInterval.
type Policy interface {
	Validate() error
	String() string
	policy()
}

// None keeps every point.
type None struct{}

// Stride keeps every Every-th point by index.
type Stride struct {
	Every int
}

// TimeInterval keeps a point once Interval has elapsed since the last kept point.
type TimeInterval struct {
	Interval time.Duration
}

// DistanceInterval keeps a point once it lies at least Meters away from the
// last kept point, measured in a straight line.
type DistanceInterval struct {
	Meters float64
}

// maxMinutes is the longest interval a time.Duration can hold, in minutes.
const maxMinutes = float64(math.MaxInt64) / float64(time.Minute)

// Minutes builds a TimeInterval from a fractional number of minutes. Values
// beyond what a time.Duration holds saturate.
func Minutes(m float64) TimeInterval {
	d := m * float64(time.Minute)
	switch {
	case d >= math.MaxInt64:
		return TimeInterval{Interval: math.MaxInt64}
	case d <= math.MinInt64:
		return TimeInterval{Interval: math.MinInt64}
	}
	return TimeInterval{Interval: time.Duration(d)}
}

func (None) policy()             {}
func (Stride) policy()           {}
func (TimeInterval) policy()     {}
func (DistanceInterval) policy() {}

func (None) Validate() error { return nil }

func (s Stride) Validate() error {
	if s.Every < 1 {
		return fmt.Errorf("stride %d must be at least 1: %w", s.Every, ErrInvalidPolicy)
	}
	return nil
}

func (t TimeInterval) Validate() error {
	if t.Interval < 0 {
		return fmt.Errorf("time interval %v must not be negative: %w", t.Interval, ErrInvalidPolicy)
	}
	return nil
}

func (d DistanceInterval) Validate() error {
	if math.IsNaN(d.Meters) || math.IsInf(d.Meters, 0) || d.Meters < 0 {
		return fmt.Errorf("distance interval %v must be a finite non-negative number: %w", d.Meters, ErrInvalidPolicy)
	}
	return nil
}

func (None) String() string               { return "none" }
func (s Stride) String() string           { return fmt.Sprintf("every %d points", s.Every) }
func (t TimeInterval) String() string     { return fmt.Sprintf("every %v", t.Interval) }
func (d DistanceInterval) String() string { return fmt.Sprintf("every %gm", d.Meters) }
