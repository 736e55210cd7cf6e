package thin

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrUnknownKind is returned for a Spec whose Kind names no policy.
var ErrUnknownKind = errors.New("unknown thinning kind")

// Spec kinds, as stored and exchanged over the API.
const (
	KindNone     = "none"
	KindSequence = "sequence"
	KindTime     = "time"
	KindDistance = "distance"
)

// Spec is the serializable form of a Policy. Value is the stride for
// "sequence", minutes for "time" and meters for "distance".
type Spec struct {
	Kind  string  `json:"kind" msgpack:"kind"`
	Value float64 `json:"value,omitempty" msgpack:"value,omitempty"`
}

// Policy converts the spec and validates its parameter.
func (s Spec) Policy() (Policy, error) {
	var p Policy
	switch s.Kind {
	case KindNone, "":
		p = None{}
	case KindSequence:
		if math.IsInf(s.Value, 0) || s.Value != math.Trunc(s.Value) {
			return nil, fmt.Errorf("stride %v is not a whole number: %w", s.Value, ErrInvalidPolicy)
		}
		if math.Abs(s.Value) > math.MaxInt32 {
			return nil, fmt.Errorf("stride %v is out of range: %w", s.Value, ErrInvalidPolicy)
		}
		p = Stride{Every: int(s.Value)}
	case KindTime:
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return nil, fmt.Errorf("time interval %v: %w", s.Value, ErrInvalidPolicy)
		}
		if math.Abs(s.Value) > maxMinutes {
			return nil, fmt.Errorf("time interval of %v minutes is out of range: %w", s.Value, ErrInvalidPolicy)
		}
		p = Minutes(s.Value)
	case KindDistance:
		p = DistanceInterval{Meters: s.Value}
	default:
		return nil, fmt.Errorf("%q: %w", s.Kind, ErrUnknownKind)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// SpecOf converts a policy back to its serializable form.
func SpecOf(p Policy) Spec {
	switch p := p.(type) {
	case Stride:
		return Spec{Kind: KindSequence, Value: float64(p.Every)}
	case TimeInterval:
		return Spec{Kind: KindTime, Value: float64(p.Interval) / float64(time.Minute)}
	case DistanceInterval:
		return Spec{Kind: KindDistance, Value: p.Meters}
	default:
		return Spec{Kind: KindNone}
	}
}
