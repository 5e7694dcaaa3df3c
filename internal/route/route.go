// Package route defines the boundary to the routing backend: transport
// profiles, route segments, the Fetcher interface and its HTTP
// implementation, and the straight-line fallback used when the backend is
// unreachable.
package route

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Profile is a transport mode understood by the routing backend.
type Profile string

const (
	Walking Profile = "walking"
	Bicycle Profile = "bicycle"
	Car     Profile = "car"
)

// ErrSuperseded marks a fetch result that is no longer relevant because a
// newer request replaced it or the requesting mode stopped. Callers discard
// the result silently; it is never a user-visible failure.
var ErrSuperseded = errors.New("route request superseded")

// Segment is one routed leg between two consecutive waypoints.
type Segment struct {
	Geometry orb.LineString `json:"geometry"`
	Distance float64        `json:"distance"` // meters
	Duration float64        `json:"duration"` // seconds

	// Approximate is set when the segment is a straight-line fallback
	// rather than a real routed path.
	Approximate bool `json:"approximate,omitempty"`

	// SnappedWaypoints holds the backend's snapped endpoints, when provided.
	SnappedWaypoints []orb.Point `json:"snappedWaypoints,omitempty"`
}

// fallbackSpeeds are assumed travel speeds (m/s) for straight-line segments.
var fallbackSpeeds = map[Profile]float64{
	Walking: 1.4,
	Bicycle: 4.2,
	Car:     13.9,
}

// StraightLine builds an approximate segment directly connecting two points,
// with duration estimated from an assumed per-profile speed. Used when the
// routing backend fails so that drawing can continue.
func StraightLine(from, to orb.Point, profile Profile) Segment {
	dist := geo.Distance(from, to)
	speed, ok := fallbackSpeeds[profile]
	if !ok {
		speed = fallbackSpeeds[Walking]
	}
	return Segment{
		Geometry:    orb.LineString{from, to},
		Distance:    dist,
		Duration:    dist / speed,
		Approximate: true,
	}
}
