// Package feature holds the live feature model behind the drawing engine:
// a tagged feature type per shape kind, the mutable per-session store, and
// the event bus that carries dirty/render notifications.
package feature

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geom"
	"github.com/joeblew999/plat-draw/internal/route"
)

// Kind discriminates the feature variants. Each kind decides which of the
// optional info structs is populated and how display geometry is derived.
type Kind string

const (
	KindPlain       Kind = "plain"        // line or polygon, geometry is authoritative
	KindRadiusLine  Kind = "radius_line"  // 2-point line, circle polygon derived
	KindGreatCircle Kind = "great_circle" // waypoint line, geodesic path derived
	KindRouted      Kind = "routed"       // waypoints + segments, concatenation derived
	KindDisplayOnly Kind = "display_only" // rendered only, never source of truth
)

// CircleInfo is the typed property set of a radius line. AzimuthDeg is the
// bearing from center to edge captured at creation time; it must survive
// later renders so the tessellation stays phase-aligned with the edge handle.
type CircleInfo struct {
	Center     orb.Point `json:"center"`
	RadiusKm   float64   `json:"radiusKm"`
	AzimuthDeg float64   `json:"azimuthDegrees"`
}

// RouteInfo is the typed property set of a routed feature. Waypoints are the
// user-placed vertices; Segments run between consecutive waypoint pairs and
// stay addressable by index so an edit can re-fetch only the legs adjacent
// to a dragged waypoint.
type RouteInfo struct {
	Profile   route.Profile   `json:"profile"`
	Waypoints []orb.Point     `json:"waypoints"`
	Segments  []route.Segment `json:"segments"`
	Distance  float64         `json:"distance"` // meters, sum over segments
	Duration  float64         `json:"duration"` // seconds, sum over segments
}

// Feature is one drawable shape. Exactly the info struct matching Kind is
// non-nil; everything else about the shape lives in Geometry.
type Feature struct {
	ID       string       `json:"id"`
	Kind     Kind         `json:"kind"`
	Geometry orb.Geometry `json:"-"`

	// Version increments on every store mutation; derived-geometry caches
	// key off it.
	Version uint64 `json:"version"`

	Circle *CircleInfo `json:"circle,omitempty"`
	Route  *RouteInfo  `json:"route,omitempty"`

	// Parent links a display-only feature back to its authoritative source
	// (e.g. a rendered circle polygon to its radius line).
	Parent string `json:"parent,omitempty"`
}

// Clone returns a deep copy safe to mutate while other readers hold copies
// from the store.
func (f Feature) Clone() Feature {
	if f.Geometry != nil {
		f.Geometry = orb.Clone(f.Geometry)
	}
	if f.Circle != nil {
		c := *f.Circle
		f.Circle = &c
	}
	if f.Route != nil {
		r := *f.Route
		r.Waypoints = append([]orb.Point(nil), r.Waypoints...)
		r.Segments = append([]route.Segment(nil), r.Segments...)
		f.Route = &r
	}
	return f
}

// CircleParams returns the circle parameters of a radius line, recomputing
// them from the two coordinates when the stored info is missing. A radius
// line with bad geometry yields ok=false.
func (f *Feature) CircleParams() (CircleInfo, bool) {
	if f.Circle != nil {
		return *f.Circle, true
	}
	line, ok := f.Geometry.(orb.LineString)
	if !ok {
		return CircleInfo{}, false
	}
	center, radiusKm, azimuth, err := geom.DeriveCircle(line)
	if err != nil {
		return CircleInfo{}, false
	}
	return CircleInfo{Center: center, RadiusKm: radiusKm, AzimuthDeg: azimuth}, true
}

// DisplayGeometry returns what the renderer should draw for this feature.
// Radius lines render as their tessellated circle, great-circle features as
// the sampled geodesic path, routed features as the segment concatenation.
// The result is derived on every call; the persisted Geometry never holds it.
func (f *Feature) DisplayGeometry() orb.Geometry {
	switch f.Kind {
	case KindRadiusLine:
		if c, ok := f.CircleParams(); ok {
			return geom.CirclePolygon(c.Center, c.RadiusKm, c.AzimuthDeg)
		}
	case KindGreatCircle:
		if line, ok := f.Geometry.(orb.LineString); ok {
			return geom.GreatCirclePath(line)
		}
	case KindRouted:
		if f.Route != nil && len(f.Route.Segments) > 0 {
			lines := make([]orb.LineString, 0, len(f.Route.Segments))
			for _, s := range f.Route.Segments {
				lines = append(lines, s.Geometry)
			}
			return geom.ConcatSegments(lines)
		}
	}
	return f.Geometry
}
