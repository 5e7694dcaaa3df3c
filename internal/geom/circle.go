// Package geom provides the pure geometry algorithms behind the draw modes:
// bearing-aligned circle tessellation, geodesic great-circle paths with
// antimeridian handling, and route segment concatenation.
//
// All coordinates are WGS84 lon/lat (orb.Point order), distances are meters
// unless a name says otherwise.
package geom

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Tessellation facet counts. The higher count bounds chord error on large
// circles where 64 facets become visible.
const (
	circleSteps      = 64
	circleStepsLarge = 128
	largeRadiusKm    = 100
)

// CircleSteps returns the tessellation facet count for a circle of the given
// radius.
func CircleSteps(radiusKm float64) int {
	if radiusKm > largeRadiusKm {
		return circleStepsLarge
	}
	return circleSteps
}

// CirclePolygon tessellates a geodesic circle around center. The ring starts
// exactly on azimuthDeg so that one vertex always coincides with the circle's
// edge handle regardless of facet count; the ring is closed (steps+1 points).
func CirclePolygon(center orb.Point, radiusKm, azimuthDeg float64) orb.Polygon {
	steps := CircleSteps(radiusKm)
	ring := make(orb.Ring, 0, steps+1)
	radiusM := radiusKm * 1000

	for i := 0; i < steps; i++ {
		bearing := azimuthDeg + float64(i)*360/float64(steps)
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radiusM))
	}
	ring = append(ring, ring[0])

	return orb.Polygon{ring}
}

// RadiusLine builds the two-point authoritative representation of a circle:
// [center, edge] where edge sits at radiusKm along azimuthDeg.
func RadiusLine(center orb.Point, radiusKm, azimuthDeg float64) orb.LineString {
	edge := geo.PointAtBearingAndDistance(center, azimuthDeg, radiusKm*1000)
	return orb.LineString{center, edge}
}

// DeriveCircle recovers center, radius and azimuth from a radius line. It is
// the fallback for radius lines whose stored properties are missing or stale;
// the two coordinates alone are always enough to rebuild the circle.
func DeriveCircle(line orb.LineString) (center orb.Point, radiusKm, azimuthDeg float64, err error) {
	if len(line) != 2 {
		return orb.Point{}, 0, 0, fmt.Errorf("radius line must have exactly 2 points, got %d", len(line))
	}
	center = line[0]
	radiusKm = geo.Distance(center, line[1]) / 1000
	azimuthDeg = NormalizeBearing(geo.Bearing(center, line[1]))
	return center, radiusKm, azimuthDeg, nil
}

// NormalizeBearing maps a bearing into [0, 360).
func NormalizeBearing(deg float64) float64 {
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	return deg
}
