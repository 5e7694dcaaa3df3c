package draw

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/feature"
)

// LineMode draws a multi-vertex line. Unlike the base behavior it exposes
// every placed vertex as a handle, which is what lets length labels anchor
// to specific vertices.
type LineMode struct {
	vertexMode
}

// NewLineMode creates a line drawing mode.
func NewLineMode() *LineMode {
	m := &LineMode{}
	m.kind = feature.KindPlain
	m.minVertices = 2
	return m
}

// Handles exposes all placed vertices, not just the latest.
func (m *LineMode) Handles() []orb.Point {
	return append([]orb.Point(nil), m.vertices...)
}

// PolygonMode draws a closed polygon. Same handle behavior as LineMode.
type PolygonMode struct {
	vertexMode
}

// NewPolygonMode creates a polygon drawing mode.
func NewPolygonMode() *PolygonMode {
	m := &PolygonMode{}
	m.kind = feature.KindPlain
	m.minVertices = 3
	m.closeRing = true
	return m
}

// Handles exposes all placed vertices, not just the latest.
func (m *PolygonMode) Handles() []orb.Point {
	return append([]orb.Point(nil), m.vertices...)
}

// GreatCircleMode accumulates waypoints exactly like LineMode but marks the
// feature as a great circle; the rendered geodesic path is always derived
// from the waypoints, never stored.
type GreatCircleMode struct {
	LineMode
}

// NewGreatCircleMode creates a great-circle drawing mode.
func NewGreatCircleMode() *GreatCircleMode {
	m := &GreatCircleMode{}
	m.kind = feature.KindGreatCircle
	m.minVertices = 2
	return m
}
