package draw

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/feature"
)

// vertexMode is the shared vertex-accumulation behavior: placed vertices
// plus a trailing ghost vertex that follows the pointer. Concrete modes pick
// the feature kind, the geometry shape and the minimum vertex count.
type vertexMode struct {
	env  *Env
	id   string
	kind feature.Kind

	vertices []orb.Point
	ghost    *orb.Point

	minVertices int
	closeRing   bool // polygon: geometry is a closed ring
	stopped     bool
}

func (m *vertexMode) Setup(env *Env) {
	m.env = env
	m.id = env.Store.NewID()
	env.Store.Put(feature.Feature{
		ID:       m.id,
		Kind:     m.kind,
		Geometry: orb.LineString{},
	})
}

func (m *vertexMode) OnDown(p orb.Point) {
	m.vertices = append(m.vertices, p)
	m.ghost = nil
	m.sync()
}

func (m *vertexMode) OnMove(p orb.Point) {
	m.ghost = &p
	m.sync()
}

func (m *vertexMode) OnUp(orb.Point) {}

func (m *vertexMode) Finished() bool { return false }

// Handles returns only the most recent vertex. Line and polygon modes
// override this to expose every placed vertex so labels can anchor to them.
func (m *vertexMode) Handles() []orb.Point {
	if n := len(m.vertices); n > 0 {
		return m.vertices[n-1:]
	}
	return nil
}

// Stop validates the accumulated vertices: too few and the feature is
// deleted silently, otherwise the ghost is dropped and the final geometry
// persisted and handed off.
func (m *vertexMode) Stop(commit bool) {
	if m.stopped {
		return
	}
	m.stopped = true

	if !commit || len(m.vertices) < m.minVertices {
		m.env.Store.Delete(m.id)
		return
	}

	m.ghost = nil
	m.sync()
	m.env.OnCreated(m.id)
}

// points returns placed vertices plus the ghost, if present.
func (m *vertexMode) points() []orb.Point {
	pts := append([]orb.Point(nil), m.vertices...)
	if m.ghost != nil {
		pts = append(pts, *m.ghost)
	}
	return pts
}

// sync writes the current working geometry to the store.
func (m *vertexMode) sync() {
	f, ok := m.env.Store.Get(m.id)
	if !ok {
		return
	}
	pts := m.points()
	if m.closeRing && len(pts) >= 3 {
		ring := append(orb.Ring(pts), pts[0])
		f.Geometry = orb.Polygon{ring}
	} else {
		f.Geometry = orb.LineString(pts)
	}
	m.env.Store.Put(f)
}
