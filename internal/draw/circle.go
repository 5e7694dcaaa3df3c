package draw

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/geom"
)

// CircleMode draws a circle in two clicks: the first fixes the center, the
// second fixes the edge and completes the mode. The persisted feature is
// always the 2-point radius line; the circle polygon is derived on render.
type CircleMode struct {
	env *Env
	id  string

	center    orb.Point
	hasCenter bool
	finished  bool
	stopped   bool
}

// NewCircleMode creates a circle drawing mode.
func NewCircleMode() *CircleMode {
	return &CircleMode{}
}

func (m *CircleMode) Setup(env *Env) {
	m.env = env
	m.id = env.Store.NewID()
	env.Store.Put(feature.Feature{
		ID:       m.id,
		Kind:     feature.KindRadiusLine,
		Geometry: orb.LineString{},
	})
}

func (m *CircleMode) OnDown(p orb.Point) {
	if !m.hasCenter {
		m.center = p
		m.hasCenter = true
		m.sync(p)
		return
	}
	// Second click fixes the edge: freeze radius and azimuth and complete.
	m.sync(p)
	m.finished = true
}

func (m *CircleMode) OnMove(p orb.Point) {
	if !m.hasCenter || m.finished {
		return
	}
	m.sync(p)
}

func (m *CircleMode) OnUp(orb.Point) {}

func (m *CircleMode) Finished() bool { return m.finished }

// Handles exposes center and edge.
func (m *CircleMode) Handles() []orb.Point {
	f, ok := m.env.Store.Get(m.id)
	if !ok {
		return nil
	}
	line, _ := f.Geometry.(orb.LineString)
	return append([]orb.Point(nil), line...)
}

func (m *CircleMode) Stop(commit bool) {
	if m.stopped {
		return
	}
	m.stopped = true

	if !commit || !m.finished {
		m.env.Store.Delete(m.id)
		return
	}
	m.env.OnCreated(m.id)
}

// sync writes the radius line [center, edge] with live-derived circle
// parameters. The azimuth stored at the final sync is the one later renders
// must keep, so the tessellation's first vertex stays on the edge handle.
func (m *CircleMode) sync(edge orb.Point) {
	f, ok := m.env.Store.Get(m.id)
	if !ok {
		return
	}
	f.Geometry = orb.LineString{m.center, edge}
	f.Circle = &feature.CircleInfo{
		Center:     m.center,
		RadiusKm:   geo.Distance(m.center, edge) / 1000,
		AzimuthDeg: geom.NormalizeBearing(geo.Bearing(m.center, edge)),
	}
	m.env.Store.Put(f)
}
