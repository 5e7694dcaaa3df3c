package draw

import (
	"context"
	"log"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/geom"
	"github.com/joeblew999/plat-draw/internal/route"
)

// DefaultHitToleranceM is how close (in meters) a click must land to a
// feature or handle to count as a hit.
const DefaultHitToleranceM = 500.0

// SelectMode picks the feature nearest to a click. Clicking a display-only
// derived feature (a rendered circle polygon, a route preview) redirects the
// selection to its authoritative parent instead of the ephemeral geometry.
type SelectMode struct {
	env  *Env
	ctrl *Controller

	// ToleranceM overrides the hit tolerance; zero means the default.
	ToleranceM float64
}

// NewSelectMode creates a select mode bound to ctrl.
func NewSelectMode(ctrl *Controller) *SelectMode {
	return &SelectMode{ctrl: ctrl}
}

func (m *SelectMode) Setup(env *Env) { m.env = env }

func (m *SelectMode) OnDown(p orb.Point) {
	tol := m.ToleranceM
	if tol == 0 {
		tol = DefaultHitToleranceM
	}

	var hit *feature.Feature
	best := tol
	for _, f := range m.env.Store.List() {
		if d := featureDistance(&f, p); d < best {
			best = d
			cp := f
			hit = &cp
		}
	}
	if hit == nil {
		m.ctrl.Select("")
		return
	}
	if hit.Kind == feature.KindDisplayOnly && hit.Parent != "" {
		// Derived geometry is never the selection target.
		m.ctrl.Select(hit.Parent)
		return
	}
	m.ctrl.Select(hit.ID)
}

func (m *SelectMode) OnMove(orb.Point) {}

func (m *SelectMode) OnUp(orb.Point) {}

func (m *SelectMode) Stop(bool) {}

func (m *SelectMode) Finished() bool { return false }

func (m *SelectMode) Handles() []orb.Point { return nil }

// EditMode drags vertices of an already-committed feature. For radius lines
// the two handles are center and edge; for routed features interaction is
// restricted to the waypoint list, and releasing a dragged waypoint
// re-fetches only the adjacent segments.
type EditMode struct {
	env     *Env
	fetcher route.Fetcher

	// Reenter, when set, is called after a routed rebuild so the owner can
	// cycle the mode and let the renderer pick up the new geometry.
	Reenter func()

	// ToleranceM overrides the hit tolerance; zero means the default.
	ToleranceM float64

	id       string
	dragIdx  int
	dragging bool
	stopped  bool
}

// NewEditMode creates an edit mode for the feature with the given id.
func NewEditMode(id string, fetcher route.Fetcher) *EditMode {
	return &EditMode{id: id, fetcher: fetcher, dragIdx: -1}
}

func (m *EditMode) Setup(env *Env) { m.env = env }

// Handles returns the editable vertices for the target feature.
func (m *EditMode) Handles() []orb.Point {
	f, ok := m.env.Store.Get(m.id)
	if !ok {
		return nil
	}
	return editHandles(&f)
}

func (m *EditMode) OnDown(p orb.Point) {
	tol := m.ToleranceM
	if tol == 0 {
		tol = DefaultHitToleranceM
	}
	handles := m.Handles()
	m.dragIdx = -1
	best := tol
	for i, h := range handles {
		if d := geo.Distance(h, p); d < best {
			best = d
			m.dragIdx = i
		}
	}
	m.dragging = m.dragIdx >= 0
}

func (m *EditMode) OnMove(p orb.Point) {
	if !m.dragging {
		return
	}
	f, ok := m.env.Store.Get(m.id)
	if !ok {
		return
	}
	f = f.Clone()
	moveHandle(&f, m.dragIdx, p)
	m.env.Store.Put(f)
}

// OnUp ends the drag. Routed features get their adjacent segments
// re-fetched; nothing else on the route is touched.
func (m *EditMode) OnUp(orb.Point) {
	if !m.dragging {
		return
	}
	m.dragging = false
	idx := m.dragIdx
	m.dragIdx = -1

	f, ok := m.env.Store.Get(m.id)
	if !ok || f.Kind != feature.KindRouted || f.Route == nil {
		return
	}
	m.refetchAdjacent(f, idx)
}

func (m *EditMode) Stop(bool) { m.stopped = true }

func (m *EditMode) Finished() bool { return false }

// refetchAdjacent re-fetches the one or two segments touching waypoint idx
// concurrently, then rebuilds the routed geometry and totals in place.
func (m *EditMode) refetchAdjacent(f feature.Feature, idx int) {
	info := *f.Route
	var indexes []int
	if idx > 0 {
		indexes = append(indexes, idx-1)
	}
	if idx < len(info.Waypoints)-1 {
		indexes = append(indexes, idx)
	}
	if len(indexes) == 0 {
		return
	}

	results := make([]*route.Segment, len(info.Segments))
	var wg sync.WaitGroup
	for _, i := range indexes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := info.Waypoints[i], info.Waypoints[i+1]
			seg, err := m.fetcher.FetchRoute(context.Background(), from, to, info.Profile)
			if err != nil {
				log.Printf("draw: segment %d re-fetch failed, using straight line: %v", i, err)
				seg = route.StraightLine(from, to, info.Profile)
			}
			results[i] = &seg
		}(i)
	}

	go func() {
		wg.Wait()
		m.env.Dispatch(func() {
			if m.stopped {
				return
			}
			cur, ok := m.env.Store.Get(m.id)
			if !ok || cur.Route == nil {
				return
			}
			cur = cur.Clone()
			for i, seg := range results {
				if seg != nil && i < len(cur.Route.Segments) {
					cur.Route.Segments[i] = *seg
				}
			}
			cur.Route.Distance, cur.Route.Duration = 0, 0
			for _, s := range cur.Route.Segments {
				cur.Route.Distance += s.Distance
				cur.Route.Duration += s.Duration
			}
			cur.Geometry = cur.DisplayGeometry()
			m.env.Store.Put(cur)
			if m.Reenter != nil {
				m.Reenter()
			}
		})
	}()
}

// editHandles returns the draggable vertices by feature kind. Routed
// features expose waypoints only, never the routed geometry samples.
func editHandles(f *feature.Feature) []orb.Point {
	switch f.Kind {
	case feature.KindRouted:
		if f.Route != nil {
			return append([]orb.Point(nil), f.Route.Waypoints...)
		}
	case feature.KindRadiusLine:
		if line, ok := f.Geometry.(orb.LineString); ok {
			return append([]orb.Point(nil), line...)
		}
	default:
		switch g := f.Geometry.(type) {
		case orb.LineString:
			return append([]orb.Point(nil), g...)
		case orb.Polygon:
			if len(g) > 0 && len(g[0]) > 1 {
				// Skip the closing point.
				return append([]orb.Point(nil), g[0][:len(g[0])-1]...)
			}
		}
	}
	return nil
}

// moveHandle applies a drag of handle idx to p.
func moveHandle(f *feature.Feature, idx int, p orb.Point) {
	switch f.Kind {
	case feature.KindRouted:
		if f.Route != nil && idx < len(f.Route.Waypoints) {
			f.Route.Waypoints[idx] = p
		}
	case feature.KindRadiusLine:
		line, ok := f.Geometry.(orb.LineString)
		if !ok || len(line) != 2 {
			return
		}
		params, _ := f.CircleParams()
		switch idx {
		case 0:
			// Center drag translates the circle, preserving radius and azimuth.
			edge := geo.PointAtBearingAndDistance(p, params.AzimuthDeg, params.RadiusKm*1000)
			f.Geometry = orb.LineString{p, edge}
			f.Circle = &feature.CircleInfo{Center: p, RadiusKm: params.RadiusKm, AzimuthDeg: params.AzimuthDeg}
		case 1:
			// Edge drag resizes and re-phases the circle.
			f.Geometry = orb.LineString{line[0], p}
			f.Circle = &feature.CircleInfo{
				Center:     line[0],
				RadiusKm:   geo.Distance(line[0], p) / 1000,
				AzimuthDeg: geom.NormalizeBearing(geo.Bearing(line[0], p)),
			}
		}
	default:
		switch g := f.Geometry.(type) {
		case orb.LineString:
			if idx < len(g) {
				g[idx] = p
			}
		case orb.Polygon:
			if len(g) > 0 && idx < len(g[0])-1 {
				g[0][idx] = p
				if idx == 0 {
					g[0][len(g[0])-1] = p
				}
			}
		}
	}
}

// featureDistance is the minimum distance from p to any vertex of the
// feature's display geometry.
func featureDistance(f *feature.Feature, p orb.Point) float64 {
	min := math.MaxFloat64
	for _, v := range geometryPoints(f.DisplayGeometry()) {
		if d := geo.Distance(v, p); d < min {
			min = d
		}
	}
	return min
}

func geometryPoints(g orb.Geometry) []orb.Point {
	switch g := g.(type) {
	case orb.Point:
		return []orb.Point{g}
	case orb.LineString:
		return g
	case orb.Polygon:
		var pts []orb.Point
		for _, ring := range g {
			pts = append(pts, ring...)
		}
		return pts
	}
	return nil
}
