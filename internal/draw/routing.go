package draw

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/route"
)

// DefaultPreviewDebounce is how long the pointer must rest before a preview
// segment is fetched.
const DefaultPreviewDebounce = 250 * time.Millisecond

// RoutingMode draws a path routed along a network. Authoritative state is
// the clicked waypoint list plus one segment per consecutive waypoint pair;
// the displayed geometry is always rebuilt from the ordered segment array.
//
// Confirmed segments are fetched through a FIFO queue drained strictly one
// request at a time, so out-of-order network responses can never splice the
// route in the wrong sequence. The preview segment (last waypoint → cursor)
// is debounced, only the latest request is kept, and it is never persisted.
type RoutingMode struct {
	env      *Env
	fetcher  route.Fetcher
	profile  route.Profile
	debounce time.Duration

	id        string
	previewID string

	waypoints []orb.Point
	segments  []*route.Segment // index i: waypoints[i] → waypoints[i+1]; nil while in flight
	preview   *route.Segment

	cursor     orb.Point
	previewGen int
	timer      *time.Timer

	queue    []segmentRequest
	draining bool
	stopped  bool
	finished bool
}

type segmentRequest struct {
	index    int
	from, to orb.Point
}

// NewRoutingMode creates a routing mode for the given profile. All state is
// per-instance; a new drawing session gets a new mode.
func NewRoutingMode(fetcher route.Fetcher, profile route.Profile) *RoutingMode {
	return &RoutingMode{
		fetcher:  fetcher,
		profile:  profile,
		debounce: DefaultPreviewDebounce,
	}
}

// SetDebounce overrides the preview fetch debounce delay.
func (m *RoutingMode) SetDebounce(d time.Duration) {
	m.debounce = d
}

func (m *RoutingMode) Setup(env *Env) {
	m.env = env
	m.id = env.Store.NewID()
	env.Store.Put(feature.Feature{
		ID:       m.id,
		Kind:     feature.KindRouted,
		Geometry: orb.LineString{},
		Route:    &feature.RouteInfo{Profile: m.profile},
	})
}

// OnDown commits the previewed vertex as a fixed waypoint and, from the
// second waypoint on, enqueues exactly one segment request for the new pair.
// Earlier segments are never re-requested.
func (m *RoutingMode) OnDown(p orb.Point) {
	if m.stopped {
		return
	}
	m.waypoints = append(m.waypoints, p)
	m.dropPreview()

	if n := len(m.waypoints); n >= 2 {
		i := n - 2
		m.segments = append(m.segments, nil)
		m.queue = append(m.queue, segmentRequest{index: i, from: m.waypoints[i], to: m.waypoints[i+1]})
		m.drain()
	}
	m.sync()
}

// OnMove debounces a preview fetch from the last fixed waypoint to the live
// cursor. A newer move supersedes any pending or in-flight preview.
func (m *RoutingMode) OnMove(p orb.Point) {
	if m.stopped || len(m.waypoints) == 0 {
		return
	}
	m.cursor = p
	m.previewGen++
	gen := m.previewGen

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() {
		m.env.Dispatch(func() { m.fetchPreview(gen) })
	})
}

func (m *RoutingMode) OnUp(orb.Point) {}

func (m *RoutingMode) Finished() bool { return m.finished }

// Handles exposes the clicked waypoints, not the routed geometry samples.
func (m *RoutingMode) Handles() []orb.Point {
	return append([]orb.Point(nil), m.waypoints...)
}

// Stop finalizes the route. If segments are still missing because the user
// finished before in-flight requests settled, the remaining fetches are
// issued concurrently and the route is rebuilt in waypoint order once they
// all resolve.
func (m *RoutingMode) Stop(commit bool) {
	if m.stopped {
		return
	}
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
	}
	m.dropPreview()
	m.queue = nil

	if !commit || len(m.waypoints) < 2 {
		m.env.Store.Delete(m.id)
		return
	}

	missing := m.missingSegments()
	if len(missing) == 0 {
		m.finalize()
		return
	}
	m.fetchMissing(missing)
}

// fetchPreview starts the preview fetch unless it was superseded while the
// debounce timer was pending.
func (m *RoutingMode) fetchPreview(gen int) {
	if m.stopped || gen != m.previewGen {
		return
	}
	from := m.waypoints[len(m.waypoints)-1]
	to := m.cursor

	go func() {
		seg, err := m.fetcher.FetchRoute(context.Background(), from, to, m.profile)
		m.env.Dispatch(func() {
			if m.stopped || gen != m.previewGen {
				return // superseded, discard silently
			}
			if err != nil {
				if errors.Is(err, route.ErrSuperseded) {
					return
				}
				log.Printf("draw: preview route %s failed, using straight line: %v", m.profile, err)
				seg = route.StraightLine(from, to, m.profile)
			}
			m.preview = &seg
			m.sync()
		})
	}()
}

// drain processes the confirmed-segment queue one request at a time, in
// submission order. Each result is applied before the next request starts.
func (m *RoutingMode) drain() {
	if m.draining || len(m.queue) == 0 {
		return
	}
	m.draining = true
	req := m.queue[0]
	m.queue = m.queue[1:]

	go func() {
		seg, err := m.fetcher.FetchRoute(context.Background(), req.from, req.to, m.profile)
		m.env.Dispatch(func() {
			m.draining = false
			if m.stopped {
				// The stop-time bulk fetch owns missing segments now.
				return
			}
			if err != nil {
				if errors.Is(err, route.ErrSuperseded) {
					m.drain()
					return
				}
				log.Printf("draw: route segment %d failed, using straight line: %v", req.index, err)
				seg = route.StraightLine(req.from, req.to, m.profile)
			}
			m.segments[req.index] = &seg
			m.sync()
			m.drain()
		})
	}()
}

// fetchMissing issues the remaining segment fetches concurrently. Ordering
// only matters for the in-order rebuild, which happens after all resolve.
func (m *RoutingMode) fetchMissing(missing []int) {
	results := make([]*route.Segment, len(m.segments))
	var wg sync.WaitGroup

	for _, i := range missing {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := m.waypoints[i], m.waypoints[i+1]
			seg, err := m.fetcher.FetchRoute(context.Background(), from, to, m.profile)
			if err != nil {
				log.Printf("draw: route segment %d failed on stop, using straight line: %v", i, err)
				seg = route.StraightLine(from, to, m.profile)
			}
			results[i] = &seg
		}(i)
	}

	go func() {
		wg.Wait()
		m.env.Dispatch(func() {
			for i, seg := range results {
				if seg != nil {
					m.segments[i] = seg
				}
			}
			m.finalize()
		})
	}()
}

// finalize rebuilds the stored feature from the complete ordered segment
// array, stores the concatenated routed geometry, and hands it off.
func (m *RoutingMode) finalize() {
	m.sync()
	if f, ok := m.env.Store.Get(m.id); ok {
		f.Geometry = f.DisplayGeometry()
		m.env.Store.Put(f)
	}
	m.finished = true
	m.env.OnCreated(m.id)
}

func (m *RoutingMode) missingSegments() []int {
	var missing []int
	for i, s := range m.segments {
		if s == nil {
			missing = append(missing, i)
		}
	}
	return missing
}

// dropPreview removes the preview segment and its display-only feature.
func (m *RoutingMode) dropPreview() {
	m.previewGen++
	m.preview = nil
	if m.previewID != "" {
		m.env.Store.Delete(m.previewID)
		m.previewID = ""
	}
}

// sync writes the confirmed route to the feature and the preview segment to
// a separate display-only feature. Totals are confirmed sums plus, while a
// preview exists, the preview's own distance/duration.
func (m *RoutingMode) sync() {
	f, ok := m.env.Store.Get(m.id)
	if !ok {
		return
	}

	info := feature.RouteInfo{
		Profile:   m.profile,
		Waypoints: append([]orb.Point(nil), m.waypoints...),
	}
	for _, s := range m.segments {
		if s == nil {
			info.Segments = append(info.Segments, route.Segment{})
			continue
		}
		info.Segments = append(info.Segments, *s)
		info.Distance += s.Distance
		info.Duration += s.Duration
	}
	if m.preview != nil {
		info.Distance += m.preview.Distance
		info.Duration += m.preview.Duration
	}

	f.Route = &info
	f.Geometry = orb.LineString(append([]orb.Point(nil), m.waypoints...))
	m.env.Store.Put(f)

	m.syncPreviewFeature()
}

func (m *RoutingMode) syncPreviewFeature() {
	if m.preview == nil {
		return
	}
	if m.previewID == "" {
		m.previewID = m.env.Store.NewID()
	}
	m.env.Store.Put(feature.Feature{
		ID:       m.previewID,
		Kind:     feature.KindDisplayOnly,
		Geometry: m.preview.Geometry,
		Parent:   m.id,
	})
}
