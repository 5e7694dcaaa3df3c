package measure

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/units"
)

// Engine defaults.
const (
	DefaultTickInterval  = 100 * time.Millisecond
	DefaultMinDiagonalPx = 24.0
)

// Label is one positioned, formatted measurement text. Labels below the
// pixel gate are still computed but flagged invisible so the renderer can
// skip them without the engine losing track.
type Label struct {
	FeatureID     string    `json:"featureId"`
	MeasurementID string    `json:"measurementId,omitempty"`
	Kind          string    `json:"kind"` // length, area, perimeter, radius, azimuth, route
	Position      orb.Point `json:"position"`
	Text          string    `json:"text"`
	Visible       bool      `json:"visible"`
}

// Viewport is what the engine needs from the host renderer to decide label
// visibility: the current zoom level.
type Viewport struct {
	Zoom float64 `json:"zoom"`
}

// Engine computes labels from the live feature store each render tick. The
// tick loop runs only while a mode is drawing or committed measurements
// exist; it tears itself down otherwise and is restarted by Poke.
type Engine struct {
	store        *feature.Store
	measurements *Service
	bus          *feature.EventBus

	// Drawing reports whether a draw mode is currently active.
	Drawing func() bool

	DefaultUnits  units.System
	TickInterval  time.Duration
	MinDiagonalPx float64

	mu       sync.Mutex
	running  bool
	viewport Viewport
}

// NewEngine creates a label engine over the given store and measurements.
func NewEngine(store *feature.Store, measurements *Service, bus *feature.EventBus) *Engine {
	return &Engine{
		store:         store,
		measurements:  measurements,
		bus:           bus,
		Drawing:       func() bool { return false },
		DefaultUnits:  units.Metric,
		TickInterval:  DefaultTickInterval,
		MinDiagonalPx: DefaultMinDiagonalPx,
	}
}

// SetViewport updates the host viewport used by the pixel gate.
func (e *Engine) SetViewport(v Viewport) {
	e.mu.Lock()
	e.viewport = v
	e.mu.Unlock()
}

// Poke starts the tick loop if there is anything to label. Call it whenever
// a mode starts or a measurement is created.
func (e *Engine) Poke() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	if !e.active() {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	go e.run()
}

// active reports whether the loop has any reason to live.
func (e *Engine) active() bool {
	return e.Drawing() || e.measurements.Len() > 0
}

func (e *Engine) run() {
	ticker := time.NewTicker(e.TickInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !e.active() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			return
		}
		labels := e.Tick()
		e.bus.Publish(feature.Event{Resource: "labels", Action: "tick", Data: labels})
	}
}

// Tick computes the current label set. Features backing a committed
// measurement use that measurement's unit preference; features with no
// measurement get provisional labels while a mode is drawing, so the user
// sees live numbers before committing.
func (e *Engine) Tick() []Label {
	e.mu.Lock()
	vp := e.viewport
	e.mu.Unlock()

	drawing := e.Drawing()
	var out []Label

	features := e.store.List()
	sort.Slice(features, func(i, j int) bool { return features[i].ID < features[j].ID })

	for i := range features {
		f := &features[i]
		if f.Kind == feature.KindDisplayOnly {
			continue
		}

		m, measured := e.measurements.ForFeature(f.ID)
		if !measured && !drawing {
			continue
		}
		sys := e.DefaultUnits
		if measured && m.UnitSystem != "" {
			sys = m.UnitSystem
		}

		labels := e.featureLabels(f, sys)
		visible := e.bigEnough(f, vp)
		for j := range labels {
			labels[j].Visible = visible
			if measured {
				labels[j].MeasurementID = m.ID
			}
		}
		out = append(out, labels...)
	}
	return out
}

// featureLabels derives type-specific labels from the feature's current
// geometry.
func (e *Engine) featureLabels(f *feature.Feature, sys units.System) []Label {
	switch f.Kind {
	case feature.KindRadiusLine:
		return e.circleLabels(f, sys)
	case feature.KindRouted:
		return e.routeLabels(f, sys)
	case feature.KindGreatCircle:
		return e.lineLabels(f.ID, f.DisplayGeometry(), sys)
	default:
		switch g := f.Geometry.(type) {
		case orb.LineString:
			return e.lineLabels(f.ID, g, sys)
		case orb.Polygon:
			return e.polygonLabels(f.ID, g, sys)
		}
	}
	return nil
}

// lineLabels anchors the total length at the line's end vertex.
func (e *Engine) lineLabels(id string, g orb.Geometry, sys units.System) []Label {
	line, ok := g.(orb.LineString)
	if !ok || len(line) < 2 {
		return nil
	}
	return []Label{{
		FeatureID: id,
		Kind:      "length",
		Position:  line[len(line)-1],
		Text:      units.Length(geo.Length(line), sys),
	}}
}

// polygonLabels anchors area at the centroid and perimeter at the last
// placed vertex.
func (e *Engine) polygonLabels(id string, poly orb.Polygon, sys units.System) []Label {
	if len(poly) == 0 || len(poly[0]) < 4 {
		return nil
	}
	centroid, _ := planar.CentroidArea(poly)
	ring := poly[0]
	return []Label{
		{FeatureID: id, Kind: "area", Position: centroid, Text: units.Area(geo.Area(poly), sys)},
		{FeatureID: id, Kind: "perimeter", Position: ring[len(ring)-2], Text: units.Length(geo.Length(poly), sys)},
	}
}

// circleLabels anchors area and perimeter at the center, radius and azimuth
// at the edge handle.
func (e *Engine) circleLabels(f *feature.Feature, sys units.System) []Label {
	params, ok := f.CircleParams()
	if !ok || params.RadiusKm <= 0 {
		return nil
	}
	line, _ := f.Geometry.(orb.LineString)
	if len(line) != 2 {
		return nil
	}
	radiusM := params.RadiusKm * 1000
	return []Label{
		{FeatureID: f.ID, Kind: "area", Position: params.Center, Text: units.Area(math.Pi*radiusM*radiusM, sys)},
		{FeatureID: f.ID, Kind: "perimeter", Position: params.Center, Text: units.Length(2*math.Pi*radiusM, sys)},
		{FeatureID: f.ID, Kind: "radius", Position: line[1], Text: units.Length(radiusM, sys)},
		{FeatureID: f.ID, Kind: "azimuth", Position: line[1], Text: units.Bearing(params.AzimuthDeg)},
	}
}

// routeLabels anchors distance and duration at the route end.
func (e *Engine) routeLabels(f *feature.Feature, sys units.System) []Label {
	if f.Route == nil {
		return nil
	}
	line, ok := f.DisplayGeometry().(orb.LineString)
	if !ok || len(line) == 0 {
		return nil
	}
	end := line[len(line)-1]
	return []Label{{
		FeatureID: f.ID,
		Kind:      "route",
		Position:  end,
		Text:      units.Length(f.Route.Distance, sys) + " · " + units.Duration(f.Route.Duration),
	}}
}

// bigEnough applies the pixel gate: a feature whose on-screen bounding-box
// diagonal is below MinDiagonalPx gets invisible labels so zoomed-out maps
// don't clutter.
func (e *Engine) bigEnough(f *feature.Feature, vp Viewport) bool {
	if vp.Zoom == 0 {
		return true // no viewport reported yet
	}
	bound := f.DisplayGeometry().Bound()
	min := project.WGS84.ToMercator(bound.Min)
	max := project.WGS84.ToMercator(bound.Max)
	dx, dy := max[0]-min[0], max[1]-min[1]
	diagonal := math.Hypot(dx, dy)

	// Web-mercator meters per pixel at this zoom (256px tiles).
	metersPerPx := 2 * math.Pi * 6378137 / (256 * math.Pow(2, vp.Zoom))
	return diagonal/metersPerPx >= e.MinDiagonalPx
}
