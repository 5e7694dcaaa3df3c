// Package session ties one client's drawing state together: feature store,
// draw controller, measurement service and label engine, all behind a mutex
// that serializes the engine's entry points (pointer/key events, render
// ticks, async route resolutions).
package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-draw/internal/config"
	"github.com/joeblew999/plat-draw/internal/draw"
	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/measure"
	"github.com/joeblew999/plat-draw/internal/route"
	"github.com/joeblew999/plat-draw/internal/units"
)

// Session is one client's drawing engine instance.
type Session struct {
	ID string

	Bus          *feature.EventBus
	Store        *feature.Store
	Measurements *measure.Service
	Engine       *measure.Engine

	mu      sync.Mutex
	ctrl    *draw.Controller
	fetcher route.Fetcher
	cfg     config.Config
	drawing atomic.Bool
}

// New creates a session wired to the given routing fetcher.
func New(id string, fetcher route.Fetcher, cfg config.Config) *Session {
	bus := feature.NewEventBus()
	store := feature.NewStore(bus)
	measurements := measure.NewService(bus)

	s := &Session{
		ID:           id,
		Bus:          bus,
		Store:        store,
		Measurements: measurements,
		fetcher:      fetcher,
		cfg:          cfg,
	}

	env := &draw.Env{
		Store:    store,
		Bus:      bus,
		Dispatch: s.dispatch,
		OnCreated: func(featureID string) {
			bus.Publish(feature.Event{Resource: "features", Action: "completed", ID: featureID})
		},
	}
	s.ctrl = draw.NewController(env)

	engine := measure.NewEngine(store, measurements, bus)
	engine.Drawing = s.drawing.Load
	engine.DefaultUnits = units.System(cfg.Units.Default)
	if cfg.Labels.TickMs > 0 {
		engine.TickInterval = time.Duration(cfg.Labels.TickMs) * time.Millisecond
	}
	if cfg.Labels.MinDiagonalPx > 0 {
		engine.MinDiagonalPx = cfg.Labels.MinDiagonalPx
	}
	s.Engine = engine

	return s
}

// dispatch serializes async completions into the session.
func (s *Session) dispatch(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.drawing.Store(s.ctrl.Drawing())
}

// StartMode activates a draw mode by name. An empty profile uses the
// configured default.
func (s *Session) StartMode(name string, profile route.Profile) error {
	m, err := s.newMode(name, profile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ctrl.Start(name, m)
	s.drawing.Store(true)
	s.mu.Unlock()
	s.Engine.Poke()
	return nil
}

func (s *Session) newMode(name string, profile route.Profile) (draw.Mode, error) {
	if profile == "" {
		profile = route.Profile(s.cfg.Routing.Profile)
	}
	switch name {
	case "line":
		return draw.NewLineMode(), nil
	case "polygon":
		return draw.NewPolygonMode(), nil
	case "circle":
		return draw.NewCircleMode(), nil
	case "great_circle":
		return draw.NewGreatCircleMode(), nil
	case "routing":
		m := draw.NewRoutingMode(s.fetcher, profile)
		if s.cfg.Routing.DebounceMs > 0 {
			m.SetDebounce(time.Duration(s.cfg.Routing.DebounceMs) * time.Millisecond)
		}
		return m, nil
	case "select":
		return draw.NewSelectMode(s.ctrl), nil
	case "edit":
		id := s.ctrl.Selected()
		if id == "" {
			return nil, fmt.Errorf("edit mode needs a selected feature")
		}
		m := draw.NewEditMode(id, s.fetcher)
		m.Reenter = func() {
			s.ctrl.Restart(func() draw.Mode {
				fresh := draw.NewEditMode(id, s.fetcher)
				fresh.Reenter = m.Reenter
				return fresh
			})
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown mode %q", name)
}

// StopMode stops the active mode; commit=false discards the in-progress
// feature.
func (s *Session) StopMode(commit bool) {
	s.mu.Lock()
	s.ctrl.StopActive(commit)
	s.drawing.Store(false)
	s.mu.Unlock()
}

// PointerDown forwards a pointer-down event.
func (s *Session) PointerDown(p orb.Point) {
	s.dispatch(func() { s.ctrl.PointerDown(p) })
}

// PointerMove forwards a pointer-move event.
func (s *Session) PointerMove(p orb.Point) {
	s.dispatch(func() { s.ctrl.PointerMove(p) })
}

// PointerUp forwards a pointer-up event.
func (s *Session) PointerUp(p orb.Point) {
	s.dispatch(func() { s.ctrl.PointerUp(p) })
}

// KeyUp forwards a key-up event (Escape discards, Enter finalizes).
func (s *Session) KeyUp(key string) {
	s.dispatch(func() { s.ctrl.KeyUp(key) })
}

// Select marks a feature as selected without a pointer event.
func (s *Session) Select(id string) {
	s.dispatch(func() { s.ctrl.Select(id) })
}

// Selected returns the selected feature id.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Selected()
}

// ActiveMode returns the active mode name, or "".
func (s *Session) ActiveMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.ActiveName()
}

// Handles returns the active mode's draggable vertices.
func (s *Session) Handles() []orb.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Handles()
}

// Features returns the display-ready GeoJSON collection.
func (s *Session) Features() *geojson.FeatureCollection {
	return feature.Collection(s.Store.List())
}

// Labels computes the current label set on demand (pull variant of the SSE
// tick stream).
func (s *Session) Labels() []measure.Label {
	return s.Engine.Tick()
}

// SetViewport updates the viewport used for label visibility.
func (s *Session) SetViewport(v measure.Viewport) {
	s.Engine.SetViewport(v)
}

// Close stops the active mode and releases the session.
func (s *Session) Close() {
	s.StopMode(true)
}

// Service manages drawing sessions.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	nextID   uint64
	fetcher  route.Fetcher
	cfg      config.Config
}

// NewService creates a session service.
func NewService(fetcher route.Fetcher, cfg config.Config) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		fetcher:  fetcher,
		cfg:      cfg,
	}
}

// Create allocates a new session.
func (s *Service) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("s%d", s.nextID)
	sess := New(id, s.fetcher, s.cfg)
	s.sessions[id] = sess
	return sess
}

// Get returns a session by id.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete closes and removes a session.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q not found", id)
	}
	sess.Close()
	return nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
