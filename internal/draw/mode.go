// Package draw implements the interactive drawing engine: a generic
// vertex-editing mode lifecycle, the concrete draw modes (line, polygon,
// circle, great circle, routed path), and the select/edit modes that patch
// their behavior for derived and routed features.
//
// The engine is single-threaded and event-driven. All entry points (pointer,
// key, async route resolutions) must be serialized by the owner through
// Env.Dispatch; nothing here locks.
package draw

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/feature"
)

// Mode is one interaction state machine. The framework guarantees a strict
// lifecycle: Setup once, then any number of pointer events, then Stop exactly
// once. Escape and Enter are handled by the controller, not the mode.
type Mode interface {
	// Setup allocates the mode's feature and initializes mode-local state.
	Setup(env *Env)
	// OnDown commits or advances a vertex at p.
	OnDown(p orb.Point)
	// OnMove updates the trailing ghost vertex.
	OnMove(p orb.Point)
	// OnUp ends a drag, if the mode supports dragging.
	OnUp(p orb.Point)
	// Stop validates the feature and either persists it (commit) or deletes
	// it. Stop must be idempotent.
	Stop(commit bool)
	// Finished reports that the mode completed on its own (e.g. a circle's
	// second click) and the controller should stop it.
	Finished() bool
	// Handles returns the vertices the renderer should show as draggable.
	Handles() []orb.Point
}

// Env is what a mode gets to work with.
type Env struct {
	Store *feature.Store
	Bus   *feature.EventBus

	// Dispatch schedules fn on the engine's event loop. Async completions
	// (route fetches, debounce timers) must re-enter through it.
	Dispatch func(fn func())

	// OnCreated fires when a mode hands off a finished feature to the
	// owning UI, which may wrap it in a measurement.
	OnCreated func(featureID string)
}

// Controller enforces the single-active-mode rule and routes input to the
// active mode. Switching modes always goes through Stop of the previous one.
type Controller struct {
	env      *Env
	active   Mode
	name     string
	selected string
}

// NewController creates a controller around env. A nil Dispatch is replaced
// with a synchronous call-through (useful in tests).
func NewController(env *Env) *Controller {
	if env.Dispatch == nil {
		env.Dispatch = func(fn func()) { fn() }
	}
	if env.OnCreated == nil {
		env.OnCreated = func(string) {}
	}
	return &Controller{env: env}
}

// Env returns the controller's mode environment.
func (c *Controller) Env() *Env { return c.env }

// Start stops any active mode (committing it) and activates m.
func (c *Controller) Start(name string, m Mode) {
	c.StopActive(true)
	c.active = m
	c.name = name
	m.Setup(c.env)
}

// StopActive stops the active mode, if any.
func (c *Controller) StopActive(commit bool) {
	if c.active == nil {
		return
	}
	c.active.Stop(commit)
	c.active = nil
	c.name = ""
}

// Restart re-enters the active mode: stop with commit, then set up a fresh
// instance produced by fresh. Used after a routed edit so the renderer picks
// up rebuilt geometry.
func (c *Controller) Restart(fresh func() Mode) {
	if c.active == nil {
		return
	}
	name := c.name
	c.StopActive(true)
	c.Start(name, fresh())
}

// Drawing reports whether a mode is currently active.
func (c *Controller) Drawing() bool { return c.active != nil }

// ActiveName returns the active mode's registered name, or "".
func (c *Controller) ActiveName() string { return c.name }

// Handles returns the active mode's draggable vertices.
func (c *Controller) Handles() []orb.Point {
	if c.active == nil {
		return nil
	}
	return c.active.Handles()
}

// Selected returns the id of the currently selected feature, or "".
func (c *Controller) Selected() string { return c.selected }

// Select marks a feature as selected.
func (c *Controller) Select(id string) { c.selected = id }

// PointerDown forwards a pointer-down/tap to the active mode.
func (c *Controller) PointerDown(p orb.Point) {
	if c.active == nil {
		return
	}
	c.active.OnDown(p)
	c.reap()
}

// PointerMove forwards a pointer-move to the active mode.
func (c *Controller) PointerMove(p orb.Point) {
	if c.active == nil {
		return
	}
	c.active.OnMove(p)
	c.reap()
}

// PointerUp forwards a pointer-up to the active mode.
func (c *Controller) PointerUp(p orb.Point) {
	if c.active == nil {
		return
	}
	c.active.OnUp(p)
	c.reap()
}

// KeyUp handles the framework keys: Escape discards the in-progress feature,
// Enter finalizes it.
func (c *Controller) KeyUp(key string) {
	switch key {
	case "Escape":
		c.StopActive(false)
	case "Enter":
		c.StopActive(true)
	}
}

// reap stops a mode that reported completion on its own.
func (c *Controller) reap() {
	if c.active != nil && c.active.Finished() {
		c.StopActive(true)
	}
}
