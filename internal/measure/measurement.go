// Package measure holds user-facing measurement records and the label
// engine that derives formatted, positioned text labels from live feature
// geometry on every render tick.
package measure

import (
	"fmt"
	"sync"

	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/units"
)

// Type classifies what a measurement reports.
type Type string

const (
	TypeLine     Type = "line"
	TypeDistance Type = "distance"
	TypeArea     Type = "area"
	TypeCircle   Type = "circle"
	TypeWalking  Type = "walking"
	TypeCar      Type = "car"
)

// Measurement binds a user-facing record 1:1 to a drawn feature. Geometry is
// never duplicated here; the label engine re-reads it from the feature store
// each tick, so feature edits show up without an explicit sync.
type Measurement struct {
	ID            string            `json:"id" required:"false"`
	DrawFeatureID string            `json:"drawFeatureId" doc:"ID of the backing feature in the live store"`
	Type          Type              `json:"type" enum:"line,distance,area,circle,walking,car" doc:"Measurement type"`
	UnitSystem    units.System      `json:"unitSystem,omitempty" doc:"Unit system preference; empty falls back to the session default"`
	Properties    map[string]string `json:"properties,omitempty" doc:"Free-form UI properties"`
}

// Service manages measurement records for one session.
type Service struct {
	mu     sync.RWMutex
	byID   map[string]Measurement
	nextID uint64
	bus    *feature.EventBus
}

// NewService creates an empty measurement service publishing to bus.
func NewService(bus *feature.EventBus) *Service {
	return &Service{byID: make(map[string]Measurement), bus: bus}
}

// List returns all measurements.
func (s *Service) List() []Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Measurement, 0, len(s.byID))
	for _, m := range s.byID {
		out = append(out, m)
	}
	return out
}

// Get returns a measurement by ID.
func (s *Service) Get(id string) (Measurement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	return m, ok
}

// ForFeature returns the measurement backed by the given feature, if any.
func (s *Service) ForFeature(featureID string) (Measurement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.byID {
		if m.DrawFeatureID == featureID {
			return m, true
		}
	}
	return Measurement{}, false
}

// Len returns the number of measurements.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Create adds a measurement record.
func (s *Service) Create(m Measurement) (Measurement, error) {
	if m.DrawFeatureID == "" {
		return Measurement{}, fmt.Errorf("measurement needs a drawFeatureId")
	}
	s.mu.Lock()
	if m.ID == "" {
		s.nextID++
		m.ID = fmt.Sprintf("m%d", s.nextID)
	}
	if _, exists := s.byID[m.ID]; exists {
		s.mu.Unlock()
		return Measurement{}, fmt.Errorf("measurement %q already exists", m.ID)
	}
	s.byID[m.ID] = m
	s.mu.Unlock()

	s.bus.Publish(feature.Event{Resource: "measurements", Action: "created", ID: m.ID})
	return m, nil
}

// Update replaces a measurement by ID.
func (s *Service) Update(id string, m Measurement) (Measurement, error) {
	s.mu.Lock()
	if _, exists := s.byID[id]; !exists {
		s.mu.Unlock()
		return Measurement{}, fmt.Errorf("measurement %q not found", id)
	}
	m.ID = id
	s.byID[id] = m
	s.mu.Unlock()

	s.bus.Publish(feature.Event{Resource: "measurements", Action: "updated", ID: id})
	return m, nil
}

// Delete removes a measurement by ID.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	if _, exists := s.byID[id]; !exists {
		s.mu.Unlock()
		return fmt.Errorf("measurement %q not found", id)
	}
	delete(s.byID, id)
	s.mu.Unlock()

	s.bus.Publish(feature.Event{Resource: "measurements", Action: "deleted", ID: id})
	return nil
}
