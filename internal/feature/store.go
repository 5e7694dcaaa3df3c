package feature

import (
	"fmt"
	"sync"
)

// Store holds the live features of one drawing session, keyed by id. Every
// mutation bumps the feature's version and publishes a render event on the
// bus; there is no batching here — modes that need it (routing) batch
// themselves.
type Store struct {
	mu       sync.RWMutex
	features map[string]*Feature
	nextID   uint64
	bus      *EventBus
}

// NewStore creates an empty feature store publishing to bus.
func NewStore(bus *EventBus) *Store {
	return &Store{
		features: make(map[string]*Feature),
		bus:      bus,
	}
}

// NewID allocates a fresh feature id.
func (s *Store) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("f%d", s.nextID)
}

// Get returns a copy of the feature with the given id.
func (s *Store) Get(id string) (Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.features[id]
	if !ok {
		return Feature{}, false
	}
	return *f, true
}

// List returns copies of all features.
func (s *Store) List() []Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Feature, 0, len(s.features))
	for _, f := range s.features {
		out = append(out, *f)
	}
	return out
}

// Len returns the number of stored features.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.features)
}

// Put inserts or replaces a feature, marking it dirty.
func (s *Store) Put(f Feature) {
	s.mu.Lock()
	prev, existed := s.features[f.ID]
	if existed {
		f.Version = prev.Version + 1
	} else {
		f.Version = 1
	}
	cp := f
	s.features[f.ID] = &cp
	s.mu.Unlock()

	action := "updated"
	if !existed {
		action = "created"
	}
	s.bus.Publish(Event{Resource: "features", Action: action, ID: f.ID})
}

// Delete removes a feature. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, existed := s.features[id]
	delete(s.features, id)
	s.mu.Unlock()

	if existed {
		s.bus.Publish(Event{Resource: "features", Action: "deleted", ID: id})
	}
}
