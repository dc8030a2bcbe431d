// Package inmemory provides the in-memory entity data source.
package inmemory

import (
	"context"
	"sync"

	"github.com/letmevibethatforyou/discovery"
)

// Source implements discovery.DataSource and discovery.Catalog over an
// in-memory document set, one ordered sequence per kind.
type Source struct {
	mu       sync.RWMutex
	entities map[discovery.Kind][]discovery.Entity
	idIndex  map[string]int // maps kind/ID to index in the kind's slice
}

// New creates a new in-memory source.
// The source is ready to use and is safe for concurrent operations.
func New() *Source {
	return &Source{
		entities: make(map[discovery.Kind][]discovery.Entity),
		idIndex:  make(map[string]int),
	}
}

func indexKey(kind discovery.Kind, id string) string {
	return string(kind) + "/" + id
}

// Add indexes e and adds it to the store. If an entity with the same kind
// and ID already exists, it is replaced in place.
// This method is safe for concurrent use.
func (s *Source) Add(e discovery.Entity) {
	e = discovery.Index(e)
	kind := e.EntityKind()
	key := indexKey(kind, e.EntityID())

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entities[kind]
	if idx, exists := s.idIndex[key]; exists {
		// Copy on write: slices handed out by Entities stay untouched.
		next := make([]discovery.Entity, len(list))
		copy(next, list)
		next[idx] = e
		s.entities[kind] = next
		return
	}
	s.idIndex[key] = len(list)
	s.entities[kind] = append(list[:len(list):len(list)], e)
}

// AddJSON decodes a self-describing JSON document (see discovery.DecodeDocument)
// and adds it to the store.
// This method is safe for concurrent use.
func (s *Source) AddJSON(data []byte) error {
	e, err := discovery.DecodeDocument(data)
	if err != nil {
		return err
	}
	s.Add(e)
	return nil
}

// Remove removes an entity by kind and ID.
// Returns true if the entity was found and removed, false if it was not found.
// This method is safe for concurrent use.
func (s *Source) Remove(kind discovery.Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := indexKey(kind, id)
	idx, exists := s.idIndex[key]
	if !exists {
		return false
	}

	list := s.entities[kind]
	next := make([]discovery.Entity, 0, len(list)-1)
	next = append(next, list[:idx]...)
	next = append(next, list[idx+1:]...)
	s.entities[kind] = next

	// Rebuild index
	delete(s.idIndex, key)
	for i := idx; i < len(next); i++ {
		s.idIndex[indexKey(kind, next[i].EntityID())] = i
	}

	return true
}

// Clear removes all entities from the store.
// This method is safe for concurrent use.
func (s *Source) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = make(map[discovery.Kind][]discovery.Entity)
	s.idIndex = make(map[string]int)
}

// Size returns the number of entities currently stored.
// This method is safe for concurrent use.
func (s *Source) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idIndex)
}

// Entities implements discovery.Catalog. The returned slice must be treated
// as read-only.
func (s *Source) Entities(kind discovery.Kind) []discovery.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[kind]
}

// Fetch implements discovery.DataSource.
func (s *Source) Fetch(ctx context.Context, kind discovery.Kind) ([]discovery.Entity, error) {
	select {
	case <-ctx.Done():
		return nil, discovery.ErrCanceled
	default:
	}
	return s.Entities(kind), nil
}

// Titles returns the label of every entity, in kind order, for use as the
// suggestion title pool.
func (s *Source) Titles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var titles []string
	for _, kind := range discovery.Kinds {
		// Post labels are body excerpts, not titles.
		if kind == discovery.KindPost {
			continue
		}
		for _, e := range s.entities[kind] {
			titles = append(titles, e.Label())
		}
	}
	return titles
}
