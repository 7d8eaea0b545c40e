package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		collections: make(map[string]map[string]map[string]any),
	}
}

// Put stores or replaces a record.
func (s *RecordStore) Put(_ context.Context, collection, id string, record map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		s.collections[collection] = coll
	}
	coll[id] = maps.Clone(record)
	return nil
}

// Get retrieves a record.
func (s *RecordStore) Get(_ context.Context, collection, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.collections[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return maps.Clone(record), nil
}

// List returns every record in a collection.
func (s *RecordStore) List(_ context.Context, collection string) (map[string]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]any, len(s.collections[collection]))
	for id, record := range s.collections[collection] {
		out[id] = maps.Clone(record)
	}
	return out, nil
}
