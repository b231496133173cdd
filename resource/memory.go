package resource

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. It backs tests and the
// "memory" driver.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Fields
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Fields)}
}

func (s *MemoryStore) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	docs := make([]Document, 0, len(s.collections[collection]))
	for id, f := range s.collections[collection] {
		docs = append(docs, Document{ID: id, Fields: cloneFields(f)})
	}
	s.mu.RUnlock()
	return Apply(docs, q)
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: cloneFields(f)}, nil
}

func (s *MemoryStore) Add(_ context.Context, collection string, fields Fields) (string, error) {
	f, err := normalize(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Fields)
	}
	s.collections[collection][id] = f
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, patch Fields) error {
	p, err := normalize(patch)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	maps.Copy(f, p)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// cloneFields deep-copies stored fields so callers never share nested maps
// or slices with the store.
func cloneFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneFields(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
