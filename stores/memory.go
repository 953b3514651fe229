package stores

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rideops/access"
)

// MemoryDocumentStore keeps documents in process memory, for tests, demos
// and the CLI's default backend.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]access.Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{collections: make(map[string]map[string]access.Document)}
}

func (s *MemoryDocumentStore) Get(ctx context.Context, collection, id string) (access.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", access.ErrNotFound, collection, id)
	}
	return cloneDocument(doc), nil
}

func (s *MemoryDocumentStore) List(ctx context.Context, collection string) ([]access.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col := s.collections[collection]
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]access.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneDocument(col[id]))
	}
	return out, nil
}

func (s *MemoryDocumentStore) Query(ctx context.Context, collection, field string, value any) ([]access.Document, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]access.Document, 0)
	for _, doc := range docs {
		if matchField(doc, field, value) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *MemoryDocumentStore) Put(ctx context.Context, collection, id string, doc access.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]access.Document)
		s.collections[collection] = col
	}
	stored := cloneDocument(doc)
	if _, ok := stored["id"]; !ok {
		stored["id"] = id
	}
	col[id] = stored
	return nil
}

func (s *MemoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}
