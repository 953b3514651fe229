package access

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeStore is an in-memory DocumentStore with per-collection fault
// injection for exercising degraded paths.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	failing     map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string]map[string]Document),
		failing:     make(map[string]error),
	}
}

func (f *fakeStore) put(collection, id string, doc Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		col = make(map[string]Document)
		f.collections[collection] = col
	}
	if _, ok := doc["id"]; !ok {
		doc["id"] = id
	}
	col[id] = doc
}

func (f *fakeStore) fail(collection string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[collection] = err
}

func (f *fakeStore) Get(ctx context.Context, collection, id string) (Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[collection]; err != nil {
		return nil, err
	}
	doc, ok := f.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return doc, nil
}

func (f *fakeStore) List(ctx context.Context, collection string) ([]Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[collection]; err != nil {
		return nil, err
	}
	col := f.collections[collection]
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, col[id])
	}
	return out, nil
}

func (f *fakeStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	docs, err := f.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0)
	for _, doc := range docs {
		if doc[field] == value {
			out = append(out, doc)
		}
	}
	return out, nil
}

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestCore(t *testing.T, store DocumentStore, opts ...Option) *Core {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	core, err := New(store, opts...)
	if err != nil {
		t.Fatalf("new core: %v", err)
	}
	return core
}
