package stores

import (
	"context"
	"reflect"
	"time"

	"github.com/oarkflow/date"

	"github.com/rideops/access"
)

// Seeder is implemented by writable stores so demo/seed data can be loaded.
// The access core itself only ever reads.
type Seeder interface {
	Put(ctx context.Context, collection, id string, doc access.Document) error
}

// SeedAll loads collection -> documents into a writable store. Documents
// without an "id" field are skipped.
func SeedAll(ctx context.Context, s Seeder, data map[string][]access.Document) error {
	for collection, docs := range data {
		for _, doc := range docs {
			id := documentID(doc)
			if id == "" {
				continue
			}
			if err := s.Put(ctx, collection, id, doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func documentID(doc access.Document) string {
	if s, ok := doc["id"].(string); ok {
		return s
	}
	return ""
}

func parseFlexibleTime(s string) (time.Time, error) {
	return date.Parse(s)
}

// matchField implements the Query predicate shared by the store backends:
// equality on a top-level field. String values that both parse as
// timestamps are compared as instants, so an ISO string matches the same
// moment written in another stored format.
func matchField(doc access.Document, field string, value any) bool {
	got, ok := doc[field]
	if !ok {
		return false
	}
	if reflect.DeepEqual(got, value) {
		return true
	}
	gs, gok := got.(string)
	vs, vok := value.(string)
	if gok && vok {
		gt, gerr := parseFlexibleTime(gs)
		vt, verr := parseFlexibleTime(vs)
		if gerr == nil && verr == nil {
			return gt.Equal(vt)
		}
	}
	return false
}

// cloneDocument deep-copies maps and slices so callers can't mutate stored
// state through a returned document.
func cloneDocument(doc access.Document) access.Document {
	if doc == nil {
		return nil
	}
	out := make(access.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case access.Document:
		return cloneDocument(vv)
	case map[string]any:
		return map[string]any(cloneDocument(access.Document(vv)))
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}
