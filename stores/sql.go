package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oarkflow/squealx"

	"github.com/rideops/access"
)

// SQLDocumentStore persists documents as JSON bodies in a single table
// (squealx). Queries decode and filter in Go so the backend stays
// driver-agnostic; the document bodies are schemaless.
type SQLDocumentStore struct {
	db *squealx.DB
}

func NewSQLDocumentStore(db *squealx.DB) *SQLDocumentStore {
	return &SQLDocumentStore{db: db}
}

func (s *SQLDocumentStore) Get(ctx context.Context, collection, id string) (access.Document, error) {
	q := `SELECT body FROM documents WHERE collection = :collection AND id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"collection": collection, "id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, fmt.Errorf("%w: %s/%s", access.ErrNotFound, collection, id)
	}
	var body string
	if err := r.Scan(&body); err != nil {
		return nil, err
	}
	return decodeBody(id, body)
}

func (s *SQLDocumentStore) List(ctx context.Context, collection string) ([]access.Document, error) {
	q := `SELECT id, body FROM documents WHERE collection = :collection ORDER BY id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"collection": collection})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]access.Document, 0)
	for r.Next() {
		var id, body string
		if err := r.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *SQLDocumentStore) Query(ctx context.Context, collection, field string, value any) ([]access.Document, error) {
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

func (s *SQLDocumentStore) Put(ctx context.Context, collection, id string, doc access.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	q := `INSERT INTO documents(collection, id, body, updated_at) VALUES(:collection, :id, :body, :updated_at)
	      ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	_, err = s.db.NamedExecContext(ctx, q, map[string]any{
		"collection": collection,
		"id":         id,
		"body":       string(body),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	return err
}

func (s *SQLDocumentStore) Delete(ctx context.Context, collection, id string) error {
	q := `DELETE FROM documents WHERE collection = :collection AND id = :id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{"collection": collection, "id": id})
	return err
}

// UpdatedAt reports when a document row was last written. The column may
// come back as a native time or a string depending on the driver.
func (s *SQLDocumentStore) UpdatedAt(ctx context.Context, collection, id string) (time.Time, error) {
	q := `SELECT updated_at FROM documents WHERE collection = :collection AND id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"collection": collection, "id": id})
	if err != nil {
		return time.Time{}, err
	}
	defer r.Close()
	if !r.Next() {
		return time.Time{}, fmt.Errorf("%w: %s/%s", access.ErrNotFound, collection, id)
	}
	var raw any
	if err := r.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseFlexibleTime(v)
	case []byte:
		return parseFlexibleTime(string(v))
	}
	return time.Time{}, fmt.Errorf("unexpected updated_at type %T", raw)
}

func decodeBody(id, body string) (access.Document, error) {
	doc := access.Document{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}
	if _, ok := doc["id"]; !ok {
		doc["id"] = id
	}
	return doc, nil
}
