package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/rideops/access"
)

// RedisDocumentStore keeps documents as JSON strings (key: doc:{collection}:{id})
// with a per-collection index set (key: col:{collection}).
type RedisDocumentStore struct {
	client *redis.Client
	docFmt string
	colFmt string
}

func NewRedisDocumentStore(client *redis.Client) *RedisDocumentStore {
	return &RedisDocumentStore{client: client, docFmt: "doc:%s:%s", colFmt: "col:%s"}
}

func (r *RedisDocumentStore) docKey(collection, id string) string {
	return fmt.Sprintf(r.docFmt, collection, id)
}

func (r *RedisDocumentStore) colKey(collection string) string {
	return fmt.Sprintf(r.colFmt, collection)
}

func (r *RedisDocumentStore) Get(ctx context.Context, collection, id string) (access.Document, error) {
	body, err := r.client.Get(ctx, r.docKey(collection, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s/%s", access.ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeBody(id, body)
}

func (r *RedisDocumentStore) List(ctx context.Context, collection string) ([]access.Document, error) {
	ids, err := r.client.SMembers(ctx, r.colKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	out := make([]access.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := r.Get(ctx, collection, id)
		if err != nil {
			// Index entry without a body: stale, skip it.
			if errors.Is(err, access.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *RedisDocumentStore) Query(ctx context.Context, collection, field string, value any) ([]access.Document, error) {
	docs, err := r.List(ctx, collection)
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

func (r *RedisDocumentStore) Put(ctx context.Context, collection, id string, doc access.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.docKey(collection, id), string(body), 0).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, r.colKey(collection), id).Err()
}

func (r *RedisDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := r.client.Del(ctx, r.docKey(collection, id)).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, r.colKey(collection), id).Err()
}
