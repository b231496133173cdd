package resource

import (
	"context"
	"errors"
	"maps"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/filmotheque/redis"
)

// redisRecord is the JSON value stored per document.
type redisRecord struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// ClientProvider yields the connected redis client. redis.Component
// satisfies it.
type ClientProvider interface {
	Client() *redis.Client
}

// RedisStore keeps each document as a JSON value under
// <prefix>:doc:<collection>:<id> and the ids of a collection in the set
// <prefix>:idx:<collection>. Queries load the collection and evaluate in
// memory.
type RedisStore struct {
	rc ClientProvider
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over rc.
func NewRedisStore(rc ClientProvider) *RedisStore {
	return &RedisStore{rc: rc}
}

func (s *RedisStore) client() (*redis.Client, error) {
	c := s.rc.Client()
	if c == nil {
		return nil, errors.New("resource: redis not started")
	}
	return c, nil
}

func (s *RedisStore) docs(c *redis.Client, collection string) *redis.TypedStore[redisRecord] {
	return redis.NewTypedStore[redisRecord](c, "doc", collection)
}

func indexKey(c *redis.Client, collection string) string {
	return c.Key("idx", collection)
}

func (s *RedisStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	ids, err := c.SMembers(ctx, indexKey(c, collection))
	if err != nil {
		return nil, err
	}
	recs, err := s.docs(c, collection).LoadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(recs))
	for _, r := range recs {
		docs = append(docs, r.document())
	}
	return Apply(docs, q)
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	rec, err := s.docs(c, collection).Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	d := rec.document()
	return &d, nil
}

func (s *RedisStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	f, err := normalize(fields)
	if err != nil {
		return "", err
	}
	c, err := s.client()
	if err != nil {
		return "", err
	}
	rec := &redisRecord{ID: uuid.NewString(), Fields: f}
	store := s.docs(c, collection)
	err = c.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		if err := store.SaveTx(ctx, pipe, rec.ID, rec); err != nil {
			return err
		}
		pipe.SAdd(ctx, indexKey(c, collection), rec.ID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Update merges patch with WATCH on the document key so a concurrent
// write aborts the transaction instead of being lost.
func (s *RedisStore) Update(ctx context.Context, collection, id string, patch Fields) error {
	p, err := normalize(patch)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return err
	}
	store := s.docs(c, collection)
	key := store.Key(id)

	return c.Unwrap().Watch(ctx, func(tx *goredis.Tx) error {
		rec, err := store.Load(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrNotFound
		}
		maps.Copy(rec.Fields, p)
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			return store.SaveTx(ctx, pipe, id, rec)
		})
		return err
	}, key)
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	c, err := s.client()
	if err != nil {
		return err
	}
	existed, err := s.docs(c, collection).Delete(ctx, id)
	if err != nil {
		return err
	}
	if _, err := c.Unwrap().SRem(ctx, indexKey(c, collection), id).Result(); err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}
	return nil
}

func (r *redisRecord) document() Document {
	f := r.Fields
	if f == nil {
		f = Fields{}
	}
	return Document{ID: r.ID, Fields: f}
}
