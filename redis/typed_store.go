package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TypedStore stores JSON-encoded values of type C under prefixed keys.
type TypedStore[C any] struct {
	client *Client
	prefix []string
}

// NewTypedStore creates a TypedStore whose keys are client.Key(prefix..., key).
func NewTypedStore[C any](client *Client, prefix ...string) *TypedStore[C] {
	return &TypedStore[C]{client: client, prefix: prefix}
}

// Key returns the full Redis key for key.
func (s *TypedStore[C]) Key(key string) string {
	return s.client.Key(append(append([]string{}, s.prefix...), key)...)
}

// Load decodes the value stored at key. Missing keys return (nil, nil).
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, err := s.client.Get(ctx, s.Key(key))
	if IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("typed store load %q: %w", key, err)
	}
	return s.decode(key, raw)
}

// LoadMany decodes the values at keys in order, skipping missing ones.
func (s *TypedStore[C]) LoadMany(ctx context.Context, keys []string) ([]*C, error) {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.Key(k)
	}
	raws, err := s.client.MGet(ctx, full...)
	if err != nil {
		return nil, fmt.Errorf("typed store load many: %w", err)
	}
	out := make([]*C, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		val, err := s.decode(keys[i], str)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// Save encodes val and stores it with ttl (0 = no expiration).
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.Key(key), data, ttl); err != nil {
		return fmt.Errorf("typed store save %q: %w", key, err)
	}
	return nil
}

// SaveTx queues the write on a MULTI/EXEC pipeline.
func (s *TypedStore[C]) SaveTx(ctx context.Context, pipe goredis.Pipeliner, key string, val *C) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	pipe.Set(ctx, s.Key(key), data, 0)
	return nil
}

// Delete removes key and reports whether it existed.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.Key(key))
	if err != nil {
		return false, fmt.Errorf("typed store delete %q: %w", key, err)
	}
	return n > 0, nil
}

func (s *TypedStore[C]) decode(key, raw string) (*C, error) {
	var val C
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, fmt.Errorf("typed store unmarshal %q: %w", key, err)
	}
	return &val, nil
}
