// Package resource is the document store used by the account and film
// packages: schemaless records grouped in named collections, addressed by an
// opaque id, queried with equality filters, a single ordering and a limit.
//
// Three stores implement Store: MemoryStore, SQLStore (gorm over sqlite or
// postgres) and RedisStore. Open picks one from Config.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
)

// ErrNotFound is returned by Get, Update and Delete for unknown ids.
var ErrNotFound = errors.New("resource: not found")

// Fields holds a document's data. Values are JSON-compatible: string,
// float64, bool, nil, []any and map[string]any.
type Fields = map[string]any

// Document is a stored record.
type Document struct {
	ID     string
	Fields Fields
}

// MarshalJSON flattens the document: {"id": ..., <fields>}.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+1)
	maps.Copy(out, d.Fields)
	out["id"] = d.ID
	return json.Marshal(out)
}

// String returns the named field as a string, or "" when absent or not a
// string.
func (d Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

// Int returns the named numeric field truncated to int.
func (d Document) Int(field string) (int, bool) {
	switch v := d.Fields[field].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// Store is the document store contract.
type Store interface {
	// Query returns the documents of collection matching q, ordered and
	// limited as requested.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Add stores a new document and returns its generated id.
	Add(ctx context.Context, collection string, fields Fields) (string, error)

	// Update merges patch into an existing document.
	Update(ctx context.Context, collection, id string, patch Fields) error

	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error
}

// normalize round-trips fields through JSON so every driver holds and
// compares the same value types.
func normalize(fields Fields) (Fields, error) {
	if fields == nil {
		return Fields{}, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var out Fields
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	delete(out, "id")
	return out, nil
}
