package docstore

import (
	"context"
	"encoding/json"
)

// Local adapts a Store into the Collections interface without going through
// the wire. Used when the store backend runs in the same process, and by
// tests. Values still round-trip through JSON so whole-document overwrite
// semantics match the remote client exactly.
type Local struct {
	store Store
}

var _ Collections = (*Local)(nil)

// NewLocal wraps a backend store
func NewLocal(store Store) *Local {
	return &Local{store: store}
}

// Load fetches the whole collection and unmarshals it into dest
func (l *Local) Load(ctx context.Context, collection string, dest any) error {
	doc, err := l.store.Get(ctx, collection)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set writes a single value into the collection
func (l *Local) Set(ctx context.Context, collection, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, collection, key, raw)
}

// Delete removes a single key from the collection
func (l *Local) Delete(ctx context.Context, collection, key string) error {
	return l.store.Delete(ctx, collection, key)
}

// UpdateAll replaces the whole collection document
func (l *Local) UpdateAll(ctx context.Context, collection string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return l.store.UpdateAll(ctx, collection, doc)
}
