// Package docstore implements the collection store contract: named
// collections of JSON documents addressed by key, served over a synchronous
// TCP connection. The lobby is a client; the store itself runs as its own
// service with pluggable backends.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Actions understood by the store
const (
	ActionGet       = "GET"
	ActionSet       = "SET"
	ActionDelete    = "DELETE"
	ActionUpdateAll = "UPDATE_ALL"
)

// ErrUnknownCollection is returned for collections the store does not hold
var ErrUnknownCollection = errors.New("unknown collection")

// Request is one store operation on the wire. GET without a key returns the
// whole collection; UPDATE_ALL replaces the whole collection document.
type Request struct {
	Action     string          `json:"action"`
	Collection string          `json:"collection"`
	Key        string          `json:"key,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Response is the store's reply to a single request
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Store is the backend interface behind the store server. A collection is a
// document: a map of keys to raw JSON values.
type Store interface {
	// Get returns the whole collection document
	Get(ctx context.Context, collection string) (map[string]json.RawMessage, error)

	// GetKey returns a single value, or nil if the key is absent
	GetKey(ctx context.Context, collection, key string) (json.RawMessage, error)

	// Set writes a single value
	Set(ctx context.Context, collection, key string, value json.RawMessage) error

	// Delete removes a single key
	Delete(ctx context.Context, collection, key string) error

	// UpdateAll replaces the whole collection document
	UpdateAll(ctx context.Context, collection string, data map[string]json.RawMessage) error
}

// Collections is the typed access the lobby core uses. Load unmarshals a
// whole collection into dest; UpdateAll overwrites a whole collection, so
// callers must always write back a fully-reconstructed document.
type Collections interface {
	Load(ctx context.Context, collection string, dest any) error
	Set(ctx context.Context, collection, key string, value any) error
	Delete(ctx context.Context, collection, key string) error
	UpdateAll(ctx context.Context, collection string, data any) error
}

// Collection names used by the platform
const (
	CollectionUsers   = "users"
	CollectionGames   = "games"
	CollectionRooms   = "rooms"
	CollectionReviews = "reviews"
)
