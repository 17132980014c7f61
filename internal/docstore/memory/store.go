// Package memory is an in-memory collection store backend with optional
// JSON file snapshots.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gamehall/gamehall/internal/docstore"
)

// Collections held by the store. Requests for anything else fail.
var defaultCollections = []string{
	docstore.CollectionUsers,
	docstore.CollectionGames,
	docstore.CollectionRooms,
	docstore.CollectionReviews,
}

// Store is an in-memory implementation of the docstore backend. When
// snapshotDir is set, every mutation rewrites that collection's JSON file
// and collections are reloaded from disk at startup.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	snapshotDir string
}

// Ensure Store implements the interface
var _ docstore.Store = (*Store)(nil)

// New creates an empty in-memory store without snapshots
func New() *Store {
	s := &Store{collections: make(map[string]map[string]json.RawMessage)}
	for _, name := range defaultCollections {
		s.collections[name] = make(map[string]json.RawMessage)
	}
	return s
}

// NewWithSnapshots creates a store that persists each collection as
// <dir>/<collection>.json, loading any existing files.
func NewWithSnapshots(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := New()
	s.snapshotDir = dir
	for name := range s.collections {
		if err := s.load(name); err != nil {
			return nil, fmt.Errorf("load collection %s: %w", name, err)
		}
	}
	return s, nil
}

func (s *Store) load(collection string) error {
	raw, err := os.ReadFile(s.snapshotPath(collection))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	s.collections[collection] = doc
	return nil
}

// save writes the collection snapshot; caller holds the write lock
func (s *Store) save(collection string) error {
	if s.snapshotDir == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.collections[collection], "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.snapshotPath(collection), raw, 0o644)
}

func (s *Store) snapshotPath(collection string) string {
	return filepath.Join(s.snapshotDir, collection+".json")
}

func (s *Store) collection(name string) (map[string]json.RawMessage, error) {
	doc, ok := s.collections[name]
	if !ok {
		return nil, docstore.ErrUnknownCollection
	}
	return doc, nil
}

// Get returns a copy of the whole collection document
func (s *Store) Get(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

// GetKey returns a single value, or nil if absent
func (s *Store) GetKey(ctx context.Context, collection, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	return doc[key], nil
}

// Set writes a single value
func (s *Store) Set(ctx context.Context, collection, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.collection(collection)
	if err != nil {
		return err
	}
	doc[key] = value
	return s.save(collection)
}

// Delete removes a single key
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.collection(collection)
	if err != nil {
		return err
	}
	delete(doc, key)
	return s.save(collection)
}

// UpdateAll replaces the whole collection document
func (s *Store) UpdateAll(ctx context.Context, collection string, data map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.collection(collection); err != nil {
		return err
	}
	if data == nil {
		data = make(map[string]json.RawMessage)
	}
	s.collections[collection] = data
	return s.save(collection)
}
