// Package redis is a Redis-backed collection store backend. Each collection
// is one Redis hash; whole-document overwrite maps to DEL + HSET in a
// transaction.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamehall/gamehall/internal/docstore"
)

// keyPrefix namespaces all store data in Redis
const keyPrefix = "gamehall"

// collectionKey returns the Redis hash key for a collection
func collectionKey(collection string) string {
	return fmt.Sprintf("%s:collection:%s", keyPrefix, collection)
}

// Store is a Redis-backed implementation of the docstore backend
type Store struct {
	client *redis.Client
	cfg    Config
}

// Ensure Store implements the interface
var _ docstore.Store = (*Store)(nil)

// New creates a new Redis store backend
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Get returns the whole collection document
func (s *Store) Get(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	fields, err := s.client.HGetAll(ctx, collectionKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	doc := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		doc[k] = json.RawMessage(v)
	}
	return doc, nil
}

// GetKey returns a single value, or nil if absent
func (s *Store) GetKey(ctx context.Context, collection, key string) (json.RawMessage, error) {
	value, err := s.client.HGet(ctx, collectionKey(collection), key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return json.RawMessage(value), nil
}

// Set writes a single value
func (s *Store) Set(ctx context.Context, collection, key string, value json.RawMessage) error {
	return s.client.HSet(ctx, collectionKey(collection), key, string(value)).Err()
}

// Delete removes a single key
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	return s.client.HDel(ctx, collectionKey(collection), key).Err()
}

// UpdateAll replaces the whole collection document
func (s *Store) UpdateAll(ctx context.Context, collection string, data map[string]json.RawMessage) error {
	key := collectionKey(collection)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(data) > 0 {
		fields := make(map[string]string, len(data))
		for k, v := range data {
			fields[k] = string(v)
		}
		pipe.HSet(ctx, key, fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}
