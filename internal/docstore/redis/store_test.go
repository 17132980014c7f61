package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/gamehall/gamehall/internal/docstore"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.store = NewWithClient(client, Config{})
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreSuite) TestSetAndGetKey() {
	err := s.store.Set(s.ctx, docstore.CollectionRooms, "r1", json.RawMessage(`{"id":"r1"}`))
	s.Require().NoError(err)

	value, err := s.store.GetKey(s.ctx, docstore.CollectionRooms, "r1")
	s.Require().NoError(err)
	s.JSONEq(`{"id":"r1"}`, string(value))
}

func (s *StoreSuite) TestGetKeyAbsent() {
	value, err := s.store.GetKey(s.ctx, docstore.CollectionRooms, "missing")
	s.Require().NoError(err)
	s.Nil(value)
}

func (s *StoreSuite) TestDelete() {
	_ = s.store.Set(s.ctx, docstore.CollectionGames, "g1", json.RawMessage(`{}`))

	err := s.store.Delete(s.ctx, docstore.CollectionGames, "g1")
	s.Require().NoError(err)

	value, err := s.store.GetKey(s.ctx, docstore.CollectionGames, "g1")
	s.Require().NoError(err)
	s.Nil(value)
}

func (s *StoreSuite) TestGetWholeCollection() {
	_ = s.store.Set(s.ctx, docstore.CollectionUsers, "alice", json.RawMessage(`{"pwd":"a"}`))
	_ = s.store.Set(s.ctx, docstore.CollectionUsers, "bob", json.RawMessage(`{"pwd":"b"}`))

	doc, err := s.store.Get(s.ctx, docstore.CollectionUsers)
	s.Require().NoError(err)
	s.Len(doc, 2)
	s.JSONEq(`{"pwd":"a"}`, string(doc["alice"]))
}

func (s *StoreSuite) TestUpdateAllOverwritesWholeDocument() {
	_ = s.store.Set(s.ctx, docstore.CollectionRooms, "r1", json.RawMessage(`{"id":"r1"}`))
	_ = s.store.Set(s.ctx, docstore.CollectionRooms, "r2", json.RawMessage(`{"id":"r2"}`))

	err := s.store.UpdateAll(s.ctx, docstore.CollectionRooms, map[string]json.RawMessage{
		"r3": json.RawMessage(`{"id":"r3"}`),
	})
	s.Require().NoError(err)

	doc, err := s.store.Get(s.ctx, docstore.CollectionRooms)
	s.Require().NoError(err)
	s.Len(doc, 1)
	s.Contains(doc, "r3")
}

func (s *StoreSuite) TestUpdateAllEmptyClearsCollection() {
	_ = s.store.Set(s.ctx, docstore.CollectionRooms, "r1", json.RawMessage(`{}`))

	err := s.store.UpdateAll(s.ctx, docstore.CollectionRooms, nil)
	s.Require().NoError(err)

	doc, err := s.store.Get(s.ctx, docstore.CollectionRooms)
	s.Require().NoError(err)
	s.Empty(doc)
}

func (s *StoreSuite) TestCollectionsAreIsolated() {
	_ = s.store.Set(s.ctx, docstore.CollectionRooms, "r1", json.RawMessage(`{}`))

	doc, err := s.store.Get(s.ctx, docstore.CollectionGames)
	s.Require().NoError(err)
	s.Empty(doc)
}
