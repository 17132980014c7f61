package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/gamehall/gamehall/internal/docstore"
	"github.com/gamehall/gamehall/internal/docstore/memory"
	"github.com/gamehall/gamehall/internal/model"
	"github.com/gamehall/gamehall/internal/testutil"
)

type ServerSuite struct {
	suite.Suite
	server *docstore.Server
	client *docstore.Client
	ctx    context.Context
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.ctx = context.Background()
	s.server = docstore.NewServer(memory.New(), testutil.NopLogger())

	addr, err := s.server.Listen("127.0.0.1:0")
	s.Require().NoError(err)
	go func() { _ = s.server.Serve(s.ctx) }()

	s.client = docstore.NewClient(addr.String())
}

func (s *ServerSuite) TearDownTest() {
	s.Require().NoError(s.server.Close())
}

func (s *ServerSuite) TestSetAndLoad() {
	room := model.Room{ID: "r1", Name: "quickmatch", GameID: "pong", Host: "alice", Players: []string{"alice"}, Status: model.RoomStatusWaiting}
	s.Require().NoError(s.client.Set(s.ctx, docstore.CollectionRooms, room.ID, room))

	rooms := make(map[string]model.Room)
	s.Require().NoError(s.client.Load(s.ctx, docstore.CollectionRooms, &rooms))
	s.Len(rooms, 1)
	s.Equal("quickmatch", rooms["r1"].Name)
	s.Equal(model.RoomStatusWaiting, rooms["r1"].Status)
}

func (s *ServerSuite) TestLoadEmptyCollection() {
	rooms := make(map[string]model.Room)
	s.Require().NoError(s.client.Load(s.ctx, docstore.CollectionRooms, &rooms))
	s.Empty(rooms)
}

func (s *ServerSuite) TestDelete() {
	s.Require().NoError(s.client.Set(s.ctx, docstore.CollectionGames, "pong", model.Game{Name: "Pong"}))
	s.Require().NoError(s.client.Delete(s.ctx, docstore.CollectionGames, "pong"))

	games := make(map[string]model.Game)
	s.Require().NoError(s.client.Load(s.ctx, docstore.CollectionGames, &games))
	s.Empty(games)
}

func (s *ServerSuite) TestUpdateAllReplacesDocument() {
	s.Require().NoError(s.client.Set(s.ctx, docstore.CollectionRooms, "r1", model.Room{ID: "r1"}))
	s.Require().NoError(s.client.Set(s.ctx, docstore.CollectionRooms, "r2", model.Room{ID: "r2"}))

	s.Require().NoError(s.client.UpdateAll(s.ctx, docstore.CollectionRooms, map[string]model.Room{
		"r3": {ID: "r3"},
	}))

	rooms := make(map[string]model.Room)
	s.Require().NoError(s.client.Load(s.ctx, docstore.CollectionRooms, &rooms))
	s.Len(rooms, 1)
	s.Contains(rooms, "r3")
}

func (s *ServerSuite) TestUnknownCollectionError() {
	err := s.client.Set(s.ctx, "not-a-collection", "k", 1)
	s.Require().Error(err)
	s.Contains(err.Error(), "unknown collection")
}

func (s *ServerSuite) TestSequentialRequestsReuseNothing() {
	// Each client call dials fresh; the server must keep accepting.
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.client.Set(s.ctx, docstore.CollectionUsers, "alice", model.User{Password: "pw"}))
	}
	users := make(map[string]model.User)
	s.Require().NoError(s.client.Load(s.ctx, docstore.CollectionUsers, &users))
	s.Len(users, 1)
}
