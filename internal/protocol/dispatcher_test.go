package protocol_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gamehall/gamehall/internal/config"
	"github.com/gamehall/gamehall/internal/dependencies/mocks"
	"github.com/gamehall/gamehall/internal/docstore"
	"github.com/gamehall/gamehall/internal/docstore/memory"
	"github.com/gamehall/gamehall/internal/factory"
	"github.com/gamehall/gamehall/internal/model"
	"github.com/gamehall/gamehall/internal/testutil"
)

// DispatcherSuite exercises the wire protocol end to end: a real TCP server
// wired through the factory, talked to with raw line-JSON clients.
type DispatcherSuite struct {
	suite.Suite
	app   *factory.App
	store docstore.Collections
	addr  string
	ctx   context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = docstore.NewLocal(memory.New())

	cfg := config.Lobby{
		GameRuntime:     "python3",
		SpawnDelay:      time.Second,
		MonitorInterval: time.Second,
		CrashGrace:      3 * time.Second,
	}
	clk := mocks.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.app = factory.NewWithDependencies(cfg, 10192, s.store, clk, mocks.NewMockRandom(), testutil.NopLogger())

	addr, err := s.app.Server.Listen("127.0.0.1:0")
	s.Require().NoError(err)
	s.addr = addr.String()
	go func() { _ = s.app.Server.Serve(s.ctx) }()
}

func (s *DispatcherSuite) TearDownTest() {
	s.Require().NoError(s.app.Server.Close())
}

// testClient is a raw protocol client: one JSON line out, replies and
// pushed events read back off the same socket.
type testClient struct {
	s    *DispatcherSuite
	conn net.Conn
	r    *bufio.Reader

	// events pushed while waiting for a synchronous reply
	pending []map[string]any
}

func (s *DispatcherSuite) dial() *testClient {
	conn, err := net.Dial("tcp", s.addr)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return &testClient{s: s, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) sendRaw(line string) {
	_, err := c.conn.Write([]byte(line + "\n"))
	c.s.Require().NoError(err)
}

func (c *testClient) readLine() map[string]any {
	c.s.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	line, err := c.r.ReadBytes('\n')
	c.s.Require().NoError(err)
	var msg map[string]any
	c.s.Require().NoError(json.Unmarshal(line, &msg))
	return msg
}

// do sends a request and returns its reply. Event pushes that arrive first
// are set aside for event() to pick up.
func (c *testClient) do(req map[string]any) map[string]any {
	raw, err := json.Marshal(req)
	c.s.Require().NoError(err)
	c.sendRaw(string(raw))
	for {
		msg := c.readLine()
		if msg["type"] == "event" {
			c.pending = append(c.pending, msg)
			continue
		}
		return msg
	}
}

// event returns the next pushed event, reading from the socket if none is
// already buffered
func (c *testClient) event() map[string]any {
	if len(c.pending) > 0 {
		msg := c.pending[0]
		c.pending = c.pending[1:]
		return msg
	}
	for {
		msg := c.readLine()
		if msg["type"] == "event" {
			return msg
		}
	}
}

func (c *testClient) registerAndLogin(username string) string {
	resp := c.do(map[string]any{"action": "register", "username": username, "password": "pw"})
	c.s.Require().Equal("ok", resp["status"])
	resp = c.do(map[string]any{"action": "login", "username": username, "password": "pw"})
	c.s.Require().Equal("ok", resp["status"])
	token, _ := resp["token"].(string)
	c.s.Require().NotEmpty(token)
	return token
}

func (s *DispatcherSuite) addGame(id string, game model.Game) {
	s.Require().NoError(s.store.Set(s.ctx, docstore.CollectionGames, id, game))
}

func (s *DispatcherSuite) TestRegisterRejectsDuplicate() {
	c := s.dial()
	resp := c.do(map[string]any{"action": "register", "username": "alice", "password": "pw"})
	s.Equal("ok", resp["status"])

	resp = c.do(map[string]any{"action": "register", "username": "alice", "password": "other"})
	s.Equal("error", resp["status"])
}

func (s *DispatcherSuite) TestLoginWrongPassword() {
	c := s.dial()
	c.registerAndLogin("alice")

	c2 := s.dial()
	resp := c2.do(map[string]any{"action": "login", "username": "alice", "password": "wrong"})
	s.Equal("error", resp["status"])
}

func (s *DispatcherSuite) TestUnknownActionKeepsConnectionOpen() {
	c := s.dial()
	resp := c.do(map[string]any{"action": "conquer_world"})
	s.Equal("error", resp["status"])
	s.Equal("Unknown action", resp["message"])

	resp = c.do(map[string]any{"action": "list_games"})
	s.Equal("ok", resp["status"])
}

func (s *DispatcherSuite) TestRoomLifecycleOverTheWire() {
	s.addGame("pong", model.Game{Name: "Pong", MaxPlayers: 2})

	alice := s.dial()
	alice.registerAndLogin("alice")
	bob := s.dial()
	bob.registerAndLogin("bob")

	resp := alice.do(map[string]any{"action": "create_room", "game_id": "pong", "room_name": "mine"})
	s.Require().Equal("ok", resp["status"])
	roomID, _ := resp["room_id"].(string)
	s.Require().NotEmpty(roomID)

	resp = bob.do(map[string]any{"action": "join_room", "room_id": roomID})
	s.Require().Equal("ok", resp["status"])

	// Both members see the membership change pushed to them
	event := alice.event()
	s.Equal("room_update", event["event"])
	event = bob.event()
	s.Equal("room_update", event["event"])

	resp = alice.do(map[string]any{"action": "get_room_info", "room_id": roomID})
	s.Require().Equal("ok", resp["status"])
	room, _ := resp["room"].(map[string]any)
	s.Require().NotNil(room)
	s.Equal("waiting", room["status"])
	s.Len(room["players"], 2)
}

func (s *DispatcherSuite) TestRoomActionsRequireLogin() {
	c := s.dial()
	resp := c.do(map[string]any{"action": "create_room", "game_id": "pong"})
	s.Equal("error", resp["status"])
	s.Equal(model.ErrLoginRequired.Error(), resp["message"])
}

func (s *DispatcherSuite) TestAddReviewRequiresPlayer() {
	c := s.dial()
	resp := c.do(map[string]any{"action": "add_review", "game_id": "pong", "score": 5})
	s.Equal("error", resp["status"])
	s.Equal(model.ErrAccessDenied.Error(), resp["message"])

	c.registerAndLogin("alice")
	resp = c.do(map[string]any{"action": "add_review", "game_id": "pong", "score": 5, "comment": "good"})
	s.Require().Equal("ok", resp["status"])

	resp = c.do(map[string]any{"action": "get_reviews", "game_id": "pong"})
	s.Require().Equal("ok", resp["status"])
	s.Len(resp["reviews"], 1)
}

func (s *DispatcherSuite) TestReconnectRestoresSession() {
	c := s.dial()
	token := c.registerAndLogin("alice")
	s.Require().NoError(c.conn.Close())

	c2 := s.dial()
	resp := c2.do(map[string]any{"action": "reconnect", "token": token})
	s.Require().Equal("ok", resp["status"])
	s.Equal("Session restored", resp["message"])
}

func (s *DispatcherSuite) TestReconnectRejectsBadToken() {
	c := s.dial()
	resp := c.do(map[string]any{"action": "reconnect", "token": "not-a-token"})
	s.Equal("error", resp["status"])
}

func (s *DispatcherSuite) TestLogoutInvalidatesToken() {
	c := s.dial()
	token := c.registerAndLogin("alice")

	resp := c.do(map[string]any{"action": "logout"})
	s.Require().Equal("ok", resp["status"])

	resp = c.do(map[string]any{"action": "reconnect", "token": token})
	s.Equal("error", resp["status"])
}

func (s *DispatcherSuite) TestDisconnectRemovesPlayerFromWaitingRoom() {
	s.addGame("pong", model.Game{Name: "Pong", MaxPlayers: 2})

	alice := s.dial()
	alice.registerAndLogin("alice")
	resp := alice.do(map[string]any{"action": "create_room", "game_id": "pong"})
	s.Require().Equal("ok", resp["status"])

	s.Require().NoError(alice.conn.Close())

	s.Require().Eventually(func() bool {
		rooms, err := s.app.Rooms.List(s.ctx)
		return err == nil && len(rooms) == 0
	}, 2*time.Second, 20*time.Millisecond)

	bob := s.dial()
	bob.registerAndLogin("bob")
	resp = bob.do(map[string]any{"action": "list_rooms"})
	s.Require().Equal("ok", resp["status"])
	s.Empty(resp["rooms"])
}

func (s *DispatcherSuite) TestMalformedLineDropsConnection() {
	c := s.dial()
	c.sendRaw("this is not json")

	s.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, err := c.r.ReadBytes('\n')
	s.Error(err)
}

func (s *DispatcherSuite) TestGameInfoAndDownload() {
	dir := s.T().TempDir()
	s.addGame("pong", model.Game{Name: "Pong", Version: "1.0", Path: dir})

	c := s.dial()
	resp := c.do(map[string]any{"action": "get_game_info", "game_id": "pong"})
	s.Require().Equal("ok", resp["status"])
	data, _ := resp["data"].(map[string]any)
	s.Require().NotNil(data)
	s.Equal("Pong", data["name"])

	resp = c.do(map[string]any{"action": "download_game", "game_id": "pong"})
	s.Require().Equal("ok", resp["status"])

	resp = c.do(map[string]any{"action": "get_game_info", "game_id": "missing"})
	s.Equal("error", resp["status"])
}
