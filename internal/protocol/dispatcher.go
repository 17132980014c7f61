// Package protocol implements the lobby's wire protocol: newline-delimited
// JSON requests with one synchronous reply each, plus asynchronous event
// pushes interleaved on the same socket.
package protocol

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"

	"github.com/gamehall/gamehall/internal/games"
	"github.com/gamehall/gamehall/internal/model"
	"github.com/gamehall/gamehall/internal/registry"
	"github.com/gamehall/gamehall/internal/room"
)

// maxLineBytes bounds a single request line
const maxLineBytes = 1 << 20

// Dispatcher routes requests to the lobby's components. One dispatch loop
// runs per connection.
type Dispatcher struct {
	registry *registry.Registry
	rooms    *room.Service
	games    *games.Service
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(reg *registry.Registry, rooms *room.Service, games *games.Service, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		rooms:    rooms,
		games:    games,
		logger:   logger.With(slog.String("component", "dispatch")),
	}
}

// session is the per-connection authentication context
type session struct {
	identity model.Identity
	token    string
}

// HandleConn runs the dispatch loop for one connection: read a line, route
// it, write one reply. A closed socket ends the loop and triggers
// disconnect cleanup for whoever was logged in on it.
func (d *Dispatcher) HandleConn(ctx context.Context, netConn net.Conn) {
	conn := NewConn(netConn)
	defer conn.Close()

	logger := d.logger.With(slog.String("peer", conn.RemoteAddr().String()))
	logger.Info("connection opened")

	var sess session

	scanner := bufio.NewScanner(netConn)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("unparseable request, dropping connection",
				slog.String("error", err.Error()))
			break
		}

		resp := d.dispatch(ctx, conn, &sess, req, logger)
		if err := conn.Send(resp); err != nil {
			break
		}
	}

	if !sess.identity.IsZero() {
		d.disconnect(ctx, sess.identity.ID)
	}
	logger.Info("connection closed")
}

// disconnect removes the live binding and cleans up waiting-room
// memberships. Reconnect tokens stay valid.
func (d *Dispatcher) disconnect(ctx context.Context, userID string) {
	d.registry.Unbind(userID)
	if err := d.rooms.DisconnectCleanup(ctx, userID); err != nil {
		d.logger.Warn("disconnect cleanup failed",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
	}
}

// dispatch routes one request. A panic in a handler is confined to an error
// response; nothing a single connection does is fatal to the server.
func (d *Dispatcher) dispatch(ctx context.Context, conn *Conn, sess *session, req Request, logger *slog.Logger) (resp any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panic",
				slog.String("action", req.Action),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			resp = fail(fmt.Sprintf("internal error handling %s", req.Action))
		}
	}()

	switch req.Action {
	case "register":
		return d.handleRegister(ctx, req)
	case "login":
		return d.handleLogin(ctx, conn, sess, req)
	case "reconnect":
		return d.handleReconnect(ctx, conn, sess, req)
	case "logout":
		return d.handleLogout(ctx, sess)

	case "list_games":
		return d.handleListGames(ctx)
	case "get_game_info":
		return d.handleGameInfo(ctx, req)
	case "download_game":
		return d.handleDownload(ctx, req)
	case "get_reviews":
		return d.handleGetReviews(ctx, req)
	case "add_review":
		return d.handleAddReview(ctx, sess, req)

	case "create_room":
		return d.handleCreateRoom(ctx, sess, req)
	case "list_rooms":
		return d.handleListRooms(ctx)
	case "get_room_info":
		return d.handleRoomInfo(ctx, req)
	case "join_room":
		return d.handleJoinRoom(ctx, sess, req)
	case "leave_room":
		return d.handleLeaveRoom(ctx, sess, req)
	case "start_game":
		return d.handleStartGame(ctx, sess, req)

	case "game_result":
		return d.handleGameResult(ctx, req)

	default:
		return fail("Unknown action")
	}
}

// Account handlers

func (d *Dispatcher) handleRegister(ctx context.Context, req Request) any {
	if err := d.registry.Register(ctx, req.Username, req.Password); err != nil {
		return fail(err.Error())
	}
	return okMessage("Registered successfully")
}

func (d *Dispatcher) handleLogin(ctx context.Context, conn *Conn, sess *session, req Request) any {
	token, identity, err := d.registry.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(err.Error())
	}
	sess.identity = identity
	sess.token = token
	d.registry.Bind(identity.ID, conn)
	return loginResponse{Status: "ok", Token: token}
}

func (d *Dispatcher) handleReconnect(ctx context.Context, conn *Conn, sess *session, req Request) any {
	identity, err := d.registry.Reconnect(req.Token)
	if err != nil {
		return fail(err.Error())
	}
	sess.identity = identity
	sess.token = req.Token
	d.registry.Bind(identity.ID, conn)
	return okMessage("Session restored")
}

func (d *Dispatcher) handleLogout(ctx context.Context, sess *session) any {
	if !sess.identity.IsZero() {
		d.disconnect(ctx, sess.identity.ID)
		d.registry.Logout(sess.token)
		*sess = session{}
	}
	return ok()
}

// Catalog handlers

func (d *Dispatcher) handleListGames(ctx context.Context) any {
	list, err := d.games.List(ctx)
	if err != nil {
		return fail(err.Error())
	}
	return listGamesResponse{Status: "ok", Games: list}
}

func (d *Dispatcher) handleGameInfo(ctx context.Context, req Request) any {
	game, err := d.games.Get(ctx, req.GameID)
	if err != nil {
		return fail(err.Error())
	}
	return gameInfoResponse{Status: "ok", Data: game}
}

func (d *Dispatcher) handleDownload(ctx context.Context, req Request) any {
	files, err := d.games.Download(ctx, req.GameID)
	if err != nil {
		return fail(err.Error())
	}
	return downloadResponse{Status: "ok", Files: files}
}

func (d *Dispatcher) handleGetReviews(ctx context.Context, req Request) any {
	reviews, err := d.games.Reviews(ctx, req.GameID)
	if err != nil {
		return fail(err.Error())
	}
	return reviewsResponse{Status: "ok", Reviews: reviews}
}

func (d *Dispatcher) handleAddReview(ctx context.Context, sess *session, req Request) any {
	if sess.identity.Type != model.UserTypePlayer {
		return fail(model.ErrAccessDenied.Error())
	}
	if err := d.games.AddReview(ctx, req.GameID, sess.identity.ID, req.Score, req.Comment); err != nil {
		return fail(err.Error())
	}
	return okMessage("Review added")
}

// Room handlers

func (d *Dispatcher) handleCreateRoom(ctx context.Context, sess *session, req Request) any {
	if sess.identity.IsZero() {
		return fail(model.ErrLoginRequired.Error())
	}
	r, err := d.rooms.Create(ctx, sess.identity.ID, req.GameID, req.RoomName)
	if err != nil {
		return fail(err.Error())
	}
	return createRoomResponse{Status: "ok", RoomID: r.ID, Message: "Created"}
}

func (d *Dispatcher) handleListRooms(ctx context.Context) any {
	list, err := d.rooms.List(ctx)
	if err != nil {
		return fail(err.Error())
	}
	return listRoomsResponse{Status: "ok", Rooms: list}
}

func (d *Dispatcher) handleRoomInfo(ctx context.Context, req Request) any {
	r, err := d.rooms.Get(ctx, req.RoomID)
	if err != nil {
		return fail(err.Error())
	}
	return roomInfoResponse{Status: "ok", Room: r}
}

func (d *Dispatcher) handleJoinRoom(ctx context.Context, sess *session, req Request) any {
	if sess.identity.IsZero() {
		return fail(model.ErrLoginRequired.Error())
	}
	if _, err := d.rooms.Join(ctx, req.RoomID, sess.identity.ID); err != nil {
		return fail(err.Error())
	}
	return okMessage("Joined")
}

func (d *Dispatcher) handleLeaveRoom(ctx context.Context, sess *session, req Request) any {
	if sess.identity.IsZero() {
		return fail(model.ErrLoginRequired.Error())
	}
	if err := d.rooms.Leave(ctx, req.RoomID, sess.identity.ID); err != nil {
		return fail(err.Error())
	}
	return okMessage("Left")
}

func (d *Dispatcher) handleStartGame(ctx context.Context, sess *session, req Request) any {
	if sess.identity.IsZero() {
		return fail(model.ErrLoginRequired.Error())
	}
	if err := d.rooms.Start(ctx, req.RoomID, sess.identity.ID); err != nil {
		return fail(err.Error())
	}
	return ok()
}

// handleGameResult is invoked by a game-server child process over its own
// short-lived connection, not by a player client.
func (d *Dispatcher) handleGameResult(ctx context.Context, req Request) any {
	if err := d.rooms.HandleResult(ctx, req.RoomID, req.Winner, req.Reason); err != nil {
		return fail(err.Error())
	}
	return ok()
}
