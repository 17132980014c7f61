// Package room implements the room state machine: creation, membership,
// the waiting -> playing -> idle lifecycle, and the crash/result
// transitions out of playing. All structural transitions are serialized
// under one service lock so no two mutations interleave, and broadcasts
// describing a transition are issued before the lock is released.
package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gamehall/gamehall/internal/dependencies/random"
	"github.com/gamehall/gamehall/internal/docstore"
	"github.com/gamehall/gamehall/internal/model"
)

// resultReapWait bounds how long the result path waits for the reporting
// child to exit before handing it back to the monitor.
const resultReapWait = time.Second

// CrashReason is the synthetic game_over reason for confirmed crashes
const CrashReason = "Server Crashed"

// Launcher starts and reclaims game-server processes. Implemented by the
// supervisor.
type Launcher interface {
	Launch(ctx context.Context, room *model.Room, game *model.Game) (int, error)
	Release(roomID string, wait time.Duration)
}

// Notifier pushes events to room members. Implemented by the broadcaster.
type Notifier interface {
	RoomUpdate(room *model.Room)
	GameOver(room *model.Room, winner, reason string)
}

// Service is the room state machine
type Service struct {
	store    docstore.Collections
	launcher Launcher
	notify   Notifier
	random   random.Random
	logger   *slog.Logger

	// mu serializes all structural room transitions end-to-end
	mu sync.Mutex
}

// New creates a room service
func New(store docstore.Collections, launcher Launcher, notify Notifier, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		launcher: launcher,
		notify:   notify,
		random:   rnd,
		logger:   logger.With(slog.String("component", "room")),
	}
}

func (s *Service) loadRooms(ctx context.Context) (map[string]*model.Room, error) {
	rooms := make(map[string]*model.Room)
	if err := s.store.Load(ctx, docstore.CollectionRooms, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// saveRooms writes the whole rooms collection back. The store treats
// UPDATE_ALL as a whole-document overwrite, so the map must always be the
// fully-reconstructed collection.
func (s *Service) saveRooms(ctx context.Context, rooms map[string]*model.Room) error {
	return s.store.UpdateAll(ctx, docstore.CollectionRooms, rooms)
}

func (s *Service) loadGame(ctx context.Context, gameID string) (*model.Game, error) {
	games := make(map[string]*model.Game)
	if err := s.store.Load(ctx, docstore.CollectionGames, &games); err != nil {
		return nil, err
	}
	game, ok := games[gameID]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

// Create makes a new waiting room hosted by the caller
func (s *Service) Create(ctx context.Context, userID, gameID, name string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return nil, err
	}

	room := &model.Room{
		ID:      s.random.ShortID(),
		Name:    name,
		GameID:  gameID,
		Host:    userID,
		Players: []string{userID},
		Status:  model.RoomStatusWaiting,
	}
	rooms[room.ID] = room

	if err := s.saveRooms(ctx, rooms); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		slog.String("room", room.ID),
		slog.String("game", gameID),
		slog.String("host", userID),
	)
	return room, nil
}

// List returns all rooms
func (s *Service) List(ctx context.Context) (map[string]*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRooms(ctx)
}

// Get returns one room
func (s *Service) Get(ctx context.Context, roomID string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return nil, err
	}
	room, ok := rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Join adds the caller to a room and broadcasts the updated room
func (s *Service) Join(ctx context.Context, roomID, userID string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return nil, err
	}
	room, ok := rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if room.HasPlayer(userID) {
		return nil, model.ErrAlreadyInRoom
	}

	game, err := s.loadGame(ctx, room.GameID)
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return nil, err
	}

	// Inherited boundary: the guard rejects only once the list already
	// exceeds the limit, so a room can overfill by exactly one player.
	// Kept as-is for client compatibility.
	if len(room.Players) > game.PlayerLimit() {
		return nil, model.ErrRoomFull
	}

	room.Players = append(room.Players, userID)

	if err := s.saveRooms(ctx, rooms); err != nil {
		return nil, err
	}

	s.notify.RoomUpdate(room)
	return room, nil
}

// Leave removes the caller from a room. An emptied room is deleted; if the
// host left, the first remaining player becomes host.
func (s *Service) Leave(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return err
	}
	room, ok := rooms[roomID]
	if !ok {
		return model.ErrRoomNotFound
	}
	if !room.RemovePlayer(userID) {
		return model.ErrNotInRoom
	}

	if len(room.Players) == 0 {
		delete(rooms, roomID)
		if err := s.saveRooms(ctx, rooms); err != nil {
			return err
		}
		s.logger.Info("room deleted", slog.String("room", roomID))
		return nil
	}

	if room.Host == userID {
		room.Host = room.Players[0]
		s.logger.Info("host migrated",
			slog.String("room", roomID),
			slog.String("host", room.Host),
		)
	}

	if err := s.saveRooms(ctx, rooms); err != nil {
		return err
	}

	s.notify.RoomUpdate(room)
	return nil
}

// Start launches the room's game instance. Only the host may start, only
// from waiting, and only with exactly the game's player count present. On
// launch failure the room is left untouched.
func (s *Service) Start(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return err
	}
	room, ok := rooms[roomID]
	if !ok {
		return model.ErrRoomNotFound
	}
	if room.Host != userID {
		return model.ErrNotHost
	}
	if room.Status != model.RoomStatusWaiting {
		return model.ErrRoomNotIdle
	}

	game, err := s.loadGame(ctx, room.GameID)
	if err != nil {
		return err
	}
	if len(room.Players) != game.PlayerLimit() {
		return &model.InsufficientPlayersError{Have: len(room.Players), Want: game.PlayerLimit()}
	}

	port, err := s.launcher.Launch(ctx, room, game)
	if err != nil {
		return err
	}

	room.Status = model.RoomStatusPlaying
	room.Port = port

	if err := s.saveRooms(ctx, rooms); err != nil {
		return err
	}

	s.logger.Info("game started",
		slog.String("room", roomID),
		slog.String("game", room.GameID),
		slog.Int("port", port),
	)
	s.notify.RoomUpdate(room)
	return nil
}

// HandleResult applies a child process's result report: the process is
// reclaimed (clearing any pending-crash record so the crash path never
// fires), the room returns to idle and members are told the game is over.
func (s *Service) HandleResult(ctx context.Context, roomID, winner, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return err
	}
	room, ok := rooms[roomID]
	if !ok {
		return model.ErrRoomNotFound
	}

	s.launcher.Release(roomID, resultReapWait)

	room.Status = model.RoomStatusIdle
	room.Port = 0
	room.LastWinner = winner
	room.LastReason = reason

	if err := s.saveRooms(ctx, rooms); err != nil {
		return err
	}

	s.logger.Info("game result",
		slog.String("room", roomID),
		slog.String("winner", winner),
		slog.String("reason", reason),
	)
	s.notify.GameOver(room, winner, reason)
	return nil
}

// IsPlaying reports whether the room exists and is currently playing
func (s *Service) IsPlaying(ctx context.Context, roomID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return false, err
	}
	room, ok := rooms[roomID]
	if !ok {
		return false, model.ErrRoomNotFound
	}
	return room.Status == model.RoomStatusPlaying, nil
}

// ConfirmCrash applies the crash transition for a room whose process died
// without reporting. The status is re-checked under the lock: if a result
// arrived in the meantime the crash is not confirmed.
func (s *Service) ConfirmCrash(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return err
	}
	room, ok := rooms[roomID]
	if !ok {
		return model.ErrRoomNotFound
	}
	if room.Status != model.RoomStatusPlaying {
		return model.ErrNotPlaying
	}

	room.Status = model.RoomStatusIdle
	room.Port = 0
	room.LastWinner = "None"
	room.LastReason = CrashReason

	if err := s.saveRooms(ctx, rooms); err != nil {
		return err
	}

	s.logger.Warn("room reset after crash", slog.String("room", roomID))
	s.notify.GameOver(room, "None", CrashReason)
	return nil
}

// DisconnectCleanup removes a dropped user from every waiting room they are
// a member of, deleting emptied rooms and migrating hosts. Playing rooms
// are left alone; only crash detection or a result report touches those.
func (s *Service) DisconnectCleanup(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.loadRooms(ctx)
	if err != nil {
		return err
	}

	dirty := false
	var updated []*model.Room
	for rid, room := range rooms {
		if room.Status != model.RoomStatusWaiting || !room.HasPlayer(userID) {
			continue
		}
		room.RemovePlayer(userID)
		dirty = true

		if len(room.Players) == 0 {
			delete(rooms, rid)
			continue
		}
		if room.Host == userID {
			room.Host = room.Players[0]
			s.logger.Info("host migrated",
				slog.String("room", rid),
				slog.String("host", room.Host),
			)
		}
		updated = append(updated, room)
	}

	if !dirty {
		return nil
	}
	if err := s.saveRooms(ctx, rooms); err != nil {
		return err
	}
	for _, room := range updated {
		s.notify.RoomUpdate(room)
	}
	return nil
}
