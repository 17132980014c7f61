// Package broadcast pushes asynchronous events onto live client
// connections. Delivery is best effort: a push to an offline user is
// dropped, and a write failure is swallowed because the dead socket's own
// dispatch loop will observe it and clean up.
package broadcast

import (
	"log/slog"

	"github.com/gamehall/gamehall/internal/model"
	"github.com/gamehall/gamehall/internal/registry"
)

// Broadcaster sends events to users found in the session registry
type Broadcaster struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// New creates a broadcaster over the given registry
func New(reg *registry.Registry, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: reg,
		logger:   logger.With(slog.String("component", "broadcast")),
	}
}

// Push sends one event to a single user, if they are connected
func (b *Broadcaster) Push(userID string, event model.Event) {
	conn, ok := b.registry.Connection(userID)
	if !ok {
		return
	}
	if err := conn.Send(event); err != nil {
		// Socket is dead; its receive loop will run disconnect cleanup.
		b.logger.Debug("push failed",
			slog.String("user", userID),
			slog.String("event", string(event.Event)),
			slog.String("error", err.Error()),
		)
	}
}

// RoomUpdate sends a room_update event to every member of the room
func (b *Broadcaster) RoomUpdate(room *model.Room) {
	event := model.NewRoomUpdateEvent(room)
	for _, p := range room.Players {
		b.Push(p, event)
	}
}

// GameOver sends a game_over event to every member of the room
func (b *Broadcaster) GameOver(room *model.Room, winner, reason string) {
	event := model.NewGameOverEvent(winner, reason)
	for _, p := range room.Players {
		b.Push(p, event)
	}
}
