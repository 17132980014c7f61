package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Account errors
	ErrUserExists         = errors.New("user exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrLoginRequired      = errors.New("login required")
	ErrAccessDenied       = errors.New("access denied")

	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyInRoom = errors.New("already in room")
	ErrNotInRoom     = errors.New("not in room")
	ErrRoomFull      = errors.New("room full")
	ErrNotHost       = errors.New("not host")
	ErrRoomNotIdle   = errors.New("room already started")
	ErrNotPlaying    = errors.New("room is not playing")

	// Game catalog errors
	ErrGameNotFound = errors.New("game not found")

	// Supervisor errors
	ErrStartFailed = errors.New("failed to start game instance")
)

// InsufficientPlayersError reports a start attempt before the room reached
// the game's player count.
type InsufficientPlayersError struct {
	Have, Want int
}

func (e *InsufficientPlayersError) Error() string {
	return fmt.Sprintf("waiting for players (%d/%d)", e.Have, e.Want)
}
