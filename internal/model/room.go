package model

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	// RoomStatusWaiting means the room is gathering players
	RoomStatusWaiting RoomStatus = "waiting"
	// RoomStatusPlaying means a game-server process is running for the room
	RoomStatusPlaying RoomStatus = "playing"
	// RoomStatusIdle means a match finished and players remain in the room
	RoomStatusIdle RoomStatus = "idle"
)

// Room is a matchmaking unit: a game selection, an ordered player list and a
// lifecycle status. Rooms live in the rooms collection keyed by ID.
type Room struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	GameID  string     `json:"game_id"`
	Host    string     `json:"host"`
	Players []string   `json:"players"`
	Status  RoomStatus `json:"status"`

	// Port is set only while Status is playing
	Port int `json:"port,omitempty"`

	// Result of the most recent match, kept for polling clients
	LastWinner string `json:"last_winner,omitempty"`
	LastReason string `json:"last_reason,omitempty"`
}

// HasPlayer reports whether the user is a member of the room
func (r *Room) HasPlayer(userID string) bool {
	for _, p := range r.Players {
		if p == userID {
			return true
		}
	}
	return false
}

// RemovePlayer removes the user from the player list, preserving order.
// Returns false if the user was not a member.
func (r *Room) RemovePlayer(userID string) bool {
	for i, p := range r.Players {
		if p == userID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}
