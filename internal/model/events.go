package model

// EventName identifies an asynchronous push event
type EventName string

const (
	EventRoomUpdate EventName = "room_update"
	EventGameOver   EventName = "game_over"
)

// Event is an unsolicited push message written onto a client's socket. The
// "type":"event" marker is how clients tell pushes apart from the reply to
// their last request on the same connection.
type Event struct {
	Type  string    `json:"type"`
	Event EventName `json:"event"`

	// room_update
	Room *Room `json:"room,omitempty"`

	// game_over
	Winner string `json:"winner,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// NewRoomUpdateEvent builds a room_update event describing the room's
// post-transition state.
func NewRoomUpdateEvent(room *Room) Event {
	return Event{Type: "event", Event: EventRoomUpdate, Room: room}
}

// NewGameOverEvent builds a game_over event for a finished or crashed match
func NewGameOverEvent(winner, reason string) Event {
	return Event{Type: "event", Event: EventGameOver, Winner: winner, Reason: reason}
}
