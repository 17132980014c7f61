package model

// DefaultMaxPlayers applies when a game's metadata omits max_players
const DefaultMaxPlayers = 2

// Game is a published game's metadata, as written by the developer upload
// service into the games collection. The lobby reads it to size rooms and
// to launch game-server processes; it never writes it.
type Game struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	Version     string `json:"version"`
	Description string `json:"description"`

	// Path is the install directory of the game's files on the lobby host
	Path string `json:"path"`
	// EntryPoint is the game-server script inside Path
	EntryPoint string `json:"entry_point"`
	// Runtime is the interpreter used to launch EntryPoint; empty means the
	// supervisor's configured default
	Runtime string `json:"runtime,omitempty"`

	Type       string `json:"type"`
	MaxPlayers int    `json:"max_players"`
	MinPlayers int    `json:"min_players"`

	// SupportsRoomID declares that the entry point accepts --room_id.
	// When absent the supervisor falls back to scanning the script text.
	SupportsRoomID *bool `json:"supports_room_id,omitempty"`
}

// PlayerLimit returns the game's max player count, defaulting when unset
func (g *Game) PlayerLimit() int {
	if g == nil || g.MaxPlayers <= 0 {
		return DefaultMaxPlayers
	}
	return g.MaxPlayers
}

// Review is a player's review of a game, stored per game in the reviews
// collection as an append-only list.
type Review struct {
	Reviewer string `json:"reviewer"`
	Score    int    `json:"score"`
	Comment  string `json:"comment"`
}
