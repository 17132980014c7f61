package protocol

import "github.com/gamehall/gamehall/internal/model"

// Request is one line-delimited JSON request from a client (or, for
// game_result, from a game-server child process). Every request carries an
// action; the remaining fields are action-specific.
type Request struct {
	Action string `json:"action"`

	// register / login
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// reconnect
	Token string `json:"token,omitempty"`

	// game and room actions
	GameID   string `json:"game_id,omitempty"`
	RoomID   string `json:"room_id,omitempty"`
	RoomName string `json:"room_name,omitempty"`

	// add_review
	Score   int    `json:"score,omitempty"`
	Comment string `json:"comment,omitempty"`

	// game_result
	Winner string `json:"winner,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Synchronous responses all carry status ok|error plus action-specific
// fields. Clients must keep reading past interleaved "type":"event" lines
// until the non-event reply arrives.

type okResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type loginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

type createRoomResponse struct {
	Status  string `json:"status"`
	RoomID  string `json:"room_id"`
	Message string `json:"message,omitempty"`
}

type listGamesResponse struct {
	Status string                 `json:"status"`
	Games  map[string]*model.Game `json:"games"`
}

type gameInfoResponse struct {
	Status string      `json:"status"`
	Data   *model.Game `json:"data"`
}

type downloadResponse struct {
	Status string            `json:"status"`
	Files  map[string]string `json:"files"`
}

type listRoomsResponse struct {
	Status string                 `json:"status"`
	Rooms  map[string]*model.Room `json:"rooms"`
}

type roomInfoResponse struct {
	Status string      `json:"status"`
	Room   *model.Room `json:"room"`
}

type reviewsResponse struct {
	Status  string         `json:"status"`
	Reviews []model.Review `json:"reviews"`
}

func ok() okResponse {
	return okResponse{Status: "ok"}
}

func okMessage(message string) okResponse {
	return okResponse{Status: "ok", Message: message}
}

func fail(message string) errorResponse {
	return errorResponse{Status: "error", Message: message}
}
