package protocol

import "github.com/mcoot/netpong/internal/model"

// CommandName identifies an inbound client command
type CommandName string

const (
	CmdCreateGame       CommandName = "CREATE_GAME"
	CmdJoinGame         CommandName = "JOIN_GAME"
	CmdUpdateBlock      CommandName = "UPDATE_BLOCK"
	CmdFinishConnection CommandName = "FINISH_CONNECTION"
)

// Command is one decoded client -> server frame.
// Unknown command names decode successfully and are left to the caller.
type Command struct {
	Command  CommandName `json:"command"`
	GameID   string      `json:"game_id,omitempty"`
	Password string      `json:"password,omitempty"`
	Y        *float64    `json:"y,omitempty"`
}

// CreateGame builds a CREATE_GAME command
func CreateGame(gameID, password string) Command {
	return Command{Command: CmdCreateGame, GameID: gameID, Password: password}
}

// JoinGame builds a JOIN_GAME command
func JoinGame(gameID, password string) Command {
	return Command{Command: CmdJoinGame, GameID: gameID, Password: password}
}

// UpdateBlock builds an UPDATE_BLOCK command
func UpdateBlock(y float64) Command {
	return Command{Command: CmdUpdateBlock, Y: &y}
}

// FinishConnection builds a FINISH_CONNECTION command
func FinishConnection() Command {
	return Command{Command: CmdFinishConnection}
}

// Status is the outcome carried by a status reply
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// MessageType identifies a server -> client game message
type MessageType string

const (
	TypeGameStart MessageType = "GAME_START"
	TypeGameState MessageType = "GAME_STATE"
	TypeGameOver  MessageType = "GAME_OVER"
)

// StatusReply answers CREATE_GAME and JOIN_GAME
type StatusReply struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Success builds a SUCCESS status reply
func Success(message string) StatusReply {
	return StatusReply{Status: StatusSuccess, Message: message}
}

// Failure builds an ERROR status reply
func Failure(message string) StatusReply {
	return StatusReply{Status: StatusError, Message: message}
}

// GameStart tells a client which slot it plays
type GameStart struct {
	Type     MessageType `json:"type"`
	PlayerID model.Slot  `json:"player_id"`
}

// NewGameStart builds a GAME_START message for slot
func NewGameStart(slot model.Slot) GameStart {
	return GameStart{Type: TypeGameStart, PlayerID: slot}
}

// GameState is the per-tick snapshot broadcast to both slots
type GameState struct {
	Type     MessageType `json:"type"`
	Ball     model.Vec   `json:"ball"`
	Player1Y float64     `json:"player1_y"`
	Player2Y float64     `json:"player2_y"`
	Score    [2]int      `json:"score"`
}

// NewGameState builds a GAME_STATE message
func NewGameState(ball model.Vec, paddles [2]float64, score [2]int) GameState {
	return GameState{
		Type:     TypeGameState,
		Ball:     ball,
		Player1Y: paddles[0],
		Player2Y: paddles[1],
		Score:    score,
	}
}

// GameOver names the winning slot
type GameOver struct {
	Type   MessageType `json:"type"`
	Winner model.Slot  `json:"winner"`
}

// NewGameOver builds a GAME_OVER message
func NewGameOver(winner model.Slot) GameOver {
	return GameOver{Type: TypeGameOver, Winner: winner}
}

// ServerMessage is the union of every server -> client frame, used by clients.
// Status replies carry Status/Message; game messages carry Type.
type ServerMessage struct {
	Type     MessageType `json:"type,omitempty"`
	Status   Status      `json:"status,omitempty"`
	Message  string      `json:"message,omitempty"`
	PlayerID model.Slot  `json:"player_id"`
	Ball     model.Vec   `json:"ball"`
	Player1Y float64     `json:"player1_y"`
	Player2Y float64     `json:"player2_y"`
	Score    [2]int      `json:"score"`
	Winner   model.Slot  `json:"winner"`
}

// IsStatus reports whether the message is a status reply
func (m ServerMessage) IsStatus() bool {
	return m.Status != ""
}
