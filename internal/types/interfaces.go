package types

import (
	"context"

	"github.com/palemoky/flip-seven/internal/protocol"
)

// ClientInterface is one WebSocket connection as seen by rooms and handlers
type ClientInterface interface {
	GetID() string
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}

// ResultRecorder persists finished games
type ResultRecorder interface {
	RecordResult(ctx context.Context, result *GameResult) error
}

// PlayerResult is one seat's outcome in a finished game
type PlayerResult struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Winner     bool   `json:"winner"`
	FlipSevens int    `json:"flip_sevens"`
}

// GameResult is written once when a room reaches game over
type GameResult struct {
	RoomCode   string         `json:"room_code"`
	Rounds     int            `json:"rounds"`
	Winner     string         `json:"winner"` // player name
	Players    []PlayerResult `json:"players"`
	FinishedAt int64          `json:"finished_at"`
}
