package apperrors

import (
	"errors"

	"github.com/palemoky/flip-seven/internal/protocol"
)

// GameError is a rejected action. Silent errors are dropped without notifying the sender.
type GameError struct {
	Code    int
	Message string
	Silent  bool
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

func newSilent(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code], Silent: true}
}

// Predefined errors
var (
	ErrNameRequired     = newError(protocol.ErrCodeNameRequired)
	ErrNameTaken        = newError(protocol.ErrCodeNameTaken)
	ErrGameInProgress   = newError(protocol.ErrCodeGameInProgress)
	ErrRoomFull         = newError(protocol.ErrCodeRoomFull)
	ErrNotHost          = newError(protocol.ErrCodeNotHost)
	ErrNotEnoughPlayers = newError(protocol.ErrCodeNotEnoughPlayers)
	ErrWrongPhase       = newError(protocol.ErrCodeWrongPhase)
	ErrNotYourTurn      = newError(protocol.ErrCodeNotYourTurn)
	ErrNotActive        = newError(protocol.ErrCodeNotActive)
	ErrNoActionCard     = newError(protocol.ErrCodeNoActionCard)
	ErrInvalidTarget    = newError(protocol.ErrCodeInvalidTarget)

	// unprivileged actions at the wrong time, or from connections without a seat
	ErrNotPlaying = newSilent(protocol.ErrCodeWrongPhase)
	ErrNotSeated  = newSilent(protocol.ErrCodeNotSeated)
	ErrAlreadyIn  = newSilent(protocol.ErrCodeNameTaken)
)

// IsSilent reports whether err should be dropped without an error notification.
func IsSilent(err error) bool {
	var gameErr *GameError
	return errors.As(err, &gameErr) && gameErr.Silent
}
