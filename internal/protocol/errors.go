package protocol

// Error codes
const (
	ErrCodeUnknown = 1000

	// lobby / authorization
	ErrCodeNameRequired     = 2001
	ErrCodeNameTaken        = 2002
	ErrCodeGameInProgress   = 2003
	ErrCodeRoomFull         = 2004
	ErrCodeNotHost          = 2005
	ErrCodeNotEnoughPlayers = 2006

	// turn engine
	ErrCodeWrongPhase    = 3001
	ErrCodeNotYourTurn   = 3002
	ErrCodeNotActive     = 3003
	ErrCodeNoActionCard  = 3004
	ErrCodeInvalidTarget = 3005
	ErrCodeNotSeated     = 3006

	ErrCodeDeckExhausted  = 5001
	ErrCodeServerShutdown = 5002
)

// ErrorMessages maps error codes to their default text
var ErrorMessages = map[int]string{
	ErrCodeUnknown:          "unknown error",
	ErrCodeNameRequired:     "name is required",
	ErrCodeNameTaken:        "name already taken",
	ErrCodeGameInProgress:   "game in progress",
	ErrCodeRoomFull:         "room is full",
	ErrCodeNotHost:          "only the host can do that",
	ErrCodeNotEnoughPlayers: "need at least 2 players",
	ErrCodeWrongPhase:       "not allowed in the current phase",
	ErrCodeNotYourTurn:      "not your turn",
	ErrCodeNotActive:        "you are out of this round",
	ErrCodeNoActionCard:     "you do not hold that card",
	ErrCodeInvalidTarget:    "invalid target",
	ErrCodeNotSeated:        "you have not joined the game",
	ErrCodeDeckExhausted:    "deck exhausted",
	ErrCodeServerShutdown:   "server is shutting down",
}
