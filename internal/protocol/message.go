package protocol

import "encoding/json"

// Message is the envelope of every frame
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType is the kind tag of a message
type MessageType string

// client -> server
const (
	MsgJoin         MessageType = "join"
	MsgStartGame    MessageType = "start_game"
	MsgHit          MessageType = "hit"
	MsgStay         MessageType = "stay"
	MsgUseFlipThree MessageType = "use_flip_three"
	MsgUseFreeze    MessageType = "use_freeze"
	MsgNewRound     MessageType = "new_round"
	MsgRestart      MessageType = "restart"
)

// server -> client
const (
	MsgConnected MessageType = "connected" // first frame on a new connection
	MsgState     MessageType = "state"     // full game state snapshot
	MsgError     MessageType = "error"     // rejected action, sent to the sender only
)
