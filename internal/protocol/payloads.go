package protocol

// --- client request payloads ---

// JoinPayload join request
type JoinPayload struct {
	Name string `json:"name"`
}

// TargetPayload names the player an action card is played on; empty means the sender
type TargetPayload struct {
	Target string `json:"target,omitempty"`
}

// --- server payloads ---

// ConnectedPayload is sent once when the websocket is accepted
type ConnectedPayload struct {
	PlayerID string `json:"player_id"`
	RoomCode string `json:"room_code"`
}

// ErrorPayload transient error notification
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
