package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/game/room"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
	"github.com/palemoky/flip-seven/internal/types"
)

// RoomLookup finds the room a client is attached to
type RoomLookup interface {
	GetRoom(code string) *room.Room
}

// Handler turns inbound frames into room actions
type Handler struct {
	rooms RoomLookup
}

// NewHandler creates a handler
func NewHandler(rooms RoomLookup) *Handler {
	return &Handler{rooms: rooms}
}

// Handle routes one decoded message. Malformed or unknown messages are dropped without a reply.
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	action, err := codec.DecodeAction(msg)
	if err != nil {
		logger.L().Debug("dropping message",
			zap.String("client", client.GetID()),
			zap.String("type", string(msg.Type)),
			zap.Int("payload_bytes", len(msg.Payload)),
			zap.Error(err))
		return
	}

	code := client.GetRoom()
	r := h.rooms.GetRoom(code)
	if r == nil {
		logger.LogDebug("client %s sent %s outside of a room", client.GetID(), msg.Type)
		return
	}

	if err := r.Submit(client.GetID(), action); err != nil {
		logger.LogDebug("room %s rejected %s: %v", code, msg.Type, err)
	}
}
