package server

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/game/room"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
)

// handleWebSocket upgrades /ws?room=<code>&format=<json|proto> and attaches the connection to the room
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	query := r.URL.Query()
	code := query.Get("room")
	if code == "" {
		code = s.config.Server.DefaultRoom
	}
	code, ok := room.NormalizeCode(code)
	if !ok {
		http.Error(w, "invalid room code", http.StatusBadRequest)
		return
	}

	if s.IsDraining() {
		http.Error(w, "Server Shutting Down", http.StatusServiceUnavailable)
		return
	}

	select {
	case s.semaphore <- struct{}{}:
	default:
		logger.L().Warn("connection limit reached", zap.Int("max", cap(s.semaphore)), zap.String("ip", clientIP))
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		logger.L().Debug("websocket upgrade failed", zap.String("ip", clientIP), zap.Error(err))
		return
	}

	client := NewClient(s, conn, codec.ParseFormat(query.Get("format")))
	client.IP = clientIP
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID: client.ID,
		RoomCode: code,
	}))

	go client.WritePump()

	if err := s.attach(client, code); err != nil {
		logger.L().Error("attach to room failed", zap.String("room", code), zap.Error(err))
		client.Close()
		s.handleDisconnect(client)
		return
	}

	logger.L().Info("client connected",
		zap.String("client", client.ID),
		zap.String("room", code),
		zap.String("format", client.format.String()),
		zap.String("ip", clientIP))

	go client.ReadPump()
}

// attach connects the client to the room, retrying once if the room was being removed.
// The room code is bound before ReadPump starts so frames sent right after the upgrade reach the room.
func (s *Server) attach(client *Client, code string) error {
	client.SetRoom(code)

	var err error
	for range 2 {
		err = s.roomManager.GetOrCreate(code).Connect(client)
		if !errors.Is(err, room.ErrRoomClosed) {
			return err
		}
	}
	return err
}

// handleDisconnect detaches a client from its room and frees its connection slot. Safe to call twice.
func (s *Server) handleDisconnect(client *Client) {
	if !s.unregisterClient(client) {
		return
	}
	<-s.semaphore

	if r := s.roomManager.GetRoom(client.GetRoom()); r != nil {
		if err := r.Disconnect(client.ID); err != nil {
			logger.L().Debug("room gone before disconnect", zap.String("client", client.ID), zap.Error(err))
		}
	}
	client.Close()

	logger.L().Info("client disconnected", zap.String("client", client.ID))
}

func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

func (s *Server) unregisterClient(client *Client) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; !ok {
		return false
	}
	delete(s.clients, client.ID)
	return true
}

// GetOnlineCount is the number of open connections
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket address
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
