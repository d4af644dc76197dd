package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client is one WebSocket connection
type Client struct {
	ID string
	IP string

	server *Server
	conn   *websocket.Conn
	format codec.Format
	send   chan []byte

	mu       sync.RWMutex
	roomCode string
	closed   bool
}

// NewClient wraps an upgraded connection
func NewClient(s *Server, conn *websocket.Conn, format codec.Format) *Client {
	return &Client{
		ID:     uuid.New().String(),
		server: s,
		conn:   conn,
		format: format,
		send:   make(chan []byte, sendBufferSize),
	}
}

func (c *Client) GetID() string {
	return c.ID
}

func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// SendMessage encodes msg in the connection's format and queues it. A client that cannot keep up
// is disconnected.
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := c.format.Encode(msg)
	if err != nil {
		logger.L().Error("encode failed", zap.String("client", c.ID), zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		logger.L().Warn("send buffer full, dropping client", zap.String("client", c.ID))
		go c.Close()
	}
}

// Close stops the write pump, which closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads frames until the connection fails, then detaches the client
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.server.handleDisconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Debug("read error", zap.String("client", c.ID), zap.Error(err))
			}
			return
		}

		msg, err := c.format.Decode(data)
		if err != nil {
			logger.L().Debug("malformed frame dropped", zap.String("client", c.ID), zap.Error(err))
			continue
		}
		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.format.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frameType, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
