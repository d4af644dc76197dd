package transport

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
)

// readPump reads frames from one connection until it fails
func (c *Client) readPump(conn *websocket.Conn, connDone chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		close(connDone)
		_ = conn.Close()
		c.handleReadExit()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		msg, err := c.format.Decode(data)
		if err != nil {
			logger.LogDebug("dropping undecodable frame: %v", err)
			continue
		}
		c.processMessage(msg)
	}
}

func (c *Client) handleReadExit() {
	if c.IsClosed() {
		return
	}
	if c.Name() != "" && c.reconnecting.CompareAndSwap(false, true) {
		go c.tryReconnect()
		return
	}
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		logger.LogDebug("connection lost: %v", err)
		if c.OnError != nil {
			c.OnError(err)
		}
	}
}

func (c *Client) processMessage(msg *protocol.Message) {
	rejoined := false

	switch msg.Type {
	case protocol.MsgConnected:
		if payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg); err == nil {
			c.mu.Lock()
			c.playerID = payload.PlayerID
			c.roomCode = payload.RoomCode
			c.mu.Unlock()
		}
	case protocol.MsgState:
		if c.rejoinPending.Load() && c.seated(msg) {
			c.rejoinPending.Store(false)
			c.reconnectCount.Store(0)
			rejoined = true
		}
	case protocol.MsgError:
		if c.rejoinPending.Load() && c.retryRejoin(msg) {
			return
		}
	}

	if c.OnMessage != nil {
		c.OnMessage(msg)
	}
	if rejoined && c.OnReconnect != nil {
		c.OnReconnect()
	}
}

// seated reports whether a state snapshot holds a seat bound to this connection
func (c *Client) seated(msg *protocol.Message) bool {
	state, err := codec.ParsePayload[struct {
		Players []struct {
			ID string `json:"id"`
		} `json:"players"`
	}](msg)
	if err != nil {
		return false
	}
	id := c.PlayerID()
	for _, p := range state.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// writePump drains the send queue onto one connection
func (c *Client) writePump(conn *websocket.Conn, connDone chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.format.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(frameType, data); err != nil {
				logger.LogDebug("write failed: %v", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-connDone:
			return

		case <-c.done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
