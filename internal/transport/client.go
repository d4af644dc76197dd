// Package transport is the WebSocket client used by the terminal UI.
package transport

import (
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize       = 64
	maxReconnectAttempts = 5
	reconnectInterval    = 2 * time.Second
	maxReconnectBackoff  = 30 * time.Second
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

// Client is a connection to one room
type Client struct {
	ServerURL string

	format codec.Format
	send   chan []byte
	done   chan struct{}

	// first backoff between reconnect attempts, doubled per attempt
	ReconnectInterval time.Duration

	OnMessage      func(*protocol.Message)
	OnError        func(error)
	OnClose        func()
	OnReconnecting func(attempt, maxTries int)
	OnReconnect    func()

	mu       sync.RWMutex
	conn     *websocket.Conn
	closed   bool
	playerID string
	roomCode string
	name     string

	reconnecting   atomic.Bool
	rejoinPending  atomic.Bool
	rejoinRetries  atomic.Int32
	reconnectCount atomic.Int32
}

// BuildURL turns a host:port and room code into the /ws endpoint
func BuildURL(addr, room string, format codec.Format) string {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	q := url.Values{}
	if room != "" {
		q.Set("room", room)
	}
	if format != codec.FormatJSON {
		q.Set("format", format.String())
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// NewClient creates an unconnected client
func NewClient(serverURL string, format codec.Format) *Client {
	return &Client{
		ServerURL:         serverURL,
		format:            format,
		send:              make(chan []byte, sendBufferSize),
		done:              make(chan struct{}),
		ReconnectInterval: reconnectInterval,
	}
}

// Connect dials the server and starts the pumps
func (c *Client) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	c.start(conn)
	return nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(c.ServerURL, nil)
	return conn, err
}

func (c *Client) start(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	connDone := make(chan struct{})
	go c.readPump(conn, connDone)
	go c.writePump(conn, connDone)
}

// Send queues an action for the server
func (c *Client) Send(action protocol.Action) error {
	if c.IsClosed() {
		return ErrClosed
	}

	msg, err := codec.EncodeAction(action)
	if err != nil {
		return err
	}
	data, err := c.format.Encode(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close ends the session for good; no reconnect follows
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// PlayerID is the connection id the server assigned, which is also the seat id once joined
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Client) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

// Name is the name last sent with Join
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}
