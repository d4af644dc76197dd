//go:build !production

package testutil

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/flip-seven/internal/protocol"
)

// MockClient implements types.ClientInterface with testify expectations
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomCode string) {
	m.Called(roomCode)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient records every message it is sent. Safe for use from a room goroutine.
type SimpleClient struct {
	ID string

	mu       sync.Mutex
	roomCode string
	messages []*protocol.Message
	notify   chan struct{}
	closed   bool
}

// NewSimpleClient creates a SimpleClient
func NewSimpleClient(id string) *SimpleClient {
	return &SimpleClient{ID: id, notify: make(chan struct{}, 1)}
}

func (c *SimpleClient) GetID() string { return c.ID }

func (c *SimpleClient) GetRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

func (c *SimpleClient) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether Close was called
func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Messages returns a copy of the received messages
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Count returns how many messages of type t were received
func (c *SimpleClient) Count(t protocol.MessageType) int {
	n := 0
	for _, msg := range c.Messages() {
		if msg.Type == t {
			n++
		}
	}
	return n
}

// Last returns the latest message of type t, or nil
func (c *SimpleClient) Last(t protocol.MessageType) *protocol.Message {
	msgs := c.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == t {
			return msgs[i]
		}
	}
	return nil
}

// WaitFor blocks until at least n messages of type t arrived or the timeout passes
func (c *SimpleClient) WaitFor(t protocol.MessageType, n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if c.Count(t) >= n {
			return true
		}
		select {
		case <-c.notify:
		case <-deadline:
			return c.Count(t) >= n
		}
	}
}

// DecodeLast decodes the payload of the latest message of type t into v
func (c *SimpleClient) DecodeLast(t protocol.MessageType, v any) error {
	msg := c.Last(t)
	if msg == nil {
		return errNoMessage
	}
	return json.Unmarshal(msg.Payload, v)
}
