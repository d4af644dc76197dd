package transport

import (
	"time"

	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
)

const (
	maxRejoinRetries = 5
	rejoinRetryDelay = 200 * time.Millisecond
)

// tryReconnect redials with exponential backoff and reclaims the seat by name
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.reconnecting.Store(false)
		}
	}()

	backoff := c.ReconnectInterval
	for c.reconnectCount.Load() < maxReconnectAttempts {
		attempt := c.reconnectCount.Add(1)
		if c.OnReconnecting != nil {
			c.OnReconnecting(int(attempt), maxReconnectAttempts)
		}

		select {
		case <-time.After(backoff):
		case <-c.done:
			c.reconnecting.Store(false)
			return
		}
		backoff = min(backoff*2, maxReconnectBackoff)

		conn, err := c.dial()
		if err != nil {
			logger.LogDebug("reconnect attempt %d failed: %v", attempt, err)
			continue
		}

		c.rejoinPending.Store(true)
		c.rejoinRetries.Store(0)
		c.reconnecting.Store(false)
		c.start(conn)

		if err := c.rejoin(); err != nil {
			logger.LogError("rejoin failed: %v", err)
		}
		return
	}

	logger.LogInfo("giving up after %d reconnect attempts", maxReconnectAttempts)
	c.reconnecting.Store(false)
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) rejoin() error {
	return c.Send(protocol.Join{Name: c.Name()})
}

// retryRejoin absorbs a name_taken error while the server has not yet noticed the old
// connection is gone. It reports whether the error was consumed.
func (c *Client) retryRejoin(msg *protocol.Message) bool {
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil || payload.Code != protocol.ErrCodeNameTaken {
		return false
	}
	if c.rejoinRetries.Add(1) > maxRejoinRetries {
		c.rejoinPending.Store(false)
		return false
	}
	time.AfterFunc(rejoinRetryDelay, func() {
		if err := c.rejoin(); err != nil {
			logger.LogDebug("rejoin retry failed: %v", err)
		}
	})
	return true
}
