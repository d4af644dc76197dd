package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/flip-seven/internal/config"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
	"github.com/palemoky/flip-seven/internal/server"
)

func startServer(t *testing.T) string {
	t.Helper()
	s := server.NewServer(config.Default(), nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return strings.TrimPrefix(ts.URL, "http://")
}

// newTestClient connects a client whose states are delivered on the returned channel
func newTestClient(t *testing.T, addr, room string, format codec.Format) (*Client, chan session.GameState) {
	t.Helper()
	states := make(chan session.GameState, 64)
	c := NewClient(BuildURL(addr, room, format), format)
	c.ReconnectInterval = 10 * time.Millisecond
	c.OnMessage = func(msg *protocol.Message) {
		if msg.Type != protocol.MsgState {
			return
		}
		if s, err := codec.ParsePayload[session.GameState](msg); err == nil {
			states <- *s
		}
	}
	require.NoError(t, c.Connect())
	t.Cleanup(c.Close)
	return c, states
}

func waitState(t *testing.T, states chan session.GameState, ok func(session.GameState) bool) session.GameState {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case s := <-states:
			if ok(s) {
				return s
			}
		case <-timeout:
			t.Fatal("timed out waiting for state")
			return session.GameState{}
		}
	}
}

func dropConnection(c *Client) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	_ = conn.Close()
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ws://localhost:1780/ws?room=den", BuildURL("localhost:1780", "den", codec.FormatJSON))
	assert.Equal(t, "ws://h:1/ws?format=proto&room=den", BuildURL("h:1", "den", codec.FormatProto))
	assert.Equal(t, "ws://h:1/ws", BuildURL("h:1", "", codec.FormatJSON))
}

func TestClient_JoinAndPlay(t *testing.T) {
	t.Parallel()

	for _, format := range []codec.Format{codec.FormatJSON, codec.FormatProto} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			addr := startServer(t)
			ann, annStates := newTestClient(t, addr, "t1", format)
			bob, bobStates := newTestClient(t, addr, "t1", format)

			require.NoError(t, ann.Join("Ann"))
			waitState(t, annStates, func(s session.GameState) bool { return len(s.Players) == 1 })
			require.NoError(t, bob.Join("Bob"))
			waitState(t, annStates, func(s session.GameState) bool { return len(s.Players) == 2 })

			assert.Equal(t, "T1", ann.RoomCode())
			assert.NotEmpty(t, ann.PlayerID())
			assert.Equal(t, "Ann", ann.Name())

			require.NoError(t, ann.StartGame())
			s := waitState(t, bobStates, func(s session.GameState) bool { return s.Phase == session.PhasePlaying })
			assert.Equal(t, ann.PlayerID(), s.Players[s.CurrentPlayerIndex].ID)

			require.NoError(t, ann.Stay())
			s = waitState(t, bobStates, func(s session.GameState) bool { return s.Players[0].Stayed })
			assert.Equal(t, 1, s.CurrentPlayerIndex)
		})
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	t.Parallel()

	addr := startServer(t)
	c, _ := newTestClient(t, addr, "closed", codec.FormatJSON)
	c.Close()

	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Hit(), ErrClosed)
}

func TestClient_ReconnectReclaimsSeat(t *testing.T) {
	t.Parallel()

	addr := startServer(t)
	ann, annStates := newTestClient(t, addr, "rc", codec.FormatJSON)
	bob, bobStates := newTestClient(t, addr, "rc", codec.FormatJSON)

	reconnected := make(chan struct{}, 1)
	ann.OnReconnect = func() { reconnected <- struct{}{} }

	require.NoError(t, ann.Join("Ann"))
	waitState(t, annStates, func(s session.GameState) bool { return len(s.Players) == 1 })
	require.NoError(t, bob.Join("Bob"))
	waitState(t, annStates, func(s session.GameState) bool { return len(s.Players) == 2 })
	require.NoError(t, ann.StartGame())
	waitState(t, bobStates, func(s session.GameState) bool { return s.Phase == session.PhasePlaying })

	oldID := ann.PlayerID()
	dropConnection(ann)

	select {
	case <-reconnected:
	case <-time.After(3 * time.Second):
		t.Fatal("never reconnected")
	}
	assert.NotEqual(t, oldID, ann.PlayerID())

	s := waitState(t, bobStates, func(s session.GameState) bool {
		return s.Players[0].ID == ann.PlayerID() && s.Players[0].Connected
	})
	assert.Equal(t, "Ann", s.Players[0].Name)
	assert.Equal(t, session.PhasePlaying, s.Phase)
}

func TestClient_ReconnectInLobby(t *testing.T) {
	t.Parallel()

	addr := startServer(t)
	ann, annStates := newTestClient(t, addr, "lobby-rc", codec.FormatJSON)

	reconnected := make(chan struct{}, 1)
	ann.OnReconnect = func() { reconnected <- struct{}{} }

	require.NoError(t, ann.Join("Ann"))
	waitState(t, annStates, func(s session.GameState) bool { return len(s.Players) == 1 })

	dropConnection(ann)

	select {
	case <-reconnected:
	case <-time.After(3 * time.Second):
		t.Fatal("never reconnected")
	}
	s := waitState(t, annStates, func(s session.GameState) bool {
		return len(s.Players) == 1 && s.Players[0].ID == ann.PlayerID()
	})
	assert.True(t, s.Players[0].Connected)
	assert.Equal(t, ann.PlayerID(), s.HostID)
}
