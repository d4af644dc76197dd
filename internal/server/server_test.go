package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/flip-seven/internal/config"
	"github.com/palemoky/flip-seven/internal/game/room"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
	"github.com/palemoky/flip-seven/internal/server/storage"
	"github.com/palemoky/flip-seven/internal/types"
)

func newTestServer(t *testing.T, rdb *redis.Client, tweak func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	if tweak != nil {
		tweak(cfg)
	}
	s := NewServer(cfg, rdb)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return s, ts
}

func wsURL(ts *httptest.Server, query string) string {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if query != "" {
		u += "?" + query
	}
	return u
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn, format codec.Format) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	frameType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	if format.Binary() {
		require.Equal(t, websocket.BinaryMessage, frameType)
	} else {
		require.Equal(t, websocket.TextMessage, frameType)
	}
	msg, err := format.Decode(data)
	require.NoError(t, err)
	return msg
}

func send(t *testing.T, conn *websocket.Conn, format codec.Format, action protocol.Action) {
	t.Helper()
	msg, err := codec.EncodeAction(action)
	require.NoError(t, err)
	data, err := format.Encode(msg)
	require.NoError(t, err)
	frameType := websocket.TextMessage
	if format.Binary() {
		frameType = websocket.BinaryMessage
	}
	require.NoError(t, conn.WriteMessage(frameType, data))
}

// readStateUntil reads frames until a state snapshot satisfies ok
func readStateUntil(t *testing.T, conn *websocket.Conn, format codec.Format, ok func(session.GameState) bool) session.GameState {
	t.Helper()
	for range 20 {
		msg := readMsg(t, conn, format)
		if msg.Type != protocol.MsgState {
			continue
		}
		state, err := codec.ParsePayload[session.GameState](msg)
		require.NoError(t, err)
		if ok(*state) {
			return *state
		}
	}
	t.Fatal("state never matched")
	return session.GameState{}
}

func handshake(t *testing.T, conn *websocket.Conn, format codec.Format) protocol.ConnectedPayload {
	t.Helper()
	msg := readMsg(t, conn, format)
	require.Equal(t, protocol.MsgConnected, msg.Type)
	payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
	require.NoError(t, err)
	return *payload
}

func TestWebSocket_JoinFlow(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	conn := dial(t, ts, "room=table-1")

	hello := handshake(t, conn, codec.FormatJSON)
	assert.Equal(t, "TABLE-1", hello.RoomCode)
	assert.NotEmpty(t, hello.PlayerID)

	state := readStateUntil(t, conn, codec.FormatJSON, func(session.GameState) bool { return true })
	assert.Equal(t, session.PhaseLobby, state.Phase)
	assert.Empty(t, state.Players)

	send(t, conn, codec.FormatJSON, protocol.Join{Name: "Ann"})
	state = readStateUntil(t, conn, codec.FormatJSON, func(s session.GameState) bool { return len(s.Players) == 1 })
	assert.Equal(t, "Ann", state.Players[0].Name)
	assert.Equal(t, hello.PlayerID, state.Players[0].ID)
	assert.Equal(t, hello.PlayerID, state.HostID)
}

func TestWebSocket_DefaultRoom(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	conn := dial(t, ts, "")

	hello := handshake(t, conn, codec.FormatJSON)
	assert.Equal(t, "LOBBY", hello.RoomCode)
}

func TestWebSocket_ProtoFormat(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	conn := dial(t, ts, "room=pb&format=proto")

	hello := handshake(t, conn, codec.FormatProto)
	assert.Equal(t, "PB", hello.RoomCode)

	send(t, conn, codec.FormatProto, protocol.Join{Name: "Zed"})
	state := readStateUntil(t, conn, codec.FormatProto, func(s session.GameState) bool { return len(s.Players) == 1 })
	assert.Equal(t, "Zed", state.Players[0].Name)
}

func TestWebSocket_ErrorGoesToSenderOnly(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	ann := dial(t, ts, "room=err")
	bob := dial(t, ts, "room=err")
	handshake(t, ann, codec.FormatJSON)
	handshake(t, bob, codec.FormatJSON)

	send(t, ann, codec.FormatJSON, protocol.Join{Name: "Ann"})
	readStateUntil(t, ann, codec.FormatJSON, func(s session.GameState) bool { return len(s.Players) == 1 })
	readStateUntil(t, bob, codec.FormatJSON, func(s session.GameState) bool { return len(s.Players) == 1 })

	send(t, bob, codec.FormatJSON, protocol.Join{Name: "Ann"})
	var errMsg *protocol.Message
	for range 5 {
		msg := readMsg(t, bob, codec.FormatJSON)
		if msg.Type == protocol.MsgError {
			errMsg = msg
			break
		}
	}
	require.NotNil(t, errMsg)
	payload, err := codec.ParsePayload[protocol.ErrorPayload](errMsg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeNameTaken, payload.Code)

	// Ann sees the next broadcast, not Bob's error
	send(t, bob, codec.FormatJSON, protocol.Join{Name: "Bob"})
	msg := readMsg(t, ann, codec.FormatJSON)
	assert.Equal(t, protocol.MsgState, msg.Type)
}

func TestWebSocket_DisconnectMarksSeat(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	ann := dial(t, ts, "room=drop")
	bob := dial(t, ts, "room=drop")
	handshake(t, ann, codec.FormatJSON)
	handshake(t, bob, codec.FormatJSON)

	send(t, ann, codec.FormatJSON, protocol.Join{Name: "Ann"})
	readStateUntil(t, ann, codec.FormatJSON, func(s session.GameState) bool { return len(s.Players) == 1 })
	send(t, bob, codec.FormatJSON, protocol.Join{Name: "Bob"})
	readStateUntil(t, ann, codec.FormatJSON, func(s session.GameState) bool { return len(s.Players) == 2 })

	require.NoError(t, bob.Close())

	state := readStateUntil(t, ann, codec.FormatJSON, func(s session.GameState) bool {
		return len(s.Players) == 2 && !s.Players[1].Connected
	})
	assert.Equal(t, "Bob", state.Players[1].Name)
	assert.True(t, state.Players[0].Connected)
}

// slowClient holds the room goroutine for delay on every message it is sent
type slowClient struct {
	delay time.Duration
}

func (c *slowClient) GetID() string                 { return "slow-watcher" }
func (c *slowClient) GetRoom() string               { return "" }
func (c *slowClient) SetRoom(string)                {}
func (c *slowClient) SendMessage(*protocol.Message) { time.Sleep(c.delay) }
func (c *slowClient) Close()                        {}

func TestWebSocket_JoinWhileRoomBusy(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil, nil)
	require.NoError(t, s.roomManager.GetOrCreate("BUSY").Connect(&slowClient{delay: 300 * time.Millisecond}))

	conn := dial(t, ts, "room=busy")
	hello := handshake(t, conn, codec.FormatJSON)
	send(t, conn, codec.FormatJSON, protocol.Join{Name: "Ann"})

	state := readStateUntil(t, conn, codec.FormatJSON, func(s session.GameState) bool { return len(s.Players) == 1 })
	assert.Equal(t, hello.PlayerID, state.Players[0].ID)
	assert.Equal(t, "Ann", state.Players[0].Name)
}

func TestWebSocket_InvalidRoomCode(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "room="+url.QueryEscape("no spaces")), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocket_ConnectionLimit(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil, func(c *config.Config) { c.Server.MaxConnections = 1 })
	first := dial(t, ts, "room=full")
	handshake(t, first, codec.FormatJSON)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "room=full"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return len(s.semaphore) == 0 }, 2*time.Second, 10*time.Millisecond)

	second := dial(t, ts, "room=full")
	handshake(t, second, codec.FormatJSON)
}

func TestShutdown_NotifiesClients(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil, nil)
	conn := dial(t, ts, "room=bye")
	handshake(t, conn, codec.FormatJSON)
	readStateUntil(t, conn, codec.FormatJSON, func(session.GameState) bool { return true })

	require.NoError(t, s.Shutdown(context.Background()))
	assert.True(t, s.IsDraining())

	msg := readMsg(t, conn, codec.FormatJSON)
	require.Equal(t, protocol.MsgError, msg.Type)
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerShutdown, payload.Code)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "room=bye"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHTTP_HealthAndRooms(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/health", nil))

	conn := dial(t, ts, "room=listed")
	handshake(t, conn, codec.FormatJSON)

	require.Eventually(t, func() bool {
		var rooms []room.RoomSummary
		if getJSON(t, ts, "/rooms", &rooms) != http.StatusOK {
			return false
		}
		return len(rooms) == 1 && rooms[0].Code == "LISTED" && rooms[0].Connections == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHTTP_StorageDisabled(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts, "/leaderboard", nil))
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts, "/players/Ann", nil))
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts, "/rooms/ABC/results", nil))
}

func TestHTTP_Leaderboard(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	recorder := storage.NewRecorder(storage.NewRedisStore(rdb), storage.NewLeaderboardManager(rdb))
	require.NoError(t, recorder.RecordResult(context.Background(), &types.GameResult{
		RoomCode: "ABC",
		Rounds:   6,
		Winner:   "Ann",
		Players: []types.PlayerResult{
			{Name: "Ann", Score: 204, Winner: true, FlipSevens: 1},
			{Name: "Bob", Score: 150},
		},
		FinishedAt: 1700000000,
	}))

	// Shutdown in cleanup closes rdb
	_, ts := newTestServer(t, rdb, nil)

	var board []storage.LeaderboardEntry
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/leaderboard?limit=5", &board))
	require.Len(t, board, 2)
	assert.Equal(t, "Ann", board[0].PlayerName)
	assert.Equal(t, 1, board[0].Rank)

	var stats struct {
		storage.PlayerStats
		Rank int64 `json:"rank"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/players/Bob", &stats))
	assert.Equal(t, "Bob", stats.PlayerName)
	assert.Equal(t, 1, stats.TotalGames)
	assert.Equal(t, int64(2), stats.Rank)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts, "/players/Nobody", nil))

	var results []types.GameResult
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/rooms/abc/results", &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Ann", results[0].Winner)
}

func TestHTTP_PlayerStatsRankFailure(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.HSet("stats:Ann", "player_name", "Ann", "total_games", "1")
	// the ranking key holds the wrong type, so ZREVRANK fails
	require.NoError(t, mr.Set("leaderboard:wins", "broken"))

	_, ts := newTestServer(t, rdb, nil)
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, ts, "/players/Ann", nil))
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "10.0.0.9", getClientIP(r))

	r.Header.Set("X-Real-IP", "192.168.1.2")
	assert.Equal(t, "192.168.1.2", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(r))
}
