package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/flip-seven/internal/game/room"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
	"github.com/palemoky/flip-seven/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *room.RoomManager) {
	t.Helper()
	rm := room.NewRoomManager(session.DefaultRules(), nil, time.Minute)
	t.Cleanup(rm.Close)
	return NewHandler(rm), rm
}

func roomState(t *testing.T, r *room.Room) session.GameState {
	t.Helper()
	data, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	var s session.GameState
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestHandle_RoutesActionToRoom(t *testing.T) {
	t.Parallel()

	h, rm := newTestHandler(t)
	r := rm.GetOrCreate("HALL")
	client := testutil.NewSimpleClient("c1")
	require.NoError(t, r.Connect(client))
	require.True(t, client.WaitFor(protocol.MsgState, 1, time.Second))

	h.Handle(client, codec.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{Name: "Ann"}))

	s := roomState(t, r)
	require.Len(t, s.Players, 1)
	assert.Equal(t, "Ann", s.Players[0].Name)
	assert.Equal(t, "c1", s.HostID)
}

func TestHandle_DropsMalformedMessages(t *testing.T) {
	t.Parallel()

	h, rm := newTestHandler(t)
	r := rm.GetOrCreate("HALL")
	client := testutil.NewSimpleClient("c1")
	require.NoError(t, r.Connect(client))
	require.True(t, client.WaitFor(protocol.MsgState, 1, time.Second))

	h.Handle(client, &protocol.Message{Type: "teleport"})
	h.Handle(client, &protocol.Message{Type: protocol.MsgJoin, Payload: json.RawMessage(`{"name":`)})
	h.Handle(client, &protocol.Message{Type: protocol.MsgJoin, Payload: json.RawMessage(`[1,2]`)})

	s := roomState(t, r)
	assert.Empty(t, s.Players)
	assert.Zero(t, client.Count(protocol.MsgError), "malformed frames get no reply")
}

func TestHandle_ClientWithoutRoom(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	client := testutil.NewSimpleClient("loose")

	assert.NotPanics(t, func() {
		h.Handle(client, codec.MustNewMessage(protocol.MsgHit, nil))
	})
	assert.Empty(t, client.Messages())
}
