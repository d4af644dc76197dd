// Package room runs one actor goroutine per room. The actor owns the room's GameSession and its
// connections; everything else talks to it through the inbox.
package room

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/apperrors"
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
	"github.com/palemoky/flip-seven/internal/types"
)

const (
	inboxSize     = 64
	recordTimeout = 5 * time.Second
)

// ErrRoomClosed is returned when an event is sent to a stopped room
var ErrRoomClosed = errors.New("room closed")

type event interface{ isEvent() }

type connectEvent struct{ client types.ClientInterface }

type actionEvent struct {
	clientID string
	action   protocol.Action
}

type disconnectEvent struct{ clientID string }

type snapshotEvent struct{ reply chan []byte }

func (connectEvent) isEvent()    {}
func (actionEvent) isEvent()     {}
func (disconnectEvent) isEvent() {}
func (snapshotEvent) isEvent()   {}

// Room is a game table addressed by its code
type Room struct {
	Code      string
	CreatedAt time.Time

	session  *session.GameSession
	clients  map[string]types.ClientInterface // actor-owned
	recorder types.ResultRecorder
	log      *zap.Logger

	inbox    chan event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	connections atomic.Int32
	idleSince   atomic.Int64 // unix nanos, 0 while someone is connected
}

// NewRoom creates a room in the lobby phase. Call Start to run it.
// A nil recorder disables result persistence.
func NewRoom(code string, rules session.Rules, rng *rand.Rand, recorder types.ResultRecorder) *Room {
	r := &Room{
		Code:      code,
		CreatedAt: time.Now(),
		session:   session.NewGameSession(rules, rng),
		clients:   make(map[string]types.ClientInterface),
		recorder:  recorder,
		log:       logger.L().With(zap.String("room", code)),
		inbox:     make(chan event, inboxSize),
		done:      make(chan struct{}),
	}
	r.idleSince.Store(time.Now().UnixNano())
	return r
}

// Start launches the actor goroutine
func (r *Room) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop closes the room and waits for the actor to exit. Pending events are dropped.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
	r.wg.Wait()
}

// Connect attaches a client; it receives the current state right away
func (r *Room) Connect(client types.ClientInterface) error {
	return r.send(connectEvent{client: client})
}

// Submit queues an action from a connected client
func (r *Room) Submit(clientID string, action protocol.Action) error {
	return r.send(actionEvent{clientID: clientID, action: action})
}

// Disconnect detaches a client. Its seat, if any, is kept and marked disconnected.
func (r *Room) Disconnect(clientID string) error {
	return r.send(disconnectEvent{clientID: clientID})
}

// Snapshot returns the JSON encoded state as seen after all previously queued events
func (r *Room) Snapshot(ctx context.Context) ([]byte, error) {
	reply := make(chan []byte, 1)
	if err := r.send(snapshotEvent{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case data := <-reply:
		return data, nil
	case <-r.done:
		return nil, ErrRoomClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ConnectionCount is the number of attached clients
func (r *Room) ConnectionCount() int {
	return int(r.connections.Load())
}

// IdleFor reports how long the room has had no connections, or 0 if it has any
func (r *Room) IdleFor(now time.Time) time.Duration {
	since := r.idleSince.Load()
	if since == 0 {
		return 0
	}
	return now.Sub(time.Unix(0, since))
}

func (r *Room) send(ev event) error {
	select {
	case <-r.done:
		return ErrRoomClosed
	default:
	}
	select {
	case r.inbox <- ev:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) run() {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			return
		case ev := <-r.inbox:
			r.handle(ev)
		}
	}
}

// handle processes one event. A panic is logged and the room keeps serving.
func (r *Room) handle(ev event) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.LogPanic(rec)
		}
	}()

	switch e := ev.(type) {
	case connectEvent:
		r.handleConnect(e.client)
	case actionEvent:
		r.handleAction(e.clientID, e.action)
	case disconnectEvent:
		r.handleDisconnect(e.clientID)
	case snapshotEvent:
		data, err := json.Marshal(r.session.State())
		if err != nil {
			r.log.Error("snapshot encode failed", zap.Error(err))
		}
		e.reply <- data
	}
}

func (r *Room) handleConnect(client types.ClientInterface) {
	id := client.GetID()
	if _, exists := r.clients[id]; !exists {
		r.connections.Add(1)
	}
	r.clients[id] = client
	r.idleSince.Store(0)
	client.SetRoom(r.Code)

	client.SendMessage(r.stateMessage())
	r.log.Debug("client connected", zap.String("client", id), zap.Int("connections", len(r.clients)))
}

func (r *Room) handleDisconnect(clientID string) {
	if _, exists := r.clients[clientID]; !exists {
		return
	}
	delete(r.clients, clientID)
	if r.connections.Add(-1) == 0 {
		r.idleSince.Store(time.Now().UnixNano())
	}

	if err := r.session.Disconnect(clientID); err != nil {
		return // spectator without a seat
	}
	r.log.Info("player disconnected", zap.String("client", clientID))
	r.broadcastState()
}

func (r *Room) handleAction(clientID string, action protocol.Action) {
	client, connected := r.clients[clientID]
	if !connected {
		return
	}

	before := r.session.Phase()
	if err := r.session.Apply(clientID, action); err != nil {
		r.reject(client, action, err)
		return
	}

	r.log.Debug("action applied",
		zap.String("client", clientID),
		zap.String("action", string(action.Kind())),
		zap.String("last_action", r.session.State().LastAction))
	r.broadcastState()

	if before != session.PhaseGameOver && r.session.Phase() == session.PhaseGameOver {
		r.recordResult()
	}
}

// reject notifies the sender unless the error is silent
func (r *Room) reject(client types.ClientInterface, action protocol.Action, err error) {
	if apperrors.IsSilent(err) {
		r.log.Debug("action ignored",
			zap.String("client", client.GetID()),
			zap.String("action", string(action.Kind())),
			zap.Error(err))
		return
	}

	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}

	if errors.Is(err, card.ErrDeckExhausted) {
		r.log.Error("deck exhausted",
			zap.String("client", client.GetID()),
			zap.String("action", string(action.Kind())),
			zap.Error(err))
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeDeckExhausted))
		return
	}

	r.log.Error("action failed",
		zap.String("client", client.GetID()),
		zap.String("action", string(action.Kind())),
		zap.Error(err))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}

func (r *Room) stateMessage() *protocol.Message {
	return codec.MustNewMessage(protocol.MsgState, r.session.State())
}

func (r *Room) broadcastState() {
	msg := r.stateMessage()
	for _, client := range r.clients {
		client.SendMessage(msg)
	}
}

// recordResult hands the finished game to the recorder without blocking the actor
func (r *Room) recordResult() {
	if r.recorder == nil {
		return
	}

	result := r.buildResult()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.recorder.RecordResult(ctx, result); err != nil {
			r.log.Error("record result failed", zap.Error(err))
			return
		}
		r.log.Info("game result recorded", zap.String("winner", result.Winner))
	}()
}

func (r *Room) buildResult() *types.GameResult {
	state := r.session.State()
	result := &types.GameResult{
		RoomCode:   r.Code,
		Rounds:     state.RoundNumber,
		Players:    make([]types.PlayerResult, 0, len(state.Players)),
		FinishedAt: time.Now().Unix(),
	}
	for _, p := range state.Players {
		winner := p.ID == state.Winner
		if winner {
			result.Winner = p.Name
		}
		result.Players = append(result.Players, types.PlayerResult{
			Name:       p.Name,
			Score:      p.Score,
			Winner:     winner,
			FlipSevens: r.session.FlipSevens(p.Name),
		})
	}
	return result
}
