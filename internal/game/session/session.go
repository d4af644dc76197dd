// Package session is the authoritative Flip 7 state machine for a single room.
//
// A GameSession is not safe for concurrent use. Its owner (the room actor) feeds it one action at a
// time; every operation validates before it mutates, so a rejected action leaves the state untouched.
package session

import (
	"fmt"
	"math/rand/v2"

	"github.com/palemoky/flip-seven/internal/apperrors"
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/protocol"
)

// GameSession owns one GameState
type GameSession struct {
	state *GameState
	rules Rules
	rng   *rand.Rand

	// flip sevens per player name in the current game, reported with the result
	flipSevens map[string]int
}

// NewGameSession creates a session in the lobby phase. A nil rng is seeded randomly.
func NewGameSession(rules Rules, rng *rand.Rand) *GameSession {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if rules.TargetScore <= 0 {
		rules.TargetScore = DefaultTargetScore
	}

	return &GameSession{
		state: &GameState{
			Phase:       PhaseLobby,
			Players:     []*Player{},
			Deck:        card.Shuffle(card.NewDeck(), rng),
			DiscardPile: []card.Card{},
			TargetScore: rules.TargetScore,
			LastAction:  "Waiting for players.",
		},
		rules:      rules,
		rng:        rng,
		flipSevens: make(map[string]int),
	}
}

// State returns the live state. Callers must not keep it past the current action.
func (gs *GameSession) State() *GameState {
	return gs.state
}

// Phase returns the current phase
func (gs *GameSession) Phase() Phase {
	return gs.state.Phase
}

// FlipSevens returns how many times each player name hit Flip 7 in the current game
func (gs *GameSession) FlipSevens(name string) int {
	return gs.flipSevens[name]
}

// Apply dispatches an inbound action from connID
func (gs *GameSession) Apply(connID string, action protocol.Action) error {
	switch a := action.(type) {
	case protocol.Join:
		return gs.Join(connID, a.Name)
	case protocol.StartGame:
		return gs.StartGame(connID)
	case protocol.Hit:
		return gs.Hit(connID)
	case protocol.Stay:
		return gs.Stay(connID)
	case protocol.UseFlipThree:
		return gs.UseFlipThree(connID, a.Target)
	case protocol.UseFreeze:
		return gs.UseFreeze(connID, a.Target)
	case protocol.NewRound:
		return gs.NewRound(connID)
	case protocol.Restart:
		return gs.Restart(connID)
	default:
		return fmt.Errorf("unhandled action %T", action)
	}
}

func (gs *GameSession) playerByName(name string) *Player {
	for _, p := range gs.state.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (gs *GameSession) requireHost(connID string) error {
	if connID == "" || connID != gs.state.HostID {
		return apperrors.ErrNotHost
	}
	return nil
}

// requireTurn checks that connID may take a turn action right now
func (gs *GameSession) requireTurn(connID string) (*Player, error) {
	p := gs.state.PlayerByID(connID)
	if p == nil {
		return nil, apperrors.ErrNotSeated
	}
	if gs.state.Phase != PhasePlaying {
		return nil, apperrors.ErrNotPlaying
	}
	if !p.Active() {
		return nil, apperrors.ErrNotActive
	}
	if gs.state.CurrentPlayer() != p {
		return nil, apperrors.ErrNotYourTurn
	}
	return p, nil
}

// ensureHost keeps the host on a connected seat when one exists
func (gs *GameSession) ensureHost() {
	if host := gs.state.PlayerByID(gs.state.HostID); host != nil && host.Connected {
		return
	}
	for _, p := range gs.state.Players {
		if p.Connected {
			gs.state.HostID = p.ID
			return
		}
	}
}

func (gs *GameSession) draw() (card.Card, error) {
	c, deck, discard, err := card.Draw(gs.state.Deck, gs.state.DiscardPile, gs.rng)
	if err != nil {
		return card.Card{}, err
	}
	gs.state.Deck, gs.state.DiscardPile = deck, discard
	return c, nil
}

func (gs *GameSession) discard(cards ...card.Card) {
	gs.state.DiscardPile = append(gs.state.DiscardPile, cards...)
}
