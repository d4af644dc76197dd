package session

import (
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/rule"
)

// Phase is the room's position in the game state machine
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseRoundEnd Phase = "round_end"
	PhaseGameOver Phase = "game_over"
)

const (
	DefaultTargetScore = 200
	DefaultMaxPlayers  = 8
	MaxNameLength      = 20
)

// Player is one seat at the table. Seats are never removed, only marked disconnected.
type Player struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Cards           []card.Card `json:"cards"`
	Score           int         `json:"score"`
	RoundScore      int         `json:"roundScore"`
	Busted          bool        `json:"busted"`
	Stayed          bool        `json:"stayed"`
	HasSecondChance bool        `json:"hasSecondChance"`
	Connected       bool        `json:"connected"`
}

// Active reports whether the player is still drawing this round
func (p *Player) Active() bool {
	return !p.Busted && !p.Stayed
}

func (p *Player) rescore() {
	p.RoundScore = rule.RoundScore(p.Cards, p.Busted)
	p.HasSecondChance = rule.Count(p.Cards, card.SecondChance) > 0
}

func (p *Player) resetRound() {
	p.Cards = []card.Card{}
	p.RoundScore = 0
	p.Busted = false
	p.Stayed = false
	p.HasSecondChance = false
}

// GameState is the whole room state. It is sent to clients as-is after every accepted mutation.
type GameState struct {
	Phase              Phase       `json:"phase"`
	Players            []*Player   `json:"players"`
	CurrentPlayerIndex int         `json:"currentPlayerIndex"`
	Deck               []card.Card `json:"deck"`
	DiscardPile        []card.Card `json:"discardPile"`
	RoundNumber        int         `json:"roundNumber"`
	HostID             string      `json:"hostId"`
	TargetScore        int         `json:"targetScore"`
	LastAction         string      `json:"lastAction"`
	Winner             string      `json:"winner"`
}

// CardCount is draw pile + discard pile + every hand. It stays at card.DeckSize.
func (s *GameState) CardCount() int {
	n := len(s.Deck) + len(s.DiscardPile)
	for _, p := range s.Players {
		n += len(p.Cards)
	}
	return n
}

// CurrentPlayer returns the player whose turn it is, or nil outside of play
func (s *GameState) CurrentPlayer() *Player {
	if s.Phase != PhasePlaying || s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// PlayerByID returns the seat bound to a connection id
func (s *GameState) PlayerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Rules are the per-room settings
type Rules struct {
	TargetScore int
	MaxPlayers  int // 0 means unlimited
}

// DefaultRules returns the standard game settings
func DefaultRules() Rules {
	return Rules{TargetScore: DefaultTargetScore, MaxPlayers: DefaultMaxPlayers}
}
