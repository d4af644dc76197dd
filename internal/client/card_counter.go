// Package client holds client-side helpers derived from the public table state.
package client

import (
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/rule"
	"github.com/palemoky/flip-seven/internal/game/session"
)

// CardCounter tracks the cards not visible on the table, which are exactly the draw pile
type CardCounter struct {
	remaining map[int]int // number value -> unseen copies
	unseen    int
}

// NewCardCounter creates a counter for a full, unseen deck
func NewCardCounter() *CardCounter {
	cc := &CardCounter{remaining: make(map[int]int)}
	cc.Reset()
	return cc
}

// FromState counts every hand and the discard pile as seen
func FromState(s *session.GameState) *CardCounter {
	cc := NewCardCounter()
	for _, p := range s.Players {
		cc.DeductCards(p.Cards)
	}
	cc.DeductCards(s.DiscardPile)
	return cc
}

// Reset restores the full 95-card composition
func (cc *CardCounter) Reset() {
	clear(cc.remaining)
	cc.unseen = 0
	for _, c := range card.NewDeck() {
		if c.Type == card.Number {
			cc.remaining[c.Value]++
		}
		cc.unseen++
	}
}

// DeductCards marks cards as seen
func (cc *CardCounter) DeductCards(cards []card.Card) {
	for _, c := range cards {
		if cc.unseen > 0 {
			cc.unseen--
		}
		if c.Type == card.Number && cc.remaining[c.Value] > 0 {
			cc.remaining[c.Value]--
		}
	}
}

// GetRemaining returns unseen copies per number value
func (cc *CardCounter) GetRemaining() map[int]int {
	return cc.remaining
}

// Unseen is the number of cards not yet seen, of any kind
func (cc *CardCounter) Unseen() int {
	return cc.unseen
}

// BustChance is the probability that the next card duplicates a number already in hand.
// A held Second Chance is ignored; it softens a bust but does not prevent the draw.
func (cc *CardCounter) BustChance(hand []card.Card) float64 {
	if cc.unseen == 0 {
		return 0
	}
	risky := 0
	for v := 0; v <= card.MaxNumber; v++ {
		if rule.HasNumber(hand, v) {
			risky += cc.remaining[v]
		}
	}
	return float64(risky) / float64(cc.unseen)
}
