package session

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/flip-seven/internal/game/card"
)

type cardSpec struct {
	typ   card.Type
	value int
}

func n(v int) cardSpec { return cardSpec{card.Number, v} }

var (
	secondChance = cardSpec{typ: card.SecondChance}
	freeze       = cardSpec{typ: card.Freeze}
	flipThree    = cardSpec{typ: card.FlipThree}
)

func newTestSession(t *testing.T, names ...string) *GameSession {
	t.Helper()
	gs := NewGameSession(DefaultRules(), rand.New(rand.NewPCG(7, 11)))
	for i, name := range names {
		require.NoError(t, gs.Join(connID(i), name))
	}
	return gs
}

func startedSession(t *testing.T, names ...string) *GameSession {
	t.Helper()
	gs := newTestSession(t, names...)
	require.NoError(t, gs.StartGame(connID(0)))
	return gs
}

func connID(i int) string {
	return fmt.Sprintf("c%d", i+1)
}

// takeFromDeck removes one matching card from the draw pile
func takeFromDeck(t *testing.T, gs *GameSession, s cardSpec) card.Card {
	t.Helper()
	for i, c := range gs.state.Deck {
		if c.Type == s.typ && c.Value == s.value {
			gs.state.Deck = slices.Delete(gs.state.Deck, i, i+1)
			return c
		}
	}
	t.Fatalf("no %s %d left in the deck", s.typ, s.value)
	return card.Card{}
}

// rig puts cards on top of the draw pile so they are drawn in the given order
func rig(t *testing.T, gs *GameSession, want ...cardSpec) {
	t.Helper()
	top := make([]card.Card, 0, len(want))
	for _, s := range want {
		top = append(top, takeFromDeck(t, gs, s))
	}
	slices.Reverse(top)
	gs.state.Deck = append(gs.state.Deck, top...)
}

// give moves cards from the draw pile into a player's hand
func give(t *testing.T, gs *GameSession, p *Player, want ...cardSpec) {
	t.Helper()
	for _, s := range want {
		p.Cards = append(p.Cards, takeFromDeck(t, gs, s))
	}
	p.rescore()
}

func values(cards []card.Card) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Value)
	}
	return out
}
