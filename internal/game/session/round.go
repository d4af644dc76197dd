package session

import (
	"fmt"
	"strings"

	"github.com/palemoky/flip-seven/internal/game/card"
)

// startRound begins the next round. No cards are dealt; the first player acts.
func (gs *GameSession) startRound() {
	s := gs.state
	s.RoundNumber++

	if s.RoundNumber == 1 {
		s.Deck = card.Shuffle(card.NewDeck(), gs.rng)
		s.DiscardPile = []card.Card{}
	} else {
		for _, p := range s.Players {
			gs.discard(p.Cards...)
		}
	}
	for _, p := range s.Players {
		p.resetRound()
	}

	s.Phase = PhasePlaying
	s.CurrentPlayerIndex = 0
	s.Winner = ""
	s.LastAction = fmt.Sprintf("Round %d started. %s to act.", s.RoundNumber, s.Players[0].Name)
}

// afterTurn ends the round when nobody is active, otherwise hands the turn to the next active
// player cycling forward from the current one.
func (gs *GameSession) afterTurn() {
	s := gs.state
	n := len(s.Players)
	for i := 1; i <= n; i++ {
		idx := (s.CurrentPlayerIndex + i) % n
		if s.Players[idx].Active() {
			s.CurrentPlayerIndex = idx
			return
		}
	}
	gs.endRound()
}

// endRound banks round scores and decides between round_end and game_over.
// The game ends only when a single player holds the highest score at or above the target.
func (gs *GameSession) endRound() {
	s := gs.state

	var summary []string
	for _, p := range s.Players {
		if p.Busted {
			summary = append(summary, fmt.Sprintf("%s busted", p.Name))
			continue
		}
		p.rescore()
		p.Score += p.RoundScore
		summary = append(summary, fmt.Sprintf("%s +%d", p.Name, p.RoundScore))
	}
	s.LastAction = strings.TrimSpace(s.LastAction + " Round over: " + strings.Join(summary, ", ") + ".")

	if winner := gs.uniqueLeaderAtTarget(); winner != nil {
		s.Phase = PhaseGameOver
		s.Winner = winner.ID
		s.LastAction += fmt.Sprintf(" %s wins with %d!", winner.Name, winner.Score)
		return
	}
	s.Phase = PhaseRoundEnd
}

func (gs *GameSession) uniqueLeaderAtTarget() *Player {
	s := gs.state

	reached := false
	best := -1
	for _, p := range s.Players {
		if p.Score >= s.TargetScore {
			reached = true
		}
		best = max(best, p.Score)
	}
	if !reached {
		return nil
	}

	var leader *Player
	for _, p := range s.Players {
		if p.Score != best {
			continue
		}
		if leader != nil {
			return nil // tied at the top
		}
		leader = p
	}
	return leader
}
