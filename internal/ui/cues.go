package ui

import (
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/rule"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/sound"
)

// cueFor picks the single most notable sound for the transition from prev to next, seen from seat me
func cueFor(prev, next *session.GameState, me string) string {
	if prev == nil || next == nil {
		return ""
	}

	if next.Phase == session.PhaseGameOver && prev.Phase != session.PhaseGameOver {
		if next.Winner == me {
			return sound.CueWin
		}
		return ""
	}

	for _, p := range next.Players {
		if rule.IsFlipSeven(p.Cards) {
			if old := prev.PlayerByID(p.ID); old != nil && !rule.IsFlipSeven(old.Cards) {
				return sound.CueFlip7
			}
		}
	}

	was, now := prev.PlayerByID(me), next.PlayerByID(me)
	if was != nil && now != nil {
		switch {
		case now.Busted && !was.Busted:
			return sound.CueBust
		case now.Stayed && !was.Stayed && was.Active() && len(now.Cards) == len(was.Cards):
			// stayed without drawing: either a voluntary stay or a Freeze
			if rule.Count(next.DiscardPile, card.Freeze) > rule.Count(prev.DiscardPile, card.Freeze) {
				return sound.CueFreeze
			}
		case rule.Count(now.Cards, card.SecondChance) < rule.Count(was.Cards, card.SecondChance) && !now.Busted:
			return sound.CueSecondChance
		case len(now.Cards) > len(was.Cards):
			if rule.Count(now.Cards, card.FlipThree) > rule.Count(was.Cards, card.FlipThree) {
				return sound.CueFlipThree
			}
			return sound.CueHit
		}
	}

	if cur := next.CurrentPlayer(); cur != nil && cur.ID == me {
		if old := prev.CurrentPlayer(); old == nil || old.ID != me {
			return sound.CueYourTurn
		}
	}
	return ""
}
