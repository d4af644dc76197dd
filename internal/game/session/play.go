package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/palemoky/flip-seven/internal/apperrors"
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/rule"
)

const flipThreeDraws = 3

// Hit draws one card for the current player
func (gs *GameSession) Hit(connID string) error {
	p, err := gs.requireTurn(connID)
	if err != nil {
		return err
	}

	c, err := gs.draw()
	if err != nil {
		return fmt.Errorf("hit: %w", err)
	}

	desc, roundOver := gs.resolveDraw(p, c, false)
	gs.state.LastAction = desc
	if roundOver {
		gs.endRound()
		return nil
	}
	gs.afterTurn()
	return nil
}

// Stay banks the current player's round score
func (gs *GameSession) Stay(connID string) error {
	p, err := gs.requireTurn(connID)
	if err != nil {
		return err
	}

	p.Stayed = true
	p.rescore()
	gs.state.LastAction = fmt.Sprintf("%s stays with %d.", p.Name, p.RoundScore)
	gs.afterTurn()
	return nil
}

// UseFreeze plays a held Freeze card: the target stays at its current round score
func (gs *GameSession) UseFreeze(connID, targetID string) error {
	p, err := gs.requireTurn(connID)
	if err != nil {
		return err
	}
	idx := rule.IndexOf(p.Cards, card.Freeze)
	if idx < 0 {
		return apperrors.ErrNoActionCard
	}
	target, err := gs.actionTarget(p, targetID)
	if err != nil {
		return err
	}

	gs.playFromHand(p, idx)
	target.Stayed = true
	target.rescore()
	gs.state.LastAction = fmt.Sprintf("%s froze %s at %d.", p.Name, target.Name, target.RoundScore)
	gs.afterTurn()
	return nil
}

// UseFlipThree plays a held Flip Three card: the target draws up to three cards and stops early
// once it is out of the round
func (gs *GameSession) UseFlipThree(connID, targetID string) error {
	p, err := gs.requireTurn(connID)
	if err != nil {
		return err
	}
	idx := rule.IndexOf(p.Cards, card.FlipThree)
	if idx < 0 {
		return apperrors.ErrNoActionCard
	}
	target, err := gs.actionTarget(p, targetID)
	if err != nil {
		return err
	}

	// the played card goes to the discard pile and counts toward the draws
	if len(gs.state.Deck)+len(gs.state.DiscardPile)+1 < flipThreeDraws {
		return fmt.Errorf("flip three: %w", card.ErrDeckExhausted)
	}

	gs.playFromHand(p, idx)
	steps := []string{fmt.Sprintf("%s played Flip Three on %s.", p.Name, target.Name)}
	for range flipThreeDraws {
		if !target.Active() {
			break
		}
		c, err := gs.draw()
		if err != nil {
			gs.state.LastAction = strings.Join(steps, " ")
			return fmt.Errorf("flip three: %w", err)
		}
		desc, roundOver := gs.resolveDraw(target, c, true)
		steps = append(steps, desc)
		if roundOver {
			gs.state.LastAction = strings.Join(steps, " ")
			gs.endRound()
			return nil
		}
	}

	gs.state.LastAction = strings.Join(steps, " ")
	gs.afterTurn()
	return nil
}

// actionTarget resolves the target of an action card; empty means the actor
func (gs *GameSession) actionTarget(actor *Player, targetID string) (*Player, error) {
	if targetID == "" {
		return actor, nil
	}
	target := gs.state.PlayerByID(targetID)
	if target == nil || !target.Active() {
		return nil, apperrors.ErrInvalidTarget
	}
	return target, nil
}

// playFromHand moves the card at idx from the player's hand to the discard pile
func (gs *GameSession) playFromHand(p *Player, idx int) {
	gs.discard(p.Cards[idx])
	p.Cards = slices.Delete(p.Cards, idx, idx+1)
	p.rescore()
}

// resolveDraw applies a drawn card to p. multi is true inside a Flip Three sequence, where a
// Second Chance save does not end the player's round. It reports whether the card ended the
// round through Flip 7.
func (gs *GameSession) resolveDraw(p *Player, c card.Card, multi bool) (string, bool) {
	switch c.Type {
	case card.Number:
		if rule.HasNumber(p.Cards, c.Value) {
			return gs.resolveDuplicate(p, c, multi), false
		}
		p.Cards = append(p.Cards, c)
		p.rescore()
		if rule.IsFlipSeven(p.Cards) {
			gs.flipSeven(p)
			return fmt.Sprintf("%s drew %s and flipped 7!", p.Name, c.Label), true
		}
		return fmt.Sprintf("%s drew %s.", p.Name, c.Label), false

	case card.SecondChance:
		had := p.HasSecondChance
		p.Cards = append(p.Cards, c)
		p.rescore()
		if had {
			return fmt.Sprintf("%s drew another Second Chance.", p.Name), false
		}
		return fmt.Sprintf("%s drew a Second Chance.", p.Name), false

	default:
		p.Cards = append(p.Cards, c)
		p.rescore()
		return fmt.Sprintf("%s drew %s.", p.Name, c.Label), false
	}
}

// resolveDuplicate handles a number the player already holds: a held Second Chance absorbs it,
// otherwise the player busts and the duplicate stays visible in the hand.
func (gs *GameSession) resolveDuplicate(p *Player, c card.Card, multi bool) string {
	if idx := rule.IndexOf(p.Cards, card.SecondChance); idx >= 0 {
		saver := p.Cards[idx]
		p.Cards = slices.Delete(p.Cards, idx, idx+1)
		gs.discard(saver, c)
		p.rescore()
		if multi {
			return fmt.Sprintf("%s drew a duplicate %s, saved by Second Chance.", p.Name, c.Label)
		}
		p.Stayed = true
		return fmt.Sprintf("%s drew a duplicate %s, saved by Second Chance, and stays with %d.", p.Name, c.Label, p.RoundScore)
	}

	p.Cards = append(p.Cards, c)
	p.Busted = true
	p.rescore()
	return fmt.Sprintf("%s busted on a duplicate %s.", p.Name, c.Label)
}

// flipSeven stays p and every other active player at their current round score
func (gs *GameSession) flipSeven(p *Player) {
	gs.flipSevens[p.Name]++
	for _, other := range gs.state.Players {
		if other.Active() {
			other.Stayed = true
			other.rescore()
		}
	}
}
