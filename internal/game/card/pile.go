package card

import (
	"errors"
	"math/rand/v2"
)

// ErrDeckExhausted means both the draw pile and the discard pile are empty.
// Under deck conservation this cannot happen.
var ErrDeckExhausted = errors.New("draw pile and discard pile are both empty")

// Draw pops the top card (end of slice) from deck. When deck is empty the whole discard pile is
// shuffled into a new draw pile and discard is cleared first.
// It returns the drawn card and the updated piles.
func Draw(deck, discard []Card, rng *rand.Rand) (Card, []Card, []Card, error) {
	if len(deck) == 0 {
		if len(discard) == 0 {
			return Card{}, deck, discard, ErrDeckExhausted
		}
		deck = Shuffle(discard, rng)
		discard = discard[:0:0]
	}

	top := deck[len(deck)-1]
	return top, deck[:len(deck)-1], discard, nil
}
