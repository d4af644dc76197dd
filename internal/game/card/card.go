// Package card defines the Flip 7 deck: card kinds, the fixed deck composition and shuffling.
package card

import (
	"math/rand/v2"
	"strconv"
)

// Type is the kind of a card.
type Type string

const (
	Number       Type = "number"
	Freeze       Type = "freeze"
	FlipThree    Type = "flip_three"
	SecondChance Type = "second_chance"
	Modifier     Type = "modifier"
	Multiplier   Type = "multiplier"
)

// IsAction reports whether the type is one of the three action cards.
func (t Type) IsAction() bool {
	return t == Freeze || t == FlipThree || t == SecondChance
}

// Deck composition.
const (
	MaxNumber       = 12
	ActionCopies    = 3
	MultiplierValue = 2
	NumberCardCount = 79
	ActionCardCount = 9
	ModifierCount   = 6
	MultiplierCount = 1
	DeckSize        = NumberCardCount + ActionCardCount + ModifierCount + MultiplierCount
)

// ModifierValues are the modifier cards in the deck; 8 appears twice.
var ModifierValues = []int{2, 4, 6, 8, 8, 10}

var actionLabels = map[Type]string{
	Freeze:       "Freeze",
	FlipThree:    "Flip Three",
	SecondChance: "Second Chance",
}

// Card is immutable once created. Ownership moves between the draw pile, hands and the discard pile.
type Card struct {
	ID    int    `json:"id"`
	Type  Type   `json:"type"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

func (c Card) String() string {
	return c.Label
}

// Label builds the display label for a card kind and value.
func Label(t Type, value int) string {
	switch t {
	case Number:
		return strconv.Itoa(value)
	case Modifier:
		return "+" + strconv.Itoa(value)
	case Multiplier:
		return "x" + strconv.Itoa(value)
	default:
		return actionLabels[t]
	}
}

// New creates a card with a generated label.
func New(id int, t Type, value int) Card {
	return Card{ID: id, Type: t, Value: value, Label: Label(t, value)}
}

// NewDeck builds the fixed 95-card composition in a deterministic order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 0
	add := func(t Type, value int) {
		deck = append(deck, New(id, t, value))
		id++
	}

	add(Number, 0)
	for v := 1; v <= MaxNumber; v++ {
		for range v {
			add(Number, v)
		}
	}
	for _, t := range []Type{Freeze, FlipThree, SecondChance} {
		for range ActionCopies {
			add(t, 0)
		}
	}
	for _, v := range ModifierValues {
		add(Modifier, v)
	}
	add(Multiplier, MultiplierValue)

	return deck
}

// Shuffle returns a uniformly random permutation of cards using Fisher-Yates.
// The input slice is not modified.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
