// Package rule holds the pure scoring helpers of Flip 7.
package rule

import "github.com/palemoky/flip-seven/internal/game/card"

// FlipSevenBonus is added when a hand holds seven distinct number values.
const FlipSevenBonus = 15

// FlipSevenDistinct is the number of distinct number values that triggers Flip 7.
const FlipSevenDistinct = 7

// RoundScore computes a hand's round score. It depends only on the hand and the busted flag.
func RoundScore(cards []card.Card, busted bool) int {
	if busted {
		return 0
	}

	sum, modifiers := 0, 0
	doubled := false
	for _, c := range cards {
		switch c.Type {
		case card.Number:
			sum += c.Value
		case card.Modifier:
			modifiers += c.Value
		case card.Multiplier:
			doubled = true
		}
	}

	// the multiplier only doubles number cards
	if doubled {
		sum *= card.MultiplierValue
	}
	score := sum + modifiers
	if IsFlipSeven(cards) {
		score += FlipSevenBonus
	}
	return score
}

// DistinctNumbers counts distinct number values in the hand.
func DistinctNumbers(cards []card.Card) int {
	var seen [card.MaxNumber + 1]bool
	n := 0
	for _, c := range cards {
		if c.Type != card.Number || seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		n++
	}
	return n
}

// IsFlipSeven reports whether the hand holds seven distinct number values.
func IsFlipSeven(cards []card.Card) bool {
	return DistinctNumbers(cards) >= FlipSevenDistinct
}

// HasNumber reports whether a number card of the given value is in the hand.
func HasNumber(cards []card.Card, value int) bool {
	for _, c := range cards {
		if c.Type == card.Number && c.Value == value {
			return true
		}
	}
	return false
}

// Count returns how many cards of type t the hand holds.
func Count(cards []card.Card, t card.Type) int {
	n := 0
	for _, c := range cards {
		if c.Type == t {
			n++
		}
	}
	return n
}

// IndexOf returns the index of the most recently drawn card of type t, or -1.
func IndexOf(cards []card.Card, t card.Type) int {
	for i := len(cards) - 1; i >= 0; i-- {
		if cards[i].Type == t {
			return i
		}
	}
	return -1
}
