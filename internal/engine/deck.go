package engine

import "math/rand"

// Hand cards run 1..15. Each value is played at most once per game.
const (
	HandCardMin = 1
	HandCardMax = 15
)

// scoreCardValues is the fixed score deck: five penalties and ten prizes.
// Zero is deliberately absent.
var scoreCardValues = []int{-5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// NewScoreDeck returns the score deck in a fresh random permutation.
// The permutation is fixed for the whole game and drawn front to back, so
// the next card is always a pure function of the room document.
func NewScoreDeck() []int {
	deck := make([]int, len(scoreCardValues))
	copy(deck, scoreCardValues)
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// DeckSize is the number of score cards, and therefore the number of rounds.
func DeckSize() int { return len(scoreCardValues) }

// NextCard returns the next undealt score card. ok is false once the deck
// is exhausted.
func NextCard(deck, used []int) (card int, ok bool) {
	if len(used) >= len(deck) {
		return 0, false
	}
	return deck[len(used)], true
}

// Exhausted reports whether every score card has been used.
func Exhausted(deck, used []int) bool {
	return len(used) >= len(deck)
}

// InitialHand returns a fresh full hand, 1..15 ascending.
func InitialHand() []int {
	hand := make([]int, 0, HandCardMax-HandCardMin+1)
	for v := HandCardMin; v <= HandCardMax; v++ {
		hand = append(hand, v)
	}
	return hand
}
