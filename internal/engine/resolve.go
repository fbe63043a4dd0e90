package engine

import "sort"

// Award reasons recorded in round results.
const (
	ReasonHighestUnique = "highest unique"
	ReasonLowestUnique  = "lowest unique"
	ReasonTieFallback   = "tie fallback"
)

// Award is one player's score delta from a resolved round.
type Award struct {
	Player string `json:"player"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// Resolve maps a round's moves and the revealed score card to at most one
// award. A positive card goes to the highest unique play; when the top value
// is tied it falls to the next distinct value, and a tie there voids the
// round. A negative card penalizes the lowest unique play with the same
// one-level fallback. Players without an award implicitly score zero.
//
// The deck never contains zero, so a zero score card resolves to nothing.
func Resolve(moves map[string]int, scoreCard int) []Award {
	if scoreCard == 0 || len(moves) == 0 {
		return nil
	}

	holders := make(map[int][]string, len(moves))
	values := make([]int, 0, len(moves))
	for player, card := range moves {
		if len(holders[card]) == 0 {
			values = append(values, card)
		}
		holders[card] = append(holders[card], player)
	}

	if scoreCard > 0 {
		sort.Sort(sort.Reverse(sort.IntSlice(values)))
	} else {
		sort.Ints(values)
	}

	reason := ReasonHighestUnique
	if scoreCard < 0 {
		reason = ReasonLowestUnique
	}

	// Ties cascade exactly one level: a tie at the second distinct value
	// voids the round.
	for depth := 0; depth < 2 && depth < len(values); depth++ {
		players := holders[values[depth]]
		if len(players) == 1 {
			if depth == 1 {
				reason = ReasonTieFallback
			}
			return []Award{{Player: players[0], Delta: scoreCard, Reason: reason}}
		}
	}
	return nil
}
