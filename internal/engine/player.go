package engine

// Player is one seat in the room document. Hands are never stored: they are
// derived from the round history, so independently-updating clients cannot
// diverge on them.
type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Phase Phase  `json:"phase,omitempty"`
}

// RoundResult is the immutable audit record of one resolved round.
type RoundResult struct {
	Round     int            `json:"round"`
	ScoreCard int            `json:"scoreCard"`
	Moves     map[string]int `json:"moves"`
	Awards    []Award        `json:"awards,omitempty"`
}

// GetPlayer finds a seat by name, or nil.
func (r *Room) GetPlayer(name string) *Player {
	for i := range r.Players {
		if r.Players[i].Name == name {
			return &r.Players[i]
		}
	}
	return nil
}

// HandOf derives a player's remaining hand: the fixed initial hand minus
// every card that player has played in recorded rounds and in the round in
// progress. Unknown names get a full fresh hand.
func (r *Room) HandOf(name string) []int {
	played := make(map[int]bool, len(r.RoundResults)+1)
	for _, res := range r.RoundResults {
		if card, ok := res.Moves[name]; ok {
			played[card] = true
		}
	}
	if card, ok := r.PlayerMoves[name]; ok {
		played[card] = true
	}

	hand := make([]int, 0, HandCardMax)
	for v := HandCardMin; v <= HandCardMax; v++ {
		if !played[v] {
			hand = append(hand, v)
		}
	}
	return hand
}

func (r *Room) hasInHand(name string, card int) bool {
	for _, v := range r.HandOf(name) {
		if v == card {
			return true
		}
	}
	return false
}
