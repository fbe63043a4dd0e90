package engine_test

import (
	"testing"

	"hagetaka/internal/engine"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		moves      map[string]int
		scoreCard  int
		wantPlayer string // "" means nobody is awarded
		wantReason string
	}{
		{
			name:       "unique max takes positive card",
			moves:      map[string]int{"ann": 12, "bob": 9, "cat": 9, "dan": 2},
			scoreCard:  8,
			wantPlayer: "ann",
			wantReason: engine.ReasonHighestUnique,
		},
		{
			name:       "tie at max falls to next highest",
			moves:      map[string]int{"ann": 10, "bob": 10, "cat": 7},
			scoreCard:  5,
			wantPlayer: "cat",
			wantReason: engine.ReasonTieFallback,
		},
		{
			name:      "tie at max and at next highest voids round",
			moves:     map[string]int{"ann": 10, "bob": 10, "cat": 7, "dan": 7},
			scoreCard: 5,
		},
		{
			name:       "unique min takes negative card",
			moves:      map[string]int{"ann": 3, "bob": 8},
			scoreCard:  -4,
			wantPlayer: "ann",
			wantReason: engine.ReasonLowestUnique,
		},
		{
			name:      "tie at min with no distinct fallback",
			moves:     map[string]int{"ann": 3, "bob": 3},
			scoreCard: -2,
		},
		{
			name:       "tie at min falls to next lowest",
			moves:      map[string]int{"ann": 2, "bob": 2, "cat": 6},
			scoreCard:  -3,
			wantPlayer: "cat",
			wantReason: engine.ReasonTieFallback,
		},
		{
			name:      "everyone tied on one value",
			moves:     map[string]int{"ann": 9, "bob": 9, "cat": 9},
			scoreCard: 6,
		},
		{
			name:       "two players distinct values positive",
			moves:      map[string]int{"ann": 1, "bob": 15},
			scoreCard:  10,
			wantPlayer: "bob",
			wantReason: engine.ReasonHighestUnique,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			awards := engine.Resolve(tt.moves, tt.scoreCard)

			if tt.wantPlayer == "" {
				if len(awards) != 0 {
					t.Fatalf("expected no awards, got %v", awards)
				}
				return
			}
			if len(awards) != 1 {
				t.Fatalf("expected exactly one award, got %v", awards)
			}
			a := awards[0]
			if a.Player != tt.wantPlayer {
				t.Errorf("award went to %s, want %s", a.Player, tt.wantPlayer)
			}
			if a.Delta != tt.scoreCard {
				t.Errorf("delta = %d, want %d", a.Delta, tt.scoreCard)
			}
			if a.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", a.Reason, tt.wantReason)
			}
		})
	}
}

// The sum of awarded deltas is always zero or exactly the score card.
func TestResolveDeltaSum(t *testing.T) {
	cases := []struct {
		moves     map[string]int
		scoreCard int
	}{
		{map[string]int{"a": 10, "b": 10, "c": 7}, 5},
		{map[string]int{"a": 3, "b": 3}, -2},
		{map[string]int{"a": 12, "b": 9, "c": 9, "d": 2}, 8},
		{map[string]int{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6}, -5},
		{map[string]int{"a": 7, "b": 7, "c": 7, "d": 7}, 9},
		{map[string]int{"a": 14, "b": 13}, 1},
	}

	for _, c := range cases {
		sum := 0
		for _, a := range engine.Resolve(c.moves, c.scoreCard) {
			sum += a.Delta
		}
		if sum != 0 && sum != c.scoreCard {
			t.Errorf("Resolve(%v, %d): delta sum %d not in {0, %d}",
				c.moves, c.scoreCard, sum, c.scoreCard)
		}
	}
}

func TestResolveNoMoves(t *testing.T) {
	if awards := engine.Resolve(nil, 5); len(awards) != 0 {
		t.Errorf("expected no awards for empty moves, got %v", awards)
	}
}
