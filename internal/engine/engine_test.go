package engine_test

import (
	"errors"
	"sort"
	"testing"

	"hagetaka/internal/engine"
)

func newStartedRoom(t *testing.T, names ...string) *engine.Room {
	t.Helper()
	r := engine.NewRoom("123456", names[0])
	for _, name := range names[1:] {
		if err := r.Join(name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	if err := r.Start(names[0]); err != nil {
		t.Fatalf("start: %v", err)
	}
	return r
}

func TestNewRoom(t *testing.T) {
	r := engine.NewRoom("123456", "ann")
	if r.Phase != engine.PhaseLobby {
		t.Fatalf("expected lobby phase, got %s", r.Phase)
	}
	if len(r.Players) != 1 || r.Players[0].Name != "ann" {
		t.Fatalf("expected host as sole player, got %v", r.Players)
	}
	if len(r.ScoreCards) != engine.DeckSize() {
		t.Fatalf("deck size = %d, want %d", len(r.ScoreCards), engine.DeckSize())
	}
}

func TestScoreDeckIsPermutation(t *testing.T) {
	deck := engine.NewScoreDeck()
	got := append([]int(nil), deck...)
	sort.Ints(got)
	want := []int{-5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if len(got) != len(want) {
		t.Fatalf("deck has %d cards, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted deck = %v, want %v", got, want)
		}
	}
}

func TestJoinGuards(t *testing.T) {
	r := engine.NewRoom("123456", "ann")

	if err := r.Join(""); !errors.Is(err, engine.ErrEmptyName) {
		t.Errorf("empty name: got %v, want ErrEmptyName", err)
	}
	if err := r.Join("ann"); !errors.Is(err, engine.ErrNameTaken) {
		t.Errorf("duplicate name: got %v, want ErrNameTaken", err)
	}

	for _, name := range []string{"bob", "cat", "dan", "eve", "fay"} {
		if err := r.Join(name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	if err := r.Join("gus"); !errors.Is(err, engine.ErrRoomFull) {
		t.Errorf("seventh player: got %v, want ErrRoomFull", err)
	}

	r2 := newStartedRoom(t, "ann", "bob")
	if err := r2.Join("cat"); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("join after start: got %v, want ErrWrongPhase", err)
	}
}

func TestStartGuards(t *testing.T) {
	r := engine.NewRoom("123456", "ann")
	if err := r.Start("ann"); !errors.Is(err, engine.ErrNotEnoughPlayers) {
		t.Errorf("solo start: got %v, want ErrNotEnoughPlayers", err)
	}

	if err := r.Join("bob"); err != nil {
		t.Fatal(err)
	}
	if err := r.Start("bob"); !errors.Is(err, engine.ErrNotHost) {
		t.Errorf("non-host start: got %v, want ErrNotHost", err)
	}

	if err := r.Start("ann"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Phase != engine.PhaseSelecting {
		t.Fatalf("phase = %s, want selecting", r.Phase)
	}
	if r.CurrentRound != 1 {
		t.Errorf("round = %d, want 1", r.CurrentRound)
	}
	if r.CurrentScoreCard == nil || *r.CurrentScoreCard != r.ScoreCards[0] {
		t.Errorf("current score card should be the first deck card")
	}

	if err := r.Start("ann"); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("double start: got %v, want ErrWrongPhase", err)
	}
}

func TestPlayCardGuards(t *testing.T) {
	r := engine.NewRoom("123456", "ann")
	if _, err := r.PlayCard("ann", 5); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("play in lobby: got %v, want ErrWrongPhase", err)
	}

	r = newStartedRoom(t, "ann", "bob", "cat")
	if _, err := r.PlayCard("zed", 5); !errors.Is(err, engine.ErrPlayerNotFound) {
		t.Errorf("unknown player: got %v, want ErrPlayerNotFound", err)
	}
	if _, err := r.PlayCard("ann", 16); !errors.Is(err, engine.ErrCardNotInHand) {
		t.Errorf("out-of-range card: got %v, want ErrCardNotInHand", err)
	}

	if _, err := r.PlayCard("ann", 5); err != nil {
		t.Fatalf("play: %v", err)
	}
	if _, err := r.PlayCard("ann", 6); !errors.Is(err, engine.ErrAlreadyPlayed) {
		t.Errorf("second play: got %v, want ErrAlreadyPlayed", err)
	}
}

func TestRoundResolution(t *testing.T) {
	r := newStartedRoom(t, "ann", "bob", "cat")
	scoreCard := *r.CurrentScoreCard

	for _, play := range []struct {
		name string
		card int
	}{{"ann", 4}, {"bob", 9}} {
		resolved, err := r.PlayCard(play.name, play.card)
		if err != nil {
			t.Fatalf("play %s: %v", play.name, err)
		}
		if resolved {
			t.Fatalf("round resolved before all players moved")
		}
		if r.Phase != engine.PhaseSelecting {
			t.Fatalf("phase = %s mid-round, want selecting", r.Phase)
		}
	}

	resolved, err := r.PlayCard("cat", 12)
	if err != nil {
		t.Fatalf("closing play: %v", err)
	}
	if !resolved {
		t.Fatal("closing play should resolve the round")
	}
	if r.Phase != engine.PhaseRevealing {
		t.Fatalf("phase = %s, want revealing", r.Phase)
	}
	if len(r.UsedScoreCards) != 1 || r.UsedScoreCards[0] != scoreCard {
		t.Errorf("usedScoreCards = %v, want [%d]", r.UsedScoreCards, scoreCard)
	}
	if len(r.RoundResults) != 1 {
		t.Fatalf("expected one round result, got %d", len(r.RoundResults))
	}

	res := r.RoundResults[0]
	if res.Round != 1 || res.ScoreCard != scoreCard {
		t.Errorf("result header = %+v", res)
	}
	wantWinner := "cat" // 12 is the unique max
	if scoreCard < 0 {
		wantWinner = "ann" // 4 is the unique min
	}
	if len(res.Awards) != 1 || res.Awards[0].Player != wantWinner {
		t.Errorf("awards = %v, want single award to %s", res.Awards, wantWinner)
	}
	if p := r.GetPlayer(wantWinner); p.Score != scoreCard {
		t.Errorf("%s score = %d, want %d", wantWinner, p.Score, scoreCard)
	}
}

func TestAdvanceRoundGuards(t *testing.T) {
	r := newStartedRoom(t, "ann", "bob")
	if err := r.AdvanceRound("ann"); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("advance in selecting: got %v, want ErrWrongPhase", err)
	}

	r.PlayCard("ann", 1)
	r.PlayCard("bob", 2)
	if err := r.AdvanceRound("bob"); !errors.Is(err, engine.ErrNotHost) {
		t.Errorf("non-host advance: got %v, want ErrNotHost", err)
	}
	if err := r.AdvanceRound("ann"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if r.Phase != engine.PhaseSelecting || r.CurrentRound != 2 {
		t.Fatalf("after advance: phase %s round %d", r.Phase, r.CurrentRound)
	}
	if len(r.PlayerMoves) != 0 {
		t.Errorf("playerMoves not cleared: %v", r.PlayerMoves)
	}
}

func TestHandDerivation(t *testing.T) {
	r := newStartedRoom(t, "ann", "bob")
	r.PlayCard("ann", 7)

	hand := r.HandOf("ann")
	if len(hand) != 14 {
		t.Fatalf("hand size = %d, want 14", len(hand))
	}
	for _, v := range hand {
		if v == 7 {
			t.Fatal("played card still in derived hand")
		}
	}
	if got := r.HandOf("bob"); len(got) != 15 {
		t.Errorf("bob's hand size = %d, want 15", len(got))
	}

	r.PlayCard("bob", 3)
	r.AdvanceRound("ann")
	if _, err := r.PlayCard("ann", 7); !errors.Is(err, engine.ErrCardNotInHand) {
		t.Errorf("replaying a spent card: got %v, want ErrCardNotInHand", err)
	}
}

// Scenario D: a full game runs all 15 rounds, never repeats a score card,
// finishes exactly at deck exhaustion, and conserves every hand card.
func TestFullGameToFinished(t *testing.T) {
	r := newStartedRoom(t, "ann", "bob")
	played := map[string][]int{}

	for round := 1; round <= engine.DeckSize(); round++ {
		if r.CurrentRound != round {
			t.Fatalf("round = %d, want %d", r.CurrentRound, round)
		}
		// ann plays from the bottom of the hand, bob from the top
		annCard := r.HandOf("ann")[0]
		bobHand := r.HandOf("bob")
		bobCard := bobHand[len(bobHand)-1]

		if _, err := r.PlayCard("ann", annCard); err != nil {
			t.Fatalf("round %d ann: %v", round, err)
		}
		resolved, err := r.PlayCard("bob", bobCard)
		if err != nil {
			t.Fatalf("round %d bob: %v", round, err)
		}
		if !resolved || r.Phase != engine.PhaseRevealing {
			t.Fatalf("round %d did not resolve", round)
		}
		played["ann"] = append(played["ann"], annCard)
		played["bob"] = append(played["bob"], bobCard)

		if err := r.AdvanceRound("ann"); err != nil {
			t.Fatalf("round %d advance: %v", round, err)
		}
	}

	if r.Phase != engine.PhaseFinished {
		t.Fatalf("phase = %s after exhausting deck, want finished", r.Phase)
	}
	if r.CurrentScoreCard != nil {
		t.Error("current score card should be cleared when finished")
	}
	if !engine.Exhausted(r.ScoreCards, r.UsedScoreCards) {
		t.Error("deck should be exhausted")
	}

	// No score card repeats, and the used pile equals the deck.
	seen := map[int]bool{}
	for _, card := range r.UsedScoreCards {
		if seen[card] {
			t.Errorf("score card %d used twice", card)
		}
		seen[card] = true
	}
	if len(r.UsedScoreCards) != len(r.ScoreCards) {
		t.Errorf("used %d cards, want %d", len(r.UsedScoreCards), len(r.ScoreCards))
	}

	// Cards are conserved: plays plus remaining hand equal the initial hand.
	for name, plays := range played {
		rest := r.HandOf(name)
		all := append(append([]int(nil), plays...), rest...)
		sort.Ints(all)
		for i, v := range engine.InitialHand() {
			if all[i] != v {
				t.Fatalf("%s: hand not conserved, got %v", name, all)
			}
		}
	}

	// The aggregate score matches the resolved awards.
	wantScores := map[string]int{}
	for _, res := range r.RoundResults {
		for _, a := range res.Awards {
			wantScores[a.Player] += a.Delta
		}
	}
	for _, p := range r.Players {
		if p.Score != wantScores[p.Name] {
			t.Errorf("%s score = %d, want %d", p.Name, p.Score, wantScores[p.Name])
		}
	}

	if err := r.AdvanceRound("ann"); !errors.Is(err, engine.ErrGameFinished) {
		t.Errorf("advance after finish: got %v, want ErrGameFinished", err)
	}
}
