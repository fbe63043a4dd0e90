package engine

import "errors"

// Player count bounds. The minimum is fixed at 2: the room invariant admits
// any size in [2,6] and two-player games resolve fine under the tie rules.
const (
	MinPlayers = 2
	MaxPlayers = 6
)

var (
	ErrWrongPhase       = errors.New("wrong phase for this action")
	ErrNotHost          = errors.New("only the host may do that")
	ErrRoomFull         = errors.New("room is full")
	ErrNameTaken        = errors.New("name already taken")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrAlreadyPlayed    = errors.New("already played this round")
	ErrGameFinished     = errors.New("game is finished")
)

// Room is the authoritative shared game aggregate. Its JSON encoding is the
// room document exchanged through the store, keyed by Code. Every operation
// validates against the current state before mutating anything, so a rejected
// action never leaves the room partially changed.
type Room struct {
	Code             string         `json:"code"`
	HostName         string         `json:"hostName"`
	Players          []Player       `json:"players"`
	Phase            Phase          `json:"phase"`
	CurrentRound     int            `json:"currentRound"`
	ScoreCards       []int          `json:"scoreCards"`
	UsedScoreCards   []int          `json:"usedScoreCards"`
	CurrentScoreCard *int           `json:"currentScoreCard"`
	PlayerMoves      map[string]int `json:"playerMoves"`
	RoundResults     []RoundResult  `json:"roundResults,omitempty"`
}

// NewRoom creates a lobby-phase room with the host as sole player and a
// freshly shuffled score deck.
func NewRoom(code, host string) *Room {
	return &Room{
		Code:        code,
		HostName:    host,
		Players:     []Player{{Name: host, Phase: PhaseLobby}},
		Phase:       PhaseLobby,
		ScoreCards:  NewScoreDeck(),
		PlayerMoves: map[string]int{},
	}
}

// Join adds a player to a lobby-phase room. Joining is rejected once the
// game has started.
func (r *Room) Join(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	if r.GetPlayer(name) != nil {
		return ErrNameTaken
	}
	r.Players = append(r.Players, Player{Name: name, Phase: PhaseLobby})
	return nil
}

// Start moves the room from lobby to the first selecting window. Host only.
func (r *Room) Start(actor string) error {
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if actor != r.HostName {
		return ErrNotHost
	}
	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	card, _ := NextCard(r.ScoreCards, r.UsedScoreCards)
	r.Phase = PhaseSelecting
	r.CurrentRound = 1
	r.CurrentScoreCard = &card
	r.PlayerMoves = map[string]int{}
	r.setPlayerPhases(PhaseSelecting)
	return nil
}

// PlayCard records a player's move for the round in progress. The card must
// still be in that player's derived hand. When the last outstanding player
// moves, the round resolves in the same step: the room enters revealing,
// score deltas are applied and the score card is consumed. resolved reports
// whether this play closed the round.
func (r *Room) PlayCard(name string, card int) (resolved bool, err error) {
	if r.Phase != PhaseSelecting {
		return false, ErrWrongPhase
	}
	if r.GetPlayer(name) == nil {
		return false, ErrPlayerNotFound
	}
	if _, moved := r.PlayerMoves[name]; moved {
		return false, ErrAlreadyPlayed
	}
	if card < HandCardMin || card > HandCardMax || !r.hasInHand(name, card) {
		return false, ErrCardNotInHand
	}

	r.PlayerMoves[name] = card
	if len(r.PlayerMoves) < len(r.Players) {
		return false, nil
	}
	r.resolveRound()
	return true, nil
}

// resolveRound runs the resolver and advances the deck lifecycle. Callers
// guarantee every player has a recorded move and a score card is revealed.
func (r *Room) resolveRound() {
	scoreCard := *r.CurrentScoreCard
	awards := Resolve(r.PlayerMoves, scoreCard)
	for _, a := range awards {
		if p := r.GetPlayer(a.Player); p != nil {
			p.Score += a.Delta
		}
	}

	moves := make(map[string]int, len(r.PlayerMoves))
	for name, card := range r.PlayerMoves {
		moves[name] = card
	}
	r.RoundResults = append(r.RoundResults, RoundResult{
		Round:     r.CurrentRound,
		ScoreCard: scoreCard,
		Moves:     moves,
		Awards:    awards,
	})
	r.UsedScoreCards = append(r.UsedScoreCards, scoreCard)
	r.Phase = PhaseRevealing
	r.setPlayerPhases(PhaseRevealing)
}

// AdvanceRound acknowledges the revealed result and opens the next selecting
// window, or finishes the game once the deck is exhausted. Host only.
func (r *Room) AdvanceRound(actor string) error {
	if r.Phase != PhaseRevealing {
		if r.Phase == PhaseFinished {
			return ErrGameFinished
		}
		return ErrWrongPhase
	}
	if actor != r.HostName {
		return ErrNotHost
	}

	r.PlayerMoves = map[string]int{}
	if Exhausted(r.ScoreCards, r.UsedScoreCards) {
		r.Phase = PhaseFinished
		r.CurrentScoreCard = nil
		r.setPlayerPhases(PhaseFinished)
		return nil
	}

	card, _ := NextCard(r.ScoreCards, r.UsedScoreCards)
	r.CurrentRound++
	r.CurrentScoreCard = &card
	r.Phase = PhaseSelecting
	r.setPlayerPhases(PhaseSelecting)
	return nil
}

func (r *Room) setPlayerPhases(p Phase) {
	for i := range r.Players {
		r.Players[i].Phase = p
	}
}
