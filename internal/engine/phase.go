package engine

// Phase is the room-wide stage of play, stored verbatim in the room document.
type Phase string

const (
	PhaseLobby     Phase = "lobby"     // waiting for players to join
	PhaseSelecting Phase = "selecting" // per-round card-choice window
	PhaseRevealing Phase = "revealing" // all moves in, round resolved
	PhaseFinished  Phase = "finished"  // terminal
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseLobby, PhaseSelecting, PhaseRevealing, PhaseFinished:
		return true
	}
	return false
}
