// Package client is the per-player side of the game: it translates local
// actions into partial updates against the shared room document and
// reconciles inbound document snapshots into a local view without losing
// unacknowledged optimistic plays.
package client

import "hagetaka/internal/engine"

// GamePlayer is one player's local view. Hand is derived, never trusted from
// a counter; PlayedRound records which round an optimistic play belongs to.
type GamePlayer struct {
	Name        string
	Hand        []int
	PlayedCard  *int
	PlayedRound int
	Score       int
	Connected   bool
}

// GameState is the full local view of a room, rebuilt from each remote
// snapshot by Reconcile.
type GameState struct {
	RoomCode         string
	SelfName         string
	IsHost           bool
	Players          []GamePlayer
	Phase            engine.Phase
	CurrentRound     int
	ScoreCards       []int
	UsedScoreCards   []int
	CurrentScoreCard *int
	RoundResults     []engine.RoundResult
}

// snapshot returns a copy whose Players slice does not share backing storage
// with the receiver, so a later in-place optimistic play cannot race a
// caller still reading an earlier state.
func (s *GameState) snapshot() GameState {
	out := *s
	out.Players = append([]GamePlayer(nil), s.Players...)
	return out
}

// Self returns the local player's entry, or nil before the first reconcile.
func (s *GameState) Self() *GamePlayer {
	return s.player(s.SelfName)
}

func (s *GameState) player(name string) *GamePlayer {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return &s.Players[i]
		}
	}
	return nil
}
