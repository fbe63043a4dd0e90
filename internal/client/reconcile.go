package client

import "hagetaka/internal/engine"

// Reconcile maps a remote room snapshot onto the local state. It is pure and
// idempotent: the store may coalesce or skip intermediate states, so the
// result depends only on the snapshot and the optimistic plays carried in
// local, never on how many times it runs.
//
// Rules, in order of trust: remote scores are authoritative verbatim; hands
// are recomputed from the round history rather than patched; a locally
// recorded play survives a snapshot that does not show it yet, and is
// dropped only once the remote round has moved past the round it was made
// in; players unknown locally are instantiated fresh, players gone from the
// remote roster are dropped.
func Reconcile(local GameState, room *engine.Room, self string) GameState {
	next := GameState{
		RoomCode:       room.Code,
		SelfName:       self,
		IsHost:         room.HostName == self,
		Phase:          room.Phase,
		CurrentRound:   room.CurrentRound,
		ScoreCards:     append([]int(nil), room.ScoreCards...),
		UsedScoreCards: append([]int(nil), room.UsedScoreCards...),
		RoundResults:   append([]engine.RoundResult(nil), room.RoundResults...),
	}
	if room.CurrentScoreCard != nil {
		card := *room.CurrentScoreCard
		next.CurrentScoreCard = &card
	}

	next.Players = make([]GamePlayer, 0, len(room.Players))
	for _, seat := range room.Players {
		gp := GamePlayer{
			Name:      seat.Name,
			Score:     seat.Score,
			Hand:      room.HandOf(seat.Name),
			Connected: true,
		}

		prior := local.player(seat.Name)
		if prior != nil {
			gp.Connected = prior.Connected
		}

		if card, ok := room.PlayerMoves[seat.Name]; ok {
			c := card
			gp.PlayedCard = &c
			gp.PlayedRound = room.CurrentRound
		} else if prior != nil && prior.PlayedCard != nil && prior.PlayedRound >= room.CurrentRound {
			// Optimistic play the remote has not acknowledged yet: keep it,
			// and keep the card out of the displayed hand.
			c := *prior.PlayedCard
			gp.PlayedCard = &c
			gp.PlayedRound = prior.PlayedRound
			gp.Hand = removeCard(gp.Hand, c)
		}

		next.Players = append(next.Players, gp)
	}
	return next
}

func removeCard(hand []int, card int) []int {
	out := make([]int, 0, len(hand))
	for _, v := range hand {
		if v != card {
			out = append(out, v)
		}
	}
	return out
}
