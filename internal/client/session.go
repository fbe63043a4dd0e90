package client

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"hagetaka/internal/engine"
	"hagetaka/internal/store"
)

// compound transitions re-read and retry this many times on a version
// conflict before giving up.
const maxAttempts = 5

// ErrOutOfRetries is returned when a compound update keeps losing the
// optimistic-versioning race.
var ErrOutOfRetries = errors.New("too many concurrent updates, giving up")

// Session is one player's connection to a room. Actions are committed
// optimistically to the local state and as partial updates to the shared
// document; Watch folds remote snapshots back in through Reconcile.
type Session struct {
	st   store.Store
	code string
	self string

	mu    sync.Mutex
	local GameState
}

// CreateRoom creates a fresh lobby-phase room with the caller as host and
// returns a session bound to it. The room code is six random digits; on the
// rare collision a new code is drawn.
func CreateRoom(ctx context.Context, st store.Store, hostName string) (*Session, error) {
	if hostName == "" {
		return nil, engine.ErrEmptyName
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := newRoomCode()
		room := engine.NewRoom(code, hostName)
		doc, err := encodeRoom(room)
		if err != nil {
			return nil, err
		}

		err = st.Create(ctx, code, doc)
		if errors.Is(err, store.ErrExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}

		s := &Session{st: st, code: code, self: hostName}
		s.local = Reconcile(GameState{}, room, hostName)
		return s, nil
	}
	return nil, ErrOutOfRetries
}

// JoinRoom adds a player to an existing lobby-phase room. Concurrent joins
// race on the roster, so the append is guarded by the document version.
func JoinRoom(ctx context.Context, st store.Store, code, name string) (*Session, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		snap, err := st.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		room, err := decodeRoom(snap.Data)
		if err != nil {
			return nil, err
		}
		if err := room.Join(name); err != nil {
			return nil, err
		}

		fields, err := roomFields(room, "players")
		if err != nil {
			return nil, err
		}
		err = st.UpdateIf(ctx, code, snap.Rev, fields)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("join room: %w", err)
		}

		s := &Session{st: st, code: code, self: name}
		s.local = Reconcile(GameState{}, room, name)
		return s, nil
	}
	return nil, ErrOutOfRetries
}

// RoomCode returns the code of the room this session is bound to.
func (s *Session) RoomCode() string { return s.code }

// State returns a copy of the current local view that later session actions
// cannot mutate. Nested slices are read-only.
func (s *Session) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local.snapshot()
}

// Start begins the game. Host only; the lobby must hold at least two
// players.
func (s *Session) Start(ctx context.Context) error {
	return s.transition(ctx, func(room *engine.Room) ([]string, error) {
		if err := room.Start(s.self); err != nil {
			return nil, err
		}
		return []string{"phase", "currentRound", "currentScoreCard", "playerMoves", "players"}, nil
	})
}

// PlayCard commits the player's move for the round in progress. A play that
// leaves other players outstanding writes only this player's entry in the
// move map. Every write is guarded by the document version: two players
// closing the round at the same time would each read a snapshot missing the
// other's move, decide the round is still open, and strand it in selecting
// forever. The version guard makes the loser of that race re-read, observe
// the other move, and resolve the round itself.
func (s *Session) PlayCard(ctx context.Context, card int) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		snap, err := s.st.Get(ctx, s.code)
		if err != nil {
			return err
		}
		room, err := decodeRoom(snap.Data)
		if err != nil {
			return err
		}

		resolved, err := room.PlayCard(s.self, card)
		if err != nil {
			return err
		}

		moveKey := "playerMoves." + s.self
		if !resolved {
			err = s.st.UpdateIf(ctx, s.code, snap.Rev, store.Fields{moveKey: card})
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			if err != nil {
				return fmt.Errorf("record move: %w", err)
			}
			s.recordOptimisticPlay(card, room.CurrentRound)
			return nil
		}

		fields, err := roomFields(room, "phase", "players", "usedScoreCards", "roundResults")
		if err != nil {
			return err
		}
		fields[moveKey] = card
		err = s.st.UpdateIf(ctx, s.code, snap.Rev, fields)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("resolve round: %w", err)
		}
		s.recordOptimisticPlay(card, room.CurrentRound)
		return nil
	}
	return ErrOutOfRetries
}

// AdvanceRound acknowledges the revealed result and opens the next round,
// or finishes the game when the deck is exhausted. Host only.
func (s *Session) AdvanceRound(ctx context.Context) error {
	return s.transition(ctx, func(room *engine.Room) ([]string, error) {
		if err := room.AdvanceRound(s.self); err != nil {
			return nil, err
		}
		return []string{"phase", "currentRound", "currentScoreCard", "playerMoves", "players"}, nil
	})
}

// Watch subscribes to the room document and invokes fn with the reconciled
// local state for the initial snapshot and every change. It fails with
// store.ErrNotFound when the room does not exist.
func (s *Session) Watch(fn func(GameState)) (stop func(), err error) {
	var missing bool
	unsub, err := s.st.Subscribe(s.code, func(snap store.Snapshot) {
		if snap.Data == nil {
			s.mu.Lock()
			missing = true
			s.mu.Unlock()
			return
		}
		room, err := decodeRoom(snap.Data)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.local = Reconcile(s.local, room, s.self)
		state := s.local.snapshot()
		s.mu.Unlock()
		fn(state)
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	absent := missing
	s.mu.Unlock()
	if absent {
		unsub()
		return nil, store.ErrNotFound
	}
	return unsub, nil
}

// transition runs a host-side compound phase change as a versioned
// read-modify-write, retrying while other clients race it.
func (s *Session) transition(ctx context.Context, apply func(*engine.Room) ([]string, error)) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		snap, err := s.st.Get(ctx, s.code)
		if err != nil {
			return err
		}
		room, err := decodeRoom(snap.Data)
		if err != nil {
			return err
		}

		names, err := apply(room)
		if err != nil {
			return err
		}
		fields, err := roomFields(room, names...)
		if err != nil {
			return err
		}

		err = s.st.UpdateIf(ctx, s.code, snap.Rev, fields)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("apply transition: %w", err)
		}

		s.mu.Lock()
		s.local = Reconcile(s.local, room, s.self)
		s.mu.Unlock()
		return nil
	}
	return ErrOutOfRetries
}

func (s *Session) recordOptimisticPlay(card, round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if self := s.local.Self(); self != nil {
		c := card
		self.PlayedCard = &c
		self.PlayedRound = round
		self.Hand = removeCard(self.Hand, card)
	}
}

// newRoomCode draws a six-digit numeric room code, short enough for players
// to type or share over a table.
func newRoomCode() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	n := binary.BigEndian.Uint64(b[:]) % 900000
	return fmt.Sprintf("%06d", 100000+n)
}
