package store

import (
	"sync"

	"github.com/google/uuid"
)

// notifier fans document snapshots out to in-process subscribers. Both store
// backends share it. The deliver lock spans each commit together with its
// fanout, and subscription holds it while registering and handing over the
// initial snapshot, so a subscriber can never observe a revision and then
// fall back to an older one. Lock order is deliver before mu.
type notifier struct {
	mu      sync.Mutex
	deliver sync.Mutex
	subs    map[string]map[uuid.UUID]func(Snapshot)
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[uuid.UUID]func(Snapshot))}
}

func (n *notifier) subscribe(code string, fn func(Snapshot)) func() {
	id := uuid.New()

	n.mu.Lock()
	if n.subs[code] == nil {
		n.subs[code] = make(map[uuid.UUID]func(Snapshot))
	}
	n.subs[code][id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if set, ok := n.subs[code]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(n.subs, code)
			}
		}
	}
}

// fanout runs every subscriber callback for snap.Code. Callers hold the
// deliver lock.
func (n *notifier) fanout(snap Snapshot) {
	n.mu.Lock()
	fns := make([]func(Snapshot), 0, len(n.subs[snap.Code]))
	for _, fn := range n.subs[snap.Code] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
