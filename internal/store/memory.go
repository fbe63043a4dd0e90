package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is the in-process Store. Documents are held as encoded JSON so
// every read hands out an independent copy; a caller mutating a returned
// Doc cannot corrupt the stored state.
type Memory struct {
	mu   sync.Mutex
	docs map[string]memoryDoc
	*notifier
}

type memoryDoc struct {
	rev  int64
	data []byte
}

func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]memoryDoc),
		notifier: newNotifier(),
	}
}

func (m *Memory) Create(_ context.Context, code string, doc Doc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	if _, ok := m.docs[code]; ok {
		m.mu.Unlock()
		return ErrExists
	}
	m.docs[code] = memoryDoc{rev: 1, data: data}
	m.mu.Unlock()

	m.fanout(Snapshot{Code: code, Rev: 1, Data: decode(data)})
	return nil
}

func (m *Memory) Get(_ context.Context, code string) (Snapshot, error) {
	m.mu.Lock()
	d, ok := m.docs[code]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return Snapshot{Code: code, Rev: d.rev, Data: decode(d.data)}, nil
}

func (m *Memory) Update(ctx context.Context, code string, fields Fields) error {
	return m.update(ctx, code, -1, fields)
}

func (m *Memory) UpdateIf(ctx context.Context, code string, rev int64, fields Fields) error {
	return m.update(ctx, code, rev, fields)
}

func (m *Memory) update(_ context.Context, code string, rev int64, fields Fields) error {
	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	d, ok := m.docs[code]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if rev >= 0 && d.rev != rev {
		m.mu.Unlock()
		return ErrConflict
	}

	doc := decode(d.data)
	applyFields(doc, fields)
	data, err := json.Marshal(doc)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("encode document: %w", err)
	}
	next := memoryDoc{rev: d.rev + 1, data: data}
	m.docs[code] = next
	m.mu.Unlock()

	m.fanout(Snapshot{Code: code, Rev: next.rev, Data: decode(data)})
	return nil
}

// Subscribe registers fn and delivers the current state (or absence) first.
// Registration and the initial delivery happen under the deliver lock, so a
// concurrent update cannot reach fn before its starting snapshot does.
func (m *Memory) Subscribe(code string, fn func(Snapshot)) (func(), error) {
	m.deliver.Lock()
	defer m.deliver.Unlock()

	unsub := m.subscribe(code, fn)

	m.mu.Lock()
	d, ok := m.docs[code]
	m.mu.Unlock()

	snap := Snapshot{Code: code}
	if ok {
		snap.Rev = d.rev
		snap.Data = decode(d.data)
	}
	fn(snap)
	return unsub, nil
}

func decode(data []byte) Doc {
	var doc Doc
	// data was produced by json.Marshal above, so this cannot fail.
	_ = json.Unmarshal(data, &doc)
	return doc
}
