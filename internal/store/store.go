// Package store is the shared-document boundary between game clients. A room
// lives in the store as a JSON document keyed by its room code; clients read
// whole documents, write partial field updates, and subscribe for changes.
// The store knows nothing about game rules.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
	ErrConflict = errors.New("document changed concurrently")
)

// Doc is a decoded JSON document.
type Doc = map[string]any

// Fields is a partial update. Keys may be dotted paths ("playerMoves.alice")
// that merge into nested objects, creating them as needed; this is what lets
// two players write their own move entries without clobbering each other.
type Fields = map[string]any

// Snapshot is one delivered state of a document. Data is nil when the
// document is absent. Rev increases by one on every applied update.
type Snapshot struct {
	Code string
	Rev  int64
	Data Doc
}

// Store is the document store contract. Update has merge semantics, not
// overwrite. UpdateIf applies only when the document is still at the given
// rev and reports ErrConflict otherwise, which is the optimistic-versioning
// hook for compound read-modify-write transitions. Subscribe delivers the
// current snapshot immediately, then every subsequent state in order;
// callbacks must return promptly and must not call back into the store.
type Store interface {
	Create(ctx context.Context, code string, doc Doc) error
	Get(ctx context.Context, code string) (Snapshot, error)
	Update(ctx context.Context, code string, fields Fields) error
	UpdateIf(ctx context.Context, code string, rev int64, fields Fields) error
	Subscribe(code string, fn func(Snapshot)) (unsubscribe func(), err error)
}

// applyFields merges a partial update into a decoded document in place.
func applyFields(doc Doc, fields Fields) {
	for path, value := range fields {
		parts := strings.Split(path, ".")
		target := doc
		for _, key := range parts[:len(parts)-1] {
			next, ok := target[key].(map[string]any)
			if !ok {
				next = map[string]any{}
				target[key] = next
			}
			target = next
		}
		target[parts[len(parts)-1]] = value
	}
}
