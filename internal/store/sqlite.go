package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a durable Store keeping room documents in a SQLite database,
// the self-hosted analogue of the hosted document store the game was built
// against. Change notifications are in-process only: subscribers see writes
// made through this instance.
type SQLite struct {
	db *sql.DB
	// serializes read-modify-write update cycles; the database itself is
	// opened with a single connection.
	mu sync.Mutex
	*notifier
}

// OpenSQLite prepares the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS room_docs (
		code TEXT PRIMARY KEY,
		rev INTEGER NOT NULL,
		doc TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, notifier: newNotifier()}, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Create(ctx context.Context, code string, doc Doc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO room_docs (code, rev, doc, updated_at) VALUES (?, 1, ?, ?)`,
		code, string(data), time.Now().UTC())
	s.mu.Unlock()
	if err != nil {
		if isUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("insert document: %w", err)
	}

	s.fanout(Snapshot{Code: code, Rev: 1, Data: decode(data)})
	return nil
}

func (s *SQLite) Get(ctx context.Context, code string) (Snapshot, error) {
	var (
		rev int64
		raw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT rev, doc FROM room_docs WHERE code = ?`, code).Scan(&rev, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("select document: %w", err)
	}
	return Snapshot{Code: code, Rev: rev, Data: decode([]byte(raw))}, nil
}

func (s *SQLite) Update(ctx context.Context, code string, fields Fields) error {
	return s.update(ctx, code, -1, fields)
}

func (s *SQLite) UpdateIf(ctx context.Context, code string, rev int64, fields Fields) error {
	return s.update(ctx, code, rev, fields)
}

func (s *SQLite) update(ctx context.Context, code string, rev int64, fields Fields) error {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		cur int64
		raw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT rev, doc FROM room_docs WHERE code = ?`, code).Scan(&cur, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select document: %w", err)
	}
	if rev >= 0 && cur != rev {
		return ErrConflict
	}

	doc := decode([]byte(raw))
	applyFields(doc, fields)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	next := cur + 1
	if _, err := s.db.ExecContext(ctx,
		`UPDATE room_docs SET rev = ?, doc = ?, updated_at = ? WHERE code = ?`,
		next, string(data), time.Now().UTC(), code); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	s.fanout(Snapshot{Code: code, Rev: next, Data: decode(data)})
	return nil
}

// Subscribe registers fn and delivers the current state (or absence) first.
// Registration and the initial delivery happen under the deliver lock, so a
// concurrent update cannot reach fn before its starting snapshot does.
func (s *SQLite) Subscribe(code string, fn func(Snapshot)) (func(), error) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	unsub := s.subscribe(code, fn)

	snap, err := s.Get(context.Background(), code)
	if errors.Is(err, ErrNotFound) {
		snap = Snapshot{Code: code}
	} else if err != nil {
		unsub()
		return nil, err
	}
	fn(snap)
	return unsub, nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures by message; there is
	// no exported error value to compare against.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
