// Package actionlog keeps an audit trail of the remote actions triggered
// from the dashboard (game launches, invite accepts) in a local SQLite file.
package actionlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Kinds of recorded actions.
const (
	KindLaunch = "launch"
	KindInvite = "invite"
)

// Action is one remote task invocation against one PC.
type Action struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Target  string    `json:"target"`
	Task    string    `json:"task"`
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Store persists Actions in SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS actions (
	id      TEXT PRIMARY KEY,
	kind    TEXT NOT NULL,
	target  TEXT NOT NULL,
	task    TEXT NOT NULL,
	ok      INTEGER NOT NULL,
	message TEXT NOT NULL,
	at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS actions_at ON actions(at);
`

// Open opens (creating if needed) the action log at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("actionlog: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("actionlog: open db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("actionlog: set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("actionlog: set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("actionlog: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a. An empty ID gets a fresh UUID and a zero time gets now.
func (s *Store) Record(ctx context.Context, a Action) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.At.IsZero() {
		a.At = time.Now()
	}

	ok := 0
	if a.OK {
		ok = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (id, kind, target, task, ok, message, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Kind, a.Target, a.Task, ok, a.Message, a.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("actionlog: insert %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to limit actions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		return []Action{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, target, task, ok, message, at FROM actions ORDER BY at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("actionlog: query recent: %w", err)
	}
	defer rows.Close()

	actions := make([]Action, 0, limit)
	for rows.Next() {
		var (
			a  Action
			ok int
			at int64
		)
		if err := rows.Scan(&a.ID, &a.Kind, &a.Target, &a.Task, &ok, &a.Message, &at); err != nil {
			return nil, fmt.Errorf("actionlog: scan: %w", err)
		}
		a.OK = ok != 0
		a.At = time.Unix(0, at)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("actionlog: iterate: %w", err)
	}
	return actions, nil
}
