// Package journal keeps a local SQLite record of auto-capture attempts.
//
// The journal is an audit trail, not an outbox: failed attempts are recorded
// with their error and never retried. It answers "what did the bridge try to
// remember, and did the store accept it?" without a round-trip to EverMemOS.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HendryAvila/evermem-bridge/internal/memory"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Types ───────────────────────────────────────────────────────────────────

// Entry is one recorded capture attempt.
type Entry struct {
	ID         int64  `json:"id"`
	MessageID  string `json:"message_id"`
	UserID     string `json:"user_id"`
	Content    string `json:"content"`
	Stored     bool   `json:"stored"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	RecordedAt string `json:"recorded_at"`
}

// Stats holds aggregate journal counts.
type Stats struct {
	Total        int    `json:"total"`
	Stored       int    `json:"stored"`
	Failed       int    `json:"failed"`
	LastRecorded string `json:"last_recorded,omitempty"`
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed journal. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	exec func(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// New opens (or creates) the journal database at path, enables WAL mode and
// runs migrations.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, exec: db.ExecContext}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS captures (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id  TEXT    NOT NULL,
			user_id     TEXT    NOT NULL,
			content     TEXT    NOT NULL,
			stored      INTEGER NOT NULL DEFAULT 0,
			error       TEXT,
			created_at  TEXT    NOT NULL,
			recorded_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_captures_user     ON captures(user_id);
		CREATE INDEX IF NOT EXISTS idx_captures_recorded ON captures(recorded_at DESC);
	`
	_, err := s.exec(context.Background(), schema)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// RecordCapture appends one attempt. It satisfies memory.CaptureJournal.
func (s *Store) RecordCapture(ctx context.Context, a memory.CaptureAttempt) error {
	_, err := s.exec(ctx,
		`INSERT INTO captures (message_id, user_id, content, stored, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.MessageID, a.UserID, a.Content, boolToInt(a.Stored), nullableString(a.Error), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("journal: record capture %s: %w", a.MessageID, err)
	}
	return nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Recent returns the latest attempts, newest first. An empty userID matches
// every user.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message_id, user_id, content, stored, ifnull(error, ''), created_at, recorded_at
		 FROM captures
		 WHERE (? = '' OR user_id = ?)
		 ORDER BY id DESC
		 LIMIT ?`,
		userID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.MessageID, &e.UserID, &e.Content, &e.Stored, &e.Error, &e.CreatedAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats returns aggregate counts for userID (all users when empty).
func (s *Store) Stats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{}
	var last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        ifnull(SUM(stored), 0),
		        MAX(recorded_at)
		 FROM captures
		 WHERE (? = '' OR user_id = ?)`,
		userID, userID,
	).Scan(&stats.Total, &stats.Stored, &last)
	if err != nil {
		return nil, fmt.Errorf("journal: stats: %w", err)
	}
	stats.Failed = stats.Total - stats.Stored
	stats.LastRecorded = last.String
	return stats, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
