// Package cache is an incremental-check cache keyed on file content hash,
// backed by modernc.org/sqlite. It records each file's diagnostic count,
// check time and duration; Lookup reports whether a file's stored hash
// still matches its content. escc writes an entry for every file it
// checks but does not call Lookup, so every file is re-checked on every
// run.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one file's last known-good check result.
type Entry struct {
	Path        string
	ContentHash string
	Diagnostics int
	CheckedAt   time.Time
	Duration    time.Duration
}

// Store wraps a sqlite-backed cache database.
type Store struct {
	db *sql.DB
}

// Open creates or attaches to a cache database at path. Passing ":memory:"
// gives an ephemeral cache scoped to one process.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS check_cache (
			path TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			diagnostics INTEGER NOT NULL,
			checked_at INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		)`)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

// HashContent returns the content hash Lookup/Put expect.
func HashContent(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached entry for path if its stored content hash
// matches hash, and false otherwise (cache miss or stale content).
func (s *Store) Lookup(ctx context.Context, path, hash string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT content_hash, diagnostics, checked_at, duration_ns FROM check_cache WHERE path = ?`, path)
	var e Entry
	var storedHash string
	var checkedAtUnix, durationNs int64
	if err := row.Scan(&storedHash, &e.Diagnostics, &checkedAtUnix, &durationNs); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	if storedHash != hash {
		return Entry{}, false, nil
	}
	e.Path = path
	e.ContentHash = storedHash
	e.CheckedAt = time.Unix(0, checkedAtUnix)
	e.Duration = time.Duration(durationNs)
	return e, true, nil
}

// Put records (or replaces) a file's check result.
func (s *Store) Put(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_cache (path, content_hash, diagnostics, checked_at, duration_ns)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			diagnostics = excluded.diagnostics,
			checked_at = excluded.checked_at,
			duration_ns = excluded.duration_ns`,
		e.Path, e.ContentHash, e.Diagnostics, e.CheckedAt.UnixNano(), int64(e.Duration))
	return err
}

// Size reports the number of cached entries.
func (s *Store) Size(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM check_cache`)
	var n int
	err := row.Scan(&n)
	return n, err
}
