// Package store is the durable local key-value store. Values are text
// (JSON snapshots, counters) kept in a single SQLite table; writes from
// separate processes are serialized with an OS file lock.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

const dbFile = "menu.db"

// Store wraps the database connection
type Store struct {
	conn *sql.DB
	dir  string
}

// Open opens (creating if needed) the store under dir and applies the schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	conn, err := sql.Open("sqlite", filepath.Join(dir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout as fallback protection (matches lock timeout)
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := conn.Exec(`INSERT OR IGNORE INTO schema_info (key, value) VALUES ('version', ?)`, fmt.Sprint(SchemaVersion)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("record schema version: %w", err)
	}

	return &Store{conn: conn, dir: dir}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.conn.Close()
}

// Dir returns the directory holding the database and lock file
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the database file path
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

// Get returns the value stored under key. found is false when the key has
// never been written.
func (s *Store) Get(key string) (value string, found bool, err error) {
	err = s.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	return s.withWriteLock(func() error {
		_, err := s.conn.Exec(`
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value)
		if err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	return s.withWriteLock(func() error {
		if _, err := s.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// Keys lists the stored keys in sorted order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.conn.Query(`SELECT key FROM kv`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, rows.Err()
}

// UpdatedAt returns when key was last written, in UTC.
func (s *Store) UpdatedAt(key string) (time.Time, bool, error) {
	var secs int64
	err := s.conn.QueryRow(`SELECT CAST(strftime('%s', updated_at) AS INTEGER) FROM kv WHERE key = ?`, key).Scan(&secs)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("updated_at %s: %w", key, err)
	}
	return time.Unix(secs, 0).UTC(), true, nil
}

// GetSchemaVersion returns the schema version recorded in the database
func (s *Store) GetSchemaVersion() (int, error) {
	var v int
	if err := s.conn.QueryRow(`SELECT CAST(value AS INTEGER) FROM schema_info WHERE key = 'version'`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// withWriteLock executes fn while holding an exclusive write lock.
// This prevents concurrent writes from multiple processes.
func (s *Store) withWriteLock(fn func() error) error {
	locker := newWriteLocker(s.dir)
	if err := locker.acquire(defaultTimeout); err != nil {
		return err
	}
	defer locker.release()
	return fn()
}
