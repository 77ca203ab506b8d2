// Package db owns the SQLite schema, the transactional store, and the
// FTS5-backed search path.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var log = logrus.WithField("component", "db")

// Store wraps the SQLite handle. Writes are serialized through a single
// writer; readers share the WAL snapshot.
type Store struct {
	db   *sql.DB
	path string

	// mu serializes Upsert/Delete/Reindex so no two write transactions
	// interleave regardless of how many workers feed them.
	mu sync.Mutex
}

// DefaultPath returns the default database location, ~/.tss/tss.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".tss", "tss.db"), nil
}

// ResolvePath picks the database path: explicit flag, then the TSS_DB
// environment variable, then the default location.
func ResolvePath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("TSS_DB"); env != "" {
		return env, nil
	}
	return DefaultPath()
}

// Open opens (or creates) the database at path and ensures the schema is
// current. The parent directory is created on first use.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?%s", path, connParams)
	return open(dsn, path)
}

// OpenMemory opens a fresh in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	s, err := open("file::memory:?"+connParams, ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pool connection would otherwise see its own empty database.
	s.db.SetMaxOpenConns(1)
	return s, nil
}

const connParams = "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

func open(dsn, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.WithField("path", path).Debug("opened database")
	return s, nil
}

// Path returns the filesystem location backing this store.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion reports the schema version recorded in tss_meta.
func (s *Store) SchemaVersion() string {
	var v string
	if err := s.db.QueryRow(`SELECT value FROM tss_meta WHERE key = 'schema_version'`).Scan(&v); err != nil {
		return "unknown"
	}
	return v
}
