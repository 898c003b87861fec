// Package store exports a parsed entity graph to a database so it can be
// queried with SQL. Two backends share one schema: a SQLite file, or an
// embedded Dolt repository whose exports are committed and can be diffed
// between versions of a model.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/dolthub/driver"
	_ "modernc.org/sqlite"
)

// Backend selects the database engine.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendDolt   Backend = "dolt"
)

// ParseBackend accepts sqlite and dolt.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3", "":
		return BackendSQLite, nil
	case "dolt":
		return BackendDolt, nil
	default:
		return "", fmt.Errorf("invalid backend: %q (expected sqlite or dolt)", s)
	}
}

// doltDatabase is the database created inside a Dolt repository.
const doltDatabase = "stepgraph"

// Store is an open export database.
type Store struct {
	db      *sql.DB
	dbPath  string
	backend Backend
}

// Open opens or creates the database at path. For SQLite path is the
// database file; for Dolt it is the repository directory.
func Open(backend Backend, path string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch backend {
	case BackendSQLite:
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create directory: %w", err)
			}
		}
		db, err = sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
	case BackendDolt:
		db, err = openDolt(path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	s := &Store{db: db, dbPath: path, backend: backend}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func openDolt(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dolt directory: %w", err)
	}

	// Connect without a database first so it can be created.
	initDSN := fmt.Sprintf("file://%s?commitname=stepgraph&commitemail=stepgraph@local", dir)
	initDB, err := sql.Open("dolt", initDSN)
	if err != nil {
		return nil, fmt.Errorf("open dolt for init: %w", err)
	}
	_, err = initDB.Exec("CREATE DATABASE IF NOT EXISTS " + doltDatabase)
	initDB.Close()
	if err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}

	dsn := fmt.Sprintf("file://%s?commitname=stepgraph&commitemail=stepgraph@local&database=%s", dir, doltDatabase)
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt db: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Backend returns the engine in use.
func (s *Store) Backend() Backend {
	return s.backend
}

// ErrNotVersioned is returned by Commit on a backend without history.
var ErrNotVersioned = errors.New("backend has no version history")

// Commit records the current export as a Dolt commit and returns its hash.
func (s *Store) Commit(message string) (string, error) {
	if s.backend != BackendDolt {
		return "", ErrNotVersioned
	}
	var hash string
	if err := s.db.QueryRow("CALL DOLT_COMMIT('-Am', ?)", message).Scan(&hash); err != nil {
		return "", fmt.Errorf("dolt commit: %w", err)
	}
	return hash, nil
}
