// Package store keeps recorded gesture sessions in SQLite so they can be
// listed over the API and replayed later in place of the camera.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// pragmas are applied to the single session connection before migrating.
// Deleting a session relies on foreign keys to cascade to its frames.
var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Store holds the session database. A recorder appends frames while the
// API lists and deletes sessions, so all access goes through one
// connection.
type Store struct {
	db   *sql.DB
	path string
}

// New opens or creates the session database at dbPath and brings its
// schema up to date.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: dbPath}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}
	return s, nil
}

// Close flushes and closes the session database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns where the sessions are stored on disk.
func (s *Store) Path() string {
	return s.path
}
