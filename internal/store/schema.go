// Package store persists artists, tracks, links and tags in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS artists (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       VARCHAR(255) NOT NULL UNIQUE CHECK (name <> ''),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tracks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       VARCHAR(255) NOT NULL UNIQUE CHECK (name <> ''),
	artist_id  INTEGER NOT NULL REFERENCES artists(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS links (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       VARCHAR(255) NOT NULL UNIQUE CHECK (name <> ''),
	artist_id  INTEGER NOT NULL REFERENCES artists(id),
	track_id   INTEGER NOT NULL REFERENCES tracks(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       VARCHAR(255) NOT NULL UNIQUE CHECK (name <> ''),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS artist_tags (
	artist_id INTEGER NOT NULL REFERENCES artists(id),
	tag_id    INTEGER NOT NULL REFERENCES tags(id),
	PRIMARY KEY (artist_id, tag_id)
);

CREATE TABLE IF NOT EXISTS tag_tracks (
	tag_id   INTEGER NOT NULL REFERENCES tags(id),
	track_id INTEGER NOT NULL REFERENCES tracks(id),
	PRIMARY KEY (tag_id, track_id)
);

CREATE TABLE IF NOT EXISTS link_tags (
	link_id INTEGER NOT NULL REFERENCES links(id),
	tag_id  INTEGER NOT NULL REFERENCES tags(id),
	PRIMARY KEY (link_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist_id);
CREATE INDEX IF NOT EXISTS idx_links_artist ON links(artist_id);
CREATE INDEX IF NOT EXISTS idx_links_track ON links(track_id);
CREATE INDEX IF NOT EXISTS idx_artist_tags_tag ON artist_tags(tag_id);
CREATE INDEX IF NOT EXISTS idx_tag_tracks_track ON tag_tracks(track_id);
CREATE INDEX IF NOT EXISTS idx_link_tags_tag ON link_tags(tag_id);
`

// Store wraps a sql.DB with catalog operations.
//
// Foreign keys carry no ON DELETE actions: the delete methods remove dependants
// explicitly, in order, inside one transaction.
type Store struct {
	conn *sql.DB

	linkArtistMatch bool
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string, opts ...Option) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	s := &Store{conn: conn}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
