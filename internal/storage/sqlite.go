// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver
)

// SQLite stores the blob as a row in a SQLite database.
type SQLite struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens (and if needed creates) the database at path. The blob is stored under key.
func OpenSQLite(path, key string) (*SQLite, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	if _, err = db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &SQLite{db: db, key: key}, nil
}

// Read returns the stored blob. A missing row reads as the empty string.
func (s *SQLite) Read(ctx context.Context) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM blobs WHERE key = ?", s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", persistenceErr("read", err)
	}
	return value.String, nil
}

// Write replaces the stored blob.
func (s *SQLite) Write(ctx context.Context, data string) error {
	query := `INSERT OR REPLACE INTO blobs (key, value) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, s.key, data); err != nil {
		return persistenceErr("write", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
