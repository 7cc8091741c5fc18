// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const messagesTable = "loom_messages"

// SQLiteStore persists session transcripts in a SQLite database so
// hosts can restore conversations across process restarts. It is a
// durable transcript log, not a Memory implementation: eviction policy
// stays with the in-memory Memory that owns the session window.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite transcript store at path.
// Use ":memory:" for an ephemeral store in tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an existing database handle and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`, messagesTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_session ON %s(session_id, created_at);`,
			messagesTable, messagesTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure sqlite schema: %w", err)
		}
	}
	return nil
}

// Append records one entry for the session.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, entry Entry) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		messagesTable)
	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(), sessionID, string(entry.Role), entry.Content, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("append transcript entry: %w", err)
	}
	return nil
}

// Messages returns all entries for the session in insertion order.
func (s *SQLiteStore) Messages(ctx context.Context, sessionID string) ([]Entry, error) {
	query := fmt.Sprintf(
		`SELECT role, content FROM %s WHERE session_id = ? ORDER BY created_at, id`,
		messagesTable)
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		entries = append(entries, Entry{Role: Role(role), Content: content})
	}
	return entries, rows.Err()
}

// Clear removes all entries for the session.
func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = ?`, messagesTable)
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
