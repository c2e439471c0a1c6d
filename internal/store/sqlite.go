package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS api_keys (
		key_hash   TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		revoked    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		tool        TEXT NOT NULL,
		filename    TEXT NOT NULL DEFAULT '',
		success     INTEGER NOT NULL,
		error_code  TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_created ON history (created_at)`,
}

// SQLite is a store backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	caps Capabilities
}

// OpenSQLite opens the database at path, applies the schema and probes
// which tables are usable.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite serialises writers; a single connection also keeps :memory:
	// databases shared across queries.
	db.SetMaxOpenConns(1)

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	s := &SQLite{db: db}
	s.caps = Capabilities{
		APIKeys: s.hasTable(ctx, "api_keys"),
		History: s.hasTable(ctx, "history"),
	}
	return s, nil
}

func (s *SQLite) hasTable(ctx context.Context, name string) bool {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	return err == nil && n > 0
}

func (s *SQLite) Capabilities() Capabilities { return s.caps }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) AddKey(ctx context.Context, hash, name string) error {
	if !s.caps.APIKeys {
		return ErrUnavailable
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, name) VALUES (?, ?)
		 ON CONFLICT(key_hash) DO UPDATE SET name = excluded.name, revoked = 0`, hash, name)
	if err != nil {
		return fmt.Errorf("add key: %w", err)
	}
	return nil
}

// RevokeKey marks a key unusable. It reports whether the key existed.
func (s *SQLite) RevokeKey(ctx context.Context, hash string) (bool, error) {
	if !s.caps.APIKeys {
		return false, ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, `UPDATE api_keys SET revoked = 1 WHERE key_hash = ?`, hash)
	if err != nil {
		return false, fmt.Errorf("revoke key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke key: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) LookupKey(ctx context.Context, hash string) (bool, error) {
	if !s.caps.APIKeys {
		return false, ErrUnavailable
	}
	var revoked int
	err := s.db.QueryRowContext(ctx,
		`SELECT revoked FROM api_keys WHERE key_hash = ?`, hash).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup key: %w", err)
	}
	return revoked == 0, nil
}

func (s *SQLite) RecordHistory(ctx context.Context, e Entry) error {
	if !s.caps.History {
		return ErrUnavailable
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (tool, filename, success, error_code, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Tool, e.Filename, e.Success, e.ErrorCode, e.Duration.Milliseconds(), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// History returns the latest entries, newest first.
func (s *SQLite) History(ctx context.Context, limit int) ([]Entry, error) {
	if !s.caps.History {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT tool, filename, success, error_code, duration_ms, created_at
		 FROM history ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.Tool, &e.Filename, &e.Success, &e.ErrorCode, &ms, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
