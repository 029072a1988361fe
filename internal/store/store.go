// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/rigtags/internal/tags"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabase   = errors.New("database error")
	ErrRunActive  = errors.New("a run is already in progress")
	ErrRunClosed  = errors.New("run already committed or rolled back")
	ErrEmptyQuery = errors.New("empty query")
)

// =============================================================================
// STORE
// =============================================================================

// Store is a SQLite mirror of tag entries.
type Store struct {
	db   *sql.DB
	path string

	mu     sync.Mutex
	active bool
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	// SQLite allows a single writer; pragmas are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(InitMetadata)
	return err
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// RUNS
// =============================================================================

// Run is one rebuild of the mirror. It is not safe for concurrent use.
type Run struct {
	s     *Store
	tx    *sql.Tx
	id    string
	root  string
	start time.Time
	done  bool
}

// BeginRun clears the mirror inside a new transaction. Only one run may be
// open at a time.
func (s *Store) BeginRun(ctx context.Context, root string) (*Run, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, ErrRunActive
	}
	s.active = true
	s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	for _, stmt := range []string{"DELETE FROM symbols", "DELETE FROM files"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			s.release()
			return nil, fmt.Errorf("failed to clear mirror: %w", err)
		}
	}

	return &Run{s: s, tx: tx, id: uuid.NewString(), root: root, start: time.Now()}, nil
}

func (s *Store) release() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// ID returns the run identifier recorded in the metadata table.
func (r *Run) ID() string {
	return r.id
}

// ContentHash returns the hex xxh3 digest stored for a file.
func ContentHash(content []byte) string {
	return strconv.FormatUint(xxh3.Hash(content), 16)
}

// AddFile records one input file and returns its row id.
func (r *Run) AddFile(ctx context.Context, path, language string, content []byte) (int64, error) {
	if r.done {
		return 0, ErrRunClosed
	}
	res, err := r.tx.ExecContext(ctx, `
		INSERT INTO files (path, language, size, hash, indexed_at)
		VALUES (?, ?, ?, ?, ?)
	`, path, language, len(content), ContentHash(content), r.start.Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return res.LastInsertId()
}

// AddEntry records one written entry under fileID.
func (r *Run) AddEntry(ctx context.Context, fileID int64, e *tags.Entry) error {
	if r.done {
		return ErrRunClosed
	}
	kind := e.Kind.Name
	if kind == "" && e.Kind.HasLetter() {
		kind = string(e.Kind.Letter)
	}
	letter := ""
	if e.Kind.HasLetter() {
		letter = string(e.Kind.Letter)
	}
	var scopeKind string
	if e.Scope != nil {
		scopeKind = e.Scope.Kind.Name
	}
	sig, _ := e.Extensions.Get(tags.FieldSignature)

	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO symbols (name, kind, kind_letter, file_id, line, scope, scope_kind, signature, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Name, kind, letter, fileID, int64(e.Location.Line), e.Scope.FullName(), scopeKind, sig, e.Location.Text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return nil
}

// Commit stamps the run metadata and commits.
func (r *Run) Commit() error {
	if r.done {
		return ErrRunClosed
	}
	r.done = true
	defer r.s.release()

	meta := map[string]string{
		"last_run_id": r.id,
		"last_run_at": strconv.FormatInt(r.start.Unix(), 10),
		"root_path":   r.root,
	}
	for k, v := range meta {
		if _, err := r.tx.Exec("UPDATE metadata SET value = ? WHERE key = ?", v, k); err != nil {
			r.tx.Rollback()
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
	}
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Rollback abandons the run, keeping the previous mirror.
func (r *Run) Rollback() error {
	if r.done {
		return nil
	}
	r.done = true
	defer r.s.release()
	return r.tx.Rollback()
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats describes the current mirror.
type Stats struct {
	FileCount   int
	SymbolCount int
	LastRunID   string
	LastRunAt   time.Time
	Root        string
}

// Stats reads the mirror counters and the last run metadata.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&st.FileCount); err != nil {
		return st, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols").Scan(&st.SymbolCount); err != nil {
		return st, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM metadata WHERE key IN ('last_run_id', 'last_run_at', 'root_path')")
	if err != nil {
		return st, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return st, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		switch k {
		case "last_run_id":
			st.LastRunID = v
		case "last_run_at":
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil && ts > 0 {
				st.LastRunAt = time.Unix(ts, 0)
			}
		case "root_path":
			st.Root = v
		}
	}
	return st, rows.Err()
}
