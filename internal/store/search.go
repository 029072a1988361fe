// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
)

// Symbol is one mirrored entry.
type Symbol struct {
	Name       string `json:"name"`
	Kind       string `json:"kind,omitempty"`
	KindLetter string `json:"kind_letter,omitempty"`
	Path       string `json:"path"`
	Language   string `json:"language,omitempty"`
	Line       uint64 `json:"line,omitempty"`
	Scope      string `json:"scope,omitempty"`
	ScopeKind  string `json:"scope_kind,omitempty"`
	Signature  string `json:"signature,omitempty"`
	Source     string `json:"source,omitempty"`
}

// LookupOptions narrows a lookup.
type LookupOptions struct {
	// Prefix matches names starting with the query instead of equal to it.
	Prefix bool

	// Kinds filters by kind name or letter (empty = all).
	Kinds []string

	// Languages filters by language (empty = all).
	Languages []string

	// MaxResults limits the number of rows (0 = unlimited).
	MaxResults int
}

const symbolColumns = `
	s.name, s.kind, s.kind_letter, f.path, f.language,
	s.line, s.scope, s.scope_kind, s.signature, s.source
`

// Lookup finds symbols by exact name or name prefix, ordered by path and line.
func (s *Store) Lookup(ctx context.Context, name string, opts *LookupOptions) ([]Symbol, error) {
	if name == "" {
		return nil, ErrEmptyQuery
	}
	if opts == nil {
		opts = &LookupOptions{}
	}

	query := "SELECT" + symbolColumns + `
		FROM symbols s
		JOIN files f ON f.id = s.file_id
		WHERE `
	var args []any
	if opts.Prefix {
		query += "s.name >= ? AND s.name < ?"
		args = append(args, name, name+"\U0010FFFF")
	} else {
		query += "s.name = ?"
		args = append(args, name)
	}
	query, args = addFilters(query, args, opts)
	query += " ORDER BY f.path, s.line"
	if opts.MaxResults > 0 {
		query += " LIMIT ?"
		args = append(args, opts.MaxResults)
	}
	return s.query(ctx, query, args...)
}

// Search runs a full-text query over symbol names and signatures, best
// matches first.
func (s *Store) Search(ctx context.Context, text string, opts *LookupOptions) ([]Symbol, error) {
	fts := buildFTSQuery(text)
	if fts == "" {
		return nil, ErrEmptyQuery
	}
	if opts == nil {
		opts = &LookupOptions{}
	}

	query := "SELECT" + symbolColumns + `
		FROM symbols_fts fts
		JOIN symbols s ON s.id = fts.rowid
		JOIN files f ON f.id = s.file_id
		WHERE symbols_fts MATCH ?`
	args := []any{fts}
	query, args = addFilters(query, args, opts)
	query += " ORDER BY fts.rank, f.path, s.line"
	if opts.MaxResults > 0 {
		query += " LIMIT ?"
		args = append(args, opts.MaxResults)
	}
	return s.query(ctx, query, args...)
}

func addFilters(query string, args []any, opts *LookupOptions) (string, []any) {
	if len(opts.Kinds) > 0 {
		ph := placeholders(len(opts.Kinds))
		query += " AND (s.kind IN (" + ph + ") OR s.kind_letter IN (" + ph + "))"
		for range 2 {
			for _, k := range opts.Kinds {
				args = append(args, k)
			}
		}
	}
	if len(opts.Languages) > 0 {
		query += " AND f.language IN (" + placeholders(len(opts.Languages)) + ")"
		for _, l := range opts.Languages {
			args = append(args, l)
		}
	}
	return query, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// buildFTSQuery quotes each word as a prefix term so user input cannot
// inject FTS operators.
func buildFTSQuery(text string) string {
	words := strings.Fields(text)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, `""`)
		terms = append(terms, `"`+w+`"*`)
	}
	return strings.Join(terms, " ")
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Symbol, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		var sym Symbol
		var line int64
		if err := rows.Scan(&sym.Name, &sym.Kind, &sym.KindLetter, &sym.Path, &sym.Language,
			&line, &sym.Scope, &sym.ScopeKind, &sym.Signature, &sym.Source); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		sym.Line = uint64(line)
		out = append(out, sym)
	}
	return out, rows.Err()
}
